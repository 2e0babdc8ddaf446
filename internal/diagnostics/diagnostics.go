package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/schema"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/source"
)

const DefaultTimeout = 5 * time.Second

type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

// ModelLister is satisfied by *narrative.GenAIModel.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Pinger is satisfied by *source.HTTPBackend.
type Pinger interface {
	Ping(ctx context.Context, endpoint string) (int, error)
}

type Runner struct {
	models  ModelLister
	backend source.Backend
	mapping *schema.Mapping
	timeout time.Duration
}

// NewRunner accepts a nil model lister; the generative check then reports
// the service as not configured.
func NewRunner(
	models ModelLister,
	backend source.Backend,
	mapping *schema.Mapping,
	timeout time.Duration,
) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{models: models, backend: backend, mapping: mapping, timeout: timeout}
}

type probe struct {
	name string
	run  func(ctx context.Context) (string, error)
}

// Run executes every check concurrently, each under its own timeout.
// Results keep a fixed order.
func (r *Runner) Run(ctx context.Context) []Check {
	probes := append([]probe{r.generativeProbe()}, r.sourceProbes()...)
	out := make([]Check, len(probes))

	var g errgroup.Group
	for i, p := range probes {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			detail, err := p.run(pctx)
			if err != nil {
				out[i] = Check{Name: p.name, Detail: err.Error()}
				return nil
			}
			out[i] = Check{Name: p.name, OK: true, Detail: detail}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (r *Runner) generativeProbe() probe {
	return probe{name: "generative-api", run: func(ctx context.Context) (string, error) {
		if r.models == nil {
			return "", fmt.Errorf("GOOGLE_API_KEY not set")
		}
		names, err := r.models.ListModels(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d models available", len(names)), nil
	}}
}

func (r *Runner) sourceProbes() []probe {
	var probes []probe

	if pinger, ok := r.backend.(Pinger); ok {
		for _, entity := range models.Entities {
			endpoints := r.mapping.Endpoints(entity)
			probes = append(probes, probe{
				name: "http " + string(entity),
				run: func(ctx context.Context) (string, error) {
					return pingFirst(ctx, pinger, endpoints)
				},
			})
		}
		return probes
	}

	for _, entity := range models.Entities {
		probes = append(probes, probe{
			name: "file " + r.mapping.File(entity),
			run: func(ctx context.Context) (string, error) {
				t, err := r.backend.Fetch(ctx, entity)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%s: %d rows", t.Source, len(t.Rows)), nil
			},
		})
	}
	return probes
}

// pingFirst walks the endpoints in order like HTTPBackend.Fetch: a 404
// moves on, anything else decides.
func pingFirst(ctx context.Context, pinger Pinger, endpoints []string) (string, error) {
	var lastErr error
	for _, endpoint := range endpoints {
		n, err := pinger.Ping(ctx, endpoint)
		if errors.Is(err, source.ErrNotFound) {
			lastErr = err
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%s: %w", endpoint, err)
		}
		return fmt.Sprintf("%s: %d records", endpoint, n), nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no endpoints declared")
	}
	return "", lastErr
}

// Healthy reports whether every check passed.
func Healthy(checks []Check) bool {
	for _, c := range checks {
		if !c.OK {
			return false
		}
	}
	return true
}
