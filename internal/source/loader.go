package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/monitoring"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/schema"
)

type WarningKind string

const (
	WarningUnavailable    WarningKind = "source_unavailable"
	WarningSchemaMismatch WarningKind = "schema_mismatch"
	WarningCoercion       WarningKind = "coercion"
)

type Warning struct {
	Entity  models.Entity `json:"entity"`
	Kind    WarningKind   `json:"kind"`
	Message string        `json:"message"`
}

type TableStatus struct {
	Source    string   `json:"source"`
	Rows      int      `json:"rows"`
	Available bool     `json:"available"`
	Missing   []string `json:"missing,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Dataset is the result of one load: typed relations plus what went wrong.
type Dataset struct {
	models.Relations
	Products []map[string]string           `json:"products"`
	Tables   map[models.Entity]TableStatus `json:"tables"`
	Warnings []Warning                     `json:"warnings"`
	Backend  string                        `json:"backend"`
	LoadedAt time.Time                     `json:"loaded_at"`
}

// Cacheable is false when any relation failed to load, so a transient
// outage is not pinned in the cache.
func (d *Dataset) Cacheable() bool {
	for _, st := range d.Tables {
		if st.Error != "" {
			return false
		}
	}
	return true
}

type LoaderOptions struct {
	// Timeout bounds each table fetch.
	Timeout time.Duration
	// Strict treats a table missing a required column as unavailable.
	Strict bool
}

type Loader struct {
	backend Backend
	mapping *schema.Mapping
	opts    LoaderOptions
	logger  *zap.Logger
	now     func() time.Time
}

func NewLoader(
	backend Backend,
	mapping *schema.Mapping,
	opts LoaderOptions,
	logger *zap.Logger,
) *Loader {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		backend: backend,
		mapping: mapping,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

func (l *Loader) Backend() Backend { return l.backend }

// CacheKey identifies the dataset this loader produces.
func (l *Loader) CacheKey() string {
	return "dataset:" + l.backend.Descriptor()
}

type fetchResult struct {
	table RawTable
	err   error
	took  time.Duration
}

// Load fetches every relation concurrently. A failing table becomes an empty
// relation plus a warning; Load itself never fails.
func (l *Loader) Load(ctx context.Context) *Dataset {
	results := make([]fetchResult, len(models.Entities))

	var products []map[string]string
	var productsErr error
	pf, hasProducts := l.backend.(ProductFetcher)

	var g errgroup.Group
	for i, entity := range models.Entities {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
			defer cancel()

			start := time.Now()
			t, err := l.backend.Fetch(fctx, entity)
			results[i] = fetchResult{table: t, err: err, took: time.Since(start)}
			return nil
		})
	}
	if hasProducts {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
			defer cancel()
			products, productsErr = pf.FetchProducts(fctx)
			return nil
		})
	}
	_ = g.Wait()

	ds := &Dataset{
		Tables:   make(map[models.Entity]TableStatus, len(models.Entities)),
		Warnings: []Warning{},
		Products: []map[string]string{},
		Backend:  l.backend.Descriptor(),
		LoadedAt: l.now(),
	}

	for i, entity := range models.Entities {
		l.absorb(ds, entity, results[i])
	}

	if productsErr != nil {
		l.logger.Warn("product catalog unavailable", zap.Error(productsErr))
		ds.Warnings = append(ds.Warnings, Warning{
			Kind:    WarningUnavailable,
			Message: fmt.Sprintf("products: %v", productsErr),
		})
	} else if products != nil {
		ds.Products = products
	}

	return ds
}

func (l *Loader) absorb(ds *Dataset, entity models.Entity, res fetchResult) {
	backend := l.backend.Name()
	monitoring.SourceFetchDuration.WithLabelValues(backend, string(entity)).Observe(res.took.Seconds())

	if res.err != nil {
		monitoring.SourceFetches.WithLabelValues(backend, string(entity), "error").Inc()
		l.logger.Warn("relation unavailable",
			zap.String("entity", string(entity)),
			zap.String("backend", backend),
			zap.Error(res.err),
		)
		ds.Tables[entity] = TableStatus{Error: res.err.Error()}
		ds.Warnings = append(ds.Warnings, Warning{
			Entity:  entity,
			Kind:    WarningUnavailable,
			Message: fmt.Sprintf("%s could not be loaded: %v", entity, res.err),
		})
		return
	}
	monitoring.SourceFetches.WithLabelValues(backend, string(entity), "ok").Inc()

	header := l.mapping.Resolve(entity, res.table.Header)
	status := TableStatus{Source: res.table.Source, Available: true, Missing: header.Missing}

	if len(header.Duplicates) > 0 {
		ds.Warnings = append(ds.Warnings, Warning{
			Entity:  entity,
			Kind:    WarningSchemaMismatch,
			Message: fmt.Sprintf("%s: duplicate columns kept as is: %s", entity, strings.Join(header.Duplicates, ", ")),
		})
	}
	if len(header.Missing) > 0 {
		ds.Warnings = append(ds.Warnings, Warning{
			Entity:  entity,
			Kind:    WarningSchemaMismatch,
			Message: fmt.Sprintf("%s: missing required column(s): %s", entity, strings.Join(header.Missing, ", ")),
		})
		if l.opts.Strict {
			status.Available = false
			ds.Tables[entity] = status
			return
		}
	}

	rows := translate(header, res.table)
	ds.Warnings = append(ds.Warnings, decodeInto(&ds.Relations, entity, rows)...)
	status.Rows = len(rows)
	ds.Tables[entity] = status
}
