package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/audit"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/cache"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/source"
)

// DatasetLoader is satisfied by *source.Loader.
type DatasetLoader interface {
	Load(ctx context.Context) *source.Dataset
	CacheKey() string
}

// Auditor is satisfied by *audit.Dispatcher.
type Auditor interface {
	Dispatch(ev audit.Event) bool
}

// ======================================================
// DATA (dataset cache + unified view)
// ======================================================

type Data struct {
	loader DatasetLoader
	cache  *cache.Cache
	opts   view.Options
}

func NewData(
	loader DatasetLoader,
	c *cache.Cache,
	opts view.Options,
) *Data {
	return &Data{loader: loader, cache: c, opts: opts}
}

// Dataset is read through the cache; partial loads are never stored.
func (d *Data) Dataset(ctx context.Context) (*source.Dataset, error) {
	return cache.Fetch(ctx, d.cache, d.loader.CacheKey(),
		func(ctx context.Context) (*source.Dataset, error) {
			return d.loader.Load(ctx), nil
		},
	)
}

func (d *Data) Invalidate(ctx context.Context) error {
	return d.cache.Invalidate(ctx, d.loader.CacheKey())
}

// Snapshot is the dataset with its unified view. When a required relation
// is empty the view has no rows and Empty names the relations.
type Snapshot struct {
	Dataset  *source.Dataset
	Rows     []view.Row
	Stats    view.Stats
	Empty    []models.Entity
	Warnings []string
}

func (d *Data) Snapshot(ctx context.Context) (*Snapshot, error) {
	ds, err := d.Dataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	snap := &Snapshot{
		Dataset:  ds,
		Rows:     []view.Row{},
		Warnings: warningMessages(ds),
	}

	v, err := view.Build(ds.Relations, d.opts)
	var empty *view.EmptyRelationError
	switch {
	case errors.As(err, &empty):
		snap.Empty = empty.Entities
		snap.Warnings = append(snap.Warnings, emptyMessage(empty.Entities))
		return snap, nil
	case err != nil:
		return nil, err
	}

	snap.Rows = v.Rows
	snap.Stats = v.Stats
	return snap, nil
}

// Filter applies f to the snapshot rows.
func (s *Snapshot) Filter(f view.Filter) []view.Row {
	return view.Apply(s.Rows, f)
}

func warningMessages(ds *source.Dataset) []string {
	out := make([]string, 0, len(ds.Warnings))
	for _, w := range ds.Warnings {
		if w.Entity == "" {
			out = append(out, w.Message)
			continue
		}
		out = append(out, fmt.Sprintf("%s: %s", w.Entity, w.Message))
	}
	return out
}

func emptyMessage(entities []models.Entity) string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = string(e)
	}
	return "Sin datos para mostrar: no hay registros de " + strings.Join(names, ", ")
}
