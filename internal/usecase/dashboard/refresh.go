package dashboard

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/audit"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/source"
)

// RefreshData drops the cached dataset and loads it again.
type RefreshData struct {
	data   *Data
	audit  Auditor
	logger *zap.Logger
}

func NewRefreshData(
	data *Data,
	audit Auditor,
	logger *zap.Logger,
) *RefreshData {
	return &RefreshData{data: data, audit: audit, logger: logger}
}

func (uc *RefreshData) Execute(
	ctx context.Context,
	actor string,
) (*source.Dataset, error) {

	if err := uc.data.Invalidate(ctx); err != nil {
		// a stale entry expires with its TTL anyway
		uc.logger.Warn("cache invalidation failed", zap.Error(err))
	}

	ds, err := uc.data.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		Actor:     actor,
		Action:    audit.ActionDataRefreshed,
		Entity:    "dataset",
		EntityRef: ds.Backend,
		Metadata: map[string]any{
			"warnings": len(ds.Warnings),
			"complete": ds.Cacheable(),
		},
	})
	return ds, nil
}
