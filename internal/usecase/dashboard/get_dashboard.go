package dashboard

import (
	"context"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/report"
)

type Dashboard struct {
	Summary     report.Summary            `json:"summary"`
	Groups      map[string][]report.Group `json:"groups"`
	Description string                    `json:"description"`
	Warnings    []string                  `json:"warnings"`
	Stats       view.Stats                `json:"stats"`
}

type GetDashboard struct {
	data *Data
}

func NewGetDashboard(data *Data) *GetDashboard {
	return &GetDashboard{data: data}
}

// Execute computes KPIs plus one group series per chart.
func (uc *GetDashboard) Execute(
	ctx context.Context,
	f view.Filter,
) (*Dashboard, error) {

	snap, err := uc.data.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	rows := snap.Filter(f)

	out := &Dashboard{
		Summary:     report.Summarize(rows),
		Groups:      make(map[string][]report.Group, len(report.Charts)),
		Description: f.Describe(snap.Rows),
		Warnings:    snap.Warnings,
		Stats:       snap.Stats,
	}
	for _, spec := range report.Charts {
		groups, err := report.GroupBy(rows, spec.Dimension, spec.Metric)
		if err != nil {
			return nil, err
		}
		out.Groups[spec.Name] = report.Top(groups, spec.Limit)
	}
	return out, nil
}
