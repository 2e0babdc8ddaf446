package dashboard

import (
	"context"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
)

type ViewResult struct {
	Rows        []view.Row
	Stats       view.Stats
	Description string
	Warnings    []string
	Empty       []models.Entity
}

type GetView struct {
	data *Data
}

func NewGetView(data *Data) *GetView {
	return &GetView{data: data}
}

func (uc *GetView) Execute(
	ctx context.Context,
	f view.Filter,
) (*ViewResult, error) {

	snap, err := uc.data.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return &ViewResult{
		Rows:        snap.Filter(f),
		Stats:       snap.Stats,
		Description: f.Describe(snap.Rows),
		Warnings:    snap.Warnings,
		Empty:       snap.Empty,
	}, nil
}

// ======================================================
// FILTER OPTIONS
// ======================================================

type GetFilters struct {
	data *Data
}

func NewGetFilters(data *Data) *GetFilters {
	return &GetFilters{data: data}
}

func (uc *GetFilters) Execute(
	ctx context.Context,
	f view.Filter,
) (view.Choices, error) {

	snap, err := uc.data.Snapshot(ctx)
	if err != nil {
		return view.Choices{}, err
	}
	return view.Cascade(snap.Rows, f), nil
}
