package dashboard

import (
	"context"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/httperr"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/source"
)

// TableResult is one canonical relation as loaded, plus its load status.
type TableResult struct {
	Entity models.Entity      `json:"entity"`
	Status source.TableStatus `json:"status"`
	Rows   any                `json:"rows"`
}

type GetTable struct {
	data *Data
}

func NewGetTable(data *Data) *GetTable {
	return &GetTable{data: data}
}

func (uc *GetTable) Execute(
	ctx context.Context,
	entity models.Entity,
) (*TableResult, error) {

	if !entity.Valid() {
		return nil, httperr.ErrBusiness(httperr.CodeUnknownEntity)
	}

	ds, err := uc.data.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	var rows any
	switch entity {
	case models.EntityClients:
		rows = nonNil(ds.Clients)
	case models.EntityBarbers:
		rows = nonNil(ds.Barbers)
	case models.EntityServices:
		rows = nonNil(ds.Services)
	case models.EntityVenues:
		rows = nonNil(ds.Venues)
	case models.EntityAppointments:
		rows = nonNil(ds.Appointments)
	}

	return &TableResult{
		Entity: entity,
		Status: ds.Tables[entity],
		Rows:   rows,
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ======================================================
// PRODUCTS
// ======================================================

type ListProducts struct {
	data *Data
}

func NewListProducts(data *Data) *ListProducts {
	return &ListProducts{data: data}
}

func (uc *ListProducts) Execute(ctx context.Context) ([]map[string]string, error) {
	ds, err := uc.data.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(ds.Products), nil
}
