package source

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
)

// ErrNotFound means the backend has no table (or endpoint) for the entity.
var ErrNotFound = errors.New("source: not found")

// RawTable is a relation exactly as the backend returned it: one header
// row and string cells.
type RawTable struct {
	Entity models.Entity
	Source string
	Header []string
	Rows   [][]string
}

type Backend interface {
	// Name is "file" or "http".
	Name() string
	// Descriptor identifies where the data lives (directory or base URL).
	Descriptor() string
	Fetch(ctx context.Context, entity models.Entity) (RawTable, error)
}

// ProductFetcher is implemented by backends that expose the product catalog.
type ProductFetcher interface {
	FetchProducts(ctx context.Context) ([]map[string]string, error)
}

// Records zips header and rows into maps. Short rows are padded with "".
func (t RawTable) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}
