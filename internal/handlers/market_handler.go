package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/httpresp"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/market"
)

const marketPreviewRows = 100

// MarketLoader is satisfied by *market.Loader.
type MarketLoader interface {
	Load(ctx context.Context, ds market.Dataset) (market.Frame, error)
}

type MarketHandler struct {
	loader MarketLoader
}

func NewMarketHandler(loader MarketLoader) *MarketHandler {
	return &MarketHandler{loader: loader}
}

// GET /api/market/datasets
func (h *MarketHandler) List(c *gin.Context) {
	httpresp.List(c, market.Catalog)
}

// GET /api/market/datasets/:key?filter[municipio]=Pereira
//
// Filters apply in catalog order; each option list reflects the filters
// applied before it.
func (h *MarketHandler) Get(c *gin.Context) {
	ds, ok := market.Lookup(c.Param("key"))
	if !ok {
		httperrUnknownDataset(c)
		return
	}

	frame, err := h.loader.Load(c.Request.Context(), ds)
	if err != nil {
		writeError(c, err, "market_load_failed", "Error crítico al cargar o procesar los datos.")
		return
	}
	total := len(frame.Rows)

	selected := c.QueryMap("filter")
	options := make(map[string][]string, len(ds.Filters))
	for _, col := range ds.Filters {
		options[col] = frame.Values(col)
		frame = frame.Filter(col, selected[col])
	}

	preview := frame.Rows
	if len(preview) > marketPreviewRows {
		preview = preview[:marketPreviewRows]
	}

	c.JSON(http.StatusOK, gin.H{
		"dataset": ds,
		"summary": market.Summarize(ds, frame),
		"options": options,
		"columns": frame.Columns,
		"rows":    preview,
		"shown":   len(frame.Rows),
		"total":   total,
	})
}

func httperrUnknownDataset(c *gin.Context) {
	writeError(c, errUnknownDataset, "", "")
}
