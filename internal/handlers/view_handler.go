package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/dto"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/httpresp"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/middleware"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/report"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/usecase/dashboard"
)

// ======================================================
// HANDLER
// ======================================================

type ViewHandler struct {
	getView      *dashboard.GetView
	getFilters   *dashboard.GetFilters
	getDashboard *dashboard.GetDashboard
	renderChart  *dashboard.RenderChart
	exportView   *dashboard.ExportView
	getTable     *dashboard.GetTable
	listProducts *dashboard.ListProducts
	refresh      *dashboard.RefreshData
}

func NewViewHandler(
	getView *dashboard.GetView,
	getFilters *dashboard.GetFilters,
	getDashboard *dashboard.GetDashboard,
	renderChart *dashboard.RenderChart,
	exportView *dashboard.ExportView,
	getTable *dashboard.GetTable,
	listProducts *dashboard.ListProducts,
	refresh *dashboard.RefreshData,
) *ViewHandler {
	return &ViewHandler{
		getView:      getView,
		getFilters:   getFilters,
		getDashboard: getDashboard,
		renderChart:  renderChart,
		exportView:   exportView,
		getTable:     getTable,
		listProducts: listProducts,
		refresh:      refresh,
	}
}

// GET /api/view
func (h *ViewHandler) View(c *gin.Context) {
	f, ok := filterFromQuery(c)
	if !ok {
		invalidFilter(c)
		return
	}

	res, err := h.getView.Execute(c.Request.Context(), f)
	if err != nil {
		writeError(c, err, "view_failed", "No se pudo construir la vista.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rows":        dto.NewViewRowDTOs(res.Rows),
		"total":       len(res.Rows),
		"stats":       res.Stats,
		"description": res.Description,
		"warnings":    res.Warnings,
		"empty":       res.Empty,
	})
}

// GET /api/view.xlsx
func (h *ViewHandler) ExportXLSX(c *gin.Context) {
	f, ok := filterFromQuery(c)
	if !ok {
		invalidFilter(c)
		return
	}

	file, err := h.exportView.Execute(c.Request.Context(), middleware.Actor(c), f)
	if err != nil {
		writeError(c, err, "export_failed", "No se pudo exportar la vista.")
		return
	}
	sendFile(c, file)
}

// GET /api/dashboard
func (h *ViewHandler) Dashboard(c *gin.Context) {
	f, ok := filterFromQuery(c)
	if !ok {
		invalidFilter(c)
		return
	}

	d, err := h.getDashboard.Execute(c.Request.Context(), f)
	if err != nil {
		writeError(c, err, "dashboard_failed", "No se pudieron calcular las métricas.")
		return
	}
	httpresp.OK(c, d)
}

// GET /api/filters
func (h *ViewHandler) Filters(c *gin.Context) {
	f, ok := filterFromQuery(c)
	if !ok {
		invalidFilter(c)
		return
	}

	choices, err := h.getFilters.Execute(c.Request.Context(), f)
	if err != nil {
		writeError(c, err, "filters_failed", "No se pudieron calcular los filtros.")
		return
	}
	httpresp.OK(c, choices)
}

// GET /api/charts
func (h *ViewHandler) Charts(c *gin.Context) {
	httpresp.List(c, report.Charts)
}

// GET /api/charts/:name?format=png|webp
func (h *ViewHandler) Chart(c *gin.Context) {
	f, ok := filterFromQuery(c)
	if !ok {
		invalidFilter(c)
		return
	}

	file, err := h.renderChart.Execute(
		c.Request.Context(),
		c.Param("name"),
		c.DefaultQuery("format", dashboard.FormatPNG),
		f,
	)
	if err != nil {
		writeError(c, err, "chart_failed", "No se pudo generar el gráfico.")
		return
	}
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// GET /api/tables/:entity
func (h *ViewHandler) Table(c *gin.Context) {
	res, err := h.getTable.Execute(c.Request.Context(), models.Entity(c.Param("entity")))
	if err != nil {
		writeError(c, err, "table_failed", "No se pudo leer la tabla.")
		return
	}
	httpresp.OK(c, res)
}

// GET /api/products
func (h *ViewHandler) Products(c *gin.Context) {
	products, err := h.listProducts.Execute(c.Request.Context())
	if err != nil {
		writeError(c, err, "products_failed", "No se pudo leer el catálogo.")
		return
	}
	httpresp.List(c, products)
}

// POST /api/data/refresh
func (h *ViewHandler) Refresh(c *gin.Context) {
	ds, err := h.refresh.Execute(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		writeError(c, err, "refresh_failed", "No se pudieron recargar los datos.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"backend":   ds.Backend,
		"loaded_at": ds.LoadedAt,
		"tables":    ds.Tables,
		"warnings":  ds.Warnings,
	})
}

func sendFile(c *gin.Context, file *dashboard.File) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
