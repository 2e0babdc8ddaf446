package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/httperr"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/httpresp"
	infraRepo "github.com/BruksfildServices01/kingdom-dashboard/internal/infra/repository"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
)

// AuditLister is satisfied by *repository.AuditGormRepository.
type AuditLister interface {
	List(ctx context.Context, f infraRepo.AuditFilter) ([]models.AuditLog, int64, error)
}

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	repo AuditLister
}

// NewAuditLogsHandler accepts a nil repository when no database is
// configured; List then answers 503.
func NewAuditLogsHandler(repo AuditLister) *AuditLogsHandler {
	return &AuditLogsHandler{repo: repo}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	if h.repo == nil {
		httperr.Unavailable(c, "audit_disabled", "El registro de auditoría no está habilitado (DATABASE_URL).")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	// --------------------------------------------------
	// Filtros opcionais
	// --------------------------------------------------

	from, ok := parseDay(c.Query("from"))
	if !ok {
		invalidFilter(c)
		return
	}
	to, ok := parseDay(c.Query("to"))
	if !ok {
		invalidFilter(c)
		return
	}

	f := infraRepo.AuditFilter{
		Actor:  c.Query("actor"),
		Action: c.Query("action"),
		Entity: c.Query("entity"),
		From:   from,
		To:     to,
		Page:   page,
		Limit:  limit,
	}.Normalize()

	logs, total, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err, "audit_list_failed", "Error al listar los registros de auditoría.")
		return
	}

	httpresp.Page(c, logs, f.Page, f.Limit, total)
}
