package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/diagnostics"
)

// DiagnosticsRunner is satisfied by *diagnostics.Runner.
type DiagnosticsRunner interface {
	Run(ctx context.Context) []diagnostics.Check
}

type DiagnosticsHandler struct {
	runner DiagnosticsRunner
}

func NewDiagnosticsHandler(runner DiagnosticsRunner) *DiagnosticsHandler {
	return &DiagnosticsHandler{runner: runner}
}

// GET /api/diagnostics
func (h *DiagnosticsHandler) Run(c *gin.Context) {
	checks := h.runner.Run(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"healthy": diagnostics.Healthy(checks),
		"checks":  checks,
	})
}
