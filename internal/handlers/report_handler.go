package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/middleware"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/usecase/dashboard"
)

type ReportHandler struct {
	generate *dashboard.GenerateReport
}

func NewReportHandler(generate *dashboard.GenerateReport) *ReportHandler {
	return &ReportHandler{generate: generate}
}

type ReportRequest struct {
	Filter      FilterRequest `json:"filter"`
	Narrative   *bool         `json:"narrative"`
	CoverPrompt string        `json:"cover_prompt"`
}

// POST /api/reports
//
// Returns the PDF. With ?format=json the PDF comes base64-encoded together
// with the report id and notices.
func (h *ReportHandler) Create(c *gin.Context) {
	var req ReportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperrInvalidBody(c)
			return
		}
	}

	f, ok := req.Filter.ToFilter()
	if !ok {
		invalidFilter(c)
		return
	}

	out, err := h.generate.Execute(c.Request.Context(), middleware.Actor(c), dashboard.ReportInput{
		Filter:      f,
		Narrative:   req.Narrative == nil || *req.Narrative,
		CoverPrompt: strings.TrimSpace(req.CoverPrompt),
	})
	if err != nil {
		writeError(c, err, "report_failed", "No se pudo generar el reporte.")
		return
	}

	if c.Query("format") == "json" {
		c.JSON(http.StatusCreated, gin.H{
			"id":       out.ID,
			"filename": out.Filename,
			"location": out.Location,
			"notices":  out.Notices,
			"pdf":      base64.StdEncoding.EncodeToString(out.PDF),
		})
		return
	}

	c.Header("X-Report-Id", out.ID)
	if out.Location != "" {
		c.Header("X-Report-Location", out.Location)
	}
	sendFile(c, &dashboard.File{Name: out.Filename, ContentType: "application/pdf", Data: out.PDF})
}
