package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/httperr"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/middleware"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/usecase/dashboard"
)

type AssistantHandler struct {
	askAnalyst    *dashboard.AskAnalyst
	draftCampaign *dashboard.DraftCampaign
	generateImage *dashboard.GenerateImage
}

func NewAssistantHandler(
	askAnalyst *dashboard.AskAnalyst,
	draftCampaign *dashboard.DraftCampaign,
	generateImage *dashboard.GenerateImage,
) *AssistantHandler {
	return &AssistantHandler{
		askAnalyst:    askAnalyst,
		draftCampaign: draftCampaign,
		generateImage: generateImage,
	}
}

type AssistantRequest struct {
	Prompt string        `json:"prompt" binding:"required"`
	Filter FilterRequest `json:"filter"`
}

func httperrInvalidBody(c *gin.Context) {
	httperr.BadRequest(c, "invalid_request", "Cuerpo de la solicitud inválido.")
}

// POST /api/assistant/analyst
func (h *AssistantHandler) Analyst(c *gin.Context) {
	var req AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperrInvalidBody(c)
		return
	}
	f, ok := req.Filter.ToFilter()
	if !ok {
		invalidFilter(c)
		return
	}

	outcome, err := h.askAnalyst.Execute(c.Request.Context(), middleware.Actor(c), req.Prompt, f)
	if err != nil {
		writeError(c, err, "analyst_failed", "No se pudo responder la pregunta.")
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// POST /api/assistant/campaign
func (h *AssistantHandler) Campaign(c *gin.Context) {
	var req AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperrInvalidBody(c)
		return
	}
	f, ok := req.Filter.ToFilter()
	if !ok {
		invalidFilter(c)
		return
	}

	res, err := h.draftCampaign.Execute(c.Request.Context(), req.Prompt, f)
	if err != nil {
		writeError(c, err, "campaign_failed", "No se pudo generar la campaña.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":     res.OK,
		"text":   res.Text,
		"notice": res.Notice,
	})
}

// POST /api/assistant/image
func (h *AssistantHandler) Image(c *gin.Context) {
	var req AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperrInvalidBody(c)
		return
	}

	res, err := h.generateImage.Execute(c.Request.Context(), req.Prompt)
	if err != nil {
		writeError(c, err, "image_failed", "No se pudo generar la imagen.")
		return
	}

	body := gin.H{"ok": res.OK, "notice": res.Notice, "text": res.Text}
	if res.OK {
		body["image"] = base64.StdEncoding.EncodeToString(res.Image)
		body["image_mime"] = res.ImageMIME
	}
	c.JSON(http.StatusOK, body)
}
