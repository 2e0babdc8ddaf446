package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/audit"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/config"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/httperr"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/middleware"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/usecase/dashboard"
)

const tokenTTL = 12 * time.Hour

type AuthHandler struct {
	config *config.Config
	audit  dashboard.Auditor
}

func NewAuthHandler(cfg *config.Config, audit dashboard.Auditor) *AuthHandler {
	return &AuthHandler{config: cfg, audit: audit}
}

// --------- Requests ---------

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Login(c *gin.Context) {
	if !h.config.AuthEnabled() {
		httperr.BadRequest(c, "auth_disabled", "La consola no tiene contraseña configurada.")
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Email y contraseña son obligatorios.")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// same answer for unknown email and wrong password
	if email != h.config.AdminEmail {
		httperr.Unauthorized(c, "invalid_credentials", "Credenciales inválidas.")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.config.AdminPasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Credenciales inválidas.")
		return
	}

	token, expires, err := h.generateToken(email)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "No se pudo generar el token.")
		return
	}

	h.audit.Dispatch(audit.Event{
		Actor:  email,
		Action: audit.ActionLogin,
		Entity: "session",
	})

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"email": email,
			"role":  "admin",
		},
		"token":      token,
		"expires_at": expires,
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	role, _ := c.Get(middleware.ContextUserRole)
	c.JSON(http.StatusOK, gin.H{
		"actor":        middleware.Actor(c),
		"role":         role,
		"auth_enabled": h.config.AuthEnabled(),
	})
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(email string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(tokenTTL)
	claims := jwt.MapClaims{
		"sub":  email,
		"role": "admin",
		"exp":  expires.Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.config.JWTSecret))
	return signed, expires, err
}
