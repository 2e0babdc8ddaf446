package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/config"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/httperr"
)

const (
	ContextActor    = "actor"
	ContextUserRole = "userRole"

	// LocalActor is recorded when the console runs without a password.
	LocalActor = "local"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.AuthEnabled() {
			c.Set(ContextActor, LocalActor)
			c.Set(ContextUserRole, "admin")
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Abort(c, http.StatusUnauthorized, "missing_authorization_header", "Falta el encabezado Authorization.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_authorization_header", "Encabezado Authorization inválido.")
			return
		}

		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {

			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_token", "Token inválido o expirado.")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_token_claims", "Token inválido.")
			return
		}

		actor, ok := claims["sub"].(string)
		role, _ := claims["role"].(string)
		if !ok || actor == "" {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_token_payload", "Token inválido.")
			return
		}

		c.Set(ContextActor, actor)
		c.Set(ContextUserRole, role)

		c.Next()
	}
}

// Actor returns who is calling, set by AuthMiddleware.
func Actor(c *gin.Context) string {
	if v, ok := c.Get(ContextActor); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return LocalActor
}
