package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/factdeck-backend/internal/http/response"
	"github.com/yungbote/factdeck-backend/internal/platform/apierr"
	"github.com/yungbote/factdeck-backend/internal/platform/ctxutil"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
	"github.com/yungbote/factdeck-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			response.RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, apierr.Unauthorized("missing or invalid token"))
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("token rejected", "token", tokenString, "error", err)
			response.RespondAPIError(c, err)
			return
		}
		if ctxutil.UserID(ctx) == uuid.Nil {
			response.RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, apierr.Unauthorized("token has no subject"))
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
