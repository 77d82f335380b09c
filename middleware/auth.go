package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openparish/parishboard/config"
	"github.com/openparish/parishboard/services"
	"github.com/openparish/parishboard/utils"
)

// ContextSessionKey stores the authenticated session in the Gin context.
const ContextSessionKey = "session"

// AuthRequired ensures the request carries a valid JWT and attaches the
// resulting session. The role is re-derived from the admin allow-list
// on every request, so allow-list changes beat a stale role baked into
// an old token.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "invalid token")
			ctx.Abort()
			return
		}

		cfg := config.Get()
		ctx.Set(ContextSessionKey, &services.Session{
			UserID:   claims.UserID,
			Email:    claims.Email,
			Name:     claims.Name,
			Nickname: claims.Nickname,
			Role:     services.DeriveRole(claims.Email, claims.Role, cfg.AdminEmails),
		})
		ctx.Next()
	}
}

// GetSession returns the session set by AuthRequired, or nil.
func GetSession(ctx *gin.Context) *services.Session {
	value, exists := ctx.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	sess, _ := value.(*services.Session)
	return sess
}
