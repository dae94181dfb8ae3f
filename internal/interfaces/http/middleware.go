package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openmuni/casework/internal/application/port"
	"github.com/openmuni/casework/internal/domain/entity"
)

const userContextKey = "acting_user"

// AuthMiddleware resolves the acting user from the Authorization header via the
// identity port and stores it on the request context. Handlers pass the
// resolved user down explicitly; nothing below this layer reads session state.
func AuthMiddleware(identity port.Identity, logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing bearer token",
			})
			return
		}

		user, err := identity.Resolve(c.Request.Context(), token)
		if err != nil {
			logger.Info("Token resolution failed", "error", err, "client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid or expired token",
			})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// actingUser returns the user resolved by AuthMiddleware
func actingUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(*entity.User); ok {
			return user
		}
	}
	return nil
}
