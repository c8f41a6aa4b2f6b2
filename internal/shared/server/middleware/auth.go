package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"outreach-backend/internal/shared/server/respond"
)

const userIDKey = "userId"

// Auth resolves the caller identity from the X-User-Id header and stores it
// in the gin context. Session handling lives in front of this service; in
// dev an absent header falls back to a demo identity.
func Auth(env string) gin.HandlerFunc {
	devLike := env == "dev" || env == "local"
	return func(c *gin.Context) {
		// CORS normally answers preflights before this runs; abort anyway so
		// a reordered chain cannot fall through to the handlers.
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}

		userID := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if userID == "" {
			if !devLike {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing user identity", nil)
				return
			}
			userID = "demo"
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID stored by Auth.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
