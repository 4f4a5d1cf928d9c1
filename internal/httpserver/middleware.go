package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shekinah-backend/internal/auth"
)

const sessionKey = "session"

// sessionMiddleware resolves the bearer token, if any, into a session. A
// missing or invalid token is not an error: the request simply proceeds
// without admin privileges.
func sessionMiddleware(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.Next()
			return
		}
		sess, err := svc.Verify(token)
		if err != nil {
			c.Next()
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(sessionKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		sess, ok := v.(auth.Session)
		if !ok || sess.Role != auth.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
