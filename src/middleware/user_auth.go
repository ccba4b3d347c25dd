package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nestling-app/nestling-server/src/services"
)

// Context keys set by UserAuth
const (
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"
)

// UserAuth authenticates end-user routes. User sessions are stateless: the
// token is trusted for its full lifetime on signature and claims alone, with
// no server-side session lookup.
func UserAuth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication token"})
			c.Abort()
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(UserRoleKey, claims.Role)
		c.Next()
	}
}

// GetUserID retrieves the authenticated user id from context
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get(UserIDKey); exists {
		return id.(string)
	}
	return ""
}
