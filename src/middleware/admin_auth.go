package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nestling-app/nestling-server/src/models"
	"github.com/nestling-app/nestling-server/src/services"
)

// principalKey is the context key for the authenticated admin principal
const principalKey = "admin_principal"

// Principal is the authenticated admin identity attached to the request
// after the auth middleware ran. Session is the server-side record the
// presented token resolved to.
type Principal struct {
	Account *models.AdminAccount
	Session *models.AdminSession
}

// GetPrincipal retrieves the admin principal from the request context. The
// second return is false on routes that did not pass AdminAuth.
func GetPrincipal(c *gin.Context) (*Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	principal, ok := v.(*Principal)
	return principal, ok
}

// bearerToken extracts the token from the Authorization header
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AdminAuth authenticates admin routes. The bearer token must verify
// cryptographically, resolve to a live server-side session, and belong to an
// active account; any miss is a 401 without detail.
func AdminAuth(auth *services.AdminAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication token"})
			c.Abort()
			return
		}

		account, session, err := auth.AuthenticateAccessToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, services.ErrTransient) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "authentication temporarily unavailable"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			}
			c.Abort()
			return
		}

		c.Set(principalKey, &Principal{Account: account, Session: session})
		c.Next()
	}
}

// RequirePermission gates a route on a named permission of the principal's
// role. Runs after AdminAuth; a missing principal is a 401, a missing
// permission a 403.
func RequirePermission(engine *services.AuthorizationEngine, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		err := engine.Authorize(c.Request.Context(), principal.Account.ID, principal.Account.RoleID, permission)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrPermissionDenied):
				c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			case errors.Is(err, services.ErrAccountDisabled):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			default:
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "authorization temporarily unavailable"})
			}
			c.Abort()
			return
		}

		c.Next()
	}
}
