package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nestling-app/nestling-server/src/services"
)

// respondError maps service sentinel errors to HTTP responses in one place.
// Credential failures deliberately share one message so responses cannot be
// used to enumerate accounts.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid email or password",
		})
	case errors.Is(err, services.ErrAccountLocked):
		c.JSON(http.StatusLocked, gin.H{
			"error":   "account_locked",
			"message": "Account temporarily locked due to repeated failed logins. Try again later.",
		})
	case errors.Is(err, services.ErrAccountDisabled):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid email or password",
		})
	case errors.Is(err, services.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "token_invalid",
			"message": "This token is invalid, expired, or already used",
		})
	case errors.Is(err, services.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "permission_denied",
			"message": "You do not have permission to perform this action",
		})
	case errors.Is(err, services.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "weak_password",
			"message": "Password must be at least 12 characters with upper case, lower case, and a digit",
		})
	case errors.Is(err, services.ErrAccountExists):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "account_exists",
			"message": "An account with this email already exists",
		})
	case errors.Is(err, services.ErrAccountNotFound), errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "The requested resource does not exist",
		})
	case errors.Is(err, services.ErrRoleNotFound):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "unknown_role",
			"message": "The requested role does not exist",
		})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "invalid_transition",
			"message": "The requested status change is not allowed from the current status",
		})
	case errors.Is(err, services.ErrTransient):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "server_error",
			"message": "Temporary backend failure. Please retry.",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "server_error",
			"message": "Internal server error",
		})
	}
}
