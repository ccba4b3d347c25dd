package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nestling-app/nestling-server/src/middleware"
	"github.com/nestling-app/nestling-server/src/models"
	"github.com/nestling-app/nestling-server/src/services"
)

// AdminAccountHandler handles account and invitation management endpoints
type AdminAccountHandler struct {
	auth *services.AdminAuthService
}

// NewAdminAccountHandler creates a new account management handler
func NewAdminAccountHandler(auth *services.AdminAuthService) *AdminAccountHandler {
	return &AdminAccountHandler{auth: auth}
}

// InviteRequest represents an invitation to create an admin account
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// AcceptInvitationRequest redeems an invitation token
type AcceptInvitationRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SetStatusRequest changes an account's status
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active disabled"`
}

// HandleInvite handles POST /admin/invitations
func (h *AdminAccountHandler) HandleInvite(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "email and role are required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	invitation, err := h.auth.Invite(ctx, principal.Account, req.Email, req.Role, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Invitation sent",
		"invitation": invitation,
	})
}

// HandleListInvitations handles GET /admin/invitations
func (h *AdminAccountHandler) HandleListInvitations(c *gin.Context) {
	limit, offset := pagination(c)

	invitations, err := h.auth.ListPendingInvitations(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invitations": invitations,
		"count":       len(invitations),
	})
}

// HandleAcceptInvitation handles POST /admin/invitations/accept. The endpoint
// is unauthenticated; the invitation token is the credential.
func (h *AdminAccountHandler) HandleAcceptInvitation(c *gin.Context) {
	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "token and password are required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	account, err := h.auth.AcceptInvitation(ctx, req.Token, req.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created. You can now log in.",
		"account": account,
	})
}

// HandleListAccounts handles GET /admin/accounts
func (h *AdminAccountHandler) HandleListAccounts(c *gin.Context) {
	limit, offset := pagination(c)

	accounts, total, err := h.auth.ListAccounts(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts": accounts,
		"total":    total,
	})
}

// HandleSetAccountStatus handles PUT /admin/accounts/:id/status
func (h *AdminAccountHandler) HandleSetAccountStatus(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "invalid account id",
		})
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "status must be active or disabled",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	err = h.auth.SetAccountStatus(ctx, principal.Account, accountID,
		models.AccountStatus(req.Status), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account status updated"})
}

// HandleRevokeSession handles DELETE /admin/sessions/:id
func (h *AdminAccountHandler) HandleRevokeSession(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "invalid session id",
		})
		return
	}

	if err := h.auth.RevokeSession(c.Request.Context(), principal.Account, sessionID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session revoked"})
}

// pagination reads limit/offset query params with sane bounds
func pagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
