package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nestling-app/nestling-server/src/models"
	"github.com/nestling-app/nestling-server/src/services"
)

// AuditHandler exposes the audit log to operators holding audit.view
type AuditHandler struct {
	audit *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit *services.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// HandleQuery handles GET /admin/audit. Filters are query parameters:
// actor_id, action, severity, since, until (RFC 3339), limit, offset.
func (h *AuditHandler) HandleQuery(c *gin.Context) {
	var query models.AuditQuery

	if raw := c.Query("actor_id"); raw != "" {
		actorID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "actor_id must be a UUID",
			})
			return
		}
		query.ActorID = &actorID
	}
	query.Action = c.Query("action")
	query.Severity = c.Query("severity")

	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "since must be an RFC 3339 timestamp",
			})
			return
		}
		query.Since = &since
	}
	if raw := c.Query("until"); raw != "" {
		until, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "until must be an RFC 3339 timestamp",
			})
			return
		}
		query.Until = &until
	}

	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			query.Limit = limit
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset >= 0 {
			query.Offset = offset
		}
	}

	records, err := h.audit.Query(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}
