package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sendwatch/mailauth/internal/storage/postgres"
)

func (h *Handler) ListAlerts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid domain id"})
		return
	}

	alerts, err := h.user(c).GetAlerts(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to load alerts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// ResolveAlert marks an alert resolved on the backend. The next domain fetch
// reflects it in the unresolved count; nothing is updated locally.
func (h *Handler) ResolveAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid domain id"})
		return
	}
	alertID, err := uuid.Parse(c.Param("alert_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert id"})
		return
	}

	if err := h.user(c).ResolveAlert(c.Request.Context(), id, alertID); err != nil {
		h.fail(c, err, "Failed to resolve alert")
		return
	}

	h.recordActivity(c, postgres.ActionResolveAlert, &id, alertID.String())

	c.JSON(http.StatusOK, gin.H{"message": "Alert resolved"})
}
