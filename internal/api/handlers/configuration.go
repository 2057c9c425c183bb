package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sendwatch/mailauth/internal/storage/postgres"
)

// GetConfiguration returns the backend's DNS records and its server-computed
// recommendations. These are presented as-is next to the locally derived
// ones; the two sources are not reconciled.
func (h *Handler) GetConfiguration(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid domain id"})
		return
	}

	cfg, err := h.user(c).GetConfiguration(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to load configuration")
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// GenerateDKIM rotates or creates the key pair for the selector. The returned
// DNS record is authoritative and replaces anything shown before.
func (h *Handler) GenerateDKIM(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid domain id"})
		return
	}

	selector := c.Query("selector")

	result, err := h.user(c).GenerateDKIMKeys(c.Request.Context(), id, selector)
	if err != nil {
		h.fail(c, err, "Failed to generate DKIM keys")
		return
	}

	h.recordActivity(c, postgres.ActionGenerateDKIM, &id, result.Selector)

	c.JSON(http.StatusOK, result)
}
