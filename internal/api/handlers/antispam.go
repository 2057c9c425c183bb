package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sendwatch/mailauth/internal/core"
)

// AntiSpamDashboard serves the limits/reputation snapshot. The raw backend
// payload is cached briefly per user; a cache failure falls through to a
// fresh fetch.
func (h *Handler) AntiSpamDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	email := c.GetString("user_email")

	if h.cache != nil {
		var cached core.AntiSpamDashboard
		if err := h.cache.GetCachedAntiSpamDashboard(ctx, email, &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	dashboard, err := h.user(c).GetAntiSpamDashboard(ctx)
	if err != nil {
		h.fail(c, err, "Failed to load anti-spam dashboard")
		return
	}

	if h.cache != nil {
		if err := h.cache.CacheAntiSpamDashboard(ctx, email, dashboard, h.antiSpamTTL); err != nil {
			h.logger.Debug("Failed to cache anti-spam snapshot", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, dashboard)
}
