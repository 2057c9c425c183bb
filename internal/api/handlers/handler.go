package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sendwatch/mailauth/internal/dnspreview"
	"github.com/sendwatch/mailauth/internal/gateway"
	"github.com/sendwatch/mailauth/internal/metrics"
	"github.com/sendwatch/mailauth/internal/storage/postgres"
	"github.com/sendwatch/mailauth/internal/storage/redis"
)

type Handler struct {
	gateway     *gateway.Client
	db          *postgres.DB
	cache       *redis.Client
	previewer   *dnspreview.Previewer
	metrics     *metrics.Collector
	logger      *zap.Logger
	antiSpamTTL time.Duration
}

func NewHandler(
	gw *gateway.Client,
	db *postgres.DB,
	cache *redis.Client,
	previewer *dnspreview.Previewer,
	collector *metrics.Collector,
	logger *zap.Logger,
	antiSpamTTL time.Duration,
) *Handler {
	return &Handler{
		gateway:     gw,
		db:          db,
		cache:       cache,
		previewer:   previewer,
		metrics:     collector,
		logger:      logger,
		antiSpamTTL: antiSpamTTL,
	}
}

func (h *Handler) user(c *gin.Context) *gateway.UserClient {
	return h.gateway.ForUser(c.GetString("user_email"))
}

// fail maps gateway errors onto specific HTTP statuses so the UI can show a
// targeted message instead of a generic one. Prior client state is left
// intact; nothing is applied optimistically.
func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, gateway.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, gateway.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, gateway.ErrTimeout):
		status = http.StatusGatewayTimeout
	}

	message := fallback
	var statusErr *gateway.StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		message = statusErr.Message
	}

	c.JSON(status, gin.H{"error": message})
}

// recordActivity appends to the activity feed, best effort. A failed write
// never blocks the user's action.
func (h *Handler) recordActivity(c *gin.Context, action string, domainID *uuid.UUID, detail string) {
	if h.db == nil {
		return
	}

	entry := &postgres.ActivityEntry{
		UserEmail: c.GetString("user_email"),
		DomainID:  domainID,
		Action:    action,
		Detail:    detail,
	}

	if err := h.db.RecordActivity(entry); err != nil {
		h.logger.Error("Failed to record activity",
			zap.Error(err),
			zap.String("action", action),
		)
	}
}
