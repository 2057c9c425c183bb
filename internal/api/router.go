package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sendwatch/mailauth/internal/api/handlers"
	"github.com/sendwatch/mailauth/internal/api/middleware"
	"github.com/sendwatch/mailauth/internal/config"
	"github.com/sendwatch/mailauth/internal/dnspreview"
	"github.com/sendwatch/mailauth/internal/gateway"
	"github.com/sendwatch/mailauth/internal/metrics"
	"github.com/sendwatch/mailauth/internal/storage/postgres"
	"github.com/sendwatch/mailauth/internal/storage/redis"
)

type Server struct {
	Config *config.Config
	Router *gin.Engine
}

func NewServer(
	cfg *config.Config,
	gw *gateway.Client,
	db *postgres.DB,
	cache *redis.Client,
	previewer *dnspreview.Previewer,
	collector *metrics.Collector,
	logger *zap.Logger,
) *Server {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	router.Use(middleware.Logger(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	server := &Server{
		Config: cfg,
		Router: router,
	}

	handler := handlers.NewHandler(gw, db, cache, previewer, collector, logger, cfg.Redis.AntiSpamTTL)
	server.setupRoutes(handler)

	return server
}

func (s *Server) setupRoutes(h *handlers.Handler) {
	s.Router.GET("/health", handlers.HealthCheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.Router.Group("/api/v1")
	api.Use(middleware.AuthRequired(s.Config.Auth.JWTSecret))

	// Domain routes
	{
		api.GET("/domains", h.ListDomains)
		api.POST("/domains", h.CreateDomain)
		api.PUT("/domains/:id", h.UpdateDomain)
		api.DELETE("/domains/:id", h.DeleteDomain)
		api.POST("/domains/:id/check-auth", h.CheckAuth)
		api.POST("/domains/:id/check-now", h.CheckNow)
		api.POST("/domains/check-all", h.CheckAllDomains)
		api.POST("/domains/:id/generate-dkim", h.GenerateDKIM)
		api.GET("/domains/:id/configuration", h.GetConfiguration)
		api.GET("/domains/:id/alerts", h.ListAlerts)
		api.POST("/domains/:id/alerts/:alert_id/resolve", h.ResolveAlert)
		api.GET("/domains/:id/dns-preview", h.DNSPreview)
	}

	// Anti-spam snapshot (read-only subsystem)
	api.GET("/antispam/dashboard", h.AntiSpamDashboard)

	// Dashboard activity feed
	api.GET("/activity", h.ListActivity)
}
