package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sendwatch/mailauth/internal/api"
	"github.com/sendwatch/mailauth/internal/config"
	"github.com/sendwatch/mailauth/internal/dnspreview"
	"github.com/sendwatch/mailauth/internal/gateway"
	"github.com/sendwatch/mailauth/internal/metrics"
	"github.com/sendwatch/mailauth/internal/storage/postgres"
	"github.com/sendwatch/mailauth/internal/storage/redis"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := newLogger(cfg.Server.Mode)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	if cfg.Backend.URL == "" {
		logger.Fatal("Backend URL not configured")
	}

	// Activity log storage, optional
	var db *postgres.DB
	if cfg.Database.URL != "" {
		db, err = postgres.NewConnection(cfg.Database.URL, cfg.Database.MaxConnections, cfg.Database.MaxIdleConns)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := db.Migrate(cfg.Database.MigrationsPath); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	} else {
		logger.Warn("No database configured, activity feed disabled")
	}

	// Anti-spam snapshot cache, optional
	var cache *redis.Client
	if cfg.Redis.URL != "" {
		cache = redis.NewClient(cfg.Redis.URL)
		defer cache.Close()
	} else {
		logger.Warn("No redis configured, anti-spam snapshot caching disabled")
	}

	collector := metrics.NewCollector()

	gw := gateway.NewClient(gateway.Config{
		BaseURL:           cfg.Backend.URL,
		Timeout:           cfg.Backend.Timeout,
		CheckNowTimeout:   cfg.Backend.CheckNowTimeout,
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
		Burst:             cfg.Backend.Burst,
	}, logger, collector)

	previewer := dnspreview.NewPreviewer(dnspreview.Config{
		Nameserver: cfg.DNS.Nameserver,
		Timeout:    cfg.DNS.Timeout,
	}, logger, collector)

	server := api.NewServer(cfg, gw, db, cache, previewer, collector, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.Router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Dashboard API started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
