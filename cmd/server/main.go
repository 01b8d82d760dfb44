package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go401-gateway/internal/app"
	"go401-gateway/internal/config"
	"go401-gateway/internal/handlers"
	v1 "go401-gateway/internal/handlers/v1"
	custommw "go401-gateway/internal/middleware/chi"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		println("No .env file found")
	}

	logger, _ := zap.NewProduction()
	if os.Getenv("ENV") == "development" {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	cfg := config.Load()
	logger.Info("Configuration loaded",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Environment))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	gateway, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize gateway", zap.Error(err))
	}
	defer gateway.Close()

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommw.Logger(logger))
	r.Use(middleware.Recoverer)
	r.Use(custommw.MetricsCollector)

	// Health endpoints (no auth)
	r.Get("/health", handlers.Health)
	r.Get("/ready", handlers.Ready(
		map[string]handlers.Checker{"bigquery": gateway.Store},
		map[string]handlers.StatsSource{"catalog_cache": gateway.Catalog},
	))
	r.Handle("/metrics", custommw.PrometheusHandler())

	limiter := custommw.NewRateLimiter(ctx, cfg.RateLimit)
	sessionHandler := v1.NewSessionHandler(gateway.Service, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(custommw.APIKeyAuth(cfg.APIKeys))
		r.Use(limiter.Handler)
		r.Use(middleware.Timeout(cfg.Query.Timeout + 5*time.Second))

		sessionHandler.Routes(r)

		r.Get("/catalog/cache", handlers.CacheStats(gateway.Cache, gateway.Catalog))
		r.Delete("/catalog/cache", handlers.InvalidateCatalog(gateway.Catalog, logger))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Query.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
