// Package app assembles the gateway's components from configuration.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go401-gateway/internal/auth"
	"go401-gateway/internal/cache"
	"go401-gateway/internal/clients"
	"go401-gateway/internal/config"
	"go401-gateway/internal/datasource"
	"go401-gateway/internal/secure"
	"go401-gateway/internal/session"
)

// App holds the wired components and what must be closed on shutdown.
type App struct {
	Service  *secure.Service
	Store    datasource.Store
	Sessions session.Store
	Catalog  *cache.CachedCatalog
	Cache    cache.Cache

	closers []func() error
	logger  *zap.Logger
}

// New connects to BigQuery and the session backend and builds the service.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{logger: logger}

	bq, err := clients.NewBigQueryClient(ctx, cfg.BigQuery, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, bq.Close)

	store := datasource.NewBigQueryStore(bq, cfg.Query.Timeout, logger)
	a.Store = store

	sessions, err := session.NewStore(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Sessions = sessions
	if c, ok := sessions.(*session.RedisStore); ok {
		a.closers = append(a.closers, c.Close)
	}

	a.Cache = newCatalogCache(cfg, logger)
	a.closers = append(a.closers, a.Cache.Close)
	a.Catalog = cache.NewCachedCatalog(store, a.Cache, cfg.Cache.TTL, logger)

	authn, err := auth.NewAuthenticator(store, sessions, cfg.BigQuery.DatasetID, cfg.Tables, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	svc, err := secure.NewService(secure.Deps{
		Authenticator: authn,
		Sessions:      sessions,
		Store:         store,
		Catalog:       a.Catalog,
		Cost:          clients.NewQueryCostEstimator(bq.GetClient(), logger),
	}, secure.OptionsFromConfig(cfg), logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Service = svc

	logger.Info("Gateway components initialized",
		zap.String("project", cfg.BigQuery.ProjectID),
		zap.String("dataset", cfg.BigQuery.DatasetID),
		zap.String("session_backend", cfg.Session.Backend),
		zap.Duration("query_timeout", cfg.Query.Timeout))
	return a, nil
}

// Close releases every connection in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Failed to close component", zap.Error(err))
		}
	}
	a.closers = nil
}

// newCatalogCache picks Redis when configured, an in-process cache otherwise,
// and no cache at all when caching is disabled.
func newCatalogCache(cfg *config.Config, logger *zap.Logger) cache.Cache {
	if !cfg.Cache.Enabled {
		logger.Info("Catalog cache disabled")
		return &cache.NoOpCache{}
	}
	if cfg.Redis.Host == "" {
		logger.Info("Redis not configured, using in-memory catalog cache")
		return cache.NewMemoryCache(cfg.Cache.TTL)
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis, cfg.Cache.TTL, logger)
	if err != nil {
		logger.Warn("Failed to initialize Redis cache, using in-memory cache", zap.Error(err))
		return cache.NewMemoryCache(cfg.Cache.TTL)
	}
	return redisCache
}
