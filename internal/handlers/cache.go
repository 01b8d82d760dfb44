package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"go401-gateway/internal/response"
)

// CacheStatsSource reports backend statistics of a cache
type CacheStatsSource interface {
	Stats(ctx context.Context) (map[string]interface{}, error)
}

// Invalidator drops cached entries
type Invalidator interface {
	InvalidateCache(ctx context.Context) error
	GetMetrics() map[string]interface{}
}

// CacheStats returns backend and hit-rate statistics of the catalog cache
func CacheStats(backend CacheStatsSource, catalog Invalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := map[string]interface{}{
			"catalog": catalog.GetMetrics(),
		}
		if backend != nil {
			if s, err := backend.Stats(r.Context()); err == nil {
				stats["cache"] = s
			}
		}
		response.Success(w, stats, nil)
	}
}

// InvalidateCatalog clears cached schema metadata so the next catalog call
// reads from the store
func InvalidateCatalog(catalog Invalidator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := catalog.InvalidateCache(r.Context()); err != nil {
			logger.Warn("Catalog cache invalidation failed", zap.Error(err))
			response.ErrorWithDetails(w, "Failed to invalidate catalog cache", err.Error(), http.StatusInternalServerError)
			return
		}
		logger.Info("Catalog cache invalidated")
		response.Success(w, map[string]string{"status": "invalidated"}, nil)
	}
}
