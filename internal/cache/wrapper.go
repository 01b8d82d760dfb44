package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go401-gateway/internal/datasource"
)

const keyPrefix = "catalog:"

// CachedCatalog wraps a schema catalog with caching. Only schema metadata is
// cached; scoped row queries never pass through here, so entries are safe to
// share between sessions.
type CachedCatalog struct {
	source  datasource.Catalog
	cache   Cache
	ttl     time.Duration
	metrics *Metrics
	logger  *zap.Logger
}

// NewCachedCatalog creates a new cached catalog
func NewCachedCatalog(source datasource.Catalog, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedCatalog {
	return &CachedCatalog{
		source:  source,
		cache:   cache,
		ttl:     ttl,
		metrics: NewMetrics(),
		logger:  logger,
	}
}

// ListDatasets lists datasets through the cache
func (c *CachedCatalog) ListDatasets(ctx context.Context) ([]datasource.DatasetInfo, error) {
	var out []datasource.DatasetInfo
	err := c.load(ctx, keyPrefix+"datasets", &out, func() (interface{}, error) {
		return c.source.ListDatasets(ctx)
	})
	return out, err
}

// GetDataset fetches dataset metadata through the cache
func (c *CachedCatalog) GetDataset(ctx context.Context, datasetID string) (*datasource.DatasetInfo, error) {
	var out *datasource.DatasetInfo
	err := c.load(ctx, fmt.Sprintf("%sdataset:%s", keyPrefix, datasetID), &out, func() (interface{}, error) {
		return c.source.GetDataset(ctx, datasetID)
	})
	return out, err
}

// ListTables lists table ids through the cache
func (c *CachedCatalog) ListTables(ctx context.Context, datasetID string) ([]string, error) {
	var out []string
	err := c.load(ctx, fmt.Sprintf("%stables:%s", keyPrefix, datasetID), &out, func() (interface{}, error) {
		return c.source.ListTables(ctx, datasetID)
	})
	return out, err
}

// GetTable fetches table metadata through the cache
func (c *CachedCatalog) GetTable(ctx context.Context, datasetID, tableID string) (*datasource.TableInfo, error) {
	var out *datasource.TableInfo
	err := c.load(ctx, fmt.Sprintf("%stable:%s.%s", keyPrefix, datasetID, tableID), &out, func() (interface{}, error) {
		return c.source.GetTable(ctx, datasetID, tableID)
	})
	return out, err
}

// GetMetrics returns cache metrics
func (c *CachedCatalog) GetMetrics() map[string]interface{} {
	return c.metrics.GetStats()
}

// InvalidateCache drops every cached catalog entry
func (c *CachedCatalog) InvalidateCache(ctx context.Context) error {
	return c.cache.Invalidate(ctx, keyPrefix+"*")
}

// load decodes key into dst, or calls fetch and caches its result. Cache
// failures degrade to a direct fetch.
func (c *CachedCatalog) load(ctx context.Context, key string, dst interface{}, fetch func() (interface{}, error)) error {
	start := time.Now()

	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		if err := json.Unmarshal(data, dst); err == nil {
			c.metrics.RecordHit(time.Since(start))
			c.logger.Debug("Cache hit", zap.String("key", key))
			return nil
		}
		c.logger.Warn("Failed to unmarshal cached data", zap.String("key", key))
	} else if err != nil {
		c.metrics.RecordError()
	}
	c.metrics.RecordMiss(time.Since(start))

	value, err := fetch()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode catalog entry: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode catalog entry: %w", err)
	}

	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.metrics.RecordError()
		c.logger.Warn("Failed to cache catalog entry", zap.String("key", key), zap.Error(err))
	} else {
		c.metrics.RecordSet()
	}
	return nil
}
