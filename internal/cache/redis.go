package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"go401-gateway/internal/config"
)

// RedisCache implements caching using Redis
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(cfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis connection failed, caching disabled", zap.Error(err))
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis cache initialized",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port))

	return NewRedisCacheWithClient(client, ttl, logger), nil
}

// NewRedisCacheWithClient wraps an existing client
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, logger: logger, ttl: ttl}
}

// Get retrieves cached data
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		r.logger.Warn("Redis get error", zap.String("key", key), zap.Error(err))
		return nil, false, err
	}
	return val, true, nil
}

// Set stores data in cache
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = r.ttl
	}

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Warn("Redis set error", zap.String("key", key), zap.Error(err))
		return err
	}

	r.logger.Debug("Data cached",
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return nil
}

// Invalidate removes all keys matching a pattern
func (r *RedisCache) Invalidate(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keysToDelete []string

	for iter.Next(ctx) {
		keysToDelete = append(keysToDelete, iter.Val())
	}

	if err := iter.Err(); err != nil {
		r.logger.Warn("Redis scan error", zap.String("pattern", pattern), zap.Error(err))
		return err
	}

	if len(keysToDelete) > 0 {
		if err := r.client.Del(ctx, keysToDelete...).Err(); err != nil {
			r.logger.Warn("Redis delete error", zap.Error(err))
			return err
		}
		r.logger.Info("Cache invalidated",
			zap.String("pattern", pattern),
			zap.Int("keys_deleted", len(keysToDelete)))
	}

	return nil
}

// Stats returns cache statistics
func (r *RedisCache) Stats(ctx context.Context) (map[string]interface{}, error) {
	dbSize, err := r.client.DBSize(ctx).Result()
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"connected": true,
		"type":      "redis",
		"db_size":   dbSize,
	}, nil
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	return r.client.Close()
}
