package cache

import (
	"context"
	"time"
)

// Cache stores encoded catalog entries.
type Cache interface {
	// Get returns the stored bytes and whether the key was present
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with ttl; a zero ttl uses the cache default
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate removes all keys matching a glob pattern
	Invalidate(ctx context.Context, pattern string) error

	// Stats returns cache statistics
	Stats(ctx context.Context) (map[string]interface{}, error)

	// Close closes any connections
	Close() error
}

// NoOpCache is a cache that does nothing (for when caching is disabled)
type NoOpCache struct{}

// Get always misses
func (n *NoOpCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the value
func (n *NoOpCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

// Invalidate does nothing
func (n *NoOpCache) Invalidate(ctx context.Context, pattern string) error {
	return nil
}

// Stats reports the disabled cache
func (n *NoOpCache) Stats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{
		"connected": false,
		"type":      "noop",
	}, nil
}

// Close does nothing
func (n *NoOpCache) Close() error {
	return nil
}
