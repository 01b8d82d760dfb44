package cache

import (
	"context"
	"path"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps entries in process for single-replica deployments.
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates an in-process cache with a default ttl
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryCache{items: gocache.New(ttl, 2*ttl)}
}

// Get retrieves cached data
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	return v.([]byte), true, nil
}

// Set stores data in cache
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	m.items.Set(key, value, ttl)
	return nil
}

// Invalidate matches keys with path.Match, which shares Redis' glob syntax
// for the patterns used here.
func (m *MemoryCache) Invalidate(_ context.Context, pattern string) error {
	for key := range m.items.Items() {
		if ok, _ := path.Match(pattern, key); ok {
			m.items.Delete(key)
		}
	}
	return nil
}

// Stats returns cache statistics
func (m *MemoryCache) Stats(context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{
		"connected": true,
		"type":      "memory",
		"items":     m.items.ItemCount(),
	}, nil
}

// Close is a no-op for the in-process cache
func (m *MemoryCache) Close() error {
	m.items.Flush()
	return nil
}
