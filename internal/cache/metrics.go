package cache

import (
	"sync"
	"time"

	"go401-gateway/internal/metrics"
)

// Metrics tracks cache performance for the readiness report and mirrors
// lookups into the Prometheus counters.
type Metrics struct {
	mu        sync.RWMutex
	Hits      int64
	Misses    int64
	Sets      int64
	Errors    int64
	HitTime   time.Duration
	MissTime  time.Duration
	LastReset time.Time
}

// NewMetrics creates a new metrics tracker
func NewMetrics() *Metrics {
	return &Metrics{
		LastReset: time.Now(),
	}
}

// RecordHit records a cache hit
func (m *Metrics) RecordHit(duration time.Duration) {
	metrics.RecordCacheHit()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Hits++
	m.HitTime += duration
}

// RecordMiss records a cache miss
func (m *Metrics) RecordMiss(duration time.Duration) {
	metrics.RecordCacheMiss()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Misses++
	m.MissTime += duration
}

// RecordSet records a cache set operation
func (m *Metrics) RecordSet() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sets++
}

// RecordError records a cache error
func (m *Metrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// GetStats returns current statistics
func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := m.Hits + m.Misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(m.Hits) / float64(total) * 100
	}

	avgHitTime := time.Duration(0)
	if m.Hits > 0 {
		avgHitTime = m.HitTime / time.Duration(m.Hits)
	}

	avgMissTime := time.Duration(0)
	if m.Misses > 0 {
		avgMissTime = m.MissTime / time.Duration(m.Misses)
	}

	return map[string]interface{}{
		"hits":          m.Hits,
		"misses":        m.Misses,
		"sets":          m.Sets,
		"errors":        m.Errors,
		"hit_rate":      hitRate,
		"avg_hit_time":  avgHitTime.String(),
		"avg_miss_time": avgMissTime.String(),
		"uptime":        time.Since(m.LastReset).String(),
	}
}
