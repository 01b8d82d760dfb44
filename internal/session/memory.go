package session

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"go401-gateway/internal/identity"
	"go401-gateway/internal/metrics"
)

// MemoryStore keeps sessions in process. Each session owns a slot with its own
// lock; the keyed map itself is go-cache, whose janitor drops idle slots.
// mu serializes slot lookup, replacement and removal, so a read that refreshes
// expiry can never resurrect a cleared or replaced slot.
type MemoryStore struct {
	mu     sync.Mutex
	slots  *cache.Cache
	logger *zap.Logger
}

type slot struct {
	mu sync.RWMutex
	id identity.Identity
}

// NewMemoryStore creates a store whose slots expire after ttl without access.
func NewMemoryStore(ttl time.Duration, logger *zap.Logger) *MemoryStore {
	cleanup := ttl
	if cleanup < time.Second {
		cleanup = time.Second
	}
	s := &MemoryStore{
		slots:  cache.New(ttl, cleanup),
		logger: logger,
	}
	s.slots.OnEvicted(func(string, interface{}) { s.report() })
	return s
}

// Set binds id to the session, replacing any previous identity.
func (s *MemoryStore) Set(_ context.Context, sessionID string, id identity.Identity) error {
	if err := validateID(sessionID); err != nil {
		return err
	}

	s.mu.Lock()
	sl := s.slot(sessionID)
	sl.mu.Lock()
	sl.id = id
	sl.mu.Unlock()

	// Re-insert so the expiry restarts even if the slot lapsed meanwhile.
	s.slots.SetDefault(sessionID, sl)
	s.mu.Unlock()

	s.report()
	s.logger.Debug("Session identity set",
		zap.String("session_id", sessionID),
		zap.String("user_id", id.UserID()))
	return nil
}

// Get returns the session identity and restarts its idle expiry.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (identity.Identity, bool, error) {
	if err := validateID(sessionID); err != nil {
		return identity.Identity{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.slots.Get(sessionID)
	if !ok {
		return identity.Identity{}, false, nil
	}
	sl := v.(*slot)
	s.slots.SetDefault(sessionID, sl)

	sl.mu.RLock()
	defer sl.mu.RUnlock()
	if sl.id.IsZero() {
		return identity.Identity{}, false, nil
	}
	return sl.id, true, nil
}

// Clear forgets the session identity.
func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	if err := validateID(sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	s.slots.Delete(sessionID)
	s.mu.Unlock()
	s.logger.Debug("Session cleared", zap.String("session_id", sessionID))
	return nil
}

func (s *MemoryStore) report() {
	metrics.SetActiveSessions(s.slots.ItemCount())
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	return s.slots.ItemCount()
}

// slot returns the live slot for sessionID, creating it if needed. Callers
// hold s.mu.
func (s *MemoryStore) slot(sessionID string) *slot {
	fresh := &slot{}
	if err := s.slots.Add(sessionID, fresh, cache.DefaultExpiration); err == nil {
		return fresh
	}
	if v, ok := s.slots.Get(sessionID); ok {
		return v.(*slot)
	}
	// Expired between Add and Get; the caller re-inserts it.
	return fresh
}
