package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"go401-gateway/internal/config"
	"go401-gateway/internal/identity"
)

const keyPrefix = "session:identity:"

// RedisStore keeps one JSON value per session so several gateway replicas can
// serve the same orchestrator.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis session store initialized",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.Duration("ttl", ttl))

	return NewRedisStoreWithClient(client, ttl, logger), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

// Set stores the identity under the session key with the store TTL
func (s *RedisStore) Set(ctx context.Context, sessionID string, id identity.Identity) error {
	if err := validateID(sessionID); err != nil {
		return err
	}

	data, err := json.Marshal(toRecord(id))
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		s.logger.Warn("Redis set error", zap.String("session_id", sessionID), zap.Error(err))
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get loads the session identity and refreshes its TTL
func (s *RedisStore) Get(ctx context.Context, sessionID string) (identity.Identity, bool, error) {
	if err := validateID(sessionID); err != nil {
		return identity.Identity{}, false, err
	}

	key := keyPrefix + sessionID
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return identity.Identity{}, false, nil
	}
	if err != nil {
		s.logger.Warn("Redis get error", zap.String("session_id", sessionID), zap.Error(err))
		return identity.Identity{}, false, fmt.Errorf("failed to read session: %w", err)
	}

	var rec record
	if err := json.Unmarshal(val, &rec); err != nil {
		return identity.Identity{}, false, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		s.logger.Debug("Failed to refresh session TTL", zap.String("session_id", sessionID), zap.Error(err))
	}
	return rec.identity(), true, nil
}

// Clear deletes the session key
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := validateID(sessionID); err != nil {
		return err
	}
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
