// Package session keeps the identity bound to each orchestrator session.
package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"go401-gateway/internal/config"
	"go401-gateway/internal/identity"
)

// ErrInvalidSession is returned for an empty session id.
var ErrInvalidSession = errors.New("invalid session id")

// Store holds at most one identity per session id. Implementations must be
// safe for concurrent use by many sessions.
type Store interface {
	// Set replaces the identity bound to sessionID.
	Set(ctx context.Context, sessionID string, id identity.Identity) error
	// Get returns the bound identity, or false when the slot is empty or expired.
	Get(ctx context.Context, sessionID string) (identity.Identity, bool, error)
	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context, sessionID string) error
}

// NewStore builds the store selected by cfg.Session.Backend.
func NewStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		store, err := NewRedisStore(ctx, cfg.Redis, cfg.Session.TTL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session store: %w", err)
		}
		return store, nil
	case config.SessionBackendMemory, "":
		return NewMemoryStore(cfg.Session.TTL, logger), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

func validateID(sessionID string) error {
	if sessionID == "" {
		return ErrInvalidSession
	}
	return nil
}

// record is the serialized form of an identity.
type record struct {
	UserID       string   `json:"user_id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	CompanyIDs   []string `json:"company_ids,omitempty"`
	PlanIDs      []string `json:"plan_ids,omitempty"`
	Permissions  []string `json:"permissions,omitempty"`
	IsSuperAdmin bool     `json:"is_super_admin"`
}

func toRecord(id identity.Identity) record {
	p := id.Params()
	return record{
		UserID:       p.UserID,
		Email:        p.Email,
		Role:         p.Role,
		CompanyIDs:   p.CompanyIDs,
		PlanIDs:      p.PlanIDs,
		Permissions:  p.Permissions,
		IsSuperAdmin: p.IsSuperAdmin,
	}
}

func (r record) identity() identity.Identity {
	return identity.New(identity.Params{
		UserID:       r.UserID,
		Email:        r.Email,
		Role:         r.Role,
		CompanyIDs:   r.CompanyIDs,
		PlanIDs:      r.PlanIDs,
		Permissions:  r.Permissions,
		IsSuperAdmin: r.IsSuperAdmin,
	})
}
