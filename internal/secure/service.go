// Package secure implements the operations an orchestrator calls on behalf of
// a session. Every data operation resolves the session identity, checks the
// capability and role rules, and scopes its statement with the identity's
// visibility predicate before anything reaches the store.
package secure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go401-gateway/internal/apperr"
	"go401-gateway/internal/auth"
	"go401-gateway/internal/clients"
	"go401-gateway/internal/config"
	"go401-gateway/internal/datasource"
	"go401-gateway/internal/identity"
	"go401-gateway/internal/metrics"
	"go401-gateway/internal/permission"
	"go401-gateway/internal/security"
	"go401-gateway/internal/session"
)

const (
	defaultListLimit      = 50
	defaultRawQueryLimit  = 50
	defaultDatasetPreview = 10
	defaultSearchLimit    = 20
)

// CostEstimator dry-runs a raw query. A nil estimator skips the budget check.
type CostEstimator interface {
	EstimateQueryCost(ctx context.Context, query string, defaultDataset string) (*clients.CostEstimate, error)
}

// Deps are the collaborators of a Service.
type Deps struct {
	Authenticator *auth.Authenticator
	Sessions      session.Store
	Store         datasource.Store
	Catalog       datasource.Catalog
	Cost          CostEstimator
}

// Options tune the bounded outputs of a Service.
type Options struct {
	DatasetID      string
	Tables         config.TablesConfig
	ListLimit      int
	RawQueryLimit  int
	RawQueryMaxGB  float64
	DatasetPreview int
	SearchLimit    int
}

// OptionsFromConfig derives Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DatasetID:     cfg.BigQuery.DatasetID,
		Tables:        cfg.Tables,
		ListLimit:     cfg.Query.ListLimit,
		RawQueryMaxGB: cfg.Query.RawQueryMaxGB,
	}
}

// Service is safe for concurrent use; all per-caller state lives in the
// session store.
type Service struct {
	authn    *auth.Authenticator
	sessions session.Store
	store    datasource.Store
	catalog  datasource.Catalog
	cost     CostEstimator
	guard    *security.Guard
	opts     Options

	companiesTable    string
	participantsTable string

	logger *zap.Logger
}

// NewService wires a Service and resolves its table references.
func NewService(deps Deps, opts Options, logger *zap.Logger) (*Service, error) {
	if deps.Authenticator == nil || deps.Sessions == nil || deps.Store == nil {
		return nil, fmt.Errorf("authenticator, sessions and store are required")
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = defaultListLimit
	}
	if opts.RawQueryLimit <= 0 {
		opts.RawQueryLimit = defaultRawQueryLimit
	}
	if opts.DatasetPreview <= 0 {
		opts.DatasetPreview = defaultDatasetPreview
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = defaultSearchLimit
	}

	guard := security.NewGuard(opts.DatasetID, opts.Tables)
	companies, err := guard.Table(opts.Tables.Companies)
	if err != nil {
		return nil, fmt.Errorf("failed to configure companies table: %w", err)
	}
	participants, err := guard.Table(opts.Tables.Participants)
	if err != nil {
		return nil, fmt.Errorf("failed to configure participants table: %w", err)
	}

	return &Service{
		authn:             deps.Authenticator,
		sessions:          deps.Sessions,
		store:             deps.Store,
		catalog:           deps.Catalog,
		cost:              deps.Cost,
		guard:             guard,
		opts:              opts,
		companiesTable:    companies,
		participantsTable: participants,
		logger:            logger,
	}, nil
}

// Authenticate logs the session in as email.
func (s *Service) Authenticate(ctx context.Context, sessionID, email string) (id identity.Identity, err error) {
	defer s.observe("authenticate", time.Now(), &err)
	return s.authn.Authenticate(ctx, sessionID, email)
}

// Logout forgets the session identity.
func (s *Service) Logout(ctx context.Context, sessionID string) (err error) {
	defer s.observe("logout", time.Now(), &err)
	return s.authn.Logout(ctx, sessionID)
}

// PermissionSummary describes what the session identity may see.
type PermissionSummary struct {
	Identity identity.Identity
	Scope    permission.ScopeFilter
}

// CheckPermissions reports the session identity and its effective scope.
func (s *Service) CheckPermissions(ctx context.Context, sessionID string) (summary *PermissionSummary, err error) {
	defer s.observe("check_permissions", time.Now(), &err)

	id, err := s.current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &PermissionSummary{Identity: id, Scope: permission.VisibilityPredicate(id)}, nil
}

// current loads the identity bound to sessionID.
func (s *Service) current(ctx context.Context, sessionID string) (identity.Identity, error) {
	id, ok, err := s.sessions.Get(ctx, sessionID)
	switch {
	case errors.Is(err, session.ErrInvalidSession):
		return identity.Identity{}, apperr.ErrNotAuthenticated
	case err != nil:
		return identity.Identity{}, apperr.Backend(err)
	case !ok:
		return identity.Identity{}, apperr.ErrNotAuthenticated
	}
	return id, nil
}

// authorize loads the identity and checks a capability.
func (s *Service) authorize(ctx context.Context, sessionID, capability string) (identity.Identity, error) {
	id, err := s.current(ctx, sessionID)
	if err != nil {
		return identity.Identity{}, err
	}
	if err := permission.RequireCapability(id, capability); err != nil {
		s.logger.Info("Permission denied",
			zap.String("session_id", sessionID),
			zap.String("role", string(id.Role())),
			zap.String("capability", capability))
		return identity.Identity{}, err
	}
	return id, nil
}

func (s *Service) observe(operation string, start time.Time, errp *error) {
	outcome := "ok"
	if errp != nil && *errp != nil {
		outcome = string(apperr.KindOf(*errp))
	}
	metrics.RecordOperation(operation, outcome, time.Since(start).Seconds())
}
