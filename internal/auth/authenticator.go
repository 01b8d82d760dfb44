// Package auth resolves an email into an Identity and binds it to a session.
package auth

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"go401-gateway/internal/apperr"
	"go401-gateway/internal/config"
	"go401-gateway/internal/datasource"
	"go401-gateway/internal/identity"
	"go401-gateway/internal/session"
)

// Authenticator looks users up in the identity tables.
type Authenticator struct {
	store    datasource.Store
	sessions session.Store
	lookup   string
	logger   *zap.Logger
}

// NewAuthenticator validates the configured table names and prepares the
// lookup statement.
func NewAuthenticator(store datasource.Store, sessions session.Store, datasetID string, tables config.TablesConfig, logger *zap.Logger) (*Authenticator, error) {
	lookup, err := buildLookupSQL(datasetID, tables)
	if err != nil {
		return nil, err
	}
	return &Authenticator{
		store:    store,
		sessions: sessions,
		lookup:   lookup,
		logger:   logger,
	}, nil
}

func buildLookupSQL(datasetID string, t config.TablesConfig) (string, error) {
	sanitizer := datasource.NewSQLSanitizer()
	ref := func(table string) (string, error) {
		if datasetID != "" {
			table = datasetID + "." + table
		}
		return sanitizer.ValidateTableName(table)
	}

	names := []string{t.Users, t.UserCompanies, t.UserPlans, t.UserPermissions, t.Permissions}
	quoted := make([]string, len(names))
	for i, name := range names {
		q, err := ref(name)
		if err != nil {
			return "", fmt.Errorf("failed to configure identity tables: %w", err)
		}
		quoted[i] = q
	}

	return fmt.Sprintf(`SELECT
    u.id AS user_id,
    u.email,
    u.role,
    u.is_super_admin,
    ARRAY_AGG(DISTINCT uc.company_id IGNORE NULLS) AS company_ids,
    ARRAY_AGG(DISTINCT up.plan_id IGNORE NULLS) AS plan_ids,
    ARRAY_AGG(DISTINCT p.permission_name IGNORE NULLS) AS permissions
FROM %s u
LEFT JOIN %s uc ON u.id = uc.user_id
LEFT JOIN %s up ON u.id = up.user_id
LEFT JOIN %s up_perm ON u.id = up_perm.user_id
LEFT JOIN %s p ON up_perm.permission_id = p.id
WHERE LOWER(u.email) = @user_email
GROUP BY u.id, u.email, u.role, u.is_super_admin`,
		quoted[0], quoted[1], quoted[2], quoted[3], quoted[4]), nil
}

// Authenticate resolves email and installs the identity into the session.
// On any failure the session keeps whatever it held before.
func (a *Authenticator) Authenticate(ctx context.Context, sessionID, email string) (identity.Identity, error) {
	if sessionID == "" {
		return identity.Identity{}, session.ErrInvalidSession
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return identity.Identity{}, apperr.InvalidFilter("email is required")
	}

	id, err := a.Lookup(ctx, email)
	if err != nil {
		return identity.Identity{}, err
	}

	if err := a.sessions.Set(ctx, sessionID, id); err != nil {
		return identity.Identity{}, apperr.Backend(fmt.Errorf("failed to store session: %w", err))
	}

	a.logger.Info("User authenticated",
		zap.String("session_id", sessionID),
		zap.String("email", id.Email()),
		zap.String("role", string(id.Role())),
		zap.Bool("super_admin", id.IsSuperAdmin()))
	return id, nil
}

// Lookup resolves email without touching any session.
func (a *Authenticator) Lookup(ctx context.Context, email string) (identity.Identity, error) {
	stmt := &datasource.Statement{
		SQL:     a.lookup,
		Params:  []datasource.Param{{Name: "user_email", Value: email}},
		MaxRows: 2,
		Label:   "identity_lookup",
	}

	rs, err := a.store.Query(ctx, stmt)
	if err != nil {
		a.logger.Warn("Identity lookup failed", zap.String("email", email), zap.Error(err))
		return identity.Identity{}, apperr.Backend(err)
	}
	if rs.Len() == 0 {
		a.logger.Info("Authentication failed, user not found", zap.String("email", email))
		return identity.Identity{}, apperr.ErrUserNotFound
	}
	if rs.Len() > 1 {
		a.logger.Warn("Multiple users share an email, using the first", zap.String("email", email))
	}

	return identityFromRow(rs, 0), nil
}

// Logout clears the session.
func (a *Authenticator) Logout(ctx context.Context, sessionID string) error {
	if err := a.sessions.Clear(ctx, sessionID); err != nil {
		return err
	}
	a.logger.Info("Session logged out", zap.String("session_id", sessionID))
	return nil
}

func identityFromRow(rs *datasource.ResultSet, i int) identity.Identity {
	return identity.New(identity.Params{
		UserID:       cellString(rs, i, "user_id"),
		Email:        cellString(rs, i, "email"),
		Role:         cellString(rs, i, "role"),
		CompanyIDs:   cellStrings(rs, i, "company_ids"),
		PlanIDs:      cellStrings(rs, i, "plan_ids"),
		Permissions:  cellStrings(rs, i, "permissions"),
		IsSuperAdmin: cellBool(rs, i, "is_super_admin"),
	})
}

func cellString(rs *datasource.ResultSet, i int, name string) string {
	c, ok := rs.Value(i, name)
	if !ok || c.Null {
		return ""
	}
	return c.String()
}

func cellBool(rs *datasource.ResultSet, i int, name string) bool {
	c, ok := rs.Value(i, name)
	if !ok || c.Null {
		return false
	}
	switch v := c.Value.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

// cellStrings flattens an ARRAY column, dropping NULL elements.
func cellStrings(rs *datasource.ResultSet, i int, name string) []string {
	c, ok := rs.Value(i, name)
	if !ok || c.Null {
		return nil
	}
	items, ok := c.Value.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, fmt.Sprint(item))
	}
	return out
}
