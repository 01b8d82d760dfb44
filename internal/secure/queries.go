package secure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"go401-gateway/internal/apperr"
	"go401-gateway/internal/datasource"
	"go401-gateway/internal/identity"
	"go401-gateway/internal/permission"
)

const (
	companyProjection     = "id, name, EIN, entity_type, contact_name, contact_email"
	participantProjection = "id, email, first_name, last_name, company_id, enrollment_date"
)

// CountResult is the outcome of a scoped count.
type CountResult struct {
	Count int64
	// SystemWide is set when the count was not restricted by a scope.
	SystemWide bool
	Scope      permission.ScopeFilter
}

// RowsResult is a bounded, ordered list of rows.
type RowsResult struct {
	Subject string
	Columns []string
	Rows    [][]datasource.Cell
	Limit   int
	// Truncated is set when more rows matched than Limit.
	Truncated bool
	// Remaining counts the matching rows beyond Limit, when the store reports it.
	Remaining uint64
	Scope     permission.ScopeFilter
}

// Empty reports whether no rows were visible.
func (r *RowsResult) Empty() bool {
	return r == nil || len(r.Rows) == 0
}

// CompanyCount counts the companies visible to the session.
func (s *Service) CompanyCount(ctx context.Context, sessionID string) (res *CountResult, err error) {
	defer s.observe("company_count", time.Now(), &err)

	id, err := s.companyViewer(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	scope := permission.VisibilityPredicate(id)
	res = &CountResult{SystemWide: scope.Unrestricted(), Scope: scope}
	if scope.MatchesNothing() {
		return res, nil
	}

	clause, params, err := lowerScope(scope, companyColumns)
	if err != nil {
		return nil, err
	}

	rs, err := s.run(ctx, &datasource.Statement{
		SQL:     fmt.Sprintf("SELECT COUNT(*) AS company_count FROM %s WHERE %s", s.companiesTable, clause),
		Params:  params,
		MaxRows: 1,
		Label:   "company_count",
	})
	if err != nil {
		return nil, err
	}

	if c, ok := rs.Value(0, "company_count"); ok && !c.Null {
		switch v := c.Value.(type) {
		case int64:
			res.Count = v
		case int:
			res.Count = int64(v)
		case float64:
			res.Count = int64(v)
		}
	}
	return res, nil
}

// CompanyList lists the companies visible to the session, ordered by name.
func (s *Service) CompanyList(ctx context.Context, sessionID string) (res *RowsResult, err error) {
	defer s.observe("company_list", time.Now(), &err)

	id, err := s.companyViewer(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return s.list(ctx, listQuery{
		subject:    "companies",
		table:      s.companiesTable,
		projection: companyProjection,
		orderBy:    "name",
		columns:    companyColumns,
		scope:      permission.VisibilityPredicate(id),
	})
}

// ParticipantList lists the participants visible to the session. A non-blank
// companyID narrows the list to that company, which must be in scope.
func (s *Service) ParticipantList(ctx context.Context, sessionID, companyID string) (res *RowsResult, err error) {
	defer s.observe("participant_list", time.Now(), &err)

	id, err := s.authorize(ctx, sessionID, identity.CapViewParticipants)
	if err != nil {
		return nil, err
	}

	scope := permission.VisibilityPredicate(id)
	if companyID = strings.TrimSpace(companyID); companyID != "" {
		if !permission.CanAccessCompany(id, companyID) {
			s.logger.Info("Company access denied",
				zap.String("session_id", sessionID),
				zap.String("role", string(id.Role())),
				zap.String("company_id", companyID))
			return nil, apperr.DeniedResource(string(id.Role()), identity.CapViewParticipants,
				fmt.Sprintf("company %q", companyID))
		}
		scope = permission.And(scope, permission.Eq(permission.FieldCompanyID, companyID))
	}

	return s.list(ctx, listQuery{
		subject:    "participants",
		table:      s.participantsTable,
		projection: participantProjection,
		orderBy:    "last_name, first_name",
		columns:    participantColumns,
		scope:      scope,
	})
}

// companyViewer authorizes company-level views. Participants never get them,
// whatever capabilities they hold.
func (s *Service) companyViewer(ctx context.Context, sessionID string) (identity.Identity, error) {
	id, err := s.authorize(ctx, sessionID, identity.CapViewCompanies)
	if err != nil {
		return identity.Identity{}, err
	}
	if !permission.CanViewCompanyLevel(id) {
		return identity.Identity{}, apperr.DeniedResource(string(id.Role()), identity.CapViewCompanies, "company-level data")
	}
	return id, nil
}

type listQuery struct {
	subject    string
	table      string
	projection string
	orderBy    string
	columns    columnMap
	scope      permission.ScopeFilter
}

func (s *Service) list(ctx context.Context, q listQuery) (*RowsResult, error) {
	limit := s.opts.ListLimit
	res := &RowsResult{Subject: q.subject, Limit: limit, Scope: q.scope}
	if q.scope.MatchesNothing() {
		return res, nil
	}

	clause, params, err := lowerScope(q.scope, q.columns)
	if err != nil {
		return nil, err
	}

	// One extra row tells a full page from a truncated one.
	rs, err := s.run(ctx, &datasource.Statement{
		SQL: fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s LIMIT %d",
			q.projection, q.table, clause, q.orderBy, limit+1),
		Params:  params,
		MaxRows: limit + 1,
		Label:   q.subject + "_list",
	})
	if err != nil {
		return nil, err
	}

	res.Columns = rs.Columns
	res.Rows = rs.Rows
	if len(res.Rows) > limit {
		res.Rows = res.Rows[:limit]
		res.Truncated = true
	}
	return res, nil
}

func (s *Service) run(ctx context.Context, stmt *datasource.Statement) (*datasource.ResultSet, error) {
	s.logger.Debug("Executing scoped statement",
		zap.String("label", stmt.Label),
		zap.String("sql", stmt.SQL),
		zap.Int("params", len(stmt.Params)))

	rs, err := s.store.Query(ctx, stmt)
	if err != nil {
		return nil, apperr.Backend(err)
	}
	return rs, nil
}
