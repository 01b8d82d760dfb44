package secure

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go401-gateway/internal/apperr"
	"go401-gateway/internal/datasource"
	"go401-gateway/internal/identity"
	"go401-gateway/internal/permission"
)

// RawQuery runs caller-written SQL. It bypasses row scoping, so only super
// admins may use it, and only for read-only statements.
func (s *Service) RawQuery(ctx context.Context, sessionID, query string) (res *RowsResult, err error) {
	defer s.observe("raw_query", time.Now(), &err)

	id, err := s.current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !id.IsSuperAdmin() {
		s.logger.Warn("Raw query refused",
			zap.String("session_id", sessionID),
			zap.String("email", id.Email()),
			zap.String("role", string(id.Role())))
		return nil, apperr.DeniedResource(string(id.Role()), identity.CapRunQueries, "raw queries")
	}
	if err := s.guard.ValidateRawQuery(query); err != nil {
		return nil, apperr.InvalidFilter("%v", err)
	}

	if s.cost != nil && s.opts.RawQueryMaxGB > 0 {
		estimate, err := s.cost.EstimateQueryCost(ctx, query, s.opts.DatasetID)
		if err != nil {
			return nil, apperr.Backend(err)
		}
		if !estimate.WithinBudget(s.opts.RawQueryMaxGB) {
			return nil, apperr.InvalidFilter("query would scan %.2f GB, the limit is %.2f GB",
				estimate.EstimatedGB, s.opts.RawQueryMaxGB)
		}
	}

	limit := s.opts.RawQueryLimit
	rs, err := s.run(ctx, &datasource.Statement{
		SQL:     query,
		MaxRows: limit,
		Label:   "raw_query",
	})
	if err != nil {
		return nil, err
	}

	res = &RowsResult{
		Subject: "rows",
		Columns: rs.Columns,
		Rows:    rs.Rows,
		Limit:   limit,
		Scope:   permission.All(),
	}
	if shown := uint64(len(rs.Rows)); rs.TotalRows > shown {
		res.Truncated = true
		res.Remaining = rs.TotalRows - shown
	}

	s.logger.Info("Raw query executed",
		zap.String("session_id", sessionID),
		zap.String("email", id.Email()),
		zap.Int("rows", len(res.Rows)),
		zap.Uint64("total_rows", rs.TotalRows))
	return res, nil
}
