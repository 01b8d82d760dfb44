package secure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go401-gateway/internal/apperr"
	"go401-gateway/internal/datasource"
	"go401-gateway/internal/permission"
)

func TestLowerScope(t *testing.T) {
	tests := []struct {
		name       string
		filter     permission.ScopeFilter
		columns    columnMap
		wantClause string
		wantParams []datasource.Param
	}{
		{
			name:       "unrestricted",
			filter:     permission.All(),
			columns:    companyColumns,
			wantClause: "TRUE",
		},
		{
			name:       "match nothing",
			filter:     permission.None(),
			columns:    companyColumns,
			wantClause: "FALSE",
		},
		{
			name:       "equality maps the logical field",
			filter:     permission.Eq(permission.FieldParticipantEmail, "a@x.com"),
			columns:    participantColumns,
			wantClause: "LOWER(email) = @scope_0",
			wantParams: []datasource.Param{{Name: "scope_0", Value: "a@x.com"}},
		},
		{
			name:       "email compares case-insensitively",
			filter:     permission.Eq(permission.FieldParticipantEmail, "Alice@X.com"),
			columns:    participantColumns,
			wantClause: "LOWER(email) = @scope_0",
			wantParams: []datasource.Param{{Name: "scope_0", Value: "alice@x.com"}},
		},
		{
			name:       "set membership",
			filter:     permission.In(permission.FieldCompanyID, []string{"C1", "C2"}),
			columns:    companyColumns,
			wantClause: "company_id IN UNNEST(@scope_0)",
			wantParams: []datasource.Param{{Name: "scope_0", Value: []string{"C1", "C2"}}},
		},
		{
			name: "conjunction numbers parameters in order",
			filter: permission.And(
				permission.In(permission.FieldPlanID, []string{"P1"}),
				permission.Eq(permission.FieldCompanyID, "C1"),
			),
			columns:    participantColumns,
			wantClause: "(plan_id IN UNNEST(@scope_0)) AND (company_id = @scope_1)",
			wantParams: []datasource.Param{
				{Name: "scope_0", Value: []string{"P1"}},
				{Name: "scope_1", Value: "C1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, params, err := lowerScope(tt.filter, tt.columns)
			require.NoError(t, err)
			assert.Equal(t, tt.wantClause, clause)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestLowerScope_NeverEmbedsValues(t *testing.T) {
	hostile := "x' OR '1'='1"
	filter := permission.And(
		permission.Eq(permission.FieldParticipantEmail, hostile),
		permission.In(permission.FieldCompanyID, []string{hostile}),
	)

	clause, params, err := lowerScope(filter, participantColumns)
	require.NoError(t, err)
	assert.NotContains(t, clause, "'")
	assert.NotContains(t, clause, "OR")
	assert.Len(t, params, 2)
}

func TestLowerScope_UnmappedFieldFailsClosed(t *testing.T) {
	_, _, err := lowerScope(permission.Eq(permission.FieldParticipantEmail, "a@x.com"), companyColumns)
	assert.Equal(t, apperr.KindInvalidFilter, apperr.KindOf(err))

	_, _, err = lowerScope(permission.ScopeFilter{Op: "or"}, companyColumns)
	assert.Equal(t, apperr.KindInvalidFilter, apperr.KindOf(err))
}
