package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnd(t *testing.T) {
	company := In(FieldCompanyID, []string{"C1", "C2"})
	single := Eq(FieldCompanyID, "C1")

	tests := []struct {
		name string
		in   []ScopeFilter
		want ScopeFilter
	}{
		{name: "empty", in: nil, want: All()},
		{name: "all is identity", in: []ScopeFilter{All(), single}, want: single},
		{name: "none absorbs", in: []ScopeFilter{company, None(), single}, want: None()},
		{
			name: "conjunction",
			in:   []ScopeFilter{company, single},
			want: ScopeFilter{Op: OpAnd, Clauses: []ScopeFilter{company, single}},
		},
		{
			name: "nested conjunctions are flattened",
			in:   []ScopeFilter{And(company, single), Eq(FieldPlanID, "P1")},
			want: ScopeFilter{Op: OpAnd, Clauses: []ScopeFilter{company, single, Eq(FieldPlanID, "P1")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, And(tt.in...))
		})
	}
}

func TestInCopiesValues(t *testing.T) {
	values := []string{"C1"}
	f := In(FieldCompanyID, values)
	values[0] = "C9"
	assert.Equal(t, []string{"C1"}, f.Values)
	assert.True(t, In(FieldCompanyID, nil).MatchesNothing())
}

func TestIncludes(t *testing.T) {
	f := And(In(FieldCompanyID, []string{"C1", "C2"}), Eq(FieldCompanyID, "C1"))

	assert.True(t, f.Includes(FieldCompanyID, "C1"))
	assert.True(t, f.Includes(FieldCompanyID, "C2"))
	assert.False(t, f.Includes(FieldCompanyID, "C3"))
	assert.False(t, f.Includes(FieldPlanID, "C1"))
	assert.False(t, All().Includes(FieldCompanyID, "C1"))
}

func TestString(t *testing.T) {
	assert.Equal(t, "unrestricted", All().String())
	assert.Equal(t, "no rows", None().String())
	assert.Equal(t, "participant_email = a@x.com", Eq(FieldParticipantEmail, "a@x.com").String())
	assert.Equal(t,
		"company_id in (C1, C2) and company_id = C1",
		And(In(FieldCompanyID, []string{"C1", "C2"}), Eq(FieldCompanyID, "C1")).String())
}
