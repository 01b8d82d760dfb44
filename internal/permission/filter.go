package permission

import (
	"fmt"
	"strings"
)

// Logical fields a scope filter can restrict on. Query templates map them to
// physical columns of their table.
const (
	FieldCompanyID        = "company_id"
	FieldPlanID           = "plan_id"
	FieldParticipantEmail = "participant_email"
)

// Op is the operator of a ScopeFilter node.
type Op string

const (
	OpAll  Op = "all"
	OpNone Op = "none"
	OpEq   Op = "eq"
	OpIn   Op = "in"
	OpAnd  Op = "and"
)

// ScopeFilter is a structured row-level restriction. It never carries SQL
// text; values are lowered to bound parameters by the query builder.
type ScopeFilter struct {
	Op      Op
	Field   string
	Values  []string
	Clauses []ScopeFilter
}

// All matches every row.
func All() ScopeFilter { return ScopeFilter{Op: OpAll} }

// None matches no row.
func None() ScopeFilter { return ScopeFilter{Op: OpNone} }

// Eq restricts field to a single value.
func Eq(field, value string) ScopeFilter {
	return ScopeFilter{Op: OpEq, Field: field, Values: []string{value}}
}

// In restricts field to a value set. An empty set matches nothing.
func In(field string, values []string) ScopeFilter {
	if len(values) == 0 {
		return None()
	}
	v := make([]string, len(values))
	copy(v, values)
	return ScopeFilter{Op: OpIn, Field: field, Values: v}
}

// And conjoins filters. All is the identity element and None absorbs.
func And(filters ...ScopeFilter) ScopeFilter {
	var clauses []ScopeFilter
	for _, f := range filters {
		switch f.Op {
		case OpAll:
			continue
		case OpNone:
			return None()
		case OpAnd:
			clauses = append(clauses, f.Clauses...)
		default:
			clauses = append(clauses, f)
		}
	}

	switch len(clauses) {
	case 0:
		return All()
	case 1:
		return clauses[0]
	default:
		return ScopeFilter{Op: OpAnd, Clauses: clauses}
	}
}

// Unrestricted reports whether f matches every row.
func (f ScopeFilter) Unrestricted() bool {
	return f.Op == OpAll
}

// MatchesNothing reports whether f can never match a row.
func (f ScopeFilter) MatchesNothing() bool {
	return f.Op == OpNone
}

// Includes reports whether f restricts field with value among its allowed
// values, either directly or inside a conjunction.
func (f ScopeFilter) Includes(field, value string) bool {
	switch f.Op {
	case OpEq, OpIn:
		if f.Field != field {
			return false
		}
		for _, v := range f.Values {
			if v == value {
				return true
			}
		}
	case OpAnd:
		for _, c := range f.Clauses {
			if c.Includes(field, value) {
				return true
			}
		}
	}
	return false
}

// String describes the filter for humans. It is not SQL.
func (f ScopeFilter) String() string {
	switch f.Op {
	case OpAll:
		return "unrestricted"
	case OpNone:
		return "no rows"
	case OpEq:
		return fmt.Sprintf("%s = %s", f.Field, f.Values[0])
	case OpIn:
		return fmt.Sprintf("%s in (%s)", f.Field, strings.Join(f.Values, ", "))
	case OpAnd:
		parts := make([]string, len(f.Clauses))
		for i, c := range f.Clauses {
			parts[i] = c.String()
		}
		return strings.Join(parts, " and ")
	default:
		return "no rows"
	}
}
