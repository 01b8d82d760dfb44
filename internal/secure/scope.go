package secure

import (
	"fmt"
	"strings"

	"go401-gateway/internal/apperr"
	"go401-gateway/internal/datasource"
	"go401-gateway/internal/permission"
)

// columnMap maps the logical scope fields to the physical columns of a table.
// A field missing from the map cannot be enforced on that table.
type columnMap map[string]string

var (
	companyColumns = columnMap{
		permission.FieldCompanyID: "company_id",
		permission.FieldPlanID:    "plan_id",
	}
	participantColumns = columnMap{
		permission.FieldCompanyID:        "company_id",
		permission.FieldPlanID:           "plan_id",
		permission.FieldParticipantEmail: "email",
	}

	// foldedFields compare case-insensitively: the column is lowered in SQL
	// and the bound values are lowered before binding.
	foldedFields = map[string]bool{
		permission.FieldParticipantEmail: true,
	}
)

// scopeLowerer turns a ScopeFilter into a WHERE fragment. Values only ever
// become named parameters.
type scopeLowerer struct {
	columns   columnMap
	sanitizer *datasource.SQLSanitizer
	params    []datasource.Param
}

// lowerScope returns the boolean SQL expression for f together with the
// parameters it references.
func lowerScope(f permission.ScopeFilter, columns columnMap) (string, []datasource.Param, error) {
	l := &scopeLowerer{columns: columns, sanitizer: datasource.NewSQLSanitizer()}
	clause, err := l.lower(f)
	if err != nil {
		return "", nil, err
	}
	return clause, l.params, nil
}

func (l *scopeLowerer) lower(f permission.ScopeFilter) (string, error) {
	switch f.Op {
	case permission.OpAll:
		return "TRUE", nil
	case permission.OpNone:
		return "FALSE", nil
	case permission.OpEq:
		if len(f.Values) != 1 {
			return "", apperr.InvalidFilter("equality on %s needs exactly one value", f.Field)
		}
		col, err := l.column(f.Field)
		if err != nil {
			return "", err
		}
		name, err := l.bind(l.fold(f.Field, f.Values)[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = @%s", col, name), nil
	case permission.OpIn:
		if len(f.Values) == 0 {
			return "FALSE", nil
		}
		col, err := l.column(f.Field)
		if err != nil {
			return "", err
		}
		name, err := l.bind(l.fold(f.Field, f.Values))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s IN UNNEST(@%s)", col, name), nil
	case permission.OpAnd:
		parts := make([]string, 0, len(f.Clauses))
		for _, c := range f.Clauses {
			p, err := l.lower(c)
			if err != nil {
				return "", err
			}
			parts = append(parts, "("+p+")")
		}
		if len(parts) == 0 {
			return "TRUE", nil
		}
		return strings.Join(parts, " AND "), nil
	default:
		return "", apperr.InvalidFilter("unknown filter operator %q", f.Op)
	}
}

func (l *scopeLowerer) column(field string) (string, error) {
	col, ok := l.columns[field]
	if !ok {
		return "", apperr.InvalidFilter("field %s cannot be filtered on this table", field)
	}
	if _, err := l.sanitizer.ValidateColumnName(col); err != nil {
		return "", apperr.InvalidFilter("%v", err)
	}
	if foldedFields[field] {
		col = "LOWER(" + col + ")"
	}
	return col, nil
}

// fold returns a copy of values, lowered when field compares case-insensitively.
func (l *scopeLowerer) fold(field string, values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if foldedFields[field] {
			v = strings.ToLower(v)
		}
		out[i] = v
	}
	return out
}

func (l *scopeLowerer) bind(value interface{}) (string, error) {
	name := fmt.Sprintf("scope_%d", len(l.params))
	if err := l.sanitizer.ValidateParamName(name); err != nil {
		return "", apperr.InvalidFilter("%v", err)
	}
	l.params = append(l.params, datasource.Param{Name: name, Value: value})
	return name, nil
}
