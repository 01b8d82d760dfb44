package datasource

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Only allow alphanumeric, underscore, dash, and dots for project.dataset.table format
	tablePattern  = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)
	columnPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// SQLSanitizer validates the identifiers that query templates splice into SQL.
// Values never pass through here; they are bound as parameters.
type SQLSanitizer struct {
	// Whitelist of allowed table names (can be loaded from config)
	allowedTables map[string]bool
}

// NewSQLSanitizer creates a new SQL sanitizer
func NewSQLSanitizer() *SQLSanitizer {
	return &SQLSanitizer{
		allowedTables: make(map[string]bool),
	}
}

// SetAllowedTables sets the whitelist of allowed table names
func (s *SQLSanitizer) SetAllowedTables(tables []string) {
	s.allowedTables = make(map[string]bool)
	for _, table := range tables {
		s.allowedTables[table] = true
	}
}

// ValidateTableName validates a table reference and returns it quoted
func (s *SQLSanitizer) ValidateTableName(table string) (string, error) {
	if len(s.allowedTables) > 0 && !s.allowedTables[table] {
		return "", fmt.Errorf("table '%s' is not in allowed list", table)
	}

	if !tablePattern.MatchString(table) || strings.Contains(table, "..") ||
		strings.HasPrefix(table, ".") || strings.HasSuffix(table, ".") {
		return "", fmt.Errorf("invalid table name format: '%s'", table)
	}

	return "`" + table + "`", nil
}

// ValidateColumnName validates a column name
func (s *SQLSanitizer) ValidateColumnName(column string) (string, error) {
	if !columnPattern.MatchString(column) {
		return "", fmt.Errorf("invalid column name: '%s'", column)
	}
	return column, nil
}

// ValidateParamName validates a query parameter name
func (s *SQLSanitizer) ValidateParamName(name string) error {
	if !columnPattern.MatchString(name) {
		return fmt.Errorf("invalid parameter name: '%s'", name)
	}
	return nil
}
