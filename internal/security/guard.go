// Package security validates the SQL that reaches the store: the table
// references spliced into query templates and the text of raw queries.
package security

import (
	"fmt"
	"strings"

	"go401-gateway/internal/clients"
	"go401-gateway/internal/config"
	"go401-gateway/internal/datasource"
)

// Guard holds the table allowlist of the gateway.
type Guard struct {
	datasetID string
	sanitizer *datasource.SQLSanitizer
}

// NewGuard allows every configured table of datasetID.
func NewGuard(datasetID string, tables config.TablesConfig) *Guard {
	g := &Guard{
		datasetID: datasetID,
		sanitizer: datasource.NewSQLSanitizer(),
	}

	names := []string{
		tables.Users, tables.UserCompanies, tables.UserPlans, tables.UserPermissions,
		tables.Permissions, tables.Companies, tables.Participants,
	}
	allowed := make([]string, 0, len(names))
	for _, name := range names {
		if name != "" {
			allowed = append(allowed, g.qualify(name))
		}
	}
	g.sanitizer.SetAllowedTables(allowed)
	return g
}

// Table returns the quoted, dataset-qualified reference of an allowed table.
func (g *Guard) Table(name string) (string, error) {
	return g.sanitizer.ValidateTableName(g.qualify(name))
}

// ValidateRawQuery accepts a single read-only statement without comments.
func (g *Guard) ValidateRawQuery(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("query is empty")
	}

	for _, pattern := range []string{"--", "/*", "*/", "#"} {
		if strings.Contains(query, pattern) {
			return fmt.Errorf("comments are not allowed: %q", pattern)
		}
	}

	if i := strings.Index(query, ";"); i >= 0 && strings.TrimSpace(query[i+1:]) != "" {
		return fmt.Errorf("multiple statements are not allowed")
	}

	if !clients.IsReadOnlySQL(query) {
		return fmt.Errorf("only read-only SELECT or WITH queries are allowed")
	}
	return nil
}

func (g *Guard) qualify(name string) string {
	if g.datasetID == "" || strings.Contains(name, ".") {
		return name
	}
	return g.datasetID + "." + name
}
