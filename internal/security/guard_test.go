package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go401-gateway/internal/config"
)

func testGuard() *Guard {
	return NewGuard("dev_dataset", config.TablesConfig{
		Companies:    "go401_dev_companies_company",
		Participants: "go401_dev_participants_participant",
	})
}

func TestGuard_Table(t *testing.T) {
	g := testGuard()

	ref, err := g.Table("go401_dev_companies_company")
	require.NoError(t, err)
	assert.Equal(t, "`dev_dataset.go401_dev_companies_company`", ref)

	_, err = g.Table("secrets")
	assert.Error(t, err)
}

func TestGuard_ValidateRawQuery(t *testing.T) {
	g := testGuard()

	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{"select", "SELECT id, name FROM companies", false},
		{"with", "WITH x AS (SELECT 1) SELECT * FROM x", false},
		{"trailing semicolon", "SELECT 1;", false},
		{"column named updated_at", "SELECT updated_at FROM t", false},
		{"empty", "   ", true},
		{"delete", "DELETE FROM companies WHERE TRUE", true},
		{"stacked statement", "SELECT 1; DROP TABLE companies", true},
		{"line comment", "SELECT 1 -- hidden", true},
		{"block comment", "SELECT /* x */ 1", true},
		{"not a select", "EXPORT DATA OPTIONS() AS SELECT 1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ValidateRawQuery(tt.query)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
