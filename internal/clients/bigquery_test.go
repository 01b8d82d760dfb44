package clients

import (
	"strings"
	"testing"

	"cloud.google.com/go/bigquery"
	"github.com/stretchr/testify/assert"
)

func TestIsReadOnlySQL(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want bool
	}{
		{name: "select", sql: "SELECT id FROM companies", want: true},
		{name: "lowercase with", sql: "  with t as (select 1) select * from t", want: true},
		{name: "column containing keyword", sql: "SELECT created_at, updated_by FROM companies", want: true},
		{name: "delete", sql: "DELETE FROM companies WHERE 1=1", want: false},
		{name: "select then drop", sql: "SELECT 1; DROP TABLE companies", want: false},
		{name: "insert select", sql: "INSERT INTO t SELECT * FROM companies", want: false},
		{name: "merge", sql: "MERGE t USING s ON TRUE", want: false},
		{name: "empty", sql: "", want: false},
		{name: "show", sql: "SHOW TABLES", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsReadOnlySQL(tt.sql))
		})
	}
}

func TestConvertBigQueryValue(t *testing.T) {
	in := []bigquery.Value{"C1", nil, map[string]bigquery.Value{"k": int64(1)}}
	got := convertBigQueryValue(in)

	assert.Equal(t, []interface{}{"C1", nil, map[string]interface{}{"k": int64(1)}}, got)
	assert.Equal(t, "plain", convertBigQueryValue("plain"))
}

func TestCalculateCost(t *testing.T) {
	assert.Equal(t, float64(0), calculateCost(0))
	assert.Equal(t, CostPerTB, calculateCost(BytesPerTB))
	assert.Equal(t, 2.5, calculateCost(BytesPerTB/2))
}

func TestCostEstimateWithinBudget(t *testing.T) {
	e := &CostEstimate{EstimatedGB: 12}
	assert.True(t, e.WithinBudget(0))
	assert.True(t, e.WithinBudget(12))
	assert.False(t, e.WithinBudget(10))
}

func TestTruncateQuery(t *testing.T) {
	long := strings.Repeat("a", 150)
	assert.Len(t, truncateQuery(long), 100)
	assert.Equal(t, "SELECT 1", truncateQuery("  SELECT 1  "))
}
