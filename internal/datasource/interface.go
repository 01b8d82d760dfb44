package datasource

import (
	"context"
	"fmt"
	"time"
)

// DataSourceType represents the type of data source
type DataSourceType string

const (
	DataSourceBigQuery DataSourceType = "BIGQUERY"
)

// Param is a named query parameter, referenced in SQL as @Name
type Param struct {
	Name  string
	Value interface{}
}

// Statement is a SQL text plus its bound parameters. User-influenced values
// must travel in Params, never in SQL.
type Statement struct {
	SQL    string
	Params []Param
	// MaxRows caps how many rows are read back. Zero reads everything.
	MaxRows int
	// Label names the statement in logs and metrics.
	Label string
}

// Cell is one value of a result row
type Cell struct {
	Value interface{}
	Null  bool
}

// String renders the cell for text output
func (c Cell) String() string {
	if c.Null {
		return "NULL"
	}
	switch v := c.Value.(type) {
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	case []interface{}:
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprint(v)
	}
}

// ResultSet is an ordered tabular result
type ResultSet struct {
	Columns   []string
	Rows      [][]Cell
	TotalRows uint64
	Source    DataSourceType
	QueryTime time.Duration
}

// Len returns the number of rows read
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// ColumnIndex returns the position of a column, or -1
func (r *ResultSet) ColumnIndex(name string) int {
	for i, c := range r.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the cell of column name in row i
func (r *ResultSet) Value(i int, name string) (Cell, bool) {
	col := r.ColumnIndex(name)
	if col < 0 || i < 0 || i >= len(r.Rows) || col >= len(r.Rows[i]) {
		return Cell{}, false
	}
	return r.Rows[i][col], true
}

// Store executes statements against the remote tabular store
type Store interface {
	// Query executes a parameterized statement
	Query(ctx context.Context, stmt *Statement) (*ResultSet, error)

	// TestConnection verifies the data source connection
	TestConnection(ctx context.Context) error

	// GetType returns the data source type
	GetType() DataSourceType

	// Close closes any open connections
	Close() error
}

// DatasetInfo describes a dataset of the store
type DatasetInfo struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Created     time.Time `json:"created"`
}

// FieldInfo describes a table column
type FieldInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Mode        string `json:"mode"`
	Description string `json:"description,omitempty"`
}

// TableInfo describes a table
type TableInfo struct {
	DatasetID string      `json:"dataset_id"`
	ID        string      `json:"id"`
	NumRows   uint64      `json:"num_rows"`
	NumBytes  int64       `json:"num_bytes"`
	Fields    []FieldInfo `json:"fields"`
}

// Catalog exposes schema metadata of the store
type Catalog interface {
	ListDatasets(ctx context.Context) ([]DatasetInfo, error)
	GetDataset(ctx context.Context, datasetID string) (*DatasetInfo, error)
	ListTables(ctx context.Context, datasetID string) ([]string, error)
	GetTable(ctx context.Context, datasetID, tableID string) (*TableInfo, error)
}
