package clients

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"go401-gateway/internal/config"
)

// BigQueryClient handles connections to Google BigQuery
type BigQueryClient struct {
	client *bigquery.Client
	config config.BigQueryConfig
	logger *zap.Logger
}

// RowSet is the raw output of a query, in column order
type RowSet struct {
	Columns   []string
	Rows      [][]bigquery.Value
	TotalRows uint64
}

// NewBigQueryClient creates a new BigQuery client
func NewBigQueryClient(ctx context.Context, cfg config.BigQueryConfig, logger *zap.Logger) (*BigQueryClient, error) {
	var opts []option.ClientOption
	if cfg.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
	}

	client, err := bigquery.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client: %w", err)
	}
	if cfg.Location != "" {
		client.Location = cfg.Location
	}

	return &BigQueryClient{
		client: client,
		config: cfg,
		logger: logger,
	}, nil
}

// QueryRows executes a parameterized query and collects at most maxRows rows.
// A maxRows of zero reads the whole result.
func (c *BigQueryClient) QueryRows(ctx context.Context, sqlQuery string, params []bigquery.QueryParameter, maxRows int) (*RowSet, error) {
	q := c.client.Query(sqlQuery)
	q.DefaultProjectID = c.config.ProjectID
	q.DefaultDatasetID = c.config.DatasetID
	q.Parameters = params

	c.logger.Debug("Executing BigQuery",
		zap.String("sql", sqlQuery),
		zap.Int("params", len(params)),
		zap.String("project", c.config.ProjectID))

	start := time.Now()

	it, err := q.Read(ctx)
	if err != nil {
		c.logger.Error("Query execution failed", zap.Error(err))
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	result := &RowSet{}
	for maxRows <= 0 || len(result.Rows) < maxRows {
		var row []bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			c.logger.Error("Error reading row", zap.Error(err))
			return nil, fmt.Errorf("error reading row: %w", err)
		}

		for i, v := range row {
			row[i] = convertBigQueryValue(v)
		}
		result.Rows = append(result.Rows, row)
	}

	for _, field := range it.Schema {
		result.Columns = append(result.Columns, field.Name)
	}
	result.TotalRows = it.TotalRows

	c.logger.Info("BigQuery completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("rows", len(result.Rows)),
		zap.Uint64("total_rows", it.TotalRows))

	return result, nil
}

// ListDatasets returns the datasets of the configured project
func (c *BigQueryClient) ListDatasets(ctx context.Context) ([]*bigquery.Dataset, error) {
	var datasets []*bigquery.Dataset

	it := c.client.Datasets(ctx)
	for {
		ds, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list datasets: %w", err)
		}
		datasets = append(datasets, ds)
	}

	return datasets, nil
}

// DatasetMetadata fetches metadata for a single dataset
func (c *BigQueryClient) DatasetMetadata(ctx context.Context, datasetID string) (*bigquery.DatasetMetadata, error) {
	md, err := c.client.Dataset(datasetID).Metadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset metadata: %w", err)
	}
	return md, nil
}

// ListTables returns the table ids of a dataset, in listing order
func (c *BigQueryClient) ListTables(ctx context.Context, datasetID string) ([]string, error) {
	var tables []string

	it := c.client.Dataset(datasetID).Tables(ctx)
	for {
		t, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list tables: %w", err)
		}
		tables = append(tables, t.TableID)
	}

	return tables, nil
}

// TableMetadata fetches metadata for a single table
func (c *BigQueryClient) TableMetadata(ctx context.Context, datasetID, tableID string) (*bigquery.TableMetadata, error) {
	md, err := c.client.Dataset(datasetID).Table(tableID).Metadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get table metadata: %w", err)
	}
	return md, nil
}

// TestConnection verifies the BigQuery connection
func (c *BigQueryClient) TestConnection(ctx context.Context) error {
	query := c.client.Query("SELECT 1 as test")
	_, err := query.Read(ctx)
	return err
}

// GetClient exposes the underlying client for the cost estimator
func (c *BigQueryClient) GetClient() *bigquery.Client {
	return c.client
}

// Close closes the BigQuery client
func (c *BigQueryClient) Close() error {
	return c.client.Close()
}

// convertBigQueryValue converts BigQuery values to standard Go types
func convertBigQueryValue(v bigquery.Value) bigquery.Value {
	switch val := v.(type) {
	case []bigquery.Value:
		result := make([]interface{}, len(val))
		for i, item := range val {
			result[i] = convertBigQueryValue(item)
		}
		return result
	case map[string]bigquery.Value:
		result := make(map[string]interface{})
		for k, item := range val {
			result[k] = convertBigQueryValue(item)
		}
		return result
	default:
		return val
	}
}

// IsReadOnlySQL validates that a SQL query is read-only
func IsReadOnlySQL(sql string) bool {
	upper := strings.ToUpper(strings.TrimSpace(sql))

	forbidden := []string{"INSERT", "UPDATE", "DELETE", "DROP", "CREATE", "ALTER", "TRUNCATE", "MERGE", "GRANT", "REVOKE", "CALL", "EXECUTE"}

	for _, keyword := range forbidden {
		if containsWord(upper, keyword) {
			return false
		}
	}

	return strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "WITH")
}

// containsWord matches keyword only on identifier boundaries, so column names
// such as created_at or updated_by do not trip the check.
func containsWord(s, keyword string) bool {
	for i := 0; ; {
		idx := strings.Index(s[i:], keyword)
		if idx < 0 {
			return false
		}
		start := i + idx
		end := start + len(keyword)
		if (start == 0 || !isIdentChar(s[start-1])) && (end == len(s) || !isIdentChar(s[end])) {
			return true
		}
		i = start + 1
	}
}

func isIdentChar(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
