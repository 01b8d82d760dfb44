package datasource

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"go.uber.org/zap"

	"go401-gateway/internal/clients"
)

// bigQueryBackend is the subset of clients.BigQueryClient used by the store
type bigQueryBackend interface {
	QueryRows(ctx context.Context, sqlQuery string, params []bigquery.QueryParameter, maxRows int) (*clients.RowSet, error)
	ListDatasets(ctx context.Context) ([]*bigquery.Dataset, error)
	DatasetMetadata(ctx context.Context, datasetID string) (*bigquery.DatasetMetadata, error)
	ListTables(ctx context.Context, datasetID string) ([]string, error)
	TableMetadata(ctx context.Context, datasetID, tableID string) (*bigquery.TableMetadata, error)
	TestConnection(ctx context.Context) error
	Close() error
}

// BigQueryStore wraps the BigQueryClient to implement Store and Catalog. Every
// remote call runs under the configured timeout.
type BigQueryStore struct {
	client    bigQueryBackend
	sanitizer *SQLSanitizer
	timeout   time.Duration
	logger    *zap.Logger
}

// NewBigQueryStore creates a new BigQuery store
func NewBigQueryStore(client *clients.BigQueryClient, timeout time.Duration, logger *zap.Logger) *BigQueryStore {
	return newBigQueryStore(client, timeout, logger)
}

func newBigQueryStore(client bigQueryBackend, timeout time.Duration, logger *zap.Logger) *BigQueryStore {
	return &BigQueryStore{
		client:    client,
		sanitizer: NewSQLSanitizer(),
		timeout:   timeout,
		logger:    logger,
	}
}

// Query executes a parameterized statement (implements Store interface)
func (s *BigQueryStore) Query(ctx context.Context, stmt *Statement) (*ResultSet, error) {
	if stmt == nil || stmt.SQL == "" {
		return nil, &StoreError{Kind: ErrorSyntax, Err: fmt.Errorf("empty statement")}
	}

	params := make([]bigquery.QueryParameter, len(stmt.Params))
	for i, p := range stmt.Params {
		if err := s.sanitizer.ValidateParamName(p.Name); err != nil {
			return nil, &StoreError{Kind: ErrorSyntax, Err: err}
		}
		params[i] = bigquery.QueryParameter{Name: p.Name, Value: p.Value}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()

	rows, err := s.client.QueryRows(ctx, stmt.SQL, params, stmt.MaxRows)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		se := Classify(err)
		s.logger.Warn("Statement failed",
			zap.String("statement", stmt.Label),
			zap.String("kind", string(se.Kind)),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return nil, se
	}

	result := &ResultSet{
		Columns:   rows.Columns,
		Rows:      make([][]Cell, len(rows.Rows)),
		TotalRows: rows.TotalRows,
		Source:    DataSourceBigQuery,
		QueryTime: time.Since(start),
	}
	for i, row := range rows.Rows {
		cells := make([]Cell, len(row))
		for j, v := range row {
			cells[j] = Cell{Value: v, Null: v == nil}
		}
		result.Rows[i] = cells
	}

	return result, nil
}

// ListDatasets lists the project's datasets (implements Catalog interface)
func (s *BigQueryStore) ListDatasets(ctx context.Context) ([]DatasetInfo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	datasets, err := s.client.ListDatasets(ctx)
	if err != nil {
		return nil, Classify(err)
	}

	infos := make([]DatasetInfo, 0, len(datasets))
	for _, ds := range datasets {
		md, err := s.client.DatasetMetadata(ctx, ds.DatasetID)
		if err != nil {
			return nil, Classify(err)
		}
		infos = append(infos, datasetInfo(ds.DatasetID, md))
	}
	return infos, nil
}

// GetDataset fetches one dataset's metadata (implements Catalog interface)
func (s *BigQueryStore) GetDataset(ctx context.Context, datasetID string) (*DatasetInfo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	md, err := s.client.DatasetMetadata(ctx, datasetID)
	if err != nil {
		return nil, Classify(err)
	}
	info := datasetInfo(datasetID, md)
	return &info, nil
}

// ListTables lists table ids of a dataset (implements Catalog interface)
func (s *BigQueryStore) ListTables(ctx context.Context, datasetID string) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tables, err := s.client.ListTables(ctx, datasetID)
	if err != nil {
		return nil, Classify(err)
	}
	return tables, nil
}

// GetTable fetches one table's metadata (implements Catalog interface)
func (s *BigQueryStore) GetTable(ctx context.Context, datasetID, tableID string) (*TableInfo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	md, err := s.client.TableMetadata(ctx, datasetID, tableID)
	if err != nil {
		return nil, Classify(err)
	}

	info := &TableInfo{
		DatasetID: datasetID,
		ID:        tableID,
		NumRows:   md.NumRows,
		NumBytes:  md.NumBytes,
	}
	for _, f := range md.Schema {
		mode := "NULLABLE"
		switch {
		case f.Repeated:
			mode = "REPEATED"
		case f.Required:
			mode = "REQUIRED"
		}
		info.Fields = append(info.Fields, FieldInfo{
			Name:        f.Name,
			Type:        string(f.Type),
			Mode:        mode,
			Description: f.Description,
		})
	}
	return info, nil
}

// TestConnection tests the BigQuery connection
func (s *BigQueryStore) TestConnection(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.client.TestConnection(ctx)
}

// GetType returns the data source type
func (s *BigQueryStore) GetType() DataSourceType {
	return DataSourceBigQuery
}

// Close closes the BigQuery client
func (s *BigQueryStore) Close() error {
	return s.client.Close()
}

func (s *BigQueryStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func datasetInfo(id string, md *bigquery.DatasetMetadata) DatasetInfo {
	if md == nil {
		return DatasetInfo{ID: id}
	}
	return DatasetInfo{
		ID:          id,
		Description: md.Description,
		Location:    md.Location,
		Created:     md.CreationTime,
	}
}
