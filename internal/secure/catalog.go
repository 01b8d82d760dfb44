package secure

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go401-gateway/internal/apperr"
	"go401-gateway/internal/datasource"
	"go401-gateway/internal/identity"
)

var catalogIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)

// DatasetSummary is a dataset with a preview of its tables.
type DatasetSummary struct {
	Dataset    *datasource.DatasetInfo
	TableCount int
	Tables     []*datasource.TableInfo
	// Remaining counts the tables left out of the preview.
	Remaining int
}

// SearchResult lists the tables of a dataset whose id contains Term.
type SearchResult struct {
	DatasetID string
	Term      string
	Matches   []string
	Truncated bool
}

// ListDatasets lists the datasets of the project.
func (s *Service) ListDatasets(ctx context.Context, sessionID string) (datasets []datasource.DatasetInfo, err error) {
	defer s.observe("list_datasets", time.Now(), &err)

	if err := s.schemaViewer(ctx, sessionID); err != nil {
		return nil, err
	}
	datasets, err = s.catalog.ListDatasets(ctx)
	if err != nil {
		return nil, apperr.Backend(err)
	}
	return datasets, nil
}

// DatasetInfo describes a dataset and the first tables it holds.
func (s *Service) DatasetInfo(ctx context.Context, sessionID, datasetID string) (res *DatasetSummary, err error) {
	defer s.observe("dataset_info", time.Now(), &err)

	if err := s.schemaViewer(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := validateCatalogID("dataset", datasetID); err != nil {
		return nil, err
	}

	ds, err := s.catalog.GetDataset(ctx, datasetID)
	if err != nil {
		return nil, apperr.Backend(err)
	}
	tables, err := s.catalog.ListTables(ctx, datasetID)
	if err != nil {
		return nil, apperr.Backend(err)
	}

	res = &DatasetSummary{Dataset: ds, TableCount: len(tables)}
	preview := tables
	if len(preview) > s.opts.DatasetPreview {
		preview = preview[:s.opts.DatasetPreview]
		res.Remaining = len(tables) - len(preview)
	}
	for _, tableID := range preview {
		t, err := s.catalog.GetTable(ctx, datasetID, tableID)
		if err != nil {
			return nil, apperr.Backend(err)
		}
		res.Tables = append(res.Tables, t)
	}
	return res, nil
}

// TableSchema describes one table.
func (s *Service) TableSchema(ctx context.Context, sessionID, datasetID, tableID string) (table *datasource.TableInfo, err error) {
	defer s.observe("table_schema", time.Now(), &err)

	if err := s.schemaViewer(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := validateCatalogID("dataset", datasetID); err != nil {
		return nil, err
	}
	if err := validateCatalogID("table", tableID); err != nil {
		return nil, err
	}

	table, err = s.catalog.GetTable(ctx, datasetID, tableID)
	if err != nil {
		return nil, apperr.Backend(err)
	}
	return table, nil
}

// SearchTables finds tables whose id contains term, ignoring case.
func (s *Service) SearchTables(ctx context.Context, sessionID, datasetID, term string) (res *SearchResult, err error) {
	defer s.observe("search_tables", time.Now(), &err)

	if err := s.schemaViewer(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := validateCatalogID("dataset", datasetID); err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperr.InvalidFilter("search term is required")
	}

	listed, err := s.catalog.ListTables(ctx, datasetID)
	if err != nil {
		return nil, apperr.Backend(err)
	}
	tables := append([]string(nil), listed...)
	sort.Strings(tables)

	res = &SearchResult{DatasetID: datasetID, Term: term}
	needle := strings.ToLower(term)
	for _, t := range tables {
		if !strings.Contains(strings.ToLower(t), needle) {
			continue
		}
		if len(res.Matches) == s.opts.SearchLimit {
			res.Truncated = true
			break
		}
		res.Matches = append(res.Matches, t)
	}
	return res, nil
}

func (s *Service) schemaViewer(ctx context.Context, sessionID string) error {
	if _, err := s.authorize(ctx, sessionID, identity.CapViewSchema); err != nil {
		return err
	}
	if s.catalog == nil {
		return apperr.Backend(fmt.Errorf("schema catalog is not configured"))
	}
	return nil
}

func validateCatalogID(kind, id string) error {
	if !catalogIDPattern.MatchString(id) {
		return apperr.InvalidFilter("invalid %s id %q", kind, id)
	}
	return nil
}
