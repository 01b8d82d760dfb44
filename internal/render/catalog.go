package render

import (
	"fmt"
	"strings"

	"go401-gateway/internal/datasource"
	"go401-gateway/internal/secure"
)

// Datasets lists datasets with their basic metadata.
func Datasets(datasets []datasource.DatasetInfo) string {
	if len(datasets) == 0 {
		return "No datasets found in your project."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available Datasets (%d):\n\n", len(datasets))
	for _, ds := range datasets {
		fmt.Fprintf(&b, "• %s\n", ds.ID)
		fmt.Fprintf(&b, "  Description: %s\n", orDefault(ds.Description, "No description"))
		fmt.Fprintf(&b, "  Location: %s\n", ds.Location)
		fmt.Fprintf(&b, "  Created: %s\n\n", ds.Created.Format("2006-01-02 15:04:05"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// DatasetSummary describes a dataset and previews its tables.
func DatasetSummary(s *secure.DatasetSummary) string {
	var b strings.Builder
	id, description := "", ""
	if s.Dataset != nil {
		id, description = s.Dataset.ID, s.Dataset.Description
	}
	fmt.Fprintf(&b, "Dataset: %s\n", id)
	fmt.Fprintf(&b, "Description: %s\n", orDefault(description, "No description"))
	fmt.Fprintf(&b, "Total Tables: %d\n\n", s.TableCount)

	if s.Remaining > 0 {
		fmt.Fprintf(&b, "Showing first %d tables (search to find specific tables):\n\n", len(s.Tables))
	} else {
		b.WriteString("Tables:\n\n")
	}
	for _, t := range s.Tables {
		writeTableLine(&b, t)
	}
	if s.Remaining > 0 {
		fmt.Fprintf(&b, "... and %d more tables", s.Remaining)
	}
	return strings.TrimRight(b.String(), "\n")
}

// TableSchema lists the fields of a table.
func TableSchema(t *datasource.TableInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s.%s\n", t.DatasetID, t.ID)
	fmt.Fprintf(&b, "Rows: %d\n", t.NumRows)
	fmt.Fprintf(&b, "Columns: %d\n\n", len(t.Fields))
	b.WriteString("Schema:\n")
	for _, f := range t.Fields {
		fmt.Fprintf(&b, "• %s (%s)", f.Name, f.Type)
		if f.Mode != "" && f.Mode != "NULLABLE" {
			fmt.Fprintf(&b, " [%s]", f.Mode)
		}
		if f.Description != "" {
			fmt.Fprintf(&b, " - %s", f.Description)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// Search lists the tables matching a search term.
func Search(r *secure.SearchResult) string {
	if len(r.Matches) == 0 {
		return fmt.Sprintf("No tables found containing '%s' in dataset %s.", r.Term, r.DatasetID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d tables containing '%s' in %s:\n\n", len(r.Matches), r.Term, r.DatasetID)
	for _, m := range r.Matches {
		fmt.Fprintf(&b, "• %s\n", m)
	}
	if r.Truncated {
		fmt.Fprintf(&b, "\n... and potentially more tables (showing first %d matches)", len(r.Matches))
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeTableLine(b *strings.Builder, t *datasource.TableInfo) {
	fmt.Fprintf(b, "• %s\n", t.ID)
	fmt.Fprintf(b, "  Rows: %d\n", t.NumRows)
	fmt.Fprintf(b, "  Columns: %d\n", len(t.Fields))
	fmt.Fprintf(b, "  Size: %.2f MB\n\n", float64(t.NumBytes)/(1024*1024))
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
