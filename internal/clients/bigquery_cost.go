package clients

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"go.uber.org/zap"
)

const (
	// BigQuery on-demand pricing
	BytesPerTB = 1099511627776 // 1TB in bytes
	CostPerTB  = 5.00          // $5 per TB scanned
)

// QueryCostEstimator provides BigQuery query cost estimation through dry runs
type QueryCostEstimator struct {
	client *bigquery.Client
	logger *zap.Logger
}

// CostEstimate represents the estimated cost of a query
type CostEstimate struct {
	EstimatedBytes   int64     `json:"estimated_bytes"`
	EstimatedGB      float64   `json:"estimated_gb"`
	EstimatedCostUSD float64   `json:"estimated_cost_usd"`
	Warning          string    `json:"warning,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// NewQueryCostEstimator creates a new cost estimator
func NewQueryCostEstimator(client *bigquery.Client, logger *zap.Logger) *QueryCostEstimator {
	return &QueryCostEstimator{
		client: client,
		logger: logger,
	}
}

// EstimateQueryCost estimates the cost of a BigQuery query without running it
func (e *QueryCostEstimator) EstimateQueryCost(ctx context.Context, query string, defaultDataset string) (*CostEstimate, error) {
	estimate := &CostEstimate{Timestamp: time.Now()}

	q := e.client.Query(query)
	q.DefaultDatasetID = defaultDataset
	q.DryRun = true

	job, err := q.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate query: %w", err)
	}

	// Dry-run jobs complete synchronously; the status is already final.
	status := job.LastStatus()
	if status == nil {
		return nil, fmt.Errorf("dry run returned no status")
	}
	if status.Err() != nil {
		return nil, fmt.Errorf("query validation failed: %w", status.Err())
	}

	if stats := status.Statistics; stats != nil && stats.TotalBytesProcessed > 0 {
		estimate.EstimatedBytes = stats.TotalBytesProcessed
		estimate.EstimatedGB = float64(estimate.EstimatedBytes) / (1024 * 1024 * 1024)
		estimate.EstimatedCostUSD = calculateCost(estimate.EstimatedBytes)
	}

	if estimate.EstimatedBytes > BytesPerTB {
		estimate.Warning = fmt.Sprintf("Query will scan %.2f TB of data!",
			float64(estimate.EstimatedBytes)/float64(BytesPerTB))
	}

	e.logger.Info("Query cost estimated",
		zap.String("query", truncateQuery(query)),
		zap.Float64("gb_scanned", estimate.EstimatedGB),
		zap.Float64("cost_usd", estimate.EstimatedCostUSD))

	return estimate, nil
}

// WithinBudget reports whether the estimated scan stays under maxGB. A
// non-positive budget disables the check.
func (e *CostEstimate) WithinBudget(maxGB float64) bool {
	if maxGB <= 0 {
		return true
	}
	return e.EstimatedGB <= maxGB
}

// calculateCost calculates the on-demand cost based on bytes processed
func calculateCost(bytes int64) float64 {
	if bytes <= 0 {
		return 0
	}

	tb := float64(bytes) / float64(BytesPerTB)
	cost := tb * CostPerTB

	// Round to 4 decimal places for cents
	return math.Round(cost*10000) / 10000
}

// truncateQuery truncates long queries for logging
func truncateQuery(query string) string {
	query = strings.TrimSpace(query)
	if len(query) > 100 {
		return query[:97] + "..."
	}
	return query
}
