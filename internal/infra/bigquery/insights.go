package bigquery

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/IshpreetSingh8264/InflowBackend/internal/extract"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

// InsightRunRow is one persisted categorization run.
type InsightRunRow struct {
	RunID     string     `bigquery:"run_id"`     // REQUIRED
	UserID    string     `bigquery:"user_id"`    // REQUIRED
	Degraded  bool       `bigquery:"degraded"`   // REQUIRED
	RunDate   civil.Date `bigquery:"run_date"`   // REQUIRED, partition column
	CreatedTS time.Time  `bigquery:"created_ts"` // REQUIRED
}

// InsightBucketRow is one category bucket of a run, flat for easy querying.
type InsightBucketRow struct {
	RunID      string    `bigquery:"run_id"`     // REQUIRED
	UserID     string    `bigquery:"user_id"`    // REQUIRED
	Category   string    `bigquery:"category"`   // REQUIRED
	Amount     *big.Rat  `bigquery:"amount"`     // REQUIRED NUMERIC
	Percentage float64   `bigquery:"percentage"` // REQUIRED
	CreatedTS  time.Time `bigquery:"created_ts"` // REQUIRED
}

// SaveCategoryRun persists a categorization result: one run row plus one
// bucket row per taxonomy label.
func (r *Repository) SaveCategoryRun(ctx context.Context, userID string, result extract.CategoryResult) (string, error) {
	runID := uuid.NewString()
	now := time.Now()

	run := &InsightRunRow{
		RunID:     runID,
		UserID:    userID,
		Degraded:  result.Degraded,
		RunDate:   civil.DateOf(now.UTC()),
		CreatedTS: now,
	}
	if err := r.client.Dataset(r.dataset).Table(insightRunsTable).Inserter().Put(ctx, run); err != nil {
		return "", fmt.Errorf("SaveCategoryRun: inserting run: %w", err)
	}

	rows := make([]*InsightBucketRow, 0, len(result.Buckets))
	for _, b := range result.Buckets {
		rows = append(rows, &InsightBucketRow{
			RunID:      runID,
			UserID:     userID,
			Category:   b.Name,
			Amount:     b.Amount.Rat(),
			Percentage: b.Percentage,
			CreatedTS:  now,
		})
	}
	if err := r.client.Dataset(r.dataset).Table(insightBucketsTable).Inserter().Put(ctx, rows); err != nil {
		return "", fmt.Errorf("SaveCategoryRun: inserting buckets: %w", err)
	}

	return runID, nil
}

// ListRecentRuns returns the user's latest categorization runs, newest first.
func (r *Repository) ListRecentRuns(ctx context.Context, userID string, limit int) ([]*InsightRunRow, error) {
	if limit <= 0 {
		limit = 20
	}

	q := r.client.Query(fmt.Sprintf(`
		SELECT
			run_id,
			user_id,
			degraded,
			run_date,
			created_ts
		FROM %s
		WHERE user_id = @user_id
		ORDER BY created_ts DESC
		LIMIT @limit
	`, r.table(insightRunsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecentRuns: running query: %w", err)
	}

	var runs []*InsightRunRow
	for {
		var row InsightRunRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRecentRuns: reading row: %w", err)
		}
		runs = append(runs, &row)
	}

	return runs, nil
}
