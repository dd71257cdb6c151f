package bigquery

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/IshpreetSingh8264/InflowBackend/internal/domain"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
)

// TransactionRow mirrors the inflow.transactions table schema.
type TransactionRow struct {
	TransactionID string              `bigquery:"transaction_id"` // REQUIRED
	UserID        string              `bigquery:"user_id"`        // REQUIRED
	Title         string              `bigquery:"title"`          // REQUIRED
	Description   bigquery.NullString `bigquery:"description"`    // NULLABLE
	Amount        *big.Rat            `bigquery:"amount"`         // REQUIRED NUMERIC
	TxType        string              `bigquery:"tx_type"`        // REQUIRED: income|expense
	CreatedTS     time.Time           `bigquery:"created_ts"`     // REQUIRED
}

// GoalRow mirrors the inflow.goals table schema.
type GoalRow struct {
	GoalID       string                 `bigquery:"goal_id"`       // REQUIRED
	UserID       string                 `bigquery:"user_id"`       // REQUIRED
	Title        string                 `bigquery:"title"`         // REQUIRED
	TargetAmount *big.Rat               `bigquery:"target_amount"` // REQUIRED NUMERIC
	SavedAmount  *big.Rat               `bigquery:"saved_amount"`  // REQUIRED NUMERIC
	Deadline     bigquery.NullDate      `bigquery:"deadline"`      // NULLABLE DATE
}

// ListTransactions implements domain.TransactionReader. It returns the
// user's transactions with created_ts in [from, to), newest first.
func (r *Repository) ListTransactions(ctx context.Context, userID string, from, to time.Time) ([]domain.Transaction, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			user_id,
			title,
			description,
			amount,
			tx_type,
			created_ts
		FROM %s
		WHERE user_id = @user_id
		  AND created_ts >= @from_ts
		  AND created_ts < @to_ts
		ORDER BY created_ts DESC
	`, r.table(transactionsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "from_ts", Value: from},
		{Name: "to_ts", Value: to},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: running query: %w", err)
	}

	var txs []domain.Transaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: reading row: %w", err)
		}
		txs = append(txs, rowToTransaction(&row))
	}

	return txs, nil
}

// ListGoals implements domain.TransactionReader.
func (r *Repository) ListGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			goal_id,
			user_id,
			title,
			target_amount,
			saved_amount,
			deadline
		FROM %s
		WHERE user_id = @user_id
		ORDER BY deadline
	`, r.table(goalsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListGoals: running query: %w", err)
	}

	var goals []domain.Goal
	for {
		var row GoalRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListGoals: reading row: %w", err)
		}
		goals = append(goals, rowToGoal(&row))
	}

	return goals, nil
}

func rowToTransaction(row *TransactionRow) domain.Transaction {
	tx := domain.Transaction{
		ID:        row.TransactionID,
		Title:     row.Title,
		Amount:    ratToDecimal(row.Amount),
		Type:      domain.TransactionType(row.TxType),
		CreatedAt: row.CreatedTS,
	}
	if row.Description.Valid {
		tx.Description = row.Description.StringVal
	}
	return tx
}

func rowToGoal(row *GoalRow) domain.Goal {
	g := domain.Goal{
		ID:           row.GoalID,
		Title:        row.Title,
		TargetAmount: ratToDecimal(row.TargetAmount),
		SavedAmount:  ratToDecimal(row.SavedAmount),
	}
	if row.Deadline.Valid {
		g.Deadline = row.Deadline.Date.In(time.UTC)
	}
	return g
}

// ratToDecimal converts a BigQuery NUMERIC into a decimal at cent precision.
func ratToDecimal(rat *big.Rat) decimal.Decimal {
	if rat == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigRat(rat, 2)
}

// Ensure Repository satisfies the reader boundary.
var _ domain.TransactionReader = (*Repository)(nil)
