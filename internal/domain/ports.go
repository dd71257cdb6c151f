package domain

import (
	"context"
	"time"
)

// TransactionReader supplies a user's recorded transactions and goals.
// The insight and chat layers only read through it; writes happen elsewhere.
type TransactionReader interface {
	// ListTransactions returns the user's transactions with CreatedAt in
	// [from, to), newest first.
	ListTransactions(ctx context.Context, userID string, from, to time.Time) ([]Transaction, error)

	// ListGoals returns the user's savings goals.
	ListGoals(ctx context.Context, userID string) ([]Goal, error)
}
