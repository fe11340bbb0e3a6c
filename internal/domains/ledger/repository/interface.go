package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"inventory-backend/internal/domains/ledger/model"
)

// RepositoryInterface is the data-access contract for the stock
// ledger. The table is append-only: there are no update or delete
// operations.
type RepositoryInterface interface {
	// Append inserts a single delta with a server-side timestamp.
	Append(ctx context.Context, bookID uuid.UUID, delta int64) (*model.LedgerEntry, error)

	// AppendRemoval inserts -qty after verifying, under a row lock on
	// the book, that the resulting balance stays non-negative.
	AppendRemoval(ctx context.Context, bookID uuid.UUID, qty int64) (*model.LedgerEntry, error)

	// AppendBatch inserts all pending deltas in one transaction.
	AppendBatch(ctx context.Context, pending []model.PendingEntry) ([]model.LedgerEntry, error)

	// ListByBook returns entries for a book within the inclusive
	// [start, end] window, ordered by (recorded_at, seq). Nil bounds
	// are open.
	ListByBook(ctx context.Context, bookID uuid.UUID, start, end *time.Time) ([]model.LedgerEntry, error)

	// SumDeltas sums deltas strictly before the given time, or all of
	// them when before is nil. No entries sum to zero.
	SumDeltas(ctx context.Context, bookID uuid.UUID, before *time.Time) (int64, error)
}
