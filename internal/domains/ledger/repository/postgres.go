package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"inventory-backend/internal/domains/ledger/model"
	"inventory-backend/pkg/database"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const insertEntryQuery = `
	INSERT INTO ledger_entries (id, book_id, quantity_delta)
	VALUES ($1, $2, $3)
	RETURNING id, book_id, quantity_delta, recorded_at, seq
`

const pgForeignKeyViolation = "23503"

func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return model.ErrBookNotFound
	}
	return err
}

func scanEntry(row pgx.Row) (*model.LedgerEntry, error) {
	var e model.LedgerEntry
	err := row.Scan(&e.ID, &e.BookID, &e.QuantityDelta, &e.RecordedAt, &e.Seq)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *postgresRepository) Append(ctx context.Context, bookID uuid.UUID, delta int64) (*model.LedgerEntry, error) {
	entry, err := scanEntry(r.pool.QueryRow(ctx, insertEntryQuery, uuid.New(), bookID, delta))
	if err != nil {
		if mapped := mapInsertError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return entry, nil
}

// AppendRemoval serializes removals per book by locking the book row,
// so the balance check and the insert are atomic.
func (r *postgresRepository) AppendRemoval(ctx context.Context, bookID uuid.UUID, qty int64) (*model.LedgerEntry, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.LedgerEntry, error) {
		var lockedID uuid.UUID
		err := tx.QueryRow(ctx, "SELECT id FROM books WHERE id = $1 FOR UPDATE", bookID).Scan(&lockedID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, model.ErrBookNotFound
			}
			return nil, fmt.Errorf("failed to lock book row: %w", err)
		}

		var balance int64
		err = tx.QueryRow(ctx,
			"SELECT COALESCE(SUM(quantity_delta), 0) FROM ledger_entries WHERE book_id = $1",
			bookID,
		).Scan(&balance)
		if err != nil {
			return nil, fmt.Errorf("failed to read balance: %w", err)
		}

		if balance < qty {
			return nil, model.NewInsufficientStockError(qty, balance)
		}

		entry, err := scanEntry(tx.QueryRow(ctx, insertEntryQuery, uuid.New(), bookID, -qty))
		if err != nil {
			return nil, fmt.Errorf("failed to append removal entry: %w", err)
		}
		return entry, nil
	})
}

// AppendBatch applies all deltas or none. Book rows are locked in
// ascending id order so concurrent batches cannot deadlock.
func (r *postgresRepository) AppendBatch(ctx context.Context, pending []model.PendingEntry) ([]model.LedgerEntry, error) {
	if len(pending) == 0 {
		return nil, nil
	}

	bookIDSet := make(map[uuid.UUID]struct{}, len(pending))
	for _, p := range pending {
		bookIDSet[p.BookID] = struct{}{}
	}
	bookIDs := make([]uuid.UUID, 0, len(bookIDSet))
	for id := range bookIDSet {
		bookIDs = append(bookIDs, id)
	}
	sort.Slice(bookIDs, func(i, j int) bool {
		return bookIDs[i].String() < bookIDs[j].String()
	})

	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) ([]model.LedgerEntry, error) {
		for _, id := range bookIDs {
			var lockedID uuid.UUID
			err := tx.QueryRow(ctx, "SELECT id FROM books WHERE id = $1 FOR UPDATE", id).Scan(&lockedID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, model.ErrBookNotFound
				}
				return nil, fmt.Errorf("failed to lock book row: %w", err)
			}
		}

		entries := make([]model.LedgerEntry, 0, len(pending))
		for _, p := range pending {
			entry, err := scanEntry(tx.QueryRow(ctx, insertEntryQuery, uuid.New(), p.BookID, p.QuantityDelta))
			if err != nil {
				return nil, fmt.Errorf("failed to append batch entry: %w", err)
			}
			entries = append(entries, *entry)
		}

		// Batches may carry removals; no book may end up negative.
		for _, id := range bookIDs {
			var balance int64
			err := tx.QueryRow(ctx,
				"SELECT COALESCE(SUM(quantity_delta), 0) FROM ledger_entries WHERE book_id = $1",
				id,
			).Scan(&balance)
			if err != nil {
				return nil, fmt.Errorf("failed to verify batch balance: %w", err)
			}
			if balance < 0 {
				return nil, fmt.Errorf("%w: batch drives book %s below zero", model.ErrInsufficientStock, id)
			}
		}

		return entries, nil
	})
}

func (r *postgresRepository) ListByBook(ctx context.Context, bookID uuid.UUID, start, end *time.Time) ([]model.LedgerEntry, error) {
	query := "SELECT id, book_id, quantity_delta, recorded_at, seq FROM ledger_entries WHERE book_id = $1"
	args := []interface{}{bookID}
	argPos := 2

	if start != nil {
		query += fmt.Sprintf(" AND recorded_at >= $%d", argPos)
		args = append(args, *start)
		argPos++
	}
	if end != nil {
		query += fmt.Sprintf(" AND recorded_at <= $%d", argPos)
		args = append(args, *end)
		argPos++
	}
	query += " ORDER BY recorded_at ASC, seq ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	entries := []model.LedgerEntry{}
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.BookID, &e.QuantityDelta, &e.RecordedAt, &e.Seq); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}

	return entries, nil
}

func (r *postgresRepository) SumDeltas(ctx context.Context, bookID uuid.UUID, before *time.Time) (int64, error) {
	query := "SELECT COALESCE(SUM(quantity_delta), 0) FROM ledger_entries WHERE book_id = $1"
	args := []interface{}{bookID}

	if before != nil {
		query += " AND recorded_at < $2"
		args = append(args, *before)
	}

	var sum int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum ledger deltas: %w", err)
	}
	return sum, nil
}
