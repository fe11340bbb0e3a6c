package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"inventory-backend/internal/domains/book/model"
	"inventory-backend/pkg/cache"
)

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) RepositoryInterface {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

const (
	bookCacheKeyPrefix    = "book:"
	barcodeCacheKeyPrefix = "book:barcode:"
	cacheTTL              = 15 * time.Minute
)

// Postgres error codes checked on writes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return model.ErrDuplicateBarcode
		case pgForeignKeyViolation:
			return model.ErrAuthorNotFound
		}
	}
	return err
}

func (r *postgresRepository) Create(ctx context.Context, b *model.Book) (*model.Book, error) {
	query := `
		INSERT INTO books (id, barcode, title, publish_year, author_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, barcode, title, publish_year, author_id, created_at, updated_at
	`

	var created model.Book
	err := r.pool.QueryRow(ctx, query, b.ID, b.Barcode, b.Title, b.PublishYear, b.AuthorID).Scan(
		&created.ID,
		&created.Barcode,
		&created.Title,
		&created.PublishYear,
		&created.AuthorID,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	return &created, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	cacheKey := bookCacheKeyPrefix + id.String()

	var b model.Book
	if found, err := r.cache.Get(ctx, cacheKey, &b); err == nil && found {
		return &b, nil
	}

	query := `
		SELECT id, barcode, title, publish_year, author_id, created_at, updated_at
		FROM books
		WHERE id = $1
	`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.Barcode,
		&b.Title,
		&b.PublishYear,
		&b.AuthorID,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}

	r.cache.Set(ctx, cacheKey, b, cacheTTL)

	return &b, nil
}

func (r *postgresRepository) GetByBarcode(ctx context.Context, barcode string) (*model.Book, error) {
	cacheKey := barcodeCacheKeyPrefix + barcode

	var b model.Book
	if found, err := r.cache.Get(ctx, cacheKey, &b); err == nil && found {
		return &b, nil
	}

	query := `
		SELECT id, barcode, title, publish_year, author_id, created_at, updated_at
		FROM books
		WHERE barcode = $1
	`

	err := r.pool.QueryRow(ctx, query, barcode).Scan(
		&b.ID,
		&b.Barcode,
		&b.Title,
		&b.PublishYear,
		&b.AuthorID,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by barcode: %w", err)
	}

	r.cache.Set(ctx, cacheKey, b, cacheTTL)

	return &b, nil
}

func (r *postgresRepository) List(ctx context.Context, filter model.BookFilter) ([]model.Book, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if filter.AuthorID != nil {
		where += fmt.Sprintf(" AND author_id = $%d", argPos)
		args = append(args, *filter.AuthorID)
		argPos++
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND title ILIKE $%d", argPos)
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM books"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, barcode, title, publish_year, author_id, created_at, updated_at
		FROM books%s
		ORDER BY created_at DESC, id ASC
		LIMIT $%d OFFSET $%d
	`, where, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0, filter.Limit)
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Barcode, &b.Title, &b.PublishYear, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan book row: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating book rows: %w", err)
	}

	return books, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, b *model.Book) (*model.Book, error) {
	// The row may currently be cached under a different barcode; read
	// it before the write so both barcode keys can be dropped.
	var previousBarcode *string
	err := r.pool.QueryRow(ctx, "SELECT barcode FROM books WHERE id = $1", b.ID).Scan(&previousBarcode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to read book before update: %w", err)
	}

	query := `
		UPDATE books
		SET barcode = $2, title = $3, publish_year = $4, author_id = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING id, barcode, title, publish_year, author_id, created_at, updated_at
	`

	var updated model.Book
	err = r.pool.QueryRow(ctx, query, b.ID, b.Barcode, b.Title, b.PublishYear, b.AuthorID).Scan(
		&updated.ID,
		&updated.Barcode,
		&updated.Title,
		&updated.PublishYear,
		&updated.AuthorID,
		&updated.CreatedAt,
		&updated.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		if mapped := mapWriteError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	r.cache.Delete(ctx, invalidationKeys(&updated, previousBarcode)...)

	return &updated, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Fetch first so the barcode cache entry can be dropped too.
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx, "DELETE FROM books WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}

	r.invalidate(ctx, b)

	return nil
}

func (r *postgresRepository) invalidate(ctx context.Context, b *model.Book) {
	r.cache.Delete(ctx, invalidationKeys(b, nil)...)
}

// invalidationKeys lists every cache key the row can be reached
// through, including the barcode it held before a write changed it.
func invalidationKeys(b *model.Book, previousBarcode *string) []string {
	keys := []string{bookCacheKeyPrefix + b.ID.String()}
	if b.Barcode != nil {
		keys = append(keys, barcodeCacheKeyPrefix+*b.Barcode)
	}
	if previousBarcode != nil && (b.Barcode == nil || *b.Barcode != *previousBarcode) {
		keys = append(keys, barcodeCacheKeyPrefix+*previousBarcode)
	}
	return keys
}
