package repository

import (
	"context"

	"github.com/google/uuid"

	"inventory-backend/internal/domains/book/model"
)

// RepositoryInterface is the data-access contract for books.
type RepositoryInterface interface {
	Create(ctx context.Context, b *model.Book) (*model.Book, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	GetByBarcode(ctx context.Context, barcode string) (*model.Book, error)
	List(ctx context.Context, filter model.BookFilter) ([]model.Book, int, error)
	Update(ctx context.Context, b *model.Book) (*model.Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
