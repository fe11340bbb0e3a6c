package service

import (
	"context"

	"github.com/google/uuid"

	"inventory-backend/internal/domains/book/model"
)

// ServiceInterface is the business-logic contract for books.
type ServiceInterface interface {
	Create(ctx context.Context, req *model.CreateBookRequest) (*model.BookResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.BookResponse, error)
	List(ctx context.Context, filter model.BookFilter) ([]model.BookResponse, int, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateBookRequest) (*model.BookResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// StockReader reports the current stock balance for a book. It is
// implemented by the ledger service.
type StockReader interface {
	CurrentBalance(ctx context.Context, bookID uuid.UUID) (int64, error)
}
