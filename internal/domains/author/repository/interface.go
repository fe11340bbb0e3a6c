package repository

import (
	"context"

	"github.com/google/uuid"

	"inventory-backend/internal/domains/author/model"
)

// RepositoryInterface is the data-access contract for authors.
type RepositoryInterface interface {
	Create(ctx context.Context, a *model.Author) (*model.Author, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error)
	List(ctx context.Context, filter model.AuthorFilter) ([]model.Author, int, error)
	Update(ctx context.Context, a *model.Author) (*model.Author, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetBookCount(ctx context.Context, id uuid.UUID) (int, error)
}
