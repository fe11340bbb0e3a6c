package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"inventory-backend/internal/config"
	"inventory-backend/internal/domains/author/model"
	"inventory-backend/internal/domains/author/repository"
)

type authorService struct {
	repo    repository.RepositoryInterface
	catalog config.CatalogConfig
}

func NewAuthorService(repo repository.RepositoryInterface, catalog config.CatalogConfig) ServiceInterface {
	return &authorService{
		repo:    repo,
		catalog: catalog,
	}
}

func (s *authorService) Create(ctx context.Context, req *model.CreateAuthorRequest) (*model.Author, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	birthDate, err := time.Parse(model.DateOnly, req.BirthDate)
	if err != nil {
		return nil, model.ErrInvalidBirthDate
	}

	if birthDate.Before(s.catalog.BirthDateCutoff) {
		return nil, model.NewBirthDateTooEarlyError(birthDate, s.catalog.BirthDateCutoff)
	}

	author := &model.Author{
		ID:        uuid.New(),
		Name:      req.Name,
		BirthDate: birthDate,
	}

	created, err := s.repo.Create(ctx, author)
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("Failed to create author")
		return nil, err
	}

	log.Info().Str("author_id", created.ID.String()).Msg("Author created")
	return created, nil
}

func (s *authorService) GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *authorService) List(ctx context.Context, filter model.AuthorFilter) ([]model.Author, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

func (s *authorService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAuthorRequest) (*model.Author, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.BirthDate != nil {
		birthDate, err := time.Parse(model.DateOnly, *req.BirthDate)
		if err != nil {
			return nil, model.ErrInvalidBirthDate
		}
		if birthDate.Before(s.catalog.BirthDateCutoff) {
			return nil, model.NewBirthDateTooEarlyError(birthDate, s.catalog.BirthDateCutoff)
		}
		existing.BirthDate = birthDate
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		log.Error().Err(err).Str("author_id", id.String()).Msg("Failed to update author")
		return nil, err
	}

	return updated, nil
}

func (s *authorService) Delete(ctx context.Context, id uuid.UUID) error {
	count, err := s.repo.GetBookCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return model.ErrAuthorHasBooks
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Str("author_id", id.String()).Msg("Author deleted")
	return nil
}
