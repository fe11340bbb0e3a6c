package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"inventory-backend/internal/config"
	authormodel "inventory-backend/internal/domains/author/model"
	authorrepo "inventory-backend/internal/domains/author/repository"
	"inventory-backend/internal/domains/book/model"
	"inventory-backend/internal/domains/book/repository"
)

type bookService struct {
	repo       repository.RepositoryInterface
	authorRepo authorrepo.RepositoryInterface
	stock      StockReader
	catalog    config.CatalogConfig
}

func NewBookService(
	repo repository.RepositoryInterface,
	authorRepo authorrepo.RepositoryInterface,
	stock StockReader,
	catalog config.CatalogConfig,
) ServiceInterface {
	return &bookService{
		repo:       repo,
		authorRepo: authorRepo,
		stock:      stock,
		catalog:    catalog,
	}
}

func (s *bookService) validatePublishYear(year int) error {
	maxYear := time.Now().Year()
	if year < s.catalog.MinPublishYear || year > maxYear {
		return model.NewPublishYearError(year, s.catalog.MinPublishYear, maxYear)
	}
	return nil
}

func (s *bookService) Create(ctx context.Context, req *model.CreateBookRequest) (*model.BookResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.validatePublishYear(req.PublishYear); err != nil {
		return nil, err
	}

	authorID, err := uuid.Parse(req.AuthorID)
	if err != nil {
		return nil, model.ErrAuthorNotFound
	}

	author, err := s.authorRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, model.ErrAuthorNotFound
	}

	book := &model.Book{
		ID:          uuid.New(),
		Barcode:     req.Barcode,
		Title:       req.Title,
		PublishYear: req.PublishYear,
		AuthorID:    authorID,
	}

	created, err := s.repo.Create(ctx, book)
	if err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("Failed to create book")
		return nil, err
	}

	log.Info().Str("book_id", created.ID.String()).Msg("Book created")
	return created.ToResponse(author, 0), nil
}

func (s *bookService) GetByID(ctx context.Context, id uuid.UUID) (*model.BookResponse, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, book)
}

func (s *bookService) List(ctx context.Context, filter model.BookFilter) ([]model.BookResponse, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	books, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]model.BookResponse, 0, len(books))
	for i := range books {
		resp, err := s.toResponse(ctx, &books[i])
		if err != nil {
			return nil, 0, err
		}
		responses = append(responses, *resp)
	}

	return responses, total, nil
}

func (s *bookService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateBookRequest) (*model.BookResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Barcode != nil {
		existing.Barcode = req.Barcode
	}
	if req.Title != nil {
		existing.Title = *req.Title
	}
	if req.PublishYear != nil {
		if err := s.validatePublishYear(*req.PublishYear); err != nil {
			return nil, err
		}
		existing.PublishYear = *req.PublishYear
	}
	if req.AuthorID != nil {
		authorID, err := uuid.Parse(*req.AuthorID)
		if err != nil {
			return nil, model.ErrAuthorNotFound
		}
		if _, err := s.authorRepo.GetByID(ctx, authorID); err != nil {
			return nil, model.ErrAuthorNotFound
		}
		existing.AuthorID = authorID
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		log.Error().Err(err).Str("book_id", id.String()).Msg("Failed to update book")
		return nil, err
	}

	return s.toResponse(ctx, updated)
}

func (s *bookService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("book_id", id.String()).Msg("Book deleted")
	return nil
}

func (s *bookService) toResponse(ctx context.Context, book *model.Book) (*model.BookResponse, error) {
	var author *authormodel.Author
	if a, err := s.authorRepo.GetByID(ctx, book.AuthorID); err == nil {
		author = a
	}

	quantity, err := s.stock.CurrentBalance(ctx, book.ID)
	if err != nil {
		log.Error().Err(err).Str("book_id", book.ID.String()).Msg("Failed to read stock balance")
		return nil, err
	}

	return book.ToResponse(author, quantity), nil
}
