package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-backend/internal/config"
	authormodel "inventory-backend/internal/domains/author/model"
	"inventory-backend/internal/domains/book/model"
)

type fakeBookRepo struct {
	books     map[uuid.UUID]*model.Book
	byBarcode map[string]*model.Book
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{
		books:     map[uuid.UUID]*model.Book{},
		byBarcode: map[string]*model.Book{},
	}
}

func (r *fakeBookRepo) Create(_ context.Context, b *model.Book) (*model.Book, error) {
	if b.Barcode != nil {
		if _, taken := r.byBarcode[*b.Barcode]; taken {
			return nil, model.ErrDuplicateBarcode
		}
		r.byBarcode[*b.Barcode] = b
	}
	r.books[b.ID] = b
	return b, nil
}

func (r *fakeBookRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Book, error) {
	if b, ok := r.books[id]; ok {
		return b, nil
	}
	return nil, model.ErrBookNotFound
}

func (r *fakeBookRepo) GetByBarcode(_ context.Context, barcode string) (*model.Book, error) {
	if b, ok := r.byBarcode[barcode]; ok {
		return b, nil
	}
	return nil, model.ErrBookNotFound
}

func (r *fakeBookRepo) List(_ context.Context, _ model.BookFilter) ([]model.Book, int, error) {
	out := make([]model.Book, 0, len(r.books))
	for _, b := range r.books {
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (r *fakeBookRepo) Update(_ context.Context, b *model.Book) (*model.Book, error) {
	if _, ok := r.books[b.ID]; !ok {
		return nil, model.ErrBookNotFound
	}
	r.books[b.ID] = b
	return b, nil
}

func (r *fakeBookRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.books[id]; !ok {
		return model.ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

type fakeAuthorRepo struct {
	authors map[uuid.UUID]*authormodel.Author
}

func (r *fakeAuthorRepo) Create(_ context.Context, a *authormodel.Author) (*authormodel.Author, error) {
	return a, nil
}

func (r *fakeAuthorRepo) GetByID(_ context.Context, id uuid.UUID) (*authormodel.Author, error) {
	if a, ok := r.authors[id]; ok {
		return a, nil
	}
	return nil, authormodel.ErrAuthorNotFound
}

func (r *fakeAuthorRepo) List(_ context.Context, _ authormodel.AuthorFilter) ([]authormodel.Author, int, error) {
	return nil, 0, nil
}

func (r *fakeAuthorRepo) Update(_ context.Context, a *authormodel.Author) (*authormodel.Author, error) {
	return a, nil
}

func (r *fakeAuthorRepo) Delete(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (r *fakeAuthorRepo) GetBookCount(_ context.Context, _ uuid.UUID) (int, error) {
	return 0, nil
}

type fakeStockReader struct {
	balances map[uuid.UUID]int64
}

func (s *fakeStockReader) CurrentBalance(_ context.Context, bookID uuid.UUID) (int64, error) {
	return s.balances[bookID], nil
}

func newTestService() (ServiceInterface, *fakeBookRepo, *fakeAuthorRepo, *fakeStockReader, *authormodel.Author) {
	repo := newFakeBookRepo()
	author := &authormodel.Author{
		ID:        uuid.New(),
		Name:      "A. Writer",
		BirthDate: time.Date(1950, 6, 15, 0, 0, 0, 0, time.UTC),
	}
	authorRepo := &fakeAuthorRepo{authors: map[uuid.UUID]*authormodel.Author{author.ID: author}}
	stock := &fakeStockReader{balances: map[uuid.UUID]int64{}}
	catalog := config.CatalogConfig{
		BirthDateCutoff: time.Date(1800, 1, 1, 0, 0, 0, 0, time.UTC),
		MinPublishYear:  1450,
	}
	return NewBookService(repo, authorRepo, stock, catalog), repo, authorRepo, stock, author
}

func strPtr(s string) *string { return &s }

func TestCreateBook(t *testing.T) {
	svc, repo, _, _, author := newTestService()

	created, err := svc.Create(context.Background(), &model.CreateBookRequest{
		Barcode:     strPtr("12345"),
		Title:       "The Dispossessed",
		PublishYear: 1974,
		AuthorID:    author.ID.String(),
	})

	require.NoError(t, err)
	assert.Equal(t, "The Dispossessed", created.Title)
	assert.Equal(t, "12345", *created.Barcode)
	require.NotNil(t, created.Author)
	assert.Equal(t, author.ID, created.Author.ID)
	assert.Equal(t, int64(0), created.Quantity)
	assert.Len(t, repo.books, 1)
}

func TestCreateBook_WithoutBarcode(t *testing.T) {
	svc, _, _, _, author := newTestService()

	created, err := svc.Create(context.Background(), &model.CreateBookRequest{
		Title:       "Untracked Pamphlet",
		PublishYear: 2001,
		AuthorID:    author.ID.String(),
	})

	require.NoError(t, err)
	assert.Nil(t, created.Barcode)
}

func TestCreateBook_PublishYearOutOfRange(t *testing.T) {
	svc, repo, _, _, author := newTestService()

	for _, year := range []int{1000, 1449, time.Now().Year() + 1} {
		_, err := svc.Create(context.Background(), &model.CreateBookRequest{
			Title:       "Suspicious Edition",
			PublishYear: year,
			AuthorID:    author.ID.String(),
		})
		assert.ErrorIs(t, err, model.ErrPublishYearOutOfRange, "year %d", year)
	}
	assert.Empty(t, repo.books)
}

func TestCreateBook_UnknownAuthor(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), &model.CreateBookRequest{
		Title:       "Orphan Work",
		PublishYear: 1990,
		AuthorID:    uuid.New().String(),
	})

	assert.ErrorIs(t, err, model.ErrAuthorNotFound)
}

func TestCreateBook_DuplicateBarcode(t *testing.T) {
	svc, _, _, _, author := newTestService()

	_, err := svc.Create(context.Background(), &model.CreateBookRequest{
		Barcode:     strPtr("12345"),
		Title:       "First",
		PublishYear: 1990,
		AuthorID:    author.ID.String(),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &model.CreateBookRequest{
		Barcode:     strPtr("12345"),
		Title:       "Second",
		PublishYear: 1991,
		AuthorID:    author.ID.String(),
	})

	assert.ErrorIs(t, err, model.ErrDuplicateBarcode)
}

func TestGetBook_IncludesCurrentBalance(t *testing.T) {
	svc, _, _, stock, author := newTestService()

	created, err := svc.Create(context.Background(), &model.CreateBookRequest{
		Barcode:     strPtr("12345"),
		Title:       "The Dispossessed",
		PublishYear: 1974,
		AuthorID:    author.ID.String(),
	})
	require.NoError(t, err)

	stock.balances[created.ID] = 7

	fetched, err := svc.GetByID(context.Background(), created.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(7), fetched.Quantity)
}

func TestUpdateBook_PublishYearStillValidated(t *testing.T) {
	svc, _, _, _, author := newTestService()

	created, err := svc.Create(context.Background(), &model.CreateBookRequest{
		Title:       "The Dispossessed",
		PublishYear: 1974,
		AuthorID:    author.ID.String(),
	})
	require.NoError(t, err)

	badYear := 1200
	_, err = svc.Update(context.Background(), created.ID, &model.UpdateBookRequest{PublishYear: &badYear})

	assert.ErrorIs(t, err, model.ErrPublishYearOutOfRange)
}

func TestDeleteBook_NotFound(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	err := svc.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, model.ErrBookNotFound)
}
