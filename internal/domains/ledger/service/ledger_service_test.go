package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-backend/internal/config"
	bookmodel "inventory-backend/internal/domains/book/model"
	"inventory-backend/internal/domains/ledger/model"
)

// ---- fakes ----

type fakeLedgerRepo struct {
	entries []model.LedgerEntry
	now     time.Time
	seq     int64
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{
		now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *fakeLedgerRepo) nextEntry(bookID uuid.UUID, delta int64) model.LedgerEntry {
	r.seq++
	r.now = r.now.Add(time.Minute)
	return model.LedgerEntry{
		ID:            uuid.New(),
		BookID:        bookID,
		QuantityDelta: delta,
		RecordedAt:    r.now,
		Seq:           r.seq,
	}
}

func (r *fakeLedgerRepo) Append(_ context.Context, bookID uuid.UUID, delta int64) (*model.LedgerEntry, error) {
	e := r.nextEntry(bookID, delta)
	r.entries = append(r.entries, e)
	return &e, nil
}

func (r *fakeLedgerRepo) AppendRemoval(ctx context.Context, bookID uuid.UUID, qty int64) (*model.LedgerEntry, error) {
	balance, _ := r.SumDeltas(ctx, bookID, nil)
	if balance < qty {
		return nil, model.NewInsufficientStockError(qty, balance)
	}
	return r.Append(ctx, bookID, -qty)
}

func (r *fakeLedgerRepo) AppendBatch(ctx context.Context, pending []model.PendingEntry) ([]model.LedgerEntry, error) {
	before := len(r.entries)
	appended := make([]model.LedgerEntry, 0, len(pending))
	for _, p := range pending {
		e, _ := r.Append(ctx, p.BookID, p.QuantityDelta)
		appended = append(appended, *e)
	}
	for _, p := range pending {
		balance, _ := r.SumDeltas(ctx, p.BookID, nil)
		if balance < 0 {
			r.entries = r.entries[:before]
			return nil, fmt.Errorf("%w: batch drives book %s below zero", model.ErrInsufficientStock, p.BookID)
		}
	}
	return appended, nil
}

func (r *fakeLedgerRepo) ListByBook(_ context.Context, bookID uuid.UUID, start, end *time.Time) ([]model.LedgerEntry, error) {
	out := []model.LedgerEntry{}
	for _, e := range r.entries {
		if e.BookID != bookID {
			continue
		}
		if start != nil && e.RecordedAt.Before(*start) {
			continue
		}
		if end != nil && e.RecordedAt.After(*end) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeLedgerRepo) SumDeltas(_ context.Context, bookID uuid.UUID, before *time.Time) (int64, error) {
	var sum int64
	for _, e := range r.entries {
		if e.BookID != bookID {
			continue
		}
		if before != nil && !e.RecordedAt.Before(*before) {
			continue
		}
		sum += e.QuantityDelta
	}
	return sum, nil
}

type fakeBookRepo struct {
	books map[string]*bookmodel.Book // keyed by barcode
	byID  map[uuid.UUID]*bookmodel.Book
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{
		books: map[string]*bookmodel.Book{},
		byID:  map[uuid.UUID]*bookmodel.Book{},
	}
}

func (r *fakeBookRepo) add(barcode, title string) *bookmodel.Book {
	b := &bookmodel.Book{
		ID:      uuid.New(),
		Barcode: &barcode,
		Title:   title,
	}
	r.books[barcode] = b
	r.byID[b.ID] = b
	return b
}

func (r *fakeBookRepo) Create(_ context.Context, b *bookmodel.Book) (*bookmodel.Book, error) {
	return b, nil
}

func (r *fakeBookRepo) GetByID(_ context.Context, id uuid.UUID) (*bookmodel.Book, error) {
	if b, ok := r.byID[id]; ok {
		return b, nil
	}
	return nil, bookmodel.ErrBookNotFound
}

func (r *fakeBookRepo) GetByBarcode(_ context.Context, barcode string) (*bookmodel.Book, error) {
	if b, ok := r.books[barcode]; ok {
		return b, nil
	}
	return nil, bookmodel.ErrBookNotFound
}

func (r *fakeBookRepo) List(_ context.Context, _ bookmodel.BookFilter) ([]bookmodel.Book, int, error) {
	return nil, 0, nil
}

func (r *fakeBookRepo) Update(_ context.Context, b *bookmodel.Book) (*bookmodel.Book, error) {
	return b, nil
}

func (r *fakeBookRepo) Delete(_ context.Context, _ uuid.UUID) error {
	return nil
}

type fakeCache struct {
	store map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	data, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store[key] = data
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.store, k)
	}
	return nil
}

func (c *fakeCache) DeletePattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.store {
		if strings.HasPrefix(k, prefix) {
			delete(c.store, k)
		}
	}
	return nil
}

func (c *fakeCache) Ping(_ context.Context) error { return nil }

type fakeArchiver struct {
	uploads  []string
	removals []string
	err      error
}

func (a *fakeArchiver) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.uploads = append(a.uploads, key)
	return "http://storage.local/" + key, nil
}

func (a *fakeArchiver) Remove(_ context.Context, key string) error {
	a.removals = append(a.removals, key)
	return nil
}

// ---- helpers ----

func newTestService(t *testing.T) (*ledgerService, *fakeLedgerRepo, *fakeBookRepo, *fakeArchiver) {
	t.Helper()
	repo := newFakeLedgerRepo()
	bookRepo := newFakeBookRepo()
	archiver := &fakeArchiver{}
	svc := NewLedgerService(repo, bookRepo, newFakeCache(), archiver, config.ImportConfig{MaxRows: 1000})
	return svc.(*ledgerService), repo, bookRepo, archiver
}

// ---- tests ----

func TestCurrentBalance_NoEntries(t *testing.T) {
	svc, _, bookRepo, _ := newTestService(t)
	book := bookRepo.add("12345", "The Go Programming Language")

	balance, err := svc.CurrentBalance(context.Background(), book.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestCurrentBalance_FoldsAllDeltas(t *testing.T) {
	svc, repo, bookRepo, _ := newTestService(t)
	book := bookRepo.add("12345", "The Go Programming Language")
	ctx := context.Background()

	repo.Append(ctx, book.ID, 10)
	repo.Append(ctx, book.ID, -3)
	repo.Append(ctx, book.ID, 5)

	balance, err := svc.CurrentBalance(ctx, book.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(12), balance)
}

func TestAdd_AppendsPositiveDelta(t *testing.T) {
	svc, repo, bookRepo, _ := newTestService(t)
	bookRepo.add("12345", "The Go Programming Language")

	movement, err := svc.Add(context.Background(), "12345", 10)

	require.NoError(t, err)
	assert.Equal(t, int64(10), movement.QuantityDelta)
	assert.Equal(t, int64(10), movement.Balance)
	require.Len(t, repo.entries, 1)
	assert.Equal(t, int64(10), repo.entries[0].QuantityDelta)
}

func TestAdd_UnknownBarcode(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Add(context.Background(), "missing", 5)

	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestAdd_RejectsNonPositiveQuantity(t *testing.T) {
	svc, repo, bookRepo, _ := newTestService(t)
	bookRepo.add("12345", "The Go Programming Language")

	for _, qty := range []int64{0, -4} {
		_, err := svc.Add(context.Background(), "12345", qty)
		assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	}
	assert.Empty(t, repo.entries)
}

func TestRemove_AppendsNegativeDelta(t *testing.T) {
	svc, repo, bookRepo, _ := newTestService(t)
	bookRepo.add("12345", "The Go Programming Language")
	ctx := context.Background()

	_, err := svc.Add(ctx, "12345", 10)
	require.NoError(t, err)

	movement, err := svc.Remove(ctx, "12345", 3)

	require.NoError(t, err)
	assert.Equal(t, int64(-3), movement.QuantityDelta)
	assert.Equal(t, int64(7), movement.Balance)
	require.Len(t, repo.entries, 2)
	assert.Equal(t, int64(-3), repo.entries[1].QuantityDelta)
}

func TestRemove_InsufficientStockLeavesLedgerUntouched(t *testing.T) {
	svc, repo, bookRepo, _ := newTestService(t)
	book := bookRepo.add("12345", "The Go Programming Language")
	ctx := context.Background()

	_, err := svc.Add(ctx, "12345", 10)
	require.NoError(t, err)
	_, err = svc.Remove(ctx, "12345", 3)
	require.NoError(t, err)

	_, err = svc.Remove(ctx, "12345", 10)

	assert.ErrorIs(t, err, model.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "requested 10")
	assert.Contains(t, err.Error(), "available 7")

	balance, err := svc.CurrentBalance(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), balance)
	assert.Len(t, repo.entries, 2)
}

func TestRemove_UnknownBarcode(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Remove(context.Background(), "missing", 1)

	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestBalanceCache_InvalidatedOnAppend(t *testing.T) {
	svc, _, bookRepo, _ := newTestService(t)
	book := bookRepo.add("12345", "The Go Programming Language")
	ctx := context.Background()

	balance, err := svc.CurrentBalance(ctx, book.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)

	_, err = svc.Add(ctx, "12345", 4)
	require.NoError(t, err)

	balance, err = svc.CurrentBalance(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), balance)
}

func TestHistory_WindowArithmetic(t *testing.T) {
	svc, repo, bookRepo, _ := newTestService(t)
	book := bookRepo.add("12345", "The Go Programming Language")
	ctx := context.Background()

	repo.Append(ctx, book.ID, 10)
	second, _ := repo.Append(ctx, book.ID, -3)
	third, _ := repo.Append(ctx, book.ID, 5)

	history, err := svc.History(ctx, book.ID, &second.RecordedAt, &third.RecordedAt)

	require.NoError(t, err)
	assert.Equal(t, int64(10), history.StartBalance)
	require.Len(t, history.History, 2)
	assert.Equal(t, int64(-3), history.History[0].Quantity)
	assert.Equal(t, int64(5), history.History[1].Quantity)
	assert.Equal(t, int64(12), history.EndBalance)
	assert.Equal(t, book.ID, history.Book.ID)
	assert.Equal(t, "12345", *history.Book.Barcode)
}

func TestHistory_EndBalanceEqualsStartPlusWindowSum(t *testing.T) {
	svc, repo, bookRepo, _ := newTestService(t)
	book := bookRepo.add("12345", "The Go Programming Language")
	ctx := context.Background()

	deltas := []int64{7, -2, 9, -1, 3}
	for _, d := range deltas {
		repo.Append(ctx, book.ID, d)
	}

	history, err := svc.History(ctx, book.ID, nil, nil)

	require.NoError(t, err)
	var windowSum int64
	for _, m := range history.History {
		windowSum += m.Quantity
	}
	assert.Equal(t, history.StartBalance+windowSum, history.EndBalance)
	assert.Equal(t, int64(0), history.StartBalance)
}

func TestHistory_RepeatedReadsAreIdentical(t *testing.T) {
	svc, repo, bookRepo, _ := newTestService(t)
	book := bookRepo.add("12345", "The Go Programming Language")
	ctx := context.Background()

	repo.Append(ctx, book.ID, 10)
	repo.Append(ctx, book.ID, -4)

	first, err := svc.History(ctx, book.ID, nil, nil)
	require.NoError(t, err)
	second, err := svc.History(ctx, book.ID, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHistory_UnknownBook(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.History(context.Background(), uuid.New(), nil, nil)

	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestBulkImport_AppliesAllRows(t *testing.T) {
	svc, repo, bookRepo, archiver := newTestService(t)
	bookRepo.add("12345", "The Go Programming Language")
	bookRepo.add("67890", "Learning Go")

	data := []byte("barcode,quantity\n12345,10\n67890,4\n12345,-2\n")

	result, err := svc.BulkImport(context.Background(), "restock.csv", data)

	require.NoError(t, err)
	assert.Equal(t, 3, result.RowCount)
	assert.Len(t, repo.entries, 3)
	assert.Len(t, archiver.uploads, 1)
	assert.NotEmpty(t, result.ArchiveURL)
}

func TestBulkImport_UnresolvedBarcodeRejectsWholeBatch(t *testing.T) {
	svc, repo, bookRepo, _ := newTestService(t)
	bookRepo.add("12345", "The Go Programming Language")

	data := []byte("add 12345 10\nadd 99999 5\n")

	_, err := svc.BulkImport(context.Background(), "restock.txt", data)

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrBookNotFound)
	assert.Contains(t, err.Error(), "99999")
	assert.Empty(t, repo.entries)
}

func TestBulkImport_RejectedBatchDiscardsArchive(t *testing.T) {
	svc, _, bookRepo, archiver := newTestService(t)
	bookRepo.add("12345", "The Go Programming Language")

	data := []byte("add 12345 10\nadd 99999 5\n")

	_, err := svc.BulkImport(context.Background(), "restock.txt", data)

	require.Error(t, err)
	require.Len(t, archiver.uploads, 1)
	require.Len(t, archiver.removals, 1)
	assert.Equal(t, archiver.uploads[0], archiver.removals[0])
}

func TestBulkImport_AppliedBatchKeepsArchive(t *testing.T) {
	svc, _, bookRepo, archiver := newTestService(t)
	bookRepo.add("12345", "The Go Programming Language")

	_, err := svc.BulkImport(context.Background(), "restock.csv", []byte("12345,10\n"))

	require.NoError(t, err)
	assert.Len(t, archiver.uploads, 1)
	assert.Empty(t, archiver.removals)
}

func TestBulkImport_InvalidatesCachedBalances(t *testing.T) {
	svc, _, bookRepo, _ := newTestService(t)
	book := bookRepo.add("12345", "The Go Programming Language")
	ctx := context.Background()

	balance, err := svc.CurrentBalance(ctx, book.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)

	_, err = svc.BulkImport(ctx, "restock.csv", []byte("12345,6\n"))
	require.NoError(t, err)

	balance, err = svc.CurrentBalance(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), balance)
}

func TestBulkImport_UnsupportedFormat(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	_, err := svc.BulkImport(context.Background(), "restock.pdf", []byte("whatever"))

	assert.ErrorIs(t, err, model.ErrUnsupportedFormat)
	assert.Empty(t, repo.entries)
}

func TestBulkImport_RowLimit(t *testing.T) {
	repo := newFakeLedgerRepo()
	bookRepo := newFakeBookRepo()
	bookRepo.add("12345", "The Go Programming Language")
	svc := NewLedgerService(repo, bookRepo, newFakeCache(), &fakeArchiver{}, config.ImportConfig{MaxRows: 1})

	data := []byte("12345,10\n12345,5\n")

	_, err := svc.BulkImport(context.Background(), "restock.csv", data)

	assert.ErrorIs(t, err, model.ErrImportTooLarge)
	assert.Empty(t, repo.entries)
}

func TestBulkImport_ArchiveFailureDoesNotBlockImport(t *testing.T) {
	repo := newFakeLedgerRepo()
	bookRepo := newFakeBookRepo()
	bookRepo.add("12345", "The Go Programming Language")
	archiver := &fakeArchiver{err: errors.New("storage down")}
	svc := NewLedgerService(repo, bookRepo, newFakeCache(), archiver, config.ImportConfig{MaxRows: 1000})

	result, err := svc.BulkImport(context.Background(), "restock.csv", []byte("12345,10\n"))

	require.NoError(t, err)
	assert.Equal(t, 1, result.RowCount)
	assert.Empty(t, result.ArchiveURL)
	assert.Len(t, repo.entries, 1)
}
