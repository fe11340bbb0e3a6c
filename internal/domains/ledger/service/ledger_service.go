package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"inventory-backend/internal/config"
	bookmodel "inventory-backend/internal/domains/book/model"
	bookrepo "inventory-backend/internal/domains/book/repository"
	"inventory-backend/internal/domains/ledger/ingest"
	"inventory-backend/internal/domains/ledger/model"
	"inventory-backend/internal/domains/ledger/repository"
	"inventory-backend/pkg/cache"
)

type ledgerService struct {
	repo      repository.RepositoryInterface
	bookRepo  bookrepo.RepositoryInterface
	cache     cache.Cache
	archiver  Archiver
	importCfg config.ImportConfig
}

func NewLedgerService(
	repo repository.RepositoryInterface,
	bookRepo bookrepo.RepositoryInterface,
	cache cache.Cache,
	archiver Archiver,
	importCfg config.ImportConfig,
) ServiceInterface {
	return &ledgerService{
		repo:      repo,
		bookRepo:  bookRepo,
		cache:     cache,
		archiver:  archiver,
		importCfg: importCfg,
	}
}

const (
	balanceCacheKeyPrefix = "stock:balance:"
	balanceCacheTTL       = 5 * time.Minute
)

func (s *ledgerService) resolveBarcode(ctx context.Context, barcode string) (*bookmodel.Book, error) {
	if barcode == "" {
		return nil, model.ErrBookNotFound
	}
	book, err := s.bookRepo.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, model.ErrBookNotFound
	}
	return book, nil
}

func (s *ledgerService) Add(ctx context.Context, barcode string, qty int64) (*model.StockMovementResponse, error) {
	if qty <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	book, err := s.resolveBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.Append(ctx, book.ID, qty)
	if err != nil {
		log.Error().Err(err).Str("barcode", barcode).Msg("Failed to append stock addition")
		return nil, err
	}

	s.invalidateBalance(ctx, book.ID)

	balance, err := s.CurrentBalance(ctx, book.ID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("book_id", book.ID.String()).
		Int64("quantity", qty).
		Int64("balance", balance).
		Msg("Stock added")

	return &model.StockMovementResponse{
		BookID:        book.ID,
		Barcode:       barcode,
		QuantityDelta: entry.QuantityDelta,
		Balance:       balance,
		RecordedAt:    entry.RecordedAt,
	}, nil
}

func (s *ledgerService) Remove(ctx context.Context, barcode string, qty int64) (*model.StockMovementResponse, error) {
	if qty <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	book, err := s.resolveBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.AppendRemoval(ctx, book.ID, qty)
	if err != nil {
		log.Warn().Err(err).Str("barcode", barcode).Int64("quantity", qty).Msg("Stock removal rejected")
		return nil, err
	}

	s.invalidateBalance(ctx, book.ID)

	balance, err := s.CurrentBalance(ctx, book.ID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("book_id", book.ID.String()).
		Int64("quantity", qty).
		Int64("balance", balance).
		Msg("Stock removed")

	return &model.StockMovementResponse{
		BookID:        book.ID,
		Barcode:       barcode,
		QuantityDelta: entry.QuantityDelta,
		Balance:       balance,
		RecordedAt:    entry.RecordedAt,
	}, nil
}

func (s *ledgerService) CurrentBalance(ctx context.Context, bookID uuid.UUID) (int64, error) {
	cacheKey := balanceCacheKeyPrefix + bookID.String()

	var cached int64
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return cached, nil
	}

	balance, err := s.repo.SumDeltas(ctx, bookID, nil)
	if err != nil {
		return 0, err
	}

	s.cache.Set(ctx, cacheKey, balance, balanceCacheTTL)

	return balance, nil
}

func (s *ledgerService) History(ctx context.Context, bookID uuid.UUID, start, end *time.Time) (*model.HistoryResponse, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, model.ErrBookNotFound
	}

	startBalance := int64(0)
	if start != nil {
		startBalance, err = s.repo.SumDeltas(ctx, bookID, start)
		if err != nil {
			return nil, err
		}
	}

	entries, err := s.repo.ListByBook(ctx, bookID, start, end)
	if err != nil {
		return nil, err
	}

	movements := make([]model.HistoryMovement, 0, len(entries))
	endBalance := startBalance
	for _, e := range entries {
		movements = append(movements, model.HistoryMovement{
			Quantity:   e.QuantityDelta,
			RecordedAt: e.RecordedAt,
		})
		endBalance += e.QuantityDelta
	}

	return &model.HistoryResponse{
		Book: model.HistoryBook{
			ID:      book.ID,
			Barcode: book.Barcode,
			Title:   book.Title,
		},
		StartBalance: startBalance,
		History:      movements,
		EndBalance:   endBalance,
	}, nil
}

func (s *ledgerService) BulkImport(ctx context.Context, filename string, data []byte) (*model.BulkImportResponse, error) {
	archiveKey, archiveURL := s.archive(ctx, filename, data)

	records, err := ingest.ParseFile(filename, data)
	if err != nil {
		s.discardArchive(ctx, archiveKey)
		return nil, err
	}

	if len(records) > s.importCfg.MaxRows {
		s.discardArchive(ctx, archiveKey)
		return nil, fmt.Errorf("%w: %d rows, limit %d", model.ErrImportTooLarge, len(records), s.importCfg.MaxRows)
	}

	// Resolve every barcode before touching the ledger so a bad row
	// rejects the whole batch.
	pending := make([]model.PendingEntry, 0, len(records))
	applied := make([]model.BulkImportRow, 0, len(records))
	for _, rec := range records {
		book, err := s.resolveBarcode(ctx, rec.Barcode)
		if err != nil {
			s.discardArchive(ctx, archiveKey)
			return nil, model.NewBadRowError(rec.Row, fmt.Errorf("%w: barcode %q", model.ErrBookNotFound, rec.Barcode))
		}
		pending = append(pending, model.PendingEntry{
			BookID:        book.ID,
			QuantityDelta: rec.Quantity,
		})
		applied = append(applied, model.BulkImportRow{
			BookID:   book.ID,
			Barcode:  rec.Barcode,
			Quantity: rec.Quantity,
		})
	}

	entries, err := s.repo.AppendBatch(ctx, pending)
	if err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("Bulk import rejected")
		s.discardArchive(ctx, archiveKey)
		return nil, err
	}

	// A batch can touch many books; drop every cached balance at once.
	if err := s.cache.DeletePattern(ctx, balanceCacheKeyPrefix+"*"); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate balance caches after import")
	}

	log.Info().
		Str("filename", filename).
		Int("rows", len(entries)).
		Msg("Bulk import applied")

	return &model.BulkImportResponse{
		Filename:   filename,
		RowCount:   len(entries),
		Applied:    applied,
		ArchiveURL: archiveURL,
	}, nil
}

// archive is best-effort: a storage outage must not block the import.
func (s *ledgerService) archive(ctx context.Context, filename string, data []byte) (key, url string) {
	if s.archiver == nil {
		return "", ""
	}

	key = fmt.Sprintf("imports/%s/%s", time.Now().UTC().Format("2006-01-02"), filename)
	url, err := s.archiver.Upload(ctx, key, data, "application/octet-stream")
	if err != nil {
		log.Warn().Err(err).Str("filename", filename).Msg("Failed to archive import file")
		return "", ""
	}
	return key, url
}

// discardArchive drops the archived upload of a rejected batch so only
// applied imports are kept.
func (s *ledgerService) discardArchive(ctx context.Context, key string) {
	if s.archiver == nil || key == "" {
		return
	}
	if err := s.archiver.Remove(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to remove archived import file")
	}
}

func (s *ledgerService) invalidateBalance(ctx context.Context, bookID uuid.UUID) {
	if err := s.cache.Delete(ctx, balanceCacheKeyPrefix+bookID.String()); err != nil {
		log.Warn().Err(err).Str("book_id", bookID.String()).Msg("Failed to invalidate balance cache")
	}
}
