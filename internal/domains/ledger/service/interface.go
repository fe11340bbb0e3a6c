package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"inventory-backend/internal/domains/ledger/model"
)

// ServiceInterface is the business-logic contract for stock movements.
type ServiceInterface interface {
	// Add records incoming stock for the book with the given barcode.
	Add(ctx context.Context, barcode string, qty int64) (*model.StockMovementResponse, error)

	// Remove records outgoing stock; rejected when the balance would
	// go negative.
	Remove(ctx context.Context, barcode string, qty int64) (*model.StockMovementResponse, error)

	// CurrentBalance folds all deltas for a book. Zero for a book with
	// no movements.
	CurrentBalance(ctx context.Context, bookID uuid.UUID) (int64, error)

	// History reconstructs movements over an inclusive time window.
	History(ctx context.Context, bookID uuid.UUID, start, end *time.Time) (*model.HistoryResponse, error)

	// BulkImport parses an uploaded file and applies all movements
	// atomically.
	BulkImport(ctx context.Context, filename string, data []byte) (*model.BulkImportResponse, error)
}

// Archiver stores raw uploads for audit. Implemented by the MinIO
// storage client. Only applied imports keep their archive; Remove
// cleans up after a rejected batch.
type Archiver interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}
