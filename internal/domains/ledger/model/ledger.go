package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// LedgerEntry is one append-only row in ledger_entries. QuantityDelta
// is positive for stock added, negative for stock removed. Entries for
// a book are totally ordered by (RecordedAt, Seq).
type LedgerEntry struct {
	ID            uuid.UUID `json:"id" db:"id"`
	BookID        uuid.UUID `json:"book_id" db:"book_id"`
	QuantityDelta int64     `json:"quantity_delta" db:"quantity_delta"`
	RecordedAt    time.Time `json:"recorded_at" db:"recorded_at"`
	Seq           int64     `json:"-" db:"seq"`
}

// PendingEntry is a delta waiting to be appended as part of a batch.
type PendingEntry struct {
	BookID        uuid.UUID
	QuantityDelta int64
}

// AddStockRequest is the payload for POST /stock/add.
type AddStockRequest struct {
	Barcode  string `json:"barcode"`
	Quantity int64  `json:"quantity"`
}

func (r AddStockRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Barcode,
			validation.Required.Error("barcode is required"),
		),
		validation.Field(&r.Quantity,
			validation.Required.Error("quantity is required"),
			validation.Min(int64(1)).Error("quantity must be positive"),
		),
	)
}

// RemoveStockRequest is the payload for POST /stock/remove.
type RemoveStockRequest struct {
	Barcode  string `json:"barcode"`
	Quantity int64  `json:"quantity"`
}

func (r RemoveStockRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Barcode,
			validation.Required.Error("barcode is required"),
		),
		validation.Field(&r.Quantity,
			validation.Required.Error("quantity is required"),
			validation.Min(int64(1)).Error("quantity must be positive"),
		),
	)
}

// StockMovementResponse is returned after add/remove.
type StockMovementResponse struct {
	BookID        uuid.UUID `json:"book_id"`
	Barcode       string    `json:"barcode"`
	QuantityDelta int64     `json:"quantity_delta"`
	Balance       int64     `json:"balance"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// HistoryMovement is one windowed ledger row in a history response.
type HistoryMovement struct {
	Quantity   int64     `json:"quantity"`
	RecordedAt time.Time `json:"recorded_at"`
}

// HistoryBook identifies the book a history belongs to.
type HistoryBook struct {
	ID      uuid.UUID `json:"id"`
	Barcode *string   `json:"barcode"`
	Title   string    `json:"title"`
}

// HistoryResponse reconstructs stock movements over a window.
// EndBalance always equals StartBalance plus the sum of History
// quantities.
type HistoryResponse struct {
	Book         HistoryBook       `json:"book"`
	StartBalance int64             `json:"start_balance"`
	History      []HistoryMovement `json:"history"`
	EndBalance   int64             `json:"end_balance"`
}

// BulkImportRow is one applied row of a bulk import.
type BulkImportRow struct {
	BookID   uuid.UUID `json:"book_id"`
	Barcode  string    `json:"barcode"`
	Quantity int64     `json:"quantity"`
}

// BulkImportResponse summarizes an applied import batch.
type BulkImportResponse struct {
	Filename   string          `json:"filename"`
	RowCount   int             `json:"row_count"`
	Applied    []BulkImportRow `json:"applied"`
	ArchiveURL string          `json:"archive_url,omitempty"`
}
