package model

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrBookNotFound is returned when a barcode or book id does not
	// resolve to a book.
	ErrBookNotFound = errors.New("book not found")

	// ErrInsufficientStock is returned when a removal would drive the
	// balance negative.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity is returned for zero or negative quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrUnsupportedFormat is returned for uploads whose extension has
	// no registered parser.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyImport is returned when a parsed upload holds no rows.
	ErrEmptyImport = errors.New("import file contains no rows")

	// ErrImportTooLarge is returned when an upload exceeds the
	// configured row limit.
	ErrImportTooLarge = errors.New("import file exceeds the row limit")
)

// NewInsufficientStockError reports both sides of a rejected removal.
func NewInsufficientStockError(requested, available int64) error {
	return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, requested, available)
}

// NewBadRowError points at the row that sank an import batch.
func NewBadRowError(row int, cause error) error {
	return fmt.Errorf("row %d: %w", row, cause)
}

// ToHTTPStatus converts a domain error to an HTTP status code.
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrBookNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrEmptyImport),
		errors.Is(err, ErrImportTooLarge):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
