package model

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrBookNotFound is returned when a book does not resolve by id
	// or barcode.
	ErrBookNotFound = errors.New("book not found")

	// ErrDuplicateBarcode is returned when a barcode is already taken.
	ErrDuplicateBarcode = errors.New("barcode already exists")

	// ErrPublishYearOutOfRange is returned when a publish year falls
	// before the configured minimum or after the current year.
	ErrPublishYearOutOfRange = errors.New("publish_year is out of range")

	// ErrAuthorNotFound is returned when the referenced author does
	// not exist.
	ErrAuthorNotFound = errors.New("author not found")
)

// NewPublishYearError details the rejected year and the allowed range.
func NewPublishYearError(year, min, max int) error {
	return fmt.Errorf("%w: got %d, allowed %d..%d", ErrPublishYearOutOfRange, year, min, max)
}

// ToHTTPStatus converts a domain error to an HTTP status code.
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrBookNotFound), errors.Is(err, ErrAuthorNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateBarcode):
		return http.StatusConflict
	case errors.Is(err, ErrPublishYearOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
