package model

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrAuthorNotFound is returned when an author does not resolve.
	ErrAuthorNotFound = errors.New("author not found")

	// ErrAuthorHasBooks is returned when deleting an author that still
	// has books referencing it.
	ErrAuthorHasBooks = errors.New("cannot delete author with linked books")

	// ErrBirthDateTooEarly is returned when a birth date falls before
	// the configured cutoff.
	ErrBirthDateTooEarly = errors.New("birth_date is before the configured cutoff")

	// ErrInvalidName is returned for blank or oversized names.
	ErrInvalidName = errors.New("author name is invalid")

	// ErrInvalidBirthDate is returned when a birth date does not parse.
	ErrInvalidBirthDate = errors.New("birth_date must be YYYY-MM-DD")
)

// NewBirthDateTooEarlyError details the rejected date and the cutoff.
func NewBirthDateTooEarlyError(birthDate, cutoff time.Time) error {
	return fmt.Errorf("%w: got %s, cutoff %s",
		ErrBirthDateTooEarly, birthDate.Format(DateOnly), cutoff.Format(DateOnly))
}

// ToHTTPStatus converts a domain error to an HTTP status code.
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAuthorNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAuthorHasBooks):
		return http.StatusConflict
	case errors.Is(err, ErrBirthDateTooEarly),
		errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrInvalidBirthDate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
