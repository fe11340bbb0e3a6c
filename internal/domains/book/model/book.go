package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	authormodel "inventory-backend/internal/domains/author/model"
)

// Book represents the database entity for the books table. Barcode is
// optional but unique when present.
type Book struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Barcode     *string   `json:"barcode" db:"barcode"`
	Title       string    `json:"title" db:"title"`
	PublishYear int       `json:"publish_year" db:"publish_year"`
	AuthorID    uuid.UUID `json:"author_id" db:"author_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

const (
	MaxTitleLength   = 255
	MaxBarcodeLength = 64
)

// CreateBookRequest is the payload for creating a book.
type CreateBookRequest struct {
	Barcode     *string `json:"barcode,omitempty"`
	Title       string  `json:"title"`
	PublishYear int     `json:"publish_year"`
	AuthorID    string  `json:"author_id"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Barcode,
			validation.NilOrNotEmpty.Error("barcode cannot be empty"),
			validation.Length(1, MaxBarcodeLength),
		),
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, MaxTitleLength),
		),
		validation.Field(&r.PublishYear,
			validation.Required.Error("publish_year is required"),
		),
		validation.Field(&r.AuthorID,
			validation.Required.Error("author_id is required"),
			validation.By(validateUUID),
		),
	)
}

// UpdateBookRequest is the payload for partial book updates.
type UpdateBookRequest struct {
	Barcode     *string `json:"barcode,omitempty"`
	Title       *string `json:"title,omitempty"`
	PublishYear *int    `json:"publish_year,omitempty"`
	AuthorID    *string `json:"author_id,omitempty"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Barcode,
			validation.NilOrNotEmpty.Error("barcode cannot be empty"),
			validation.Length(1, MaxBarcodeLength),
		),
		validation.Field(&r.Title,
			validation.NilOrNotEmpty.Error("title cannot be empty"),
			validation.Length(1, MaxTitleLength),
		),
		validation.Field(&r.AuthorID,
			validation.By(validateOptionalUUID),
		),
	)
}

func validateUUID(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_uuid", "must be a valid UUID")
	}
	return nil
}

func validateOptionalUUID(value interface{}) error {
	switch v := value.(type) {
	case string:
		return validateUUID(v)
	case *string:
		if v == nil {
			return nil
		}
		return validateUUID(*v)
	}
	return nil
}

// BookResponse is the book projection returned to clients, including
// the linked author and the current stock quantity.
type BookResponse struct {
	ID          uuid.UUID                   `json:"id"`
	Barcode     *string                     `json:"barcode"`
	Title       string                      `json:"title"`
	PublishYear int                         `json:"publish_year"`
	Author      *authormodel.AuthorResponse `json:"author"`
	Quantity    int64                       `json:"quantity"`
}

// ToResponse converts Book to BookResponse.
func (b *Book) ToResponse(author *authormodel.Author, quantity int64) *BookResponse {
	resp := &BookResponse{
		ID:          b.ID,
		Barcode:     b.Barcode,
		Title:       b.Title,
		PublishYear: b.PublishYear,
		Quantity:    quantity,
	}
	if author != nil {
		resp.Author = author.ToResponse()
	}
	return resp
}

// BookFilter carries list query parameters.
type BookFilter struct {
	AuthorID *uuid.UUID
	Search   string
	Limit    int
	Offset   int
}
