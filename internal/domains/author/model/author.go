package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Author represents the database entity for the authors table.
type Author struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	BirthDate time.Time `json:"birth_date" db:"birth_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

const (
	MinNameLength = 1
	MaxNameLength = 100
)

// DateOnly is the wire format for birth dates.
const DateOnly = "2006-01-02"

// CreateAuthorRequest is the payload for creating an author.
type CreateAuthorRequest struct {
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD
}

func (r CreateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(MinNameLength, MaxNameLength),
		),
		validation.Field(&r.BirthDate,
			validation.Required.Error("birth_date is required"),
			validation.Date(DateOnly).Error("birth_date must be YYYY-MM-DD"),
		),
	)
}

// UpdateAuthorRequest is the payload for partial author updates.
type UpdateAuthorRequest struct {
	Name      *string `json:"name,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"`
}

func (r UpdateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.NilOrNotEmpty.Error("name cannot be empty"),
			validation.Length(MinNameLength, MaxNameLength),
		),
		validation.Field(&r.BirthDate,
			validation.Date(DateOnly).Error("birth_date must be YYYY-MM-DD"),
		),
	)
}

// AuthorResponse is the author projection returned to clients.
type AuthorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	BirthDate string    `json:"birth_date"`
}

// ToResponse converts Author to AuthorResponse.
func (a *Author) ToResponse() *AuthorResponse {
	return &AuthorResponse{
		ID:        a.ID,
		Name:      a.Name,
		BirthDate: a.BirthDate.Format(DateOnly),
	}
}

// ToResponseList converts a slice of authors.
func ToResponseList(authors []Author) []AuthorResponse {
	responses := make([]AuthorResponse, len(authors))
	for i := range authors {
		responses[i] = *authors[i].ToResponse()
	}
	return responses
}

// AuthorFilter carries list query parameters.
type AuthorFilter struct {
	Limit  int
	Offset int
}
