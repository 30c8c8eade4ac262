package models

import (
	"time"

	"github.com/google/uuid"
)

// List is a column on a board. Ordering among the lists of a board is by
// ascending Position; within a non-archived board no two non-archived lists
// persist the same position value.
type List struct {
	ID         uuid.UUID `json:"id"`
	BoardID    uuid.UUID `json:"boardId"`
	Title      string    `json:"title"`
	Position   float64   `json:"position"`
	IsArchived bool      `json:"isArchived"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
