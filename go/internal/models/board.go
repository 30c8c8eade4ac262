package models

import (
	"time"

	"github.com/google/uuid"
)

// Board is the root aggregate: a named container of ordered lists.
type Board struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Background  string    `json:"background"`
	IsArchived  bool      `json:"isArchived"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DefaultBackground is applied when a board is created without one.
const DefaultBackground = "#0079bf"

// ListWithCards is a list plus its non-archived cards in position order.
type ListWithCards struct {
	List
	Cards []Card `json:"cards"`
}

// BoardSnapshot is the full nested projection of a board, sent to a
// connection when it joins the board's room and refetched by clients after a
// failed move.
type BoardSnapshot struct {
	Board
	Lists []ListWithCards `json:"lists"`
}
