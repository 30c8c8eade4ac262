package list

import "github.com/google/uuid"

// CreateListRequest creates a list at the tail of a board.
type CreateListRequest struct {
	BoardID uuid.UUID `json:"boardId"`
	Title   string    `json:"title"`
}

// UpdateListFieldsRequest carries plain field edits; position is only mutated
// by ReorderList.
type UpdateListFieldsRequest struct {
	Title *string `json:"title,omitempty"`
}

// ReorderListRequest carries the neighbor positions the client observed when
// the list was dropped.
type ReorderListRequest struct {
	PrevPosition *float64 `json:"prevPosition"`
	NextPosition *float64 `json:"nextPosition"`
}
