package card

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/boardsync/go/internal/models"
)

// CreateCardRequest creates a card at the tail of a list.
type CreateCardRequest struct {
	ListID      uuid.UUID `json:"listId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

// UpdateCardFieldsRequest carries plain field edits. List, board and position
// are deliberately absent: only MoveCard may change placement.
type UpdateCardFieldsRequest struct {
	Title       *string                `json:"title,omitempty"`
	Description *string                `json:"description,omitempty"`
	Priority    *models.Priority       `json:"priority,omitempty"`
	DueDate     *time.Time             `json:"dueDate,omitempty"`
	Labels      []models.Label         `json:"labels,omitempty"`
	Checklist   []models.ChecklistItem `json:"checklist,omitempty"`
}

// MoveCardRequest is the synchronous move surface. Prev/Next are the neighbor
// positions the client observed at drag time; nil means no neighbor on that
// side.
type MoveCardRequest struct {
	TargetListID     uuid.UUID `json:"targetListId"`
	PrevCardPosition *float64  `json:"prevCardPosition"`
	NextCardPosition *float64  `json:"nextCardPosition"`
}

// PositionUpdate is one entry of a bulk rebalance write.
type PositionUpdate struct {
	ID       uuid.UUID
	Position float64
}
