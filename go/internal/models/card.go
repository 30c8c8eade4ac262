package models

import (
	"time"

	"github.com/google/uuid"
)

// Priority defines the urgency of a card.
type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// LabelColor is the fixed palette for card labels.
type LabelColor string

const (
	LabelGreen  LabelColor = "green"
	LabelYellow LabelColor = "yellow"
	LabelOrange LabelColor = "orange"
	LabelRed    LabelColor = "red"
	LabelPurple LabelColor = "purple"
	LabelBlue   LabelColor = "blue"
)

// Label is a colored tag on a card.
type Label struct {
	Color LabelColor `json:"color"`
	Text  string     `json:"text,omitempty"`
}

// ChecklistItem is a single entry in a card's checklist.
type ChecklistItem struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"isCompleted"`
}

// Card is a task item within a list. BoardID is denormalized from the owning
// list and must always match it; the move operation is the only write path
// that touches ListID, BoardID or Position.
type Card struct {
	ID          uuid.UUID       `json:"id"`
	ListID      uuid.UUID       `json:"listId"`
	BoardID     uuid.UUID       `json:"boardId"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Position    float64         `json:"position"`
	Priority    Priority        `json:"priority"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	Labels      []Label         `json:"labels,omitempty"`
	Checklist   []ChecklistItem `json:"checklist,omitempty"`
	IsArchived  bool            `json:"isArchived"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
