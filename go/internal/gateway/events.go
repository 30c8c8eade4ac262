package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/boardsync/go/internal/models"
)

// EventType identifies a message on the realtime channel.
type EventType string

// Client -> server events. Domain events arrive after the initiating client
// has already persisted the change through the synchronous API; the gateway
// only relays them to the rest of the room.
const (
	EventJoinBoard  EventType = "joinBoard"
	EventLeaveBoard EventType = "leaveBoard"
	// EventCursorMove is relayed room-wide like a domain event, but the
	// server stamps the originating socket id on the way through.
	EventCursorMove EventType = "cursorMove"
)

// Domain events, relayed room-wide in both directions.
const (
	EventCardMoved     EventType = "cardMoved"
	EventCardCreated   EventType = "cardCreated"
	EventCardUpdated   EventType = "cardUpdated"
	EventCardDeleted   EventType = "cardDeleted"
	EventListCreated   EventType = "listCreated"
	EventListUpdated   EventType = "listUpdated"
	EventListReordered EventType = "listReordered"
	EventListDeleted   EventType = "listDeleted"
	EventBoardUpdated  EventType = "boardUpdated"
)

// Server -> client events.
const (
	EventBoardData  EventType = "boardData"
	EventUserJoined EventType = "userJoined"
	EventUserLeft   EventType = "userLeft"
	EventError      EventType = "error"
)

// Envelope is the wire frame for every message in either direction.
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ActiveUser is one presence entry: a connection id plus the opaque user
// metadata it joined with.
type ActiveUser struct {
	SocketID string          `json:"socketId"`
	User     json.RawMessage `json:"user,omitempty"`
}

// JoinBoardPayload subscribes the connection to a board room.
type JoinBoardPayload struct {
	BoardID uuid.UUID       `json:"boardId"`
	User    json.RawMessage `json:"user,omitempty"`
}

// LeaveBoardPayload unsubscribes the connection from a board room.
type LeaveBoardPayload struct {
	BoardID uuid.UUID `json:"boardId"`
}

// CardMovedPayload is the room-scoped shape of a card move.
type CardMovedPayload struct {
	CardID       uuid.UUID    `json:"cardId"`
	SourceListID uuid.UUID    `json:"sourceListId"`
	TargetListID uuid.UUID    `json:"targetListId"`
	NewPosition  float64      `json:"newPosition"`
	Card         *models.Card `json:"card,omitempty"`
}

// CardCreatedPayload announces a new card.
type CardCreatedPayload struct {
	ListID uuid.UUID   `json:"listId"`
	Card   models.Card `json:"card"`
}

// CardUpdatedPayload carries plain field edits as an opaque patch.
type CardUpdatedPayload struct {
	CardID  uuid.UUID       `json:"cardId"`
	Updates json.RawMessage `json:"updates"`
}

// CardDeletedPayload announces a deleted or archived card.
type CardDeletedPayload struct {
	CardID uuid.UUID `json:"cardId"`
	ListID uuid.UUID `json:"listId"`
}

// ListCreatedPayload announces a new list.
type ListCreatedPayload struct {
	List models.List `json:"list"`
}

// ListUpdatedPayload carries plain list field edits.
type ListUpdatedPayload struct {
	ListID  uuid.UUID       `json:"listId"`
	Updates json.RawMessage `json:"updates"`
}

// ListReorderedPayload announces a list position change.
type ListReorderedPayload struct {
	ListID      uuid.UUID    `json:"listId"`
	NewPosition float64      `json:"newPosition"`
	List        *models.List `json:"list,omitempty"`
}

// ListDeletedPayload announces a deleted or archived list.
type ListDeletedPayload struct {
	ListID uuid.UUID `json:"listId"`
}

// BoardUpdatedPayload carries board field edits.
type BoardUpdatedPayload struct {
	Updates json.RawMessage `json:"updates"`
}

// BoardDataPayload is sent once, to the joining connection only.
type BoardDataPayload struct {
	Board       *models.BoardSnapshot `json:"board"`
	ActiveUsers []ActiveUser          `json:"activeUsers"`
}

// UserJoinedPayload notifies a room of a new member.
type UserJoinedPayload struct {
	User        json.RawMessage `json:"user,omitempty"`
	ActiveUsers []ActiveUser    `json:"activeUsers"`
}

// UserLeftPayload notifies a room of a departed member.
type UserLeftPayload struct {
	SocketID    string       `json:"socketId"`
	ActiveUsers []ActiveUser `json:"activeUsers"`
}

// CursorPosition is a point on the board surface.
type CursorPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CursorMovePayload fans a member's live cursor position out to the room.
// SocketID is set by the server; clients send only the position (with the
// board scope).
type CursorMovePayload struct {
	SocketID string         `json:"socketId,omitempty"`
	Position CursorPosition `json:"position"`
}

// ErrorPayload is sent to a single connection when its own request failed.
type ErrorPayload struct {
	Message string `json:"message"`
}

// boardScope extracts the room id that client->server domain events carry
// alongside their payload.
type boardScope struct {
	BoardID uuid.UUID `json:"boardId"`
}

// NewEnvelope marshals a payload into a wire frame.
func NewEnvelope(event EventType, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	return &Envelope{Event: event, Data: data}, nil
}
