package gateway

import "github.com/google/uuid"

// Typed room broadcast surface. Each method emits one domain event to every
// connection in the board's room except the originator, which already applied
// the change locally. originConnID may be empty when the event did not
// originate on this instance.

func (cm *ConnectionManager) BroadcastCardMoved(boardID uuid.UUID, originConnID string, p CardMovedPayload) {
	cm.Broadcast(boardID, originConnID, EventCardMoved, p)
}

func (cm *ConnectionManager) BroadcastCardCreated(boardID uuid.UUID, originConnID string, p CardCreatedPayload) {
	cm.Broadcast(boardID, originConnID, EventCardCreated, p)
}

func (cm *ConnectionManager) BroadcastCardUpdated(boardID uuid.UUID, originConnID string, p CardUpdatedPayload) {
	cm.Broadcast(boardID, originConnID, EventCardUpdated, p)
}

func (cm *ConnectionManager) BroadcastCardDeleted(boardID uuid.UUID, originConnID string, p CardDeletedPayload) {
	cm.Broadcast(boardID, originConnID, EventCardDeleted, p)
}

func (cm *ConnectionManager) BroadcastListCreated(boardID uuid.UUID, originConnID string, p ListCreatedPayload) {
	cm.Broadcast(boardID, originConnID, EventListCreated, p)
}

func (cm *ConnectionManager) BroadcastListUpdated(boardID uuid.UUID, originConnID string, p ListUpdatedPayload) {
	cm.Broadcast(boardID, originConnID, EventListUpdated, p)
}

func (cm *ConnectionManager) BroadcastListReordered(boardID uuid.UUID, originConnID string, p ListReorderedPayload) {
	cm.Broadcast(boardID, originConnID, EventListReordered, p)
}

func (cm *ConnectionManager) BroadcastListDeleted(boardID uuid.UUID, originConnID string, p ListDeletedPayload) {
	cm.Broadcast(boardID, originConnID, EventListDeleted, p)
}

func (cm *ConnectionManager) BroadcastBoardUpdated(boardID uuid.UUID, originConnID string, p BoardUpdatedPayload) {
	cm.Broadcast(boardID, originConnID, EventBoardUpdated, p)
}
