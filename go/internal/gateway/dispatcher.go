package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// handleClientMessage routes one frame from the read pump.
func (cm *ConnectionManager) handleClientMessage(c *Connection, message []byte) {
	var env Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		log.Warn().
			Err(err).
			Str("connection_id", c.ID).
			Msg("malformed client frame")
		return
	}

	switch env.Event {
	case EventJoinBoard:
		cm.handleJoin(c, env.Data)
	case EventLeaveBoard:
		cm.handleLeave(c, env.Data)
	case EventCursorMove:
		cm.handleCursorMove(c, env.Data)
	case EventCardMoved, EventCardCreated, EventCardUpdated, EventCardDeleted,
		EventListCreated, EventListUpdated, EventListReordered, EventListDeleted,
		EventBoardUpdated:
		cm.relayDomainEvent(c, env.Event, env.Data)
	default:
		log.Debug().
			Str("connection_id", c.ID).
			Str("event", string(env.Event)).
			Msg("ignoring unknown client event")
	}
}

// handleJoin subscribes the connection to a board room: snapshot and roster
// go to the joiner alone, userJoined to everyone else in the room.
func (cm *ConnectionManager) handleJoin(c *Connection, data json.RawMessage) {
	var payload JoinBoardPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.BoardID == uuid.Nil {
		c.sendEvent(EventError, ErrorPayload{Message: "invalid joinBoard payload"})
		return
	}

	roster := cm.joinRoom(c, payload.BoardID, payload.User)

	ctx, cancel := context.WithTimeout(context.Background(), cm.config.SnapshotTimeout)
	defer cancel()

	snapshot, err := cm.snapshots.GetBoardSnapshot(ctx, payload.BoardID)
	if err != nil {
		log.Error().
			Err(err).
			Str("connection_id", c.ID).
			Str("board_id", payload.BoardID.String()).
			Msg("failed to load board snapshot on join")
		c.sendEvent(EventError, ErrorPayload{Message: "failed to join board"})
		return
	}

	c.sendEvent(EventBoardData, BoardDataPayload{
		Board:       snapshot,
		ActiveUsers: roster,
	})

	cm.Broadcast(payload.BoardID, c.ID, EventUserJoined, UserJoinedPayload{
		User:        payload.User,
		ActiveUsers: roster,
	})

	log.Info().
		Str("connection_id", c.ID).
		Str("board_id", payload.BoardID.String()).
		Int("active_users", len(roster)).
		Msg("connection joined board")
}

// handleLeave unsubscribes the connection and notifies the remaining members.
func (cm *ConnectionManager) handleLeave(c *Connection, data json.RawMessage) {
	var payload LeaveBoardPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.BoardID == uuid.Nil {
		c.sendEvent(EventError, ErrorPayload{Message: "invalid leaveBoard payload"})
		return
	}

	roster := cm.leaveRoom(c, payload.BoardID)

	cm.Broadcast(payload.BoardID, c.ID, EventUserLeft, UserLeftPayload{
		SocketID:    c.ID,
		ActiveUsers: roster,
	})

	log.Info().
		Str("connection_id", c.ID).
		Str("board_id", payload.BoardID.String()).
		Msg("connection left board")
}

// handleCursorMove relays a member's cursor position to the rest of the
// room, stamped with the originating socket id. Cursor frames are transient
// and high-frequency, so malformed ones are dropped without an error reply.
func (cm *ConnectionManager) handleCursorMove(c *Connection, data json.RawMessage) {
	var in struct {
		boardScope
		CursorMovePayload
	}
	if err := json.Unmarshal(data, &in); err != nil || in.BoardID == uuid.Nil {
		return
	}

	out := CursorMovePayload{SocketID: c.ID, Position: in.Position}
	cm.Broadcast(in.BoardID, c.ID, EventCursorMove, out)

	if cm.publisher != nil {
		if remote, err := json.Marshal(out); err == nil {
			cm.publisher.Publish(in.BoardID, EventCursorMove, remote)
		}
	}
}

// relayDomainEvent fans a client-reported domain event out to the rest of the
// room and to peer gateway instances. The initiating client already applied
// the change locally, so it is always excluded.
func (cm *ConnectionManager) relayDomainEvent(c *Connection, event EventType, data json.RawMessage) {
	boardID, payload, err := ParseDomainEvent(event, data)
	if err != nil {
		log.Warn().
			Err(err).
			Str("connection_id", c.ID).
			Str("event", string(event)).
			Msg("malformed domain event payload")
		return
	}

	switch event {
	case EventCardMoved:
		cm.BroadcastCardMoved(boardID, c.ID, payload.(CardMovedPayload))
	case EventCardCreated:
		cm.BroadcastCardCreated(boardID, c.ID, payload.(CardCreatedPayload))
	case EventCardUpdated:
		cm.BroadcastCardUpdated(boardID, c.ID, payload.(CardUpdatedPayload))
	case EventCardDeleted:
		cm.BroadcastCardDeleted(boardID, c.ID, payload.(CardDeletedPayload))
	case EventListCreated:
		cm.BroadcastListCreated(boardID, c.ID, payload.(ListCreatedPayload))
	case EventListUpdated:
		cm.BroadcastListUpdated(boardID, c.ID, payload.(ListUpdatedPayload))
	case EventListReordered:
		cm.BroadcastListReordered(boardID, c.ID, payload.(ListReorderedPayload))
	case EventListDeleted:
		cm.BroadcastListDeleted(boardID, c.ID, payload.(ListDeletedPayload))
	case EventBoardUpdated:
		cm.BroadcastBoardUpdated(boardID, c.ID, payload.(BoardUpdatedPayload))
	}

	if cm.publisher != nil {
		remote, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("event", string(event)).Msg("failed to marshal event for bridge")
			return
		}
		cm.publisher.Publish(boardID, event, remote)
	}
}

// ParseDomainEvent extracts the board scope and the room-shaped payload from
// a client->server domain event.
func ParseDomainEvent(event EventType, data json.RawMessage) (uuid.UUID, any, error) {
	switch event {
	case EventCardMoved:
		var in struct {
			boardScope
			CardMovedPayload
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return uuid.Nil, nil, err
		}
		return in.BoardID, in.CardMovedPayload, nil

	case EventCardCreated:
		var in struct {
			boardScope
			CardCreatedPayload
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return uuid.Nil, nil, err
		}
		return in.BoardID, in.CardCreatedPayload, nil

	case EventCardUpdated:
		var in struct {
			boardScope
			CardUpdatedPayload
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return uuid.Nil, nil, err
		}
		return in.BoardID, in.CardUpdatedPayload, nil

	case EventCardDeleted:
		var in struct {
			boardScope
			CardDeletedPayload
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return uuid.Nil, nil, err
		}
		return in.BoardID, in.CardDeletedPayload, nil

	case EventListCreated:
		var in struct {
			boardScope
			ListCreatedPayload
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return uuid.Nil, nil, err
		}
		return in.BoardID, in.ListCreatedPayload, nil

	case EventListUpdated:
		var in struct {
			boardScope
			ListUpdatedPayload
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return uuid.Nil, nil, err
		}
		return in.BoardID, in.ListUpdatedPayload, nil

	case EventListReordered:
		var in struct {
			boardScope
			ListReorderedPayload
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return uuid.Nil, nil, err
		}
		return in.BoardID, in.ListReorderedPayload, nil

	case EventListDeleted:
		var in struct {
			boardScope
			ListDeletedPayload
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return uuid.Nil, nil, err
		}
		return in.BoardID, in.ListDeletedPayload, nil

	case EventBoardUpdated:
		var in struct {
			boardScope
			BoardUpdatedPayload
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return uuid.Nil, nil, err
		}
		return in.BoardID, in.BoardUpdatedPayload, nil

	default:
		return uuid.Nil, nil, fmt.Errorf("not a domain event: %s", event)
	}
}
