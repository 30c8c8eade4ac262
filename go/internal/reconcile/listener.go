package reconcile

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/boardsync/go/internal/gateway"
)

// HandlePeerEvent merges one room broadcast from the realtime channel into
// the local projection. Events the projection cannot place (unknown ids,
// lists this client never saw) are dropped without error; the next resync
// repairs any divergence.
func (r *Reconciler) HandlePeerEvent(event gateway.EventType, data json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event {
	case gateway.EventCardMoved:
		var p gateway.CardMovedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			break
		}
		r.state.ApplyCardMoved(p.CardID, p.TargetListID, p.NewPosition, p.Card)

	case gateway.EventCardCreated:
		var p gateway.CardCreatedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			break
		}
		r.state.ApplyCardCreated(p.ListID, p.Card)

	case gateway.EventCardUpdated:
		var p gateway.CardUpdatedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			break
		}
		r.state.ApplyCardUpdated(p.CardID, p.Updates)

	case gateway.EventCardDeleted:
		var p gateway.CardDeletedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			break
		}
		r.state.ApplyCardDeleted(p.CardID)

	case gateway.EventListCreated:
		var p gateway.ListCreatedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			break
		}
		r.state.ApplyListCreated(p.List)

	case gateway.EventListUpdated:
		var p gateway.ListUpdatedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			break
		}
		r.state.ApplyListUpdated(p.ListID, p.Updates)

	case gateway.EventListReordered:
		var p gateway.ListReorderedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			break
		}
		r.state.ApplyListReordered(p.ListID, p.NewPosition)

	case gateway.EventListDeleted:
		var p gateway.ListDeletedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			break
		}
		r.state.ApplyListDeleted(p.ListID)

	case gateway.EventBoardUpdated:
		var p gateway.BoardUpdatedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			break
		}
		r.state.ApplyBoardUpdated(p.Updates)

	default:
		log.Debug().Str("event", string(event)).Msg("ignoring non-domain peer event")
	}
}
