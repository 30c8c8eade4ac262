package gateway

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBridge() (*Bridge, *ConnectionManager) {
	cm := NewConnectionManager(DefaultConnectionConfig(), NewPresenceRegistry(), &stubSnapshots{})
	b := &Bridge{
		cm:         cm,
		config:     DefaultBridgeConfig(),
		instanceID: "instance-local",
	}
	return b, cm
}

func bridgeMsg(t *testing.T, instanceID string, boardID uuid.UUID, event EventType, payload any) *nats.Msg {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	body, err := json.Marshal(bridgeEnvelope{
		InstanceID: instanceID,
		BoardID:    boardID,
		Event:      event,
		Data:       data,
	})
	require.NoError(t, err)
	return &nats.Msg{Subject: "board.events." + boardID.String(), Data: body}
}

func TestRemoteEventRebroadcastLocally(t *testing.T) {
	b, cm := newTestBridge()
	boardID := uuid.New()
	cardID := uuid.New()

	b.handleRemoteEvent(bridgeMsg(t, "instance-peer", boardID, EventCardMoved, CardMovedPayload{
		CardID:       cardID,
		SourceListID: uuid.New(),
		TargetListID: uuid.New(),
		NewPosition:  1.5,
	}))

	select {
	case msg := <-cm.broadcastCh:
		assert.Equal(t, boardID, msg.boardID)
		assert.Empty(t, msg.exclude)

		var env Envelope
		require.NoError(t, json.Unmarshal(msg.frame, &env))
		assert.Equal(t, EventCardMoved, env.Event)
		var moved CardMovedPayload
		require.NoError(t, json.Unmarshal(env.Data, &moved))
		assert.Equal(t, cardID, moved.CardID)
	default:
		t.Fatal("expected a local broadcast for the peer event")
	}
}

func TestOwnEventsAreSkipped(t *testing.T) {
	b, cm := newTestBridge()
	boardID := uuid.New()

	b.handleRemoteEvent(bridgeMsg(t, "instance-local", boardID, EventCardDeleted, CardDeletedPayload{
		CardID: uuid.New(),
		ListID: uuid.New(),
	}))

	select {
	case <-cm.broadcastCh:
		t.Fatal("event published by this instance must not loop back")
	default:
	}
}

func TestMalformedBridgeMessageIgnored(t *testing.T) {
	b, cm := newTestBridge()

	b.handleRemoteEvent(&nats.Msg{Subject: "board.events.x", Data: []byte("not json")})
	b.handleRemoteEvent(bridgeMsg(t, "instance-peer", uuid.New(), EventType("bogus"), struct{}{}))

	select {
	case <-cm.broadcastCh:
		t.Fatal("malformed bridge messages must be dropped")
	default:
	}
}
