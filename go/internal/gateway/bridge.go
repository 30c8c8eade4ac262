package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// BridgeConfig holds configuration for the cross-instance event bridge.
type BridgeConfig struct {
	URL           string
	SubjectPrefix string // e.g. "board.events"
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultBridgeConfig returns default bridge configuration
func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "board.events",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// bridgeEnvelope is the NATS message body. InstanceID lets each gateway skip
// the events it published itself.
type bridgeEnvelope struct {
	InstanceID string          `json:"instanceId"`
	BoardID    uuid.UUID       `json:"boardId"`
	Event      EventType       `json:"event"`
	Data       json.RawMessage `json:"data"`
}

// Bridge shares room events between gateway instances over NATS so that
// viewers of one board connected to different processes still see each
// other's changes. Plain pub/sub, not JetStream: a board event is only
// meaningful while its viewers are connected, so replaying stale events after
// a restart would do harm, not good.
type Bridge struct {
	nc         *nats.Conn
	sub        *nats.Subscription
	cm         *ConnectionManager
	config     BridgeConfig
	instanceID string
}

// NewBridge connects to NATS and subscribes to every board event subject.
func NewBridge(cm *ConnectionManager, config BridgeConfig) (*Bridge, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	b := &Bridge{
		nc:         nc,
		cm:         cm,
		config:     config,
		instanceID: uuid.New().String(),
	}

	sub, err := nc.Subscribe(config.SubjectPrefix+".>", b.handleRemoteEvent)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribe to board events: %w", err)
	}
	b.sub = sub

	log.Info().
		Str("instance", b.instanceID).
		Str("subject", config.SubjectPrefix+".>").
		Msg("gateway bridge connected")

	return b, nil
}

// Publish forwards a room event to peer instances. Fire-and-forget.
func (b *Bridge) Publish(boardID uuid.UUID, event EventType, data json.RawMessage) {
	body, err := json.Marshal(bridgeEnvelope{
		InstanceID: b.instanceID,
		BoardID:    boardID,
		Event:      event,
		Data:       data,
	})
	if err != nil {
		log.Error().Err(err).Str("event", string(event)).Msg("failed to marshal bridge envelope")
		return
	}

	subject := fmt.Sprintf("%s.%s", b.config.SubjectPrefix, boardID)
	if err := b.nc.Publish(subject, body); err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("failed to publish board event")
	}
}

// handleRemoteEvent re-broadcasts an event published by a peer instance to
// the local room. No originator exclusion: the originating connection lives
// on the peer.
func (b *Bridge) handleRemoteEvent(msg *nats.Msg) {
	var env bridgeEnvelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		log.Warn().Err(err).Str("subject", msg.Subject).Msg("malformed bridge message")
		return
	}
	if env.InstanceID == b.instanceID {
		return
	}

	payload, err := remotePayload(env.Event, env.Data)
	if err != nil {
		log.Warn().Err(err).Str("event", string(env.Event)).Msg("undecodable bridge payload")
		return
	}
	b.cm.Broadcast(env.BoardID, "", env.Event, payload)
}

// remotePayload decodes a bridge payload, which is already room-shaped (no
// boardId field).
func remotePayload(event EventType, data json.RawMessage) (any, error) {
	var p any
	switch event {
	case EventCardMoved:
		p = &CardMovedPayload{}
	case EventCardCreated:
		p = &CardCreatedPayload{}
	case EventCardUpdated:
		p = &CardUpdatedPayload{}
	case EventCardDeleted:
		p = &CardDeletedPayload{}
	case EventListCreated:
		p = &ListCreatedPayload{}
	case EventListUpdated:
		p = &ListUpdatedPayload{}
	case EventListReordered:
		p = &ListReorderedPayload{}
	case EventListDeleted:
		p = &ListDeletedPayload{}
	case EventBoardUpdated:
		p = &BoardUpdatedPayload{}
	case EventCursorMove:
		p = &CursorMovePayload{}
	default:
		return nil, fmt.Errorf("not a domain event: %s", event)
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Close drains the subscription and closes the connection.
func (b *Bridge) Close() {
	if b.sub != nil {
		b.sub.Unsubscribe()
	}
	b.nc.Close()
}
