package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/boardsync/go/internal/models"
)

// SnapshotProvider supplies the full board projection sent to a joining
// connection. Satisfied by board.App.
type SnapshotProvider interface {
	GetBoardSnapshot(ctx context.Context, boardID uuid.UUID) (*models.BoardSnapshot, error)
}

// EventPublisher forwards room events to peer gateway instances. Satisfied by
// the NATS bridge; nil when the gateway runs standalone.
type EventPublisher interface {
	Publish(boardID uuid.UUID, event EventType, data json.RawMessage)
}

// ConnectionManager owns every WebSocket connection and the board rooms they
// occupy. Room broadcasts flow through a single channel drained by Start, so
// each recipient observes events in the order the server processed them for
// that room.
type ConnectionManager struct {
	// Connection pools organized by board ID
	rooms map[uuid.UUID]map[*Connection]bool
	mu    sync.RWMutex

	presence  *PresenceRegistry
	snapshots SnapshotProvider
	publisher EventPublisher

	upgrader websocket.Upgrader
	config   ConnectionConfig

	broadcastCh chan broadcastMessage
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	// Current room, guarded by the manager's lock.
	boardID uuid.UUID

	ConnectedAt time.Time
	LastPing    time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	SnapshotTimeout time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

type broadcastMessage struct {
	boardID uuid.UUID
	exclude string // originating connection id, never echoed to
	frame   []byte // pre-marshalled envelope
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		SnapshotTimeout: 5 * time.Second,
		MaxMessageSize:  64 * 1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig, presence *PresenceRegistry, snapshots SnapshotProvider) *ConnectionManager {
	return &ConnectionManager{
		rooms:     make(map[uuid.UUID]map[*Connection]bool),
		presence:  presence,
		snapshots: snapshots,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan broadcastMessage, 1000),
	}
}

// WithPublisher attaches a cross-instance event publisher.
func (cm *ConnectionManager) WithPublisher(p EventPublisher) *ConnectionManager {
	cm.publisher = p
	return cm
}

// Start drains the broadcast channel until ctx is cancelled.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case message := <-cm.broadcastCh:
			cm.deliver(message)
		}
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and starts its
// pumps. The connection joins a room only when the client sends joinBoard.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Manager:     cm,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Msg("WebSocket connection established")

	return nil
}

// Broadcast enqueues an event for every connection in boardID's room except
// excludeConnID. Fire-and-forget: a full queue drops the message rather than
// blocking the caller.
func (cm *ConnectionManager) Broadcast(boardID uuid.UUID, excludeConnID string, event EventType, payload any) {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		log.Error().Err(err).Str("event", string(event)).Msg("failed to build broadcast envelope")
		return
	}
	frame, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("event", string(event)).Msg("failed to marshal broadcast frame")
		return
	}

	select {
	case cm.broadcastCh <- broadcastMessage{boardID: boardID, exclude: excludeConnID, frame: frame}:
	default:
		log.Warn().Str("board_id", boardID.String()).Msg("broadcast channel full, dropping message")
	}
}

// deliver fans a frame out to the room.
func (cm *ConnectionManager) deliver(message broadcastMessage) {
	cm.mu.RLock()
	connections, exists := cm.rooms[message.boardID]
	if !exists {
		cm.mu.RUnlock()
		return
	}

	// Snapshot the room so the lock is not held during sends.
	var targets []*Connection
	for conn := range connections {
		if conn.ID == message.exclude {
			continue
		}
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	for _, conn := range targets {
		select {
		case conn.Send <- message.frame:
		default:
			// Connection is slow/dead, close it
			log.Warn().
				Str("connection_id", conn.ID).
				Msg("connection send buffer full, closing connection")
			cm.dropConnection(conn)
			conn.Conn.Close()
		}
	}
}

// joinRoom moves the connection into boardID's room, leaving any previous
// room silently, and returns the new roster.
func (cm *ConnectionManager) joinRoom(c *Connection, boardID uuid.UUID, user json.RawMessage) []ActiveUser {
	cm.mu.Lock()
	if c.boardID != uuid.Nil {
		cm.removeFromRoomLocked(c, c.boardID)
	}
	if cm.rooms[boardID] == nil {
		cm.rooms[boardID] = make(map[*Connection]bool)
	}
	cm.rooms[boardID][c] = true
	c.boardID = boardID
	cm.mu.Unlock()

	return cm.presence.Join(c.ID, boardID, user)
}

// leaveRoom removes the connection from boardID's room and returns the
// remaining roster.
func (cm *ConnectionManager) leaveRoom(c *Connection, boardID uuid.UUID) []ActiveUser {
	cm.mu.Lock()
	cm.removeFromRoomLocked(c, boardID)
	cm.mu.Unlock()

	return cm.presence.Leave(c.ID, boardID)
}

// dropConnection is the implicit leave on disconnect. It notifies the room
// the connection occupied, if any.
func (cm *ConnectionManager) dropConnection(c *Connection) {
	cm.mu.Lock()
	if _, registered := cm.rooms[c.boardID]; !registered || !cm.rooms[c.boardID][c] {
		cm.mu.Unlock()
		return
	}
	cm.removeFromRoomLocked(c, c.boardID)
	cm.mu.Unlock()

	close(c.Send)

	boardID, roster, ok := cm.presence.Drop(c.ID)
	if ok {
		cm.Broadcast(boardID, c.ID, EventUserLeft, UserLeftPayload{
			SocketID:    c.ID,
			ActiveUsers: roster,
		})
	}

	log.Info().
		Str("connection_id", c.ID).
		Msg("connection unregistered")
}

func (cm *ConnectionManager) removeFromRoomLocked(c *Connection, boardID uuid.UUID) {
	if room, ok := cm.rooms[boardID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(cm.rooms, boardID)
		}
	}
	if c.boardID == boardID {
		c.boardID = uuid.Nil
	}
}

// ConnectionStats reports active room and connection counts.
func (cm *ConnectionManager) ConnectionStats() (totalConnections, activeBoards int) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	for _, room := range cm.rooms {
		totalConnections += len(room)
	}
	return totalConnections, len(cm.rooms)
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				// Channel was closed
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			c.LastPing = time.Now()
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump() {
	defer func() {
		c.Manager.dropConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.LastPing = time.Now()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		c.Manager.handleClientMessage(c, message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

// sendEvent writes an event to this connection alone.
func (c *Connection) sendEvent(event EventType, payload any) {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		log.Error().Err(err).Str("event", string(event)).Msg("failed to build envelope")
		return
	}
	frame, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("event", string(event)).Msg("failed to marshal frame")
		return
	}

	select {
	case c.Send <- frame:
	default:
		log.Warn().Str("connection_id", c.ID).Msg("send buffer full, dropping direct message")
	}
}
