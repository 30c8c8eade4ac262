package gateway

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// PresenceRegistry tracks which connections are viewing which board, with the
// opaque user metadata each one joined with. A connection belongs to at most
// one board room at a time; joining a new room implicitly removes it from the
// previous one.
//
// Entries are ephemeral. Nothing here survives the process.
type PresenceRegistry struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]map[string]ActiveUser
	conns map[string]uuid.UUID
}

// NewPresenceRegistry creates an empty registry.
func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		rooms: make(map[uuid.UUID]map[string]ActiveUser),
		conns: make(map[string]uuid.UUID),
	}
}

// Join adds the connection to boardID's room, removing it from any room it
// previously occupied, and returns the resulting roster.
func (p *PresenceRegistry) Join(connID string, boardID uuid.UUID, user json.RawMessage) []ActiveUser {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prev, ok := p.conns[connID]; ok && prev != boardID {
		p.removeLocked(connID, prev)
	}

	room := p.rooms[boardID]
	if room == nil {
		room = make(map[string]ActiveUser)
		p.rooms[boardID] = room
	}
	room[connID] = ActiveUser{SocketID: connID, User: user}
	p.conns[connID] = boardID

	return rosterLocked(room)
}

// Leave removes the connection from boardID's room and returns the remaining
// roster.
func (p *PresenceRegistry) Leave(connID string, boardID uuid.UUID) []ActiveUser {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.removeLocked(connID, boardID)
	return rosterLocked(p.rooms[boardID])
}

// Drop handles a disconnect: it removes the connection from whatever room it
// belonged to and reports that room with its remaining roster so the caller
// can notify the members left behind.
func (p *PresenceRegistry) Drop(connID string) (uuid.UUID, []ActiveUser, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	boardID, ok := p.conns[connID]
	if !ok {
		return uuid.Nil, nil, false
	}
	p.removeLocked(connID, boardID)
	return boardID, rosterLocked(p.rooms[boardID]), true
}

// Roster returns the current membership of a board room.
func (p *PresenceRegistry) Roster(boardID uuid.UUID) []ActiveUser {
	p.mu.Lock()
	defer p.mu.Unlock()
	return rosterLocked(p.rooms[boardID])
}

func (p *PresenceRegistry) removeLocked(connID string, boardID uuid.UUID) {
	if room, ok := p.rooms[boardID]; ok {
		delete(room, connID)
		if len(room) == 0 {
			delete(p.rooms, boardID)
		}
	}
	if p.conns[connID] == boardID {
		delete(p.conns, connID)
	}
}

func rosterLocked(room map[string]ActiveUser) []ActiveUser {
	users := make([]ActiveUser, 0, len(room))
	for _, u := range room {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].SocketID < users[j].SocketID })
	return users
}
