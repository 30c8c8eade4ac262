package gateway

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinAndRoster(t *testing.T) {
	p := NewPresenceRegistry()
	boardID := uuid.New()

	roster := p.Join("s1", boardID, json.RawMessage(`{"name":"ana"}`))
	require.Len(t, roster, 1)
	assert.Equal(t, "s1", roster[0].SocketID)

	roster = p.Join("s2", boardID, json.RawMessage(`{"name":"bo"}`))
	require.Len(t, roster, 2)
	assert.Equal(t, "s1", roster[0].SocketID)
	assert.Equal(t, "s2", roster[1].SocketID)

	assert.Len(t, p.Roster(boardID), 2)
}

func TestJoinSecondBoardLeavesFirst(t *testing.T) {
	p := NewPresenceRegistry()
	boardX := uuid.New()
	boardY := uuid.New()

	p.Join("s1", boardX, nil)
	roster := p.Join("s1", boardY, nil)

	require.Len(t, roster, 1)
	assert.Equal(t, "s1", roster[0].SocketID)
	assert.Empty(t, p.Roster(boardX))
	assert.Len(t, p.Roster(boardY), 1)
}

func TestRejoinSameBoardKeepsSingleEntry(t *testing.T) {
	p := NewPresenceRegistry()
	boardID := uuid.New()

	p.Join("s1", boardID, json.RawMessage(`{"name":"old"}`))
	roster := p.Join("s1", boardID, json.RawMessage(`{"name":"new"}`))

	require.Len(t, roster, 1)
	assert.JSONEq(t, `{"name":"new"}`, string(roster[0].User))
}

func TestLeaveRemovesFromRoster(t *testing.T) {
	p := NewPresenceRegistry()
	boardID := uuid.New()

	p.Join("s1", boardID, nil)
	p.Join("s2", boardID, nil)

	roster := p.Leave("s1", boardID)
	require.Len(t, roster, 1)
	assert.Equal(t, "s2", roster[0].SocketID)
}

func TestDropReportsRoomLeftBehind(t *testing.T) {
	p := NewPresenceRegistry()
	boardID := uuid.New()

	p.Join("s1", boardID, nil)
	p.Join("s2", boardID, nil)

	roomID, roster, ok := p.Drop("s1")
	require.True(t, ok)
	assert.Equal(t, boardID, roomID)
	require.Len(t, roster, 1)
	assert.Equal(t, "s2", roster[0].SocketID)

	_, _, ok = p.Drop("s1")
	assert.False(t, ok)
}

func TestDropUnknownConnection(t *testing.T) {
	p := NewPresenceRegistry()

	_, _, ok := p.Drop("ghost")
	assert.False(t, ok)
}
