package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/boardsync/go/internal/gateway"
	"github.com/mcdev12/boardsync/go/internal/models"
)

func TestOptimisticMoveCardSplices(t *testing.T) {
	snap, todo, done, cards := testSnapshot()
	s := NewBoardState(snap)

	ok := s.OptimisticMoveCard(cards[1].ID, todo.ID, done.ID, 0)
	require.True(t, ok)
	assert.Equal(t, []string{"one", "three"}, titles(s.CardsOf(todo.ID)))
	assert.Equal(t, []string{"two"}, titles(s.CardsOf(done.ID)))
}

func TestOptimisticMoveCardClampsIndex(t *testing.T) {
	snap, todo, done, cards := testSnapshot()
	s := NewBoardState(snap)

	require.True(t, s.OptimisticMoveCard(cards[0].ID, todo.ID, done.ID, 99))
	assert.Equal(t, []string{"one"}, titles(s.CardsOf(done.ID)))

	require.True(t, s.OptimisticMoveCard(cards[1].ID, todo.ID, done.ID, -3))
	assert.Equal(t, []string{"two", "one"}, titles(s.CardsOf(done.ID)))
}

func TestOptimisticMoveCardUnknownList(t *testing.T) {
	snap, todo, _, cards := testSnapshot()
	s := NewBoardState(snap)

	assert.False(t, s.OptimisticMoveCard(cards[0].ID, todo.ID, uuid.New(), 0))
	assert.False(t, s.OptimisticMoveCard(uuid.New(), todo.ID, todo.ID, 0))
}

func TestApplyCardMovedResortsByPosition(t *testing.T) {
	snap, todo, _, cards := testSnapshot()
	s := NewBoardState(snap)

	// A peer moved "three" between "one" and "two".
	moved := cards[2]
	moved.Position = (cards[0].Position + cards[1].Position) / 2

	s.ApplyCardMoved(moved.ID, todo.ID, moved.Position, &moved)
	assert.Equal(t, []string{"one", "three", "two"}, titles(s.CardsOf(todo.ID)))
}

func TestApplyCardMovedWithoutRecord(t *testing.T) {
	snap, todo, done, cards := testSnapshot()
	s := NewBoardState(snap)

	// The broadcast carried only ids and the new position.
	s.ApplyCardMoved(cards[0].ID, done.ID, 42.0, nil)

	assert.Equal(t, []string{"two", "three"}, titles(s.CardsOf(todo.ID)))
	moved := s.CardsOf(done.ID)
	require.Len(t, moved, 1)
	assert.Equal(t, "one", moved[0].Title)
	assert.Equal(t, done.ID, moved[0].ListID)
	assert.Equal(t, 42.0, moved[0].Position)
}

func TestApplyCardMovedUnknownCardWithoutRecord(t *testing.T) {
	snap, todo, done, _ := testSnapshot()
	s := NewBoardState(snap)

	s.ApplyCardMoved(uuid.New(), done.ID, 42.0, nil)

	assert.Len(t, s.CardsOf(todo.ID), 3)
	assert.Empty(t, s.CardsOf(done.ID))
}

func TestApplyCardCreatedDuplicateIsNoOp(t *testing.T) {
	snap, todo, _, cards := testSnapshot()
	s := NewBoardState(snap)

	s.ApplyCardCreated(todo.ID, cards[0])
	assert.Len(t, s.CardsOf(todo.ID), 3)
}

func TestApplyCardUpdatedMergesPatch(t *testing.T) {
	snap, todo, _, cards := testSnapshot()
	s := NewBoardState(snap)

	s.ApplyCardUpdated(cards[0].ID, json.RawMessage(`{"title":"renamed","priority":"high"}`))

	got := s.CardsOf(todo.ID)[0]
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	// Untouched fields survive the merge.
	assert.Equal(t, cards[0].Position, got.Position)
}

func TestApplyListReorderedResorts(t *testing.T) {
	snap, todo, done, _ := testSnapshot()
	s := NewBoardState(snap)

	s.ApplyListReordered(done.ID, todo.Position/2)
	assert.Equal(t, "done", s.Lists[0].List.Title)
	assert.Equal(t, "todo", s.Lists[1].List.Title)
}

func TestApplyListDeletedDropsCards(t *testing.T) {
	snap, todo, _, _ := testSnapshot()
	s := NewBoardState(snap)

	s.ApplyListDeleted(todo.ID)
	require.Len(t, s.Lists, 1)
	assert.Nil(t, s.CardsOf(todo.ID))
}

func TestHandlePeerEventsMerge(t *testing.T) {
	snap, todo, done, cards := testSnapshot()
	r := NewReconciler(snap, &fakeAPI{}, &fakeFetcher{}, clockwork.NewRealClock())

	moved := cards[0]
	moved.ListID = done.ID
	moved.Position = 65535
	data, err := json.Marshal(gateway.CardMovedPayload{
		CardID:       moved.ID,
		SourceListID: todo.ID,
		TargetListID: done.ID,
		NewPosition:  moved.Position,
		Card:         &moved,
	})
	require.NoError(t, err)
	r.HandlePeerEvent(gateway.EventCardMoved, data)

	deleted, err := json.Marshal(gateway.CardDeletedPayload{CardID: cards[1].ID, ListID: todo.ID})
	require.NoError(t, err)
	r.HandlePeerEvent(gateway.EventCardDeleted, deleted)

	state := r.State()
	assert.Equal(t, []string{"three"}, titles(state.CardsOf(todo.ID)))
	assert.Equal(t, []string{"one"}, titles(state.CardsOf(done.ID)))
}

func TestHandlePeerEventCardMovedWithoutRecord(t *testing.T) {
	snap, todo, done, cards := testSnapshot()
	r := NewReconciler(snap, &fakeAPI{}, &fakeFetcher{}, clockwork.NewRealClock())

	data, err := json.Marshal(gateway.CardMovedPayload{
		CardID:       cards[0].ID,
		SourceListID: todo.ID,
		TargetListID: done.ID,
		NewPosition:  65535,
	})
	require.NoError(t, err)
	r.HandlePeerEvent(gateway.EventCardMoved, data)

	state := r.State()
	assert.Equal(t, []string{"two", "three"}, titles(state.CardsOf(todo.ID)))
	require.Len(t, state.CardsOf(done.ID), 1)
	assert.Equal(t, "one", state.CardsOf(done.ID)[0].Title)
}

func TestHandlePeerEventUnknownIdsDropped(t *testing.T) {
	snap, todo, _, _ := testSnapshot()
	r := NewReconciler(snap, &fakeAPI{}, &fakeFetcher{}, clockwork.NewRealClock())

	deleted, err := json.Marshal(gateway.CardDeletedPayload{CardID: uuid.New(), ListID: todo.ID})
	require.NoError(t, err)
	r.HandlePeerEvent(gateway.EventCardDeleted, deleted)

	r.HandlePeerEvent(gateway.EventCardMoved, json.RawMessage(`{broken`))

	assert.Len(t, r.State().CardsOf(todo.ID), 3)
}
