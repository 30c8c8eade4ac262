// Package reconcile implements the client side of the sync protocol: an
// optimistically mutated local projection of one board, kept eventually
// consistent with the server's authoritative state.
package reconcile

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"
	"github.com/mcdev12/boardsync/go/internal/models"
)

// ListState is one list of the local projection with its cards in display
// order.
type ListState struct {
	List  models.List
	Cards []models.Card
}

// BoardState is the local projection of a board. It is not safe for
// concurrent use on its own; the Reconciler serializes access.
type BoardState struct {
	Board models.Board
	Lists []ListState
}

// NewBoardState builds a projection from an authoritative snapshot.
func NewBoardState(snap *models.BoardSnapshot) *BoardState {
	s := &BoardState{
		Board: snap.Board,
		Lists: make([]ListState, len(snap.Lists)),
	}
	for i, l := range snap.Lists {
		cards := make([]models.Card, len(l.Cards))
		copy(cards, l.Cards)
		s.Lists[i] = ListState{List: l.List, Cards: cards}
	}
	return s
}

// findList returns the index of a list, or -1.
func (s *BoardState) findList(listID uuid.UUID) int {
	for i := range s.Lists {
		if s.Lists[i].List.ID == listID {
			return i
		}
	}
	return -1
}

// findCard locates a card anywhere on the board.
func (s *BoardState) findCard(cardID uuid.UUID) (listIdx, cardIdx int) {
	for i := range s.Lists {
		for j := range s.Lists[i].Cards {
			if s.Lists[i].Cards[j].ID == cardID {
				return i, j
			}
		}
	}
	return -1, -1
}

// CardsOf returns the cards of a list in current display order, or nil if
// the list is unknown.
func (s *BoardState) CardsOf(listID uuid.UUID) []models.Card {
	i := s.findList(listID)
	if i < 0 {
		return nil
	}
	return s.Lists[i].Cards
}

// OptimisticMoveCard splices the card out of its source list and into the
// target list at the intended index, before any network round trip. Reports
// whether the splice happened.
func (s *BoardState) OptimisticMoveCard(cardID, sourceListID, targetListID uuid.UUID, index int) bool {
	srcIdx := s.findList(sourceListID)
	dstIdx := s.findList(targetListID)
	if srcIdx < 0 || dstIdx < 0 {
		return false
	}

	src := &s.Lists[srcIdx]
	cardIdx := -1
	for j := range src.Cards {
		if src.Cards[j].ID == cardID {
			cardIdx = j
			break
		}
	}
	if cardIdx < 0 {
		return false
	}

	c := src.Cards[cardIdx]
	src.Cards = append(src.Cards[:cardIdx], src.Cards[cardIdx+1:]...)

	c.ListID = targetListID
	dst := &s.Lists[dstIdx]
	if index < 0 {
		index = 0
	}
	if index > len(dst.Cards) {
		index = len(dst.Cards)
	}
	dst.Cards = append(dst.Cards[:index], append([]models.Card{c}, dst.Cards[index:]...)...)
	return true
}

// ReplaceCard swaps in the authoritative record for a card wherever the
// projection currently holds it. Unknown id is a no-op.
func (s *BoardState) ReplaceCard(c models.Card) {
	i, j := s.findCard(c.ID)
	if i < 0 {
		return
	}
	s.Lists[i].Cards[j] = c
}

// ApplyCardMoved merges a peer's move: the card is removed from whatever
// list currently holds it (tolerating a missed earlier event) and inserted
// into the target list in position order. The broadcast may omit the full
// card record; the local record repositioned from the payload stands in for
// it then, and a move of a card this client never saw is dropped.
func (s *BoardState) ApplyCardMoved(cardID, targetListID uuid.UUID, newPosition float64, c *models.Card) {
	var local *models.Card
	if i, j := s.findCard(cardID); i >= 0 {
		l := &s.Lists[i]
		removed := l.Cards[j]
		local = &removed
		l.Cards = append(l.Cards[:j], l.Cards[j+1:]...)
	}

	dstIdx := s.findList(targetListID)
	if dstIdx < 0 {
		return
	}

	record := c
	if record == nil {
		if local == nil {
			return
		}
		local.ListID = targetListID
		local.Position = newPosition
		record = local
	}

	dst := &s.Lists[dstIdx]
	dst.Cards = append(dst.Cards, *record)
	sortCards(dst.Cards)
}

// ApplyCardCreated inserts a peer's new card in position order. Duplicate id
// is a no-op.
func (s *BoardState) ApplyCardCreated(listID uuid.UUID, c models.Card) {
	if i, _ := s.findCard(c.ID); i >= 0 {
		return
	}
	dstIdx := s.findList(listID)
	if dstIdx < 0 {
		return
	}
	dst := &s.Lists[dstIdx]
	dst.Cards = append(dst.Cards, c)
	sortCards(dst.Cards)
}

// ApplyCardUpdated merges a field patch onto the card. Unknown id is a no-op.
func (s *BoardState) ApplyCardUpdated(cardID uuid.UUID, updates json.RawMessage) {
	i, j := s.findCard(cardID)
	if i < 0 {
		return
	}
	// Unmarshalling into the existing value merges only the present fields.
	_ = json.Unmarshal(updates, &s.Lists[i].Cards[j])
}

// ApplyCardDeleted removes the card. Unknown id is a no-op.
func (s *BoardState) ApplyCardDeleted(cardID uuid.UUID) {
	i, j := s.findCard(cardID)
	if i < 0 {
		return
	}
	l := &s.Lists[i]
	l.Cards = append(l.Cards[:j], l.Cards[j+1:]...)
}

// ApplyListCreated appends a peer's new list in position order. Duplicate id
// is a no-op.
func (s *BoardState) ApplyListCreated(l models.List) {
	if s.findList(l.ID) >= 0 {
		return
	}
	s.Lists = append(s.Lists, ListState{List: l})
	sort.SliceStable(s.Lists, func(i, j int) bool {
		return s.Lists[i].List.Position < s.Lists[j].List.Position
	})
}

// ApplyListUpdated merges a field patch onto the list. Unknown id is a no-op.
func (s *BoardState) ApplyListUpdated(listID uuid.UUID, updates json.RawMessage) {
	i := s.findList(listID)
	if i < 0 {
		return
	}
	_ = json.Unmarshal(updates, &s.Lists[i].List)
}

// ApplyListReordered moves a list to its authoritative position and resorts.
func (s *BoardState) ApplyListReordered(listID uuid.UUID, newPosition float64) {
	i := s.findList(listID)
	if i < 0 {
		return
	}
	s.Lists[i].List.Position = newPosition
	sort.SliceStable(s.Lists, func(i, j int) bool {
		return s.Lists[i].List.Position < s.Lists[j].List.Position
	})
}

// ApplyListDeleted removes the list. Unknown id is a no-op.
func (s *BoardState) ApplyListDeleted(listID uuid.UUID) {
	i := s.findList(listID)
	if i < 0 {
		return
	}
	s.Lists = append(s.Lists[:i], s.Lists[i+1:]...)
}

// ApplyBoardUpdated merges board field edits.
func (s *BoardState) ApplyBoardUpdated(updates json.RawMessage) {
	_ = json.Unmarshal(updates, &s.Board)
}

func sortCards(cards []models.Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].Position != cards[j].Position {
			return cards[i].Position < cards[j].Position
		}
		return cards[i].UpdatedAt.Before(cards[j].UpdatedAt)
	})
}
