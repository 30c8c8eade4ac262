package card

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/boardsync/go/internal/models"
	"github.com/mcdev12/boardsync/go/internal/position"
)

// CardRepository defines what the card app layer needs from the card repository
type CardRepository interface {
	InsertCard(ctx context.Context, c *models.Card) (*models.Card, error)
	GetCard(ctx context.Context, id uuid.UUID) (*models.Card, error)
	GetCardsByList(ctx context.Context, listID uuid.UUID) ([]models.Card, error)
	MaxPositionInList(ctx context.Context, listID uuid.UUID) (*float64, error)
	UpdateCardFields(ctx context.Context, id uuid.UUID, req UpdateCardFieldsRequest) (*models.Card, error)
	UpdateCardPlacement(ctx context.Context, id, listID, boardID uuid.UUID, pos float64) (*models.Card, error)
	BulkUpdatePositions(ctx context.Context, updates []PositionUpdate) error
	SetCardArchived(ctx context.Context, id uuid.UUID, archived bool) (*models.Card, error)
	DeleteCard(ctx context.Context, id uuid.UUID) error
}

// ListGetter resolves a list id to its stored list. Satisfied by the list
// repository.
type ListGetter interface {
	GetList(ctx context.Context, id uuid.UUID) (*models.List, error)
}

// SnapshotCache invalidates cached board snapshots after a write. Satisfied
// by board.Cache.
type SnapshotCache interface {
	Invalidate(ctx context.Context, boardID uuid.UUID)
}

// App handles card business logic, including the authoritative move path.
type App struct {
	repo  CardRepository
	lists ListGetter

	cache           SnapshotCache
	rebalanceSignal func(listID uuid.UUID)
}

// NewApp creates a new card App
func NewApp(repo CardRepository, lists ListGetter) *App {
	return &App{
		repo:  repo,
		lists: lists,
	}
}

// WithSnapshotCache registers a board snapshot cache invalidated on every
// card write.
func (a *App) WithSnapshotCache(cache SnapshotCache) *App {
	a.cache = cache
	return a
}

// WithRebalanceSignal registers a callback fired, without blocking the move,
// when a list's neighbor gap decays below the safe threshold.
func (a *App) WithRebalanceSignal(fn func(listID uuid.UUID)) *App {
	a.rebalanceSignal = fn
	return a
}

// CreateCard creates a card at the tail of a list.
func (a *App) CreateCard(ctx context.Context, req CreateCardRequest) (*models.Card, error) {
	list, err := a.lists.GetList(ctx, req.ListID)
	if err != nil {
		return nil, err
	}

	maxPos, err := a.repo.MaxPositionInList(ctx, req.ListID)
	if err != nil {
		return nil, err
	}

	c := &models.Card{
		ID:          uuid.New(),
		ListID:      list.ID,
		BoardID:     list.BoardID,
		Title:       req.Title,
		Description: req.Description,
		Position:    position.Next(maxPos),
		Priority:    models.PriorityNone,
	}

	created, err := a.repo.InsertCard(ctx, c)
	if err != nil {
		return nil, err
	}
	a.invalidate(ctx, created.BoardID)
	return created, nil
}

// GetCard retrieves a card by ID
func (a *App) GetCard(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	return a.repo.GetCard(ctx, id)
}

// GetCardsByList returns a list's non-archived cards in display order.
func (a *App) GetCardsByList(ctx context.Context, listID uuid.UUID) ([]models.Card, error) {
	return a.repo.GetCardsByList(ctx, listID)
}

// UpdateCardFields applies plain field edits. Placement fields never pass
// through here.
func (a *App) UpdateCardFields(ctx context.Context, id uuid.UUID, req UpdateCardFieldsRequest) (*models.Card, error) {
	c, err := a.repo.UpdateCardFields(ctx, id, req)
	if err != nil {
		return nil, err
	}
	a.invalidate(ctx, c.BoardID)
	return c, nil
}

// MoveCard is the authoritative move: it loads the card and the target list,
// computes the new position from the client-observed neighbor positions, and
// persists list, denormalized board and position as one row update.
//
// Neighbor positions are not re-validated against current state at write
// time; two concurrent moves into the same gap both succeed with close but
// distinct positions, and the (position, updated_at) sort key decides the
// final order.
func (a *App) MoveCard(ctx context.Context, cardID uuid.UUID, req MoveCardRequest) (*models.Card, error) {
	if _, err := a.repo.GetCard(ctx, cardID); err != nil {
		return nil, err
	}

	targetList, err := a.lists.GetList(ctx, req.TargetListID)
	if err != nil {
		return nil, fmt.Errorf("target list: %w", err)
	}

	newPos := position.Between(req.PrevCardPosition, req.NextCardPosition)

	moved, err := a.repo.UpdateCardPlacement(ctx, cardID, targetList.ID, targetList.BoardID, newPos)
	if err != nil {
		return nil, err
	}

	if position.NeedsRebalance(req.PrevCardPosition, req.NextCardPosition) && a.rebalanceSignal != nil {
		log.Warn().
			Str("list_id", targetList.ID.String()).
			Float64("position", newPos).
			Msg("neighbor gap below safe threshold, scheduling rebalance")
		a.rebalanceSignal(targetList.ID)
	}

	a.invalidate(ctx, moved.BoardID)
	return moved, nil
}

// RebalanceList reassigns every non-archived card of a list to evenly spaced
// positions ((index+1) * Gap) in ascending current order. Running it twice in
// a row is a no-op the second time.
func (a *App) RebalanceList(ctx context.Context, listID uuid.UUID) error {
	list, err := a.lists.GetList(ctx, listID)
	if err != nil {
		return err
	}

	cards, err := a.repo.GetCardsByList(ctx, listID)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		return nil
	}

	sort.SliceStable(cards, func(i, j int) bool { return cards[i].Position < cards[j].Position })

	updates := make([]PositionUpdate, len(cards))
	for i, c := range cards {
		updates[i] = PositionUpdate{ID: c.ID, Position: float64(i+1) * position.Gap}
	}

	if err := a.repo.BulkUpdatePositions(ctx, updates); err != nil {
		return err
	}

	log.Info().
		Str("list_id", listID.String()).
		Int("cards", len(updates)).
		Msg("rebalanced list positions")

	a.invalidate(ctx, list.BoardID)
	return nil
}

// ArchiveCard soft-deletes a card.
func (a *App) ArchiveCard(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	c, err := a.repo.SetCardArchived(ctx, id, true)
	if err != nil {
		return nil, err
	}
	a.invalidate(ctx, c.BoardID)
	return c, nil
}

// DeleteCard removes a card permanently.
func (a *App) DeleteCard(ctx context.Context, id uuid.UUID) error {
	c, err := a.repo.GetCard(ctx, id)
	if err != nil {
		return err
	}
	if err := a.repo.DeleteCard(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx, c.BoardID)
	return nil
}

// ToggleChecklistItem flips the completion state of one checklist entry.
func (a *App) ToggleChecklistItem(ctx context.Context, cardID, itemID uuid.UUID) (*models.Card, error) {
	c, err := a.repo.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	found := false
	checklist := make([]models.ChecklistItem, len(c.Checklist))
	for i, item := range c.Checklist {
		if item.ID == itemID {
			item.IsCompleted = !item.IsCompleted
			found = true
		}
		checklist[i] = item
	}
	if !found {
		return nil, fmt.Errorf("checklist item %s: %w", itemID, ErrCardNotFound)
	}

	return a.UpdateCardFields(ctx, cardID, UpdateCardFieldsRequest{Checklist: checklist})
}

func (a *App) invalidate(ctx context.Context, boardID uuid.UUID) {
	if a.cache != nil {
		a.cache.Invalidate(ctx, boardID)
	}
}
