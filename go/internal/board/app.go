package board

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/boardsync/go/internal/models"
)

// BoardRepository defines what the board app layer needs from the board repository
type BoardRepository interface {
	InsertBoard(ctx context.Context, b *models.Board) (*models.Board, error)
	GetBoard(ctx context.Context, id uuid.UUID) (*models.Board, error)
	GetBoards(ctx context.Context) ([]models.Board, error)
	UpdateBoard(ctx context.Context, id uuid.UUID, req UpdateBoardRequest) (*models.Board, error)
	SetBoardArchived(ctx context.Context, id uuid.UUID, archived bool) (*models.Board, error)
	DeleteBoard(ctx context.Context, id uuid.UUID) error
}

// ListSource supplies a board's lists in display order. Satisfied by the list
// repository.
type ListSource interface {
	GetListsByBoard(ctx context.Context, boardID uuid.UUID) ([]models.List, error)
}

// CardSource supplies a list's cards in display order. Satisfied by the card
// repository.
type CardSource interface {
	GetCardsByList(ctx context.Context, listID uuid.UUID) ([]models.Card, error)
}

// App handles board business logic and assembles the nested snapshot that
// joining connections and resyncing clients consume.
type App struct {
	repo  BoardRepository
	lists ListSource
	cards CardSource
	cache *Cache
}

// NewApp creates a new board App
func NewApp(repo BoardRepository, lists ListSource, cards CardSource) *App {
	return &App{
		repo:  repo,
		lists: lists,
		cards: cards,
	}
}

// WithSnapshotCache enables read-through snapshot caching.
func (a *App) WithSnapshotCache(cache *Cache) *App {
	a.cache = cache
	return a
}

// CreateBoard creates a board.
func (a *App) CreateBoard(ctx context.Context, req CreateBoardRequest) (*models.Board, error) {
	background := req.Background
	if background == "" {
		background = models.DefaultBackground
	}

	b := &models.Board{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Background:  background,
	}
	return a.repo.InsertBoard(ctx, b)
}

// GetBoard retrieves a board by ID
func (a *App) GetBoard(ctx context.Context, id uuid.UUID) (*models.Board, error) {
	return a.repo.GetBoard(ctx, id)
}

// GetBoards returns all non-archived boards.
func (a *App) GetBoards(ctx context.Context) ([]models.Board, error) {
	return a.repo.GetBoards(ctx)
}

// UpdateBoard applies plain field edits.
func (a *App) UpdateBoard(ctx context.Context, id uuid.UUID, req UpdateBoardRequest) (*models.Board, error) {
	b, err := a.repo.UpdateBoard(ctx, id, req)
	if err != nil {
		return nil, err
	}
	a.invalidate(ctx, id)
	return b, nil
}

// ArchiveBoard soft-deletes a board, cascading to lists and cards.
func (a *App) ArchiveBoard(ctx context.Context, id uuid.UUID) (*models.Board, error) {
	b, err := a.repo.SetBoardArchived(ctx, id, true)
	if err != nil {
		return nil, err
	}
	a.invalidate(ctx, id)
	return b, nil
}

// DeleteBoard removes a board with all of its lists and cards.
func (a *App) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	if err := a.repo.DeleteBoard(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx, id)
	return nil
}

// GetBoardSnapshot assembles the full nested projection: the board, its
// non-archived lists in position order, each with its non-archived cards in
// position order. Served from the cache when one is configured and warm.
func (a *App) GetBoardSnapshot(ctx context.Context, id uuid.UUID) (*models.BoardSnapshot, error) {
	if a.cache != nil {
		if snap, ok := a.cache.Get(ctx, id); ok {
			return snap, nil
		}
	}

	b, err := a.repo.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}

	lists, err := a.lists.GetListsByBoard(ctx, id)
	if err != nil {
		return nil, err
	}

	snap := &models.BoardSnapshot{
		Board: *b,
		Lists: make([]models.ListWithCards, len(lists)),
	}
	for i, l := range lists {
		cards, err := a.cards.GetCardsByList(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		snap.Lists[i] = models.ListWithCards{List: l, Cards: cards}
	}

	if a.cache != nil {
		a.cache.Set(ctx, snap)
	}
	return snap, nil
}

func (a *App) invalidate(ctx context.Context, boardID uuid.UUID) {
	if a.cache == nil {
		return
	}
	a.cache.Invalidate(ctx, boardID)
	log.Debug().Str("board_id", boardID.String()).Msg("snapshot cache invalidated")
}
