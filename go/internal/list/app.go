package list

import (
	"context"

	"github.com/google/uuid"

	"github.com/mcdev12/boardsync/go/internal/models"
	"github.com/mcdev12/boardsync/go/internal/position"
)

// ListRepository defines what the list app layer needs from the list repository
type ListRepository interface {
	InsertList(ctx context.Context, l *models.List) (*models.List, error)
	GetList(ctx context.Context, id uuid.UUID) (*models.List, error)
	GetListsByBoard(ctx context.Context, boardID uuid.UUID) ([]models.List, error)
	MaxPositionInBoard(ctx context.Context, boardID uuid.UUID) (*float64, error)
	UpdateListFields(ctx context.Context, id uuid.UUID, req UpdateListFieldsRequest) (*models.List, error)
	UpdateListPosition(ctx context.Context, id uuid.UUID, pos float64) (*models.List, error)
	SetListArchived(ctx context.Context, id uuid.UUID, archived bool) (*models.List, error)
	DeleteList(ctx context.Context, id uuid.UUID) error
}

// SnapshotCache invalidates cached board snapshots after a write.
type SnapshotCache interface {
	Invalidate(ctx context.Context, boardID uuid.UUID)
}

// App handles list business logic
type App struct {
	repo  ListRepository
	cache SnapshotCache
}

// NewApp creates a new list App
func NewApp(repo ListRepository) *App {
	return &App{repo: repo}
}

// WithSnapshotCache registers a board snapshot cache invalidated on every
// list write.
func (a *App) WithSnapshotCache(cache SnapshotCache) *App {
	a.cache = cache
	return a
}

// CreateList creates a list positioned after all existing lists of the board.
func (a *App) CreateList(ctx context.Context, req CreateListRequest) (*models.List, error) {
	maxPos, err := a.repo.MaxPositionInBoard(ctx, req.BoardID)
	if err != nil {
		return nil, err
	}

	l := &models.List{
		ID:       uuid.New(),
		BoardID:  req.BoardID,
		Title:    req.Title,
		Position: position.Next(maxPos),
	}

	created, err := a.repo.InsertList(ctx, l)
	if err != nil {
		return nil, err
	}
	a.invalidate(ctx, created.BoardID)
	return created, nil
}

// GetList retrieves a list by ID
func (a *App) GetList(ctx context.Context, id uuid.UUID) (*models.List, error) {
	return a.repo.GetList(ctx, id)
}

// GetListsByBoard returns a board's non-archived lists in display order.
func (a *App) GetListsByBoard(ctx context.Context, boardID uuid.UUID) ([]models.List, error) {
	return a.repo.GetListsByBoard(ctx, boardID)
}

// UpdateListFields applies plain field edits.
func (a *App) UpdateListFields(ctx context.Context, id uuid.UUID, req UpdateListFieldsRequest) (*models.List, error) {
	l, err := a.repo.UpdateListFields(ctx, id, req)
	if err != nil {
		return nil, err
	}
	a.invalidate(ctx, l.BoardID)
	return l, nil
}

// ReorderList moves a list within its board using the same single-row
// fractional-position write as card moves.
func (a *App) ReorderList(ctx context.Context, id uuid.UUID, req ReorderListRequest) (*models.List, error) {
	newPos := position.Between(req.PrevPosition, req.NextPosition)

	l, err := a.repo.UpdateListPosition(ctx, id, newPos)
	if err != nil {
		return nil, err
	}
	a.invalidate(ctx, l.BoardID)
	return l, nil
}

// ArchiveList soft-deletes a list; the repository cascades the archive to its
// cards.
func (a *App) ArchiveList(ctx context.Context, id uuid.UUID) (*models.List, error) {
	l, err := a.repo.SetListArchived(ctx, id, true)
	if err != nil {
		return nil, err
	}
	a.invalidate(ctx, l.BoardID)
	return l, nil
}

// DeleteList removes a list and its cards permanently.
func (a *App) DeleteList(ctx context.Context, id uuid.UUID) error {
	l, err := a.repo.GetList(ctx, id)
	if err != nil {
		return err
	}
	if err := a.repo.DeleteList(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx, l.BoardID)
	return nil
}

func (a *App) invalidate(ctx context.Context, boardID uuid.UUID) {
	if a.cache != nil {
		a.cache.Invalidate(ctx, boardID)
	}
}
