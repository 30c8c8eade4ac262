package board

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/boardsync/go/internal/models"
)

// countingRepo serves one board and counts reads, so cache tests can tell
// whether a snapshot came from the database path.
type countingRepo struct {
	board    *models.Board
	getCalls int
}

func (r *countingRepo) InsertBoard(_ context.Context, b *models.Board) (*models.Board, error) {
	cp := *b
	r.board = &cp
	out := cp
	return &out, nil
}

func (r *countingRepo) GetBoard(_ context.Context, id uuid.UUID) (*models.Board, error) {
	r.getCalls++
	if r.board == nil || r.board.ID != id {
		return nil, ErrBoardNotFound
	}
	out := *r.board
	return &out, nil
}

func (r *countingRepo) GetBoards(_ context.Context) ([]models.Board, error) {
	if r.board == nil {
		return nil, nil
	}
	return []models.Board{*r.board}, nil
}

func (r *countingRepo) UpdateBoard(_ context.Context, id uuid.UUID, req UpdateBoardRequest) (*models.Board, error) {
	if r.board == nil || r.board.ID != id {
		return nil, ErrBoardNotFound
	}
	if req.Title != nil {
		r.board.Title = *req.Title
	}
	if req.Description != nil {
		r.board.Description = *req.Description
	}
	if req.Background != nil {
		r.board.Background = *req.Background
	}
	out := *r.board
	return &out, nil
}

func (r *countingRepo) SetBoardArchived(_ context.Context, id uuid.UUID, archived bool) (*models.Board, error) {
	if r.board == nil || r.board.ID != id {
		return nil, ErrBoardNotFound
	}
	r.board.IsArchived = archived
	out := *r.board
	return &out, nil
}

func (r *countingRepo) DeleteBoard(_ context.Context, id uuid.UUID) error {
	if r.board == nil || r.board.ID != id {
		return ErrBoardNotFound
	}
	r.board = nil
	return nil
}

// snapLists and snapCards serve a fixed snapshot's lists and cards.
type snapLists struct{ snap *models.BoardSnapshot }

func (s snapLists) GetListsByBoard(_ context.Context, boardID uuid.UUID) ([]models.List, error) {
	var out []models.List
	for _, l := range s.snap.Lists {
		if l.BoardID == boardID {
			out = append(out, l.List)
		}
	}
	return out, nil
}

type snapCards struct{ snap *models.BoardSnapshot }

func (s snapCards) GetCardsByList(_ context.Context, listID uuid.UUID) ([]models.Card, error) {
	for _, l := range s.snap.Lists {
		if l.ID == listID {
			return l.Cards, nil
		}
	}
	return nil, nil
}

func TestCreateBoardDefaultsBackground(t *testing.T) {
	repo := &countingRepo{}
	app := NewApp(repo, snapLists{&models.BoardSnapshot{}}, snapCards{&models.BoardSnapshot{}})

	b, err := app.CreateBoard(context.Background(), CreateBoardRequest{Title: "roadmap"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultBackground, b.Background)

	custom, err := app.CreateBoard(context.Background(), CreateBoardRequest{Title: "dark", Background: "#1d2125"})
	require.NoError(t, err)
	assert.Equal(t, "#1d2125", custom.Background)
}

func TestGetBoardSnapshotAssemblesNestedProjection(t *testing.T) {
	snap := sampleSnapshot()
	repo := &countingRepo{board: &snap.Board}
	app := NewApp(repo, snapLists{snap}, snapCards{snap})

	got, err := app.GetBoardSnapshot(context.Background(), snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.Title, got.Title)
	require.Len(t, got.Lists, 1)
	assert.Equal(t, "todo", got.Lists[0].Title)
	require.Len(t, got.Lists[0].Cards, 1)
	assert.Equal(t, "ship it", got.Lists[0].Cards[0].Title)
}

func TestGetBoardSnapshotUnknownBoard(t *testing.T) {
	app := NewApp(&countingRepo{}, snapLists{&models.BoardSnapshot{}}, snapCards{&models.BoardSnapshot{}})

	_, err := app.GetBoardSnapshot(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrBoardNotFound)
}
