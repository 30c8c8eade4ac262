package list

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/boardsync/go/internal/models"
	"github.com/mcdev12/boardsync/go/internal/position"
)

type fakeRepo struct {
	lists map[uuid.UUID]*models.List
	now   time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		lists: make(map[uuid.UUID]*models.List),
		now:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRepo) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fakeRepo) InsertList(_ context.Context, l *models.List) (*models.List, error) {
	cp := *l
	cp.CreatedAt = f.tick()
	cp.UpdatedAt = cp.CreatedAt
	f.lists[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeRepo) GetList(_ context.Context, id uuid.UUID) (*models.List, error) {
	l, ok := f.lists[id]
	if !ok {
		return nil, ErrListNotFound
	}
	out := *l
	return &out, nil
}

func (f *fakeRepo) GetListsByBoard(_ context.Context, boardID uuid.UUID) ([]models.List, error) {
	var out []models.List
	for _, l := range f.lists {
		if l.BoardID == boardID && !l.IsArchived {
			out = append(out, *l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	return out, nil
}

func (f *fakeRepo) MaxPositionInBoard(_ context.Context, boardID uuid.UUID) (*float64, error) {
	var max *float64
	for _, l := range f.lists {
		if l.BoardID == boardID && !l.IsArchived {
			if max == nil || l.Position > *max {
				p := l.Position
				max = &p
			}
		}
	}
	return max, nil
}

func (f *fakeRepo) UpdateListFields(_ context.Context, id uuid.UUID, req UpdateListFieldsRequest) (*models.List, error) {
	l, ok := f.lists[id]
	if !ok {
		return nil, ErrListNotFound
	}
	if req.Title != nil {
		l.Title = *req.Title
	}
	l.UpdatedAt = f.tick()
	out := *l
	return &out, nil
}

func (f *fakeRepo) UpdateListPosition(_ context.Context, id uuid.UUID, pos float64) (*models.List, error) {
	l, ok := f.lists[id]
	if !ok {
		return nil, ErrListNotFound
	}
	l.Position = pos
	l.UpdatedAt = f.tick()
	out := *l
	return &out, nil
}

func (f *fakeRepo) SetListArchived(_ context.Context, id uuid.UUID, archived bool) (*models.List, error) {
	l, ok := f.lists[id]
	if !ok {
		return nil, ErrListNotFound
	}
	l.IsArchived = archived
	l.UpdatedAt = f.tick()
	out := *l
	return &out, nil
}

func (f *fakeRepo) DeleteList(_ context.Context, id uuid.UUID) error {
	if _, ok := f.lists[id]; !ok {
		return ErrListNotFound
	}
	delete(f.lists, id)
	return nil
}

func TestCreateListAppendsToBoard(t *testing.T) {
	repo := newFakeRepo()
	app := NewApp(repo)
	boardID := uuid.New()

	first, err := app.CreateList(context.Background(), CreateListRequest{BoardID: boardID, Title: "todo"})
	require.NoError(t, err)
	assert.Equal(t, float64(position.Gap), first.Position)

	second, err := app.CreateList(context.Background(), CreateListRequest{BoardID: boardID, Title: "doing"})
	require.NoError(t, err)
	assert.Equal(t, float64(2*position.Gap), second.Position)

	lists, err := app.GetListsByBoard(context.Background(), boardID)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "todo", lists[0].Title)
	assert.Equal(t, "doing", lists[1].Title)
}

func TestReorderListBetweenNeighbors(t *testing.T) {
	repo := newFakeRepo()
	app := NewApp(repo)
	boardID := uuid.New()

	var ids []uuid.UUID
	for _, title := range []string{"todo", "doing", "done"} {
		l, err := app.CreateList(context.Background(), CreateListRequest{BoardID: boardID, Title: title})
		require.NoError(t, err)
		ids = append(ids, l.ID)
	}

	lists, err := app.GetListsByBoard(context.Background(), boardID)
	require.NoError(t, err)

	// Move "done" between "todo" and "doing".
	moved, err := app.ReorderList(context.Background(), ids[2], ReorderListRequest{
		PrevPosition: &lists[0].Position,
		NextPosition: &lists[1].Position,
	})
	require.NoError(t, err)
	assert.Greater(t, moved.Position, lists[0].Position)
	assert.Less(t, moved.Position, lists[1].Position)

	after, err := app.GetListsByBoard(context.Background(), boardID)
	require.NoError(t, err)
	assert.Equal(t, []string{"todo", "done", "doing"}, []string{after[0].Title, after[1].Title, after[2].Title})
}

func TestReorderListToHead(t *testing.T) {
	repo := newFakeRepo()
	app := NewApp(repo)
	boardID := uuid.New()

	a, err := app.CreateList(context.Background(), CreateListRequest{BoardID: boardID, Title: "a"})
	require.NoError(t, err)
	b, err := app.CreateList(context.Background(), CreateListRequest{BoardID: boardID, Title: "b"})
	require.NoError(t, err)

	moved, err := app.ReorderList(context.Background(), b.ID, ReorderListRequest{
		PrevPosition: nil,
		NextPosition: &a.Position,
	})
	require.NoError(t, err)
	assert.Equal(t, a.Position/2, moved.Position)
}

func TestReorderListNotFound(t *testing.T) {
	app := NewApp(newFakeRepo())

	_, err := app.ReorderList(context.Background(), uuid.New(), ReorderListRequest{})
	assert.ErrorIs(t, err, ErrListNotFound)
}

func TestArchiveListHidesFromBoard(t *testing.T) {
	repo := newFakeRepo()
	app := NewApp(repo)
	boardID := uuid.New()

	l, err := app.CreateList(context.Background(), CreateListRequest{BoardID: boardID, Title: "old"})
	require.NoError(t, err)

	archived, err := app.ArchiveList(context.Background(), l.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)

	lists, err := app.GetListsByBoard(context.Background(), boardID)
	require.NoError(t, err)
	assert.Empty(t, lists)
}

func TestDeleteList(t *testing.T) {
	repo := newFakeRepo()
	app := NewApp(repo)
	boardID := uuid.New()

	l, err := app.CreateList(context.Background(), CreateListRequest{BoardID: boardID, Title: "gone"})
	require.NoError(t, err)

	require.NoError(t, app.DeleteList(context.Background(), l.ID))
	_, err = app.GetList(context.Background(), l.ID)
	assert.ErrorIs(t, err, ErrListNotFound)

	err = app.DeleteList(context.Background(), l.ID)
	assert.ErrorIs(t, err, ErrListNotFound)
}
