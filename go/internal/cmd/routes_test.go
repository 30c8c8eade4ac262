package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/boardsync/go/internal/card"
	"github.com/mcdev12/boardsync/go/internal/list"
	"github.com/mcdev12/boardsync/go/internal/models"
)

// stubCardRepo serves one card from memory, enough to exercise card routes
// without a database.
type stubCardRepo struct {
	card *models.Card
}

func (s *stubCardRepo) InsertCard(_ context.Context, c *models.Card) (*models.Card, error) {
	cp := *c
	s.card = &cp
	out := cp
	return &out, nil
}

func (s *stubCardRepo) GetCard(_ context.Context, id uuid.UUID) (*models.Card, error) {
	if s.card == nil || s.card.ID != id {
		return nil, card.ErrCardNotFound
	}
	out := *s.card
	return &out, nil
}

func (s *stubCardRepo) GetCardsByList(_ context.Context, _ uuid.UUID) ([]models.Card, error) {
	if s.card == nil {
		return nil, nil
	}
	return []models.Card{*s.card}, nil
}

func (s *stubCardRepo) MaxPositionInList(_ context.Context, _ uuid.UUID) (*float64, error) {
	return nil, nil
}

func (s *stubCardRepo) UpdateCardFields(_ context.Context, id uuid.UUID, req card.UpdateCardFieldsRequest) (*models.Card, error) {
	if s.card == nil || s.card.ID != id {
		return nil, card.ErrCardNotFound
	}
	if req.Title != nil {
		s.card.Title = *req.Title
	}
	if req.Checklist != nil {
		s.card.Checklist = req.Checklist
	}
	out := *s.card
	return &out, nil
}

func (s *stubCardRepo) UpdateCardPlacement(_ context.Context, id, listID, boardID uuid.UUID, pos float64) (*models.Card, error) {
	if s.card == nil || s.card.ID != id {
		return nil, card.ErrCardNotFound
	}
	s.card.ListID = listID
	s.card.BoardID = boardID
	s.card.Position = pos
	out := *s.card
	return &out, nil
}

func (s *stubCardRepo) BulkUpdatePositions(_ context.Context, _ []card.PositionUpdate) error {
	return nil
}

func (s *stubCardRepo) SetCardArchived(_ context.Context, id uuid.UUID, archived bool) (*models.Card, error) {
	if s.card == nil || s.card.ID != id {
		return nil, card.ErrCardNotFound
	}
	s.card.IsArchived = archived
	out := *s.card
	return &out, nil
}

func (s *stubCardRepo) DeleteCard(_ context.Context, id uuid.UUID) error {
	if s.card == nil || s.card.ID != id {
		return card.ErrCardNotFound
	}
	s.card = nil
	return nil
}

type stubListGetter struct{}

func (stubListGetter) GetList(_ context.Context, _ uuid.UUID) (*models.List, error) {
	return nil, list.ErrListNotFound
}

func newCardRouteServer(t *testing.T, repo *stubCardRepo) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	registerRoutes(mux, &Services{Cards: card.NewApp(repo, stubListGetter{})})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestToggleChecklistItemRoute(t *testing.T) {
	itemID := uuid.New()
	repo := &stubCardRepo{card: &models.Card{
		ID:     uuid.New(),
		ListID: uuid.New(),
		Title:  "with checklist",
		Checklist: []models.ChecklistItem{
			{ID: itemID, Title: "step one"},
			{ID: uuid.New(), Title: "step two"},
		},
	}}
	srv := newCardRouteServer(t, repo)

	url := srv.URL + "/api/cards/" + repo.card.ID.String() + "/checklist/" + itemID.String() + "/toggle"
	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.Card
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.Checklist, 2)
	assert.True(t, got.Checklist[0].IsCompleted)
	assert.False(t, got.Checklist[1].IsCompleted)
}

func TestToggleChecklistItemRouteUnknownCard(t *testing.T) {
	srv := newCardRouteServer(t, &stubCardRepo{})

	url := srv.URL + "/api/cards/" + uuid.New().String() + "/checklist/" + uuid.New().String() + "/toggle"
	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestToggleChecklistItemRouteBadItemID(t *testing.T) {
	repo := &stubCardRepo{card: &models.Card{ID: uuid.New()}}
	srv := newCardRouteServer(t, repo)

	url := srv.URL + "/api/cards/" + repo.card.ID.String() + "/checklist/not-a-uuid/toggle"
	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
