package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/boardsync/go/internal/board"
	"github.com/mcdev12/boardsync/go/internal/card"
	"github.com/mcdev12/boardsync/go/internal/list"
)

// registerRoutes wires the JSON API. The move and reorder endpoints are the
// synchronous authoritative surface the realtime clients reconcile against;
// the rest is plain CRUD.
func registerRoutes(mux *http.ServeMux, s *Services) {
	// Boards
	mux.HandleFunc("GET /api/boards", func(w http.ResponseWriter, r *http.Request) {
		boards, err := s.Boards.GetBoards(r.Context())
		respond(w, boards, err)
	})
	mux.HandleFunc("POST /api/boards", func(w http.ResponseWriter, r *http.Request) {
		var req board.CreateBoardRequest
		if !decode(w, r, &req) {
			return
		}
		b, err := s.Boards.CreateBoard(r.Context(), req)
		respondCreated(w, b, err)
	})
	mux.HandleFunc("GET /api/boards/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		snap, err := s.Boards.GetBoardSnapshot(r.Context(), id)
		respond(w, snap, err)
	})
	mux.HandleFunc("PATCH /api/boards/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req board.UpdateBoardRequest
		if !decode(w, r, &req) {
			return
		}
		b, err := s.Boards.UpdateBoard(r.Context(), id, req)
		respond(w, b, err)
	})
	mux.HandleFunc("POST /api/boards/{id}/archive", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		b, err := s.Boards.ArchiveBoard(r.Context(), id)
		respond(w, b, err)
	})
	mux.HandleFunc("DELETE /api/boards/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		respondNoContent(w, s.Boards.DeleteBoard(r.Context(), id))
	})

	// Lists
	mux.HandleFunc("GET /api/boards/{id}/lists", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		lists, err := s.Lists.GetListsByBoard(r.Context(), id)
		respond(w, lists, err)
	})
	mux.HandleFunc("POST /api/lists", func(w http.ResponseWriter, r *http.Request) {
		var req list.CreateListRequest
		if !decode(w, r, &req) {
			return
		}
		l, err := s.Lists.CreateList(r.Context(), req)
		respondCreated(w, l, err)
	})
	mux.HandleFunc("PATCH /api/lists/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req list.UpdateListFieldsRequest
		if !decode(w, r, &req) {
			return
		}
		l, err := s.Lists.UpdateListFields(r.Context(), id, req)
		respond(w, l, err)
	})
	mux.HandleFunc("POST /api/lists/{id}/reorder", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req list.ReorderListRequest
		if !decode(w, r, &req) {
			return
		}
		l, err := s.Lists.ReorderList(r.Context(), id, req)
		respond(w, l, err)
	})
	mux.HandleFunc("POST /api/lists/{id}/rebalance", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		respondNoContent(w, s.Cards.RebalanceList(r.Context(), id))
	})
	mux.HandleFunc("POST /api/lists/{id}/archive", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		l, err := s.Lists.ArchiveList(r.Context(), id)
		respond(w, l, err)
	})
	mux.HandleFunc("DELETE /api/lists/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		respondNoContent(w, s.Lists.DeleteList(r.Context(), id))
	})

	// Cards
	mux.HandleFunc("GET /api/lists/{id}/cards", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		cards, err := s.Cards.GetCardsByList(r.Context(), id)
		respond(w, cards, err)
	})
	mux.HandleFunc("POST /api/cards", func(w http.ResponseWriter, r *http.Request) {
		var req card.CreateCardRequest
		if !decode(w, r, &req) {
			return
		}
		c, err := s.Cards.CreateCard(r.Context(), req)
		respondCreated(w, c, err)
	})
	mux.HandleFunc("GET /api/cards/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		c, err := s.Cards.GetCard(r.Context(), id)
		respond(w, c, err)
	})
	mux.HandleFunc("PATCH /api/cards/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req card.UpdateCardFieldsRequest
		if !decode(w, r, &req) {
			return
		}
		c, err := s.Cards.UpdateCardFields(r.Context(), id, req)
		respond(w, c, err)
	})
	mux.HandleFunc("POST /api/cards/{id}/move", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req card.MoveCardRequest
		if !decode(w, r, &req) {
			return
		}
		c, err := s.Cards.MoveCard(r.Context(), id, req)
		respond(w, c, err)
	})
	mux.HandleFunc("POST /api/cards/{id}/checklist/{itemId}/toggle", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		itemID, err := uuid.Parse(r.PathValue("itemId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid checklist item id")
			return
		}
		c, err := s.Cards.ToggleChecklistItem(r.Context(), id, itemID)
		respond(w, c, err)
	})
	mux.HandleFunc("POST /api/cards/{id}/archive", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		c, err := s.Cards.ArchiveCard(r.Context(), id)
		respond(w, c, err)
	})
	mux.HandleFunc("DELETE /api/cards/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		respondNoContent(w, s.Cards.DeleteCard(r.Context(), id))
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func respond(w http.ResponseWriter, payload any, err error) {
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func respondCreated(w http.ResponseWriter, payload any, err error) {
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(payload)
}

func respondNoContent(w http.ResponseWriter, err error) {
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, board.ErrBoardNotFound),
		errors.Is(err, list.ErrListNotFound),
		errors.Is(err, card.ErrCardNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
