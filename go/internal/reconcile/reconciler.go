package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/boardsync/go/internal/models"
)

// MoveStatus is the terminal state of one in-flight move.
type MoveStatus string

const (
	// MoveCommitted: the server accepted the move and the authoritative
	// record replaced the provisional one.
	MoveCommitted MoveStatus = "committed"
	// MoveRolledBack: the server rejected (or never answered) the move; the
	// optimistic state was discarded and the projection was replaced by a
	// fresh authoritative fetch.
	MoveRolledBack MoveStatus = "rolledBack"
	// MoveSuperseded: a newer move of the same card started before this one
	// resolved; its response is ignored.
	MoveSuperseded MoveStatus = "superseded"
)

// ErrMoveTimeout is reported when the server never answers a move request.
var ErrMoveTimeout = errors.New("move request timed out")

// DefaultMoveTimeout bounds how long optimistic state may dangle unresolved.
const DefaultMoveTimeout = 10 * time.Second

// MoveAPI is the synchronous authoritative-move surface the client consumes.
type MoveAPI interface {
	MoveCard(ctx context.Context, cardID, targetListID uuid.UUID, prev, next *float64) (*models.Card, error)
	ReorderList(ctx context.Context, listID uuid.UUID, prev, next *float64) (*models.List, error)
}

// Fetcher refetches the authoritative board snapshot for a wholesale resync.
type Fetcher interface {
	FetchBoard(ctx context.Context, boardID uuid.UUID) (*models.BoardSnapshot, error)
}

// Move describes one drag-drop gesture.
type Move struct {
	CardID       uuid.UUID
	SourceListID uuid.UUID
	TargetListID uuid.UUID
	// Index is where the card was dropped in the target list.
	Index int
	// Prev/Next are the neighbor positions observed locally at drag time.
	Prev *float64
	Next *float64
}

// MoveOutcome reports how a move resolved.
type MoveOutcome struct {
	Status MoveStatus
	Card   *models.Card
	Err    error
}

// Reconciler drives the two-phase protocol for a single board:
// Pending(provisional) -> Committed(authoritative) | RolledBack(resync).
// The projection mutates optimistically the moment a gesture happens and is
// repaired from server truth when a move fails or is superseded.
type Reconciler struct {
	api     MoveAPI
	fetcher Fetcher
	clock   clockwork.Clock
	timeout time.Duration

	mu    sync.Mutex
	state *BoardState
	// Per-card move sequence. A response is only honored if its move is
	// still the newest for that card.
	moveSeq map[uuid.UUID]uint64
}

// NewReconciler creates a reconciler over an initial authoritative snapshot.
func NewReconciler(snap *models.BoardSnapshot, api MoveAPI, fetcher Fetcher, clock clockwork.Clock) *Reconciler {
	return &Reconciler{
		api:     api,
		fetcher: fetcher,
		clock:   clock,
		timeout: DefaultMoveTimeout,
		state:   NewBoardState(snap),
		moveSeq: make(map[uuid.UUID]uint64),
	}
}

// SetMoveTimeout overrides the per-move request timeout.
func (r *Reconciler) SetMoveTimeout(d time.Duration) {
	r.timeout = d
}

// State exposes the current projection. Callers must treat it as read-only
// and must not retain it across reconciler calls.
func (r *Reconciler) State() *BoardState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// MoveCard runs one gesture end to end: optimistic splice, authoritative
// request, then commit, rollback or supersede. It blocks until the move
// resolves and is intended to run on its own goroutine per gesture.
func (r *Reconciler) MoveCard(ctx context.Context, m Move) MoveOutcome {
	r.mu.Lock()
	if !r.state.OptimisticMoveCard(m.CardID, m.SourceListID, m.TargetListID, m.Index) {
		r.mu.Unlock()
		return MoveOutcome{Status: MoveRolledBack, Err: errors.New("card or list missing from local state")}
	}
	r.moveSeq[m.CardID]++
	seq := r.moveSeq[m.CardID]
	r.mu.Unlock()

	type result struct {
		card *models.Card
		err  error
	}
	resCh := make(chan result, 1)
	go func() {
		c, err := r.api.MoveCard(ctx, m.CardID, m.TargetListID, m.Prev, m.Next)
		resCh <- result{card: c, err: err}
	}()

	var res result
	select {
	case res = <-resCh:
	case <-r.clock.After(r.timeout):
		res = result{err: ErrMoveTimeout}
	case <-ctx.Done():
		res = result{err: ctx.Err()}
	}

	r.mu.Lock()
	if r.moveSeq[m.CardID] != seq {
		r.mu.Unlock()
		return MoveOutcome{Status: MoveSuperseded}
	}

	if res.err == nil {
		r.state.ReplaceCard(*res.card)
		r.mu.Unlock()
		return MoveOutcome{Status: MoveCommitted, Card: res.card}
	}
	r.mu.Unlock()

	log.Warn().
		Err(res.err).
		Str("card_id", m.CardID.String()).
		Msg("move rejected, resyncing board from authoritative source")

	if err := r.Resync(ctx); err != nil {
		return MoveOutcome{Status: MoveRolledBack, Err: errors.Join(res.err, err)}
	}
	return MoveOutcome{Status: MoveRolledBack, Err: res.err}
}

// ReorderList mirrors MoveCard for lists within the board.
func (r *Reconciler) ReorderList(ctx context.Context, listID uuid.UUID, index int, prev, next *float64) MoveOutcome {
	r.mu.Lock()
	boardOK := r.state.findList(listID) >= 0
	if boardOK {
		// Optimistic placement: midpoint of the observed neighbors.
		provisional := 0.0
		switch {
		case prev != nil && next != nil:
			provisional = (*prev + *next) / 2
		case prev != nil:
			provisional = *prev + 1
		case next != nil:
			provisional = *next / 2
		}
		r.state.ApplyListReordered(listID, provisional)
	}
	r.mu.Unlock()
	if !boardOK {
		return MoveOutcome{Status: MoveRolledBack, Err: errors.New("list missing from local state")}
	}

	type result struct {
		list *models.List
		err  error
	}
	resCh := make(chan result, 1)
	go func() {
		l, err := r.api.ReorderList(ctx, listID, prev, next)
		resCh <- result{list: l, err: err}
	}()

	var res result
	select {
	case res = <-resCh:
	case <-r.clock.After(r.timeout):
		res = result{err: ErrMoveTimeout}
	case <-ctx.Done():
		res = result{err: ctx.Err()}
	}

	if res.err == nil {
		r.mu.Lock()
		r.state.ApplyListReordered(listID, res.list.Position)
		r.mu.Unlock()
		return MoveOutcome{Status: MoveCommitted}
	}

	if err := r.Resync(ctx); err != nil {
		return MoveOutcome{Status: MoveRolledBack, Err: errors.Join(res.err, err)}
	}
	return MoveOutcome{Status: MoveRolledBack, Err: res.err}
}

// Resync discards the local projection and replaces it wholesale with a
// fresh authoritative snapshot. No partial-patch recovery: a failed move
// invalidates every assumption about current neighbor positions.
func (r *Reconciler) Resync(ctx context.Context) error {
	r.mu.Lock()
	boardID := r.state.Board.ID
	r.mu.Unlock()

	snap, err := r.fetcher.FetchBoard(ctx, boardID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.state = NewBoardState(snap)
	r.mu.Unlock()
	return nil
}
