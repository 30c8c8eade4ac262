package card

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const rebalanceQueueSize = 64

// DefaultRebalanceDebounce batches a burst of signals for the same list into
// one rebalance pass.
const DefaultRebalanceDebounce = 2 * time.Second

// RebalanceWorker drains rebalance signals in the background so the move path
// never blocks on maintenance. Signals for a list already pending are
// deduplicated; each accepted signal is debounced before the batch write runs.
type RebalanceWorker struct {
	app      *App
	clock    clockwork.Clock
	debounce time.Duration

	workCh chan uuid.UUID

	pendingMu sync.Mutex
	pending   map[uuid.UUID]bool
}

// NewRebalanceWorker creates a worker over the card app.
func NewRebalanceWorker(app *App, clock clockwork.Clock, debounce time.Duration) *RebalanceWorker {
	if debounce <= 0 {
		debounce = DefaultRebalanceDebounce
	}
	return &RebalanceWorker{
		app:      app,
		clock:    clock,
		debounce: debounce,
		workCh:   make(chan uuid.UUID, rebalanceQueueSize),
		pending:  make(map[uuid.UUID]bool),
	}
}

// Enqueue schedules a list for rebalancing. Non-blocking: a full queue drops
// the signal, which is safe because the next sub-threshold move re-raises it.
func (w *RebalanceWorker) Enqueue(listID uuid.UUID) {
	w.pendingMu.Lock()
	if w.pending[listID] {
		w.pendingMu.Unlock()
		return
	}
	w.pending[listID] = true
	w.pendingMu.Unlock()

	select {
	case w.workCh <- listID:
	default:
		w.pendingMu.Lock()
		delete(w.pending, listID)
		w.pendingMu.Unlock()
		log.Warn().Str("list_id", listID.String()).Msg("rebalance queue full, dropping signal")
	}
}

// Run drains the queue until ctx is cancelled.
func (w *RebalanceWorker) Run(ctx context.Context) {
	log.Info().Dur("debounce", w.debounce).Msg("rebalance worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("rebalance worker shutting down")
			return
		case listID := <-w.workCh:
			timer := w.clock.NewTimer(w.debounce)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.Chan():
			}

			w.pendingMu.Lock()
			delete(w.pending, listID)
			w.pendingMu.Unlock()

			if err := w.app.RebalanceList(ctx, listID); err != nil {
				log.Error().Err(err).Str("list_id", listID.String()).Msg("rebalance failed")
			}
		}
	}
}
