package sync

import (
	"log/slog"

	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/db"
)

// Engine is the library entry point the surrounding app holds: the queue
// processor, escalation chain, connectivity probe, and cache refresher,
// wired over one local store and one remote client.
type Engine struct {
	Processor *Processor
	Escalator *Escalator
	Probe     *Probe
	Refresher *Refresher

	store *db.DB
}

// NewEngine wires all engine components. The remote client is passed in
// explicitly; nothing in the engine reaches for a global.
func NewEngine(store *db.DB, r Remote) *Engine {
	escalator := NewEscalator(r, store)
	return &Engine{
		Processor: NewProcessor(store, NewAdapter(r), escalator),
		Escalator: escalator,
		Probe:     NewProbe(r),
		Refresher: NewRefresher(r, store),
		store:     store,
	}
}

// Sync runs one full pass: flush fallback failure records if we are online,
// then drain the mutation queue.
func (e *Engine) Sync(userID string) (Result, error) {
	if e.Probe.IsOnline() {
		if n, err := e.Escalator.FlushLocalFailures(); err != nil {
			return Result{}, err
		} else if n > 0 {
			slog.Info("migrated local failure records", "count", n)
		}
	}
	return e.Processor.ProcessQueue(userID)
}

// PendingCount reports how many mutations still await confirmation.
func (e *Engine) PendingCount() (int, error) {
	return e.store.CountPending()
}
