package sync

import (
	"fmt"
	"log/slog"
	gosync "sync"

	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/db"
	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/models"
)

// Processor drains the local mutation queue against the remote store. One
// logical pass runs at a time; the internal mutex serializes overlapping
// callers so two passes never race on the same mutation's status.
type Processor struct {
	store     *db.DB
	adapter   *Adapter
	escalator *Escalator

	mu gosync.Mutex
}

// NewProcessor wires a Processor from its collaborators.
func NewProcessor(store *db.DB, adapter *Adapter, escalator *Escalator) *Processor {
	return &Processor{store: store, adapter: adapter, escalator: escalator}
}

// ProcessQueue submits every queued mutation in FIFO order and reports
// aggregate counts plus rejection messages.
//
// An empty queue returns immediately with zero network access. Each
// mutation's status transition commits individually, so an abandoned pass
// leaves the queue consistent. When the remote becomes unreachable the pass
// stops: submitting later mutations ahead of an unconfirmed earlier one
// would break the FIFO guarantee.
//
// Local storage errors abort the pass; they are the only errors returned.
func (p *Processor) ProcessQueue(userID string) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var result Result

	pending, err := p.store.ListPending()
	if err != nil {
		return result, fmt.Errorf("list pending: %w", err)
	}
	if len(pending) == 0 {
		return result, nil
	}

	for _, m := range pending {
		if err := p.store.MarkSyncing(m.ID); err != nil {
			return result, err
		}

		outcome := p.adapter.Submit(m, userID)
		switch outcome.State {
		case Accepted:
			if err := p.store.Remove(m.ID); err != nil {
				return result, err
			}
			result.Synced++

		case Rejected:
			if err := p.store.MarkFailed(m.ID); err != nil {
				return result, err
			}
			if err := p.escalator.Record(m, outcome.Reason, userID); err != nil {
				return result, err
			}
			result.Failed++
			result.Errors = append(result.Errors, outcome.Reason)
			slog.Warn("mutation rejected", "id", m.ID, "item", m.ItemID, "reason", outcome.Reason)

		case Unreachable:
			// fate unknown; leave it pending and retry the whole tail later
			if err := p.store.MarkPending(m.ID); err != nil {
				return result, err
			}
			slog.Info("remote unreachable, stopping pass", "id", m.ID, "synced", result.Synced)
			return result, nil
		}
	}

	return result, nil
}

// RetryFailed returns one failed mutation to pending so the next pass picks
// it up. The idempotency key is untouched.
func (p *Processor) RetryFailed(id string) error {
	return p.store.MarkPending(id)
}

// RetryAllFailed returns every failed mutation to pending.
func (p *Processor) RetryAllFailed() (int, error) {
	failed, err := p.store.ListFailed()
	if err != nil {
		return 0, err
	}
	for _, m := range failed {
		if err := p.store.MarkPending(m.ID); err != nil {
			return 0, err
		}
	}
	return len(failed), nil
}

// DismissFailed drops a failed mutation without submitting it. This is the
// reviewer's resolution path; the remote store never sees the mutation.
func (p *Processor) DismissFailed(id string) error {
	m, err := p.store.GetMutation(id)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("mutation %s not found", id)
	}
	if m.Status != models.StatusFailed {
		return fmt.Errorf("mutation %s is %s, only failed mutations can be dismissed", id, m.Status)
	}
	return p.store.Remove(id)
}
