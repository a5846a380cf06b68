// Package batch stages scanned entries before they become queued mutations.
// Repeated scans of the same item are detected, not silently merged: the
// scanner UI asks the operator before combining them.
package batch

import (
	"fmt"
	gosync "sync"
	"time"

	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/models"
	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/sync"
)

// AddResult tells the caller whether a scan opened a new entry or hit an
// existing one.
type AddResult int

const (
	Added AddResult = iota
	Duplicate
)

// Entry is one staged line: an item and the quantity accumulated for it.
// The idempotency key is issued the moment the entry is accepted, so
// reordering or partially committing the batch cannot change which key
// belongs to which logical entry.
type Entry struct {
	Key      string
	ItemID   string
	ItemName string
	Quantity float64
	AddedAt  time.Time
}

// Queue is where committed entries go; satisfied by *db.DB.
type Queue interface {
	Enqueue(m *models.PendingMutation) error
}

// Accumulator aggregates scans keyed by item identity, preserving the
// order in which items were first scanned.
type Accumulator struct {
	mu      gosync.Mutex
	entries map[string]*Entry
	order   []string
}

// New creates an empty Accumulator.
func New() *Accumulator {
	return &Accumulator{entries: make(map[string]*Entry)}
}

// Add stages an item with quantity 1 and issues its idempotency key. If
// the item is already staged, Add changes nothing and reports Duplicate so
// the caller can confirm the merge with the operator first.
func (a *Accumulator) Add(itemID, itemName string) AddResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.entries[itemID]; ok {
		return Duplicate
	}
	a.entries[itemID] = &Entry{
		Key:      sync.NewKey(),
		ItemID:   itemID,
		ItemName: itemName,
		Quantity: 1,
		AddedAt:  time.Now(),
	}
	a.order = append(a.order, itemID)
	return Added
}

// Increment adds one unit to a staged entry, the confirmed-merge path after
// a Duplicate answer. Reports whether the entry exists.
func (a *Accumulator) Increment(itemID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.entries[itemID]
	if !ok {
		return false
	}
	e.Quantity = models.ClampQuantity(e.Quantity + 1)
	return true
}

// SetQuantity overwrites a staged entry's quantity, rounded to three
// fractional digits (half away from zero) and clamped to
// [MinQuantity, MaxQuantity]. Reports whether the entry exists.
func (a *Accumulator) SetQuantity(itemID string, q float64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.entries[itemID]
	if !ok {
		return false
	}
	e.Quantity = models.ClampQuantity(q)
	return true
}

// Remove drops one staged entry.
func (a *Accumulator) Remove(itemID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.remove(itemID)
}

// RemoveMany drops several staged entries.
func (a *Accumulator) RemoveMany(itemIDs []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range itemIDs {
		a.remove(id)
	}
}

func (a *Accumulator) remove(itemID string) {
	if _, ok := a.entries[itemID]; !ok {
		return
	}
	delete(a.entries, itemID)
	for i, id := range a.order {
		if id == itemID {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

// Clear drops every staged entry.
func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = make(map[string]*Entry)
	a.order = nil
}

// Len reports how many entries are staged.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Entries returns the staged entries in first-scanned order.
func (a *Accumulator) Entries() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Entry, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, *a.entries[id])
	}
	return out
}

// Commit enqueues every staged entry as a mutation of the given kind, then
// clears the batch. Each mutation carries the key issued when its entry was
// first accepted. On a mid-commit storage error the batch keeps the entries
// that did not make it, so a re-commit cannot double-enqueue: the committed
// entries are gone from the accumulator.
func (a *Accumulator) Commit(q Queue, kind models.MutationKind, note string, eventAt time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for len(a.order) > 0 {
		id := a.order[0]
		e := a.entries[id]
		m := &models.PendingMutation{
			ID:       e.Key,
			Kind:     kind,
			ItemID:   e.ItemID,
			Quantity: e.Quantity,
			Note:     note,
			EventAt:  eventAt,
		}
		if err := q.Enqueue(m); err != nil {
			return fmt.Errorf("commit entry %s: %w", e.ItemID, err)
		}
		delete(a.entries, id)
		a.order = a.order[1:]
	}
	return nil
}
