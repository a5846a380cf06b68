package models

import (
	"fmt"
	"math"
	"time"
)

// MutationKind distinguishes the two kinds of locally recorded work.
type MutationKind string

const (
	KindTransaction MutationKind = "transaction"
	KindProduction  MutationKind = "production"
)

// MutationStatus tracks a pending mutation through the sync lifecycle.
// Success has no status: a confirmed mutation is deleted from the queue.
type MutationStatus string

const (
	StatusPending MutationStatus = "pending"
	StatusSyncing MutationStatus = "syncing"
	StatusFailed  MutationStatus = "failed"
)

// FailureStatus is the review state of a sync failure record.
type FailureStatus string

const (
	FailureNew       FailureStatus = "pending"
	FailureRetrying  FailureStatus = "retrying"
	FailureResolved  FailureStatus = "resolved"
	FailureDismissed FailureStatus = "dismissed"
)

// Quantity bounds. Quantities carry at most three fractional digits.
const (
	MinQuantity = 0.001
	MaxQuantity = 9999.999
)

// PendingMutation is a locally recorded inventory or production change that
// has not yet been confirmed by the remote store. ID doubles as the
// idempotency key: it is assigned once at creation and reused verbatim on
// every retry, so resubmission after an ambiguous network failure is safe.
type PendingMutation struct {
	ID        string // UUID, primary key and idempotency key
	Kind      MutationKind
	ItemID    string
	Quantity  float64 // signed; negative values are corrections
	Note      string
	Reason    string // categorical reason code (e.g. waste reason), optional
	FromLoc   string // transaction source location, optional
	ToLoc     string // transaction destination location, optional
	Waste     float64
	Status    MutationStatus
	EventAt   time.Time // device-local time of the physical event
	CreatedAt time.Time // device-local time the mutation was recorded
}

// Validate rejects malformed mutations before they reach the queue.
func (m *PendingMutation) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("mutation missing idempotency key")
	}
	if m.ItemID == "" {
		return fmt.Errorf("mutation missing item id")
	}
	switch m.Kind {
	case KindTransaction, KindProduction:
	default:
		return fmt.Errorf("unknown mutation kind %q", m.Kind)
	}
	if math.Abs(m.Quantity) > MaxQuantity {
		return fmt.Errorf("quantity %v exceeds ceiling %v", m.Quantity, MaxQuantity)
	}
	if m.Quantity != RoundQuantity(m.Quantity) {
		return fmt.Errorf("quantity %v has more than 3 fractional digits", m.Quantity)
	}
	return nil
}

// RoundQuantity rounds to three fractional digits, half away from zero.
func RoundQuantity(q float64) float64 {
	return math.Round(q*1000) / 1000
}

// ClampQuantity rounds q and forces it into the [MinQuantity, MaxQuantity]
// range. Used for operator-entered batch quantities, which must be positive.
func ClampQuantity(q float64) float64 {
	q = RoundQuantity(q)
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

// CachedItem is a read-only local projection of a remote inventory item.
type CachedItem struct {
	ID        string
	Name      string
	Barcode   string
	Unit      string
	Stock     float64
	UpdatedAt time.Time
}

// CachedTarget is a production target. Explicit targets are pinned to one
// date; recurring targets repeat on a weekday. An explicit target supersedes
// a recurring one for the same item on the same day.
type CachedTarget struct {
	ID        string
	ItemID    string
	Quantity  float64
	Date      string // YYYY-MM-DD for explicit targets, empty for recurring
	Weekday   int    // 0=Sunday..6=Saturday for recurring targets, -1 otherwise
	UpdatedAt time.Time
}

// Explicit reports whether the target is date-scoped rather than recurring.
func (t CachedTarget) Explicit() bool { return t.Date != "" }

// CachedRecentEvent is a completed production confirmed by the remote store.
type CachedRecentEvent struct {
	ID        string
	ItemID    string
	Quantity  float64
	EventDate string // YYYY-MM-DD
	UpdatedAt time.Time
}

// SyncFailureRecord captures a rejected mutation for human review.
type SyncFailureRecord struct {
	ID         string
	Payload    []byte // JSON snapshot of the original mutation
	Message    string
	UserID     string
	Status     FailureStatus
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// Config holds the surrounding app's connection settings for the remote store.
type Config struct {
	RemoteURL string `json:"remote_url"`
	APIKey    string `json:"api_key,omitempty"`
	DeviceID  string `json:"device_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}
