package sync

import (
	"fmt"
	"time"

	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/db"
	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/models"
)

// Refresher replaces local read-cache snapshots with fresh remote data.
// Each refresh is fetch-then-atomic-replace: the cache is never observed
// half-updated, and a failed fetch leaves the previous snapshot intact.
type Refresher struct {
	remote Remote
	store  *db.DB
}

// NewRefresher wires a Refresher.
func NewRefresher(r Remote, store *db.DB) *Refresher {
	return &Refresher{remote: r, store: store}
}

// RefreshItems replaces the item cache with the current remote item list.
func (r *Refresher) RefreshItems() error {
	rows, err := r.remote.FetchItems()
	if err != nil {
		return fmt.Errorf("fetch items: %w", err)
	}
	items := make([]models.CachedItem, 0, len(rows))
	for _, row := range rows {
		updatedAt, err := parseRemoteTime(row.UpdatedAt)
		if err != nil {
			return fmt.Errorf("item %s: %w", row.ID, err)
		}
		items = append(items, models.CachedItem{
			ID:        row.ID,
			Name:      row.Name,
			Barcode:   row.Barcode,
			Unit:      row.Unit,
			Stock:     row.Stock,
			UpdatedAt: updatedAt,
		})
	}
	return r.store.ReplaceItems(items)
}

// RefreshTargets replaces the target cache with targets applicable to day
// (YYYY-MM-DD). Recurring targets superseded by an explicit target for the
// same item on that day are dropped before insert.
func (r *Refresher) RefreshTargets(day string) error {
	rows, err := r.remote.FetchTargets(day)
	if err != nil {
		return fmt.Errorf("fetch targets: %w", err)
	}
	targets := make([]models.CachedTarget, 0, len(rows))
	for _, row := range rows {
		updatedAt, err := parseRemoteTime(row.UpdatedAt)
		if err != nil {
			return fmt.Errorf("target %s: %w", row.ID, err)
		}
		weekday := -1
		if row.Weekday != nil {
			weekday = *row.Weekday
		}
		targets = append(targets, models.CachedTarget{
			ID:        row.ID,
			ItemID:    row.ItemID,
			Quantity:  row.Quantity,
			Date:      row.Date,
			Weekday:   weekday,
			UpdatedAt: updatedAt,
		})
	}
	return r.store.ReplaceTargets(targets, day)
}

// RefreshRecentEvents replaces the completed-production cache with events
// since sinceDate (YYYY-MM-DD).
func (r *Refresher) RefreshRecentEvents(sinceDate string) error {
	rows, err := r.remote.FetchRecentEvents(sinceDate)
	if err != nil {
		return fmt.Errorf("fetch recent events: %w", err)
	}
	events := make([]models.CachedRecentEvent, 0, len(rows))
	for _, row := range rows {
		updatedAt, err := parseRemoteTime(row.UpdatedAt)
		if err != nil {
			return fmt.Errorf("event %s: %w", row.ID, err)
		}
		events = append(events, models.CachedRecentEvent{
			ID:        row.ID,
			ItemID:    row.ItemID,
			Quantity:  row.Quantity,
			EventDate: row.EventDate,
			UpdatedAt: updatedAt,
		})
	}
	return r.store.ReplaceRecentEvents(events)
}

func parseRemoteTime(s string) (time.Time, error) {
	for _, f := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized remote timestamp %q", s)
}
