package db

import (
	"fmt"

	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/models"
)

// ProducedToday merges confirmed and unconfirmed production for one item on
// one day: the cached completed sum plus the signed sum of queued production
// mutations whose event falls on that day. Negative queued quantities are
// corrections and reduce the total.
func (db *DB) ProducedToday(itemID, day string) (float64, error) {
	var cached float64
	err := db.conn.QueryRow(`
		SELECT COALESCE(SUM(quantity), 0) FROM cache_recent_events
		WHERE item_id = ? AND event_date = ?`, itemID, day).Scan(&cached)
	if err != nil {
		return 0, fmt.Errorf("sum cached production: %w", err)
	}

	var pending float64
	err = db.conn.QueryRow(`
		SELECT COALESCE(SUM(quantity), 0) FROM pending_mutations
		WHERE kind = ? AND item_id = ? AND substr(event_at, 1, 10) = ?`,
		models.KindProduction, itemID, day).Scan(&pending)
	if err != nil {
		return 0, fmt.Errorf("sum pending production: %w", err)
	}

	return models.RoundQuantity(cached + pending), nil
}
