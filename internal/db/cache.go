package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/models"
)

// CacheKind names one replaceable cache table.
type CacheKind string

const (
	CacheItems        CacheKind = "items"
	CacheTargets      CacheKind = "targets"
	CacheRecentEvents CacheKind = "recent_events"
)

func refreshKey(kind CacheKind) string {
	return "last_refresh_" + string(kind)
}

// replaceAll runs clear-then-repopulate plus the last-refresh marker update
// inside one transaction. Either the whole snapshot lands or none of it
// does; a reader never observes a half-replaced cache.
func (db *DB) replaceAll(kind CacheKind, clear string, insert func(tx *sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin cache replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(clear); err != nil {
		return fmt.Errorf("clear %s cache: %w", kind, err)
	}
	if err := insert(tx); err != nil {
		return err
	}
	_, err = tx.Exec(`INSERT OR REPLACE INTO sync_metadata (key, value) VALUES (?, ?)`,
		refreshKey(kind), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("update refresh marker: %w", err)
	}
	return tx.Commit()
}

// ReplaceItems swaps the item cache for a fresh remote snapshot.
func (db *DB) ReplaceItems(items []models.CachedItem) error {
	return db.replaceAll(CacheItems, `DELETE FROM cache_items`, func(tx *sql.Tx) error {
		for _, it := range items {
			_, err := tx.Exec(`
				INSERT INTO cache_items (id, name, barcode, unit, stock, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				it.ID, it.Name, it.Barcode, it.Unit, it.Stock, formatTime(it.UpdatedAt))
			if err != nil {
				return fmt.Errorf("insert cache item %s: %w", it.ID, err)
			}
		}
		return nil
	})
}

// DedupTargets drops recurring targets whose item already has an explicit
// target on the given day. Explicit always wins.
func DedupTargets(targets []models.CachedTarget, day string) []models.CachedTarget {
	explicit := make(map[string]bool)
	for _, t := range targets {
		if t.Explicit() && t.Date == day {
			explicit[t.ItemID] = true
		}
	}
	out := make([]models.CachedTarget, 0, len(targets))
	for _, t := range targets {
		if !t.Explicit() && explicit[t.ItemID] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ReplaceTargets swaps the target cache for a fresh snapshot, applying the
// explicit-over-recurring dedup rule for the given day before insert.
func (db *DB) ReplaceTargets(targets []models.CachedTarget, day string) error {
	targets = DedupTargets(targets, day)
	return db.replaceAll(CacheTargets, `DELETE FROM cache_targets`, func(tx *sql.Tx) error {
		for _, t := range targets {
			_, err := tx.Exec(`
				INSERT INTO cache_targets (id, item_id, quantity, date, weekday, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				t.ID, t.ItemID, t.Quantity, t.Date, t.Weekday, formatTime(t.UpdatedAt))
			if err != nil {
				return fmt.Errorf("insert cache target %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

// ReplaceRecentEvents swaps the completed-production cache for a fresh snapshot.
func (db *DB) ReplaceRecentEvents(events []models.CachedRecentEvent) error {
	return db.replaceAll(CacheRecentEvents, `DELETE FROM cache_recent_events`, func(tx *sql.Tx) error {
		for _, ev := range events {
			_, err := tx.Exec(`
				INSERT INTO cache_recent_events (id, item_id, quantity, event_date, updated_at)
				VALUES (?, ?, ?, ?, ?)`,
				ev.ID, ev.ItemID, ev.Quantity, ev.EventDate, formatTime(ev.UpdatedAt))
			if err != nil {
				return fmt.Errorf("insert cache event %s: %w", ev.ID, err)
			}
		}
		return nil
	})
}

// ListItems returns the cached item snapshot ordered by name.
func (db *DB) ListItems() ([]models.CachedItem, error) {
	rows, err := db.conn.Query(`SELECT id, name, barcode, unit, stock, updated_at FROM cache_items ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list cached items: %w", err)
	}
	defer rows.Close()

	var out []models.CachedItem
	for rows.Next() {
		var it models.CachedItem
		var ts string
		if err := rows.Scan(&it.ID, &it.Name, &it.Barcode, &it.Unit, &it.Stock, &ts); err != nil {
			return nil, fmt.Errorf("scan cached item: %w", err)
		}
		if it.UpdatedAt, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetItemByBarcode resolves a scanned barcode against the cache. Returns
// nil when unknown; the scanner UI treats that as "not in this store".
func (db *DB) GetItemByBarcode(barcode string) (*models.CachedItem, error) {
	var it models.CachedItem
	var ts string
	err := db.conn.QueryRow(
		`SELECT id, name, barcode, unit, stock, updated_at FROM cache_items WHERE barcode = ?`,
		barcode,
	).Scan(&it.ID, &it.Name, &it.Barcode, &it.Unit, &it.Stock, &ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup barcode %s: %w", barcode, err)
	}
	if it.UpdatedAt, err = parseTime(ts); err != nil {
		return nil, err
	}
	return &it, nil
}

// ListTargets returns the cached target snapshot.
func (db *DB) ListTargets() ([]models.CachedTarget, error) {
	rows, err := db.conn.Query(`SELECT id, item_id, quantity, date, weekday, updated_at FROM cache_targets ORDER BY item_id ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list cached targets: %w", err)
	}
	defer rows.Close()

	var out []models.CachedTarget
	for rows.Next() {
		var t models.CachedTarget
		var ts string
		if err := rows.Scan(&t.ID, &t.ItemID, &t.Quantity, &t.Date, &t.Weekday, &ts); err != nil {
			return nil, fmt.Errorf("scan cached target: %w", err)
		}
		if t.UpdatedAt, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListRecentEvents returns the cached completed productions.
func (db *DB) ListRecentEvents() ([]models.CachedRecentEvent, error) {
	rows, err := db.conn.Query(`SELECT id, item_id, quantity, event_date, updated_at FROM cache_recent_events ORDER BY event_date DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list cached events: %w", err)
	}
	defer rows.Close()

	var out []models.CachedRecentEvent
	for rows.Next() {
		var ev models.CachedRecentEvent
		var ts string
		if err := rows.Scan(&ev.ID, &ev.ItemID, &ev.Quantity, &ev.EventDate, &ts); err != nil {
			return nil, fmt.Errorf("scan cached event: %w", err)
		}
		if ev.UpdatedAt, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// LastRefreshedAt reports when a cache kind was last replaced, or nil if it
// never has been.
func (db *DB) LastRefreshedAt(kind CacheKind) (*time.Time, error) {
	var val string
	err := db.conn.QueryRow(`SELECT value FROM sync_metadata WHERE key = ?`, refreshKey(kind)).Scan(&val)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read refresh marker: %w", err)
	}
	t, err := parseTime(val)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
