package db

import "fmt"

// SchemaVersion is the current local schema version.
const SchemaVersion = 1

const schema = `
-- Durable queue of not-yet-confirmed mutations. The primary key is the
-- idempotency key sent to the remote store.
CREATE TABLE IF NOT EXISTS pending_mutations (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    item_id TEXT NOT NULL,
    quantity REAL NOT NULL,
    note TEXT DEFAULT '',
    reason TEXT DEFAULT '',
    from_loc TEXT DEFAULT '',
    to_loc TEXT DEFAULT '',
    waste REAL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'pending',
    event_at DATETIME NOT NULL,
    created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pending_status ON pending_mutations(status, created_at);

-- Read cache: replaced wholesale per kind, never patched row by row.
CREATE TABLE IF NOT EXISTS cache_items (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    barcode TEXT DEFAULT '',
    unit TEXT DEFAULT '',
    stock REAL DEFAULT 0,
    updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_items_barcode ON cache_items(barcode);

CREATE TABLE IF NOT EXISTS cache_targets (
    id TEXT PRIMARY KEY,
    item_id TEXT NOT NULL,
    quantity REAL NOT NULL,
    date TEXT DEFAULT '',
    weekday INTEGER DEFAULT -1,
    updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_targets_item ON cache_targets(item_id);

CREATE TABLE IF NOT EXISTS cache_recent_events (
    id TEXT PRIMARY KEY,
    item_id TEXT NOT NULL,
    quantity REAL NOT NULL,
    event_date TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_recent_item_date ON cache_recent_events(item_id, event_date);

-- Key/value markers, e.g. last-refresh timestamps per cache kind.
CREATE TABLE IF NOT EXISTS sync_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- Fallback home for failure reports that could not reach the remote store.
CREATE TABLE IF NOT EXISTS local_sync_failures (
    id TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    message TEXT NOT NULL,
    user_id TEXT DEFAULT '',
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_info (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// migrate creates the schema and records the version. New versions append
// ALTER statements keyed off the stored version.
func (db *DB) migrate() error {
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO schema_info (key, value) VALUES ('version', ?)`,
		fmt.Sprintf("%d", SchemaVersion))
	if err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}
