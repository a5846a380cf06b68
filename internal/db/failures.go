package db

import (
	"fmt"
	"time"

	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/models"
)

// InsertLocalFailure stores a failure report that could not be written to
// the remote store. Nothing is ever dropped: if even this insert fails the
// error is fatal to the caller.
func (db *DB) InsertLocalFailure(rec *models.SyncFailureRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO local_sync_failures (id, payload, message, user_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Payload), rec.Message, rec.UserID, formatTime(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert local failure %s: %w", rec.ID, err)
	}
	return nil
}

// ListLocalFailures returns fallback-stored failure reports, oldest first.
func (db *DB) ListLocalFailures() ([]models.SyncFailureRecord, error) {
	rows, err := db.conn.Query(`SELECT id, payload, message, user_id, created_at FROM local_sync_failures ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list local failures: %w", err)
	}
	defer rows.Close()

	var out []models.SyncFailureRecord
	for rows.Next() {
		var rec models.SyncFailureRecord
		var payload, ts string
		if err := rows.Scan(&rec.ID, &payload, &rec.Message, &rec.UserID, &ts); err != nil {
			return nil, fmt.Errorf("scan local failure: %w", err)
		}
		rec.Payload = []byte(payload)
		rec.Status = models.FailureNew
		if rec.CreatedAt, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteLocalFailure removes a fallback record. Only called after the
// record has been confirmed written remotely.
func (db *DB) DeleteLocalFailure(id string) error {
	_, err := db.conn.Exec(`DELETE FROM local_sync_failures WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete local failure %s: %w", id, err)
	}
	return nil
}

// CountLocalFailures counts fallback-stored failure reports.
func (db *DB) CountLocalFailures() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM local_sync_failures`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count local failures: %w", err)
	}
	return n, nil
}
