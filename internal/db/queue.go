package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/models"
)

// timeFormat is fixed width so that lexicographic ordering on the stored
// string matches chronological ordering.
const timeFormat = "2006-01-02 15:04:05.000000000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(timeFormat, s); err == nil {
		return t, nil
	}
	// older rows may carry other common SQLite formats
	for _, f := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

// Enqueue inserts a mutation with status pending. The mutation must already
// carry its idempotency key; Enqueue never assigns one.
func (db *DB) Enqueue(m *models.PendingMutation) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.EventAt.IsZero() {
		m.EventAt = m.CreatedAt
	}
	m.Status = models.StatusPending

	_, err := db.conn.Exec(`
		INSERT INTO pending_mutations (id, kind, item_id, quantity, note, reason, from_loc, to_loc, waste, status, event_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Kind, m.ItemID, m.Quantity, m.Note, m.Reason, m.FromLoc, m.ToLoc,
		m.Waste, m.Status, formatTime(m.EventAt), formatTime(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("enqueue mutation %s: %w", m.ID, err)
	}
	return nil
}

const mutationColumns = `id, kind, item_id, quantity, note, reason, from_loc, to_loc, waste, status, event_at, created_at`

func scanMutation(rows *sql.Rows) (models.PendingMutation, error) {
	var m models.PendingMutation
	var eventAt, createdAt string
	err := rows.Scan(&m.ID, &m.Kind, &m.ItemID, &m.Quantity, &m.Note, &m.Reason,
		&m.FromLoc, &m.ToLoc, &m.Waste, &m.Status, &eventAt, &createdAt)
	if err != nil {
		return m, fmt.Errorf("scan mutation: %w", err)
	}
	if m.EventAt, err = parseTime(eventAt); err != nil {
		return m, err
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return m, err
	}
	return m, nil
}

func (db *DB) listByStatus(statuses ...models.MutationStatus) ([]models.PendingMutation, error) {
	query := `SELECT ` + mutationColumns + ` FROM pending_mutations WHERE status IN (?`
	args := []any{statuses[0]}
	for _, s := range statuses[1:] {
		query += ",?"
		args = append(args, s)
	}
	query += `) ORDER BY created_at ASC, id ASC`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mutations: %w", err)
	}
	defer rows.Close()

	var out []models.PendingMutation
	for rows.Next() {
		m, err := scanMutation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListPending returns unconfirmed mutations in creation order. Later
// mutations on the same item must not be applied before earlier ones, so
// this ordering is a hard guarantee, not a convenience. Failed mutations
// are included: they stay eligible for the next pass until dismissed.
func (db *DB) ListPending() ([]models.PendingMutation, error) {
	return db.listByStatus(models.StatusPending, models.StatusFailed)
}

// ListFailed returns only mutations whose last submission was rejected.
func (db *DB) ListFailed() ([]models.PendingMutation, error) {
	return db.listByStatus(models.StatusFailed)
}

// GetMutation fetches one mutation by idempotency key.
func (db *DB) GetMutation(id string) (*models.PendingMutation, error) {
	rows, err := db.conn.Query(`SELECT `+mutationColumns+` FROM pending_mutations WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get mutation %s: %w", id, err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	m, err := scanMutation(rows)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (db *DB) setStatus(id string, status models.MutationStatus) error {
	res, err := db.conn.Exec(`UPDATE pending_mutations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set status %s on %s: %w", status, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("mutation %s not found", id)
	}
	return nil
}

// MarkSyncing flags a mutation as in flight.
func (db *DB) MarkSyncing(id string) error {
	return db.setStatus(id, models.StatusSyncing)
}

// MarkFailed flags a mutation as rejected. It remains in the queue and is
// visible to ListPending on the next pass.
func (db *DB) MarkFailed(id string) error {
	return db.setStatus(id, models.StatusFailed)
}

// MarkPending returns a failed mutation to the pending state. This is the
// explicit manual-retry path; the store itself never schedules retries.
func (db *DB) MarkPending(id string) error {
	return db.setStatus(id, models.StatusPending)
}

// Remove deletes a mutation. This is the only terminal success action and
// is permanent; it must happen only on confirmed remote acceptance, or on
// explicit dismissal by a reviewer.
func (db *DB) Remove(id string) error {
	_, err := db.conn.Exec(`DELETE FROM pending_mutations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove mutation %s: %w", id, err)
	}
	return nil
}

// CountPending counts mutations that are still awaiting confirmation.
func (db *DB) CountPending() (int, error) {
	var n int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pending_mutations WHERE status IN (?, ?)`,
		models.StatusPending, models.StatusFailed,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return n, nil
}

// ClearAll empties the queue. Administrative; discards unconfirmed work.
func (db *DB) ClearAll() error {
	_, err := db.conn.Exec(`DELETE FROM pending_mutations`)
	if err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	return nil
}
