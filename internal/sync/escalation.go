package sync

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/db"
	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/models"
	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/remote"
)

// Escalator files rejected mutations for operator review. The remote store
// is the normal home for failure records; when even that write cannot be
// made the record lands in the local fallback table, so no failure is ever
// silently dropped.
type Escalator struct {
	remote Remote
	store  *db.DB
}

// NewEscalator wires an Escalator.
func NewEscalator(r Remote, store *db.DB) *Escalator {
	return &Escalator{remote: r, store: store}
}

// Record writes a SyncFailureRecord for the rejected mutation. The record
// reuses the mutation's ID so a retried escalation cannot file twice.
// Returns an error only when the local fallback write itself fails, which
// is fatal: at that point the failure has nowhere durable to live.
func (e *Escalator) Record(m models.PendingMutation, message, userID string) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("snapshot mutation %s: %w", m.ID, err)
	}

	req := &remote.FailureRecordRequest{
		ID:      m.ID,
		Payload: payload,
		Message: message,
		UserID:  userID,
		Status:  string(models.FailureNew),
	}
	err = e.remote.CreateFailureRecord(req)
	if err == nil {
		return nil
	}
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) && apiErr.AlreadyApplied() {
		return nil // filed on a previous attempt
	}

	slog.Warn("remote failure record write failed, using local fallback", "id", m.ID, "err", err)
	return e.store.InsertLocalFailure(&models.SyncFailureRecord{
		ID:        m.ID,
		Payload:   payload,
		Message:   message,
		UserID:    userID,
		Status:    models.FailureNew,
		CreatedAt: time.Now().UTC(),
	})
}

// FlushLocalFailures pushes fallback-stored failure records to the remote
// store. Each record is deleted locally only after confirmed remote
// acceptance, never before. An unreachable remote stops the flush and
// leaves the remainder untouched; the next opportunistic call retries.
// Returns the number of records migrated.
func (e *Escalator) FlushLocalFailures() (int, error) {
	records, err := e.store.ListLocalFailures()
	if err != nil {
		return 0, fmt.Errorf("list local failures: %w", err)
	}

	migrated := 0
	for _, rec := range records {
		req := &remote.FailureRecordRequest{
			ID:      rec.ID,
			Payload: rec.Payload,
			Message: rec.Message,
			UserID:  rec.UserID,
			Status:  string(models.FailureNew),
		}
		err := e.remote.CreateFailureRecord(req)
		if err != nil {
			var apiErr *remote.APIError
			if errors.As(err, &apiErr) && apiErr.AlreadyApplied() {
				// already remote; safe to drop the local copy
			} else {
				slog.Info("flush stopped", "id", rec.ID, "migrated", migrated, "err", err)
				return migrated, nil
			}
		}
		if err := e.store.DeleteLocalFailure(rec.ID); err != nil {
			return migrated, err
		}
		migrated++
	}
	return migrated, nil
}
