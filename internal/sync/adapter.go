package sync

import (
	"errors"
	"time"

	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/models"
	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/remote"
)

// Adapter turns one local mutation into one idempotent remote call. It
// performs exactly one round trip and never retries internally; retry
// cadence belongs to the Processor's callers.
type Adapter struct {
	remote Remote
}

// NewAdapter creates an Adapter over the given remote client.
func NewAdapter(r Remote) *Adapter {
	return &Adapter{remote: r}
}

// Submit sends the mutation under its idempotency key and classifies the
// answer. A unique-violation or idempotency-conflict response means the
// mutation landed in an earlier attempt whose response was lost, so it maps
// to Accepted; that is what makes blind retries safe.
func (a *Adapter) Submit(m models.PendingMutation, userID string) Outcome {
	var err error
	switch m.Kind {
	case models.KindProduction:
		_, err = a.remote.SubmitProduction(a.productionRequest(m, userID))
	default:
		_, err = a.remote.SubmitTransaction(a.transactionRequest(m, userID))
	}
	if err == nil {
		return Outcome{State: Accepted}
	}

	var apiErr *remote.APIError
	if errors.As(err, &apiErr) {
		if apiErr.AlreadyApplied() {
			return Outcome{State: Accepted}
		}
		if apiErr.Class == remote.ClassUnreachable {
			return Outcome{State: Unreachable, Reason: apiErr.Message}
		}
		return Outcome{State: Rejected, Reason: apiErr.Message}
	}
	return Outcome{State: Unreachable, Reason: err.Error()}
}

func (a *Adapter) transactionRequest(m models.PendingMutation, userID string) *remote.TransactionRequest {
	req := &remote.TransactionRequest{
		IdempotencyKey: m.ID,
		ItemID:         m.ItemID,
		Quantity:       m.Quantity,
		UserID:         userID,
		EventAt:        m.EventAt.UTC().Format(time.RFC3339Nano),
	}
	if m.Note != "" {
		req.Note = &m.Note
	}
	if m.FromLoc != "" {
		req.FromLocation = &m.FromLoc
	}
	if m.ToLoc != "" {
		req.ToLocation = &m.ToLoc
	}
	return req
}

func (a *Adapter) productionRequest(m models.PendingMutation, userID string) *remote.ProductionRequest {
	req := &remote.ProductionRequest{
		IdempotencyKey: m.ID,
		ItemID:         m.ItemID,
		Quantity:       m.Quantity,
		UserID:         userID,
		EventAt:        m.EventAt.UTC().Format(time.RFC3339Nano),
	}
	if m.Waste != 0 {
		req.Waste = &m.Waste
	}
	if m.Reason != "" {
		req.WasteReason = &m.Reason
	}
	if m.Note != "" {
		req.Note = &m.Note
	}
	return req
}
