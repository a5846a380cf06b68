package sync

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/db"
	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/models"
	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/remote"
)

func setupStore(t *testing.T) *db.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store, err := db.OpenConn(conn)
	if err != nil {
		t.Fatalf("init schema: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return store
}

// fakeRemote scripts per-key submission outcomes and counts every network
// call, so tests can assert "no network access" literally.
type fakeRemote struct {
	calls int

	submitErr map[string]error // keyed by idempotency key, nil = accept
	submitted []string         // keys in submission order

	failureErr error
	failures   []*remote.FailureRecordRequest

	pingErr error

	items      []remote.ItemResponse
	targets    []remote.TargetResponse
	events     []remote.RecentEventResponse
	fetchErr   error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{submitErr: make(map[string]error)}
}

func (f *fakeRemote) submit(key string) error {
	f.calls++
	f.submitted = append(f.submitted, key)
	return f.submitErr[key]
}

func (f *fakeRemote) SubmitTransaction(req *remote.TransactionRequest) (*remote.MutationResponse, error) {
	if err := f.submit(req.IdempotencyKey); err != nil {
		return nil, err
	}
	return &remote.MutationResponse{ID: req.IdempotencyKey}, nil
}

func (f *fakeRemote) SubmitProduction(req *remote.ProductionRequest) (*remote.MutationResponse, error) {
	if err := f.submit(req.IdempotencyKey); err != nil {
		return nil, err
	}
	return &remote.MutationResponse{ID: req.IdempotencyKey}, nil
}

func (f *fakeRemote) CreateFailureRecord(req *remote.FailureRecordRequest) error {
	f.calls++
	if f.failureErr != nil {
		return f.failureErr
	}
	f.failures = append(f.failures, req)
	return nil
}

func (f *fakeRemote) FetchItems() ([]remote.ItemResponse, error) {
	f.calls++
	return f.items, f.fetchErr
}

func (f *fakeRemote) FetchTargets(day string) ([]remote.TargetResponse, error) {
	f.calls++
	return f.targets, f.fetchErr
}

func (f *fakeRemote) FetchRecentEvents(sinceDate string) ([]remote.RecentEventResponse, error) {
	f.calls++
	return f.events, f.fetchErr
}

func (f *fakeRemote) Ping() error {
	f.calls++
	return f.pingErr
}

var errUnreachable = &remote.APIError{Class: remote.ClassUnreachable, Message: "connection refused"}

func businessErr(msg string) error {
	return &remote.APIError{Class: remote.ClassBusiness, Code: "rule", Message: msg}
}

func duplicateErr() error {
	return &remote.APIError{Class: remote.ClassUniqueViolation, Code: "23505", Message: "duplicate key value"}
}

func enqueue(t *testing.T, store *db.DB, id, itemID string, qty float64, createdAt time.Time) {
	t.Helper()
	err := store.Enqueue(&models.PendingMutation{
		ID:        id,
		Kind:      models.KindProduction,
		ItemID:    itemID,
		Quantity:  qty,
		EventAt:   createdAt,
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("enqueue %s: %v", id, err)
	}
}
