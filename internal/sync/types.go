package sync

import (
	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/remote"
)

// OutcomeState is the closed result of one submission attempt. Callers
// switch on it exhaustively; there is no error taxonomy to string-match.
type OutcomeState int

const (
	// Accepted: the remote store confirmed the mutation, either by applying
	// it now or by reporting it was already applied under the same key.
	Accepted OutcomeState = iota
	// Rejected: a domain rule refused the mutation. Retrying without human
	// intervention will not help.
	Rejected
	// Unreachable: no service-level answer. The mutation's fate is unknown
	// locally but the idempotency key makes a blind retry safe.
	Unreachable
)

// Outcome is the Adapter's answer for one mutation.
type Outcome struct {
	State  OutcomeState
	Reason string // populated for Rejected and Unreachable
}

// Result aggregates one full queue pass for the UI: counts plus the
// verbatim rejection messages. Raw transport errors never appear here.
type Result struct {
	Synced int
	Failed int
	Errors []string
}

// Remote is the slice of the remote client the engine depends on. The
// concrete *remote.Client satisfies it; tests substitute fakes.
type Remote interface {
	SubmitTransaction(req *remote.TransactionRequest) (*remote.MutationResponse, error)
	SubmitProduction(req *remote.ProductionRequest) (*remote.MutationResponse, error)
	CreateFailureRecord(req *remote.FailureRecordRequest) error
	FetchItems() ([]remote.ItemResponse, error)
	FetchTargets(day string) ([]remote.TargetResponse, error)
	FetchRecentEvents(sinceDate string) ([]remote.RecentEventResponse, error)
	Ping() error
}
