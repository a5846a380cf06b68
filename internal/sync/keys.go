package sync

import "github.com/google/uuid"

// NewKey issues an idempotency key: a 128-bit random UUID. Called exactly
// once per logical mutation, at the moment the scan or form entry is
// accepted, never at commit or retry time. A retried mutation reuses the
// key it was born with.
func NewKey() string {
	return uuid.NewString()
}
