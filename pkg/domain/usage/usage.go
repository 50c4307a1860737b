package usage

import (
	"context"
	"errors"
	"time"
)

// ErrStorageUnavailable indicates the ledger's backing store could not be
// reached. Whether that admits or denies the triggering request is the
// rate limiter's policy decision, not the ledger's.
var ErrStorageUnavailable = errors.New("usage ledger storage unavailable")

// Decision is the outcome of a single ledger increment. A denied request has
// still been charged against the window: retry storms must not inflate the
// caller's remaining allowance.
type Decision struct {
	Allowed     bool
	Count       int64
	Limit       int64
	WindowStart time.Time
	RetryAfter  time.Duration
}

//go:generate mockery --name=Ledger --dir=. --output=./mocks --filename=usage_ledger_mock.go --case=underscore
type Ledger interface {
	// RecordAndCheck atomically charges cost against the identity's current
	// window, resetting the window first if it has elapsed, and reports
	// whether the post-increment count stays within the limit. Increments
	// for one identity are strictly serialized; distinct identities proceed
	// independently.
	RecordAndCheck(ctx context.Context, identity string, cost int64) (Decision, error)

	// Peek reads the identity's current window without mutating it.
	Peek(ctx context.Context, identity string) (Decision, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}
