package ports

import (
	"context"
	"time"
)

// AttemptState is the current guard envelope for a validation key.
// It is cache-backed so the locked-out fast path never touches the database.
type AttemptState struct {
	FailedCount int
	LockedUntil *time.Time
}

// AttemptStore handles short-lived enumeration-defense state. Increments must
// be atomic per key; a fixed failure window resets the counter wholesale
// rather than decaying it.
type AttemptStore interface {
	Get(ctx context.Context, keyHash string) (AttemptState, error)
	RecordFailure(ctx context.Context, keyHash string, now time.Time, threshold int, window, lockout time.Duration) (AttemptState, error)
	Clear(ctx context.Context, keyHash string) error
}
