package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serialises access to a session across replicas.
// The dispatch core is single-threaded per request; this is what keeps two
// requests of the same session from mutating one model at the same time.
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired or ctx is done.
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
