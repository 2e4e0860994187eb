package repository

import (
	"context"
	"time"
)

// RunLock guards against overlapping runs across processes.
type RunLock interface {
	// TryLock acquires the lock for ttl. It returns false if another holder has it.
	TryLock(ctx context.Context, ttl time.Duration) (bool, error)
	// Unlock releases the lock if this instance still holds it.
	Unlock(ctx context.Context) error
}
