package conversation

import (
	"context"
	"errors"
	"time"
)

// ErrLockTimeout is returned when another event for the same user holds the lock too long.
var ErrLockTimeout = errors.New("conversation lock timeout")

// Store keeps sessions with a time to live and serialises work per user.
type Store interface {
	Get(ctx context.Context, phone string) (Session, bool, error)
	Save(ctx context.Context, session Session, ttl time.Duration) error
	Delete(ctx context.Context, phone string) error
	// Lock blocks until the caller owns phone or ctx ends. The returned
	// func releases the lock and is safe to call once.
	Lock(ctx context.Context, phone string) (func(), error)
}
