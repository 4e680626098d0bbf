package sessionstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/glucobot/internal/domain/conversation"
)

func TestMemoryStoreExpiresSessions(t *testing.T) {
	store := NewMemoryStore(time.Second)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	sess := conversation.Session{Phone: "1", Mode: conversation.ModeAwaitingReadingValue}
	require.NoError(t, store.Save(ctx, sess, 30*time.Minute))

	got, found, err := store.Get(ctx, "1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, sess, got)

	now = now.Add(31 * time.Minute)
	_, found, err = store.Get(ctx, "1")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryStoreLockSerialisesPerPhone(t *testing.T) {
	store := NewMemoryStore(50 * time.Millisecond)
	ctx := context.Background()

	unlock, err := store.Lock(ctx, "1")
	require.NoError(t, err)

	_, err = store.Lock(ctx, "1")
	require.ErrorIs(t, err, conversation.ErrLockTimeout)

	other, err := store.Lock(ctx, "2")
	require.NoError(t, err)
	other()

	unlock()
	unlock()
	again, err := store.Lock(ctx, "1")
	require.NoError(t, err)
	again()
	require.Empty(t, store.locks)
}

func TestMemoryStoreLockWaitsForRelease(t *testing.T) {
	store := NewMemoryStore(time.Second)
	ctx := context.Background()
	unlock, err := store.Lock(ctx, "1")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		next, err := store.Lock(ctx, "1")
		if err == nil {
			next()
		}
		close(acquired)
	}()

	time.Sleep(20 * time.Millisecond)
	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock was never granted")
	}
}

func TestMemoryStoreLockHonoursCancelledContext(t *testing.T) {
	store := NewMemoryStore(0)
	unlock, err := store.Lock(context.Background(), "1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Lock(ctx, "1")
	require.ErrorIs(t, err, context.Canceled)
}
