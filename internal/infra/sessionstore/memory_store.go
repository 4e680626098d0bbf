package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/glucobot/internal/domain/conversation"
)

type sessionRecord struct {
	session   conversation.Session
	expiresAt time.Time
}

// userLock is a per-phone mutex that can be abandoned when a context ends.
type userLock struct {
	ch   chan struct{}
	refs int
}

// MemoryStore keeps sessions in process memory for tests/dev and single instance deployments.
type MemoryStore struct {
	mu          sync.Mutex
	sessions    map[string]sessionRecord
	locks       map[string]*userLock
	lockTimeout time.Duration
	now         func() time.Time
}

// NewMemoryStore constructs a store backed by process memory. lockTimeout
// bounds how long Lock waits; zero waits for the caller's context only.
func NewMemoryStore(lockTimeout time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]sessionRecord),
		locks:       make(map[string]*userLock),
		lockTimeout: lockTimeout,
		now:         time.Now,
	}
}

// Get implements conversation.Store.
func (s *MemoryStore) Get(_ context.Context, phone string) (conversation.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.sessions[phone]
	if !ok {
		return conversation.Session{}, false, nil
	}
	if hasExpired(record.expiresAt, s.now()) {
		delete(s.sessions, phone)
		return conversation.Session{}, false, nil
	}
	return record.session, true, nil
}

// Save implements conversation.Store.
func (s *MemoryStore) Save(_ context.Context, session conversation.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.sessions[session.Phone] = sessionRecord{session: session, expiresAt: exp}
	return nil
}

// Delete implements conversation.Store.
func (s *MemoryStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, phone)
	return nil
}

// Lock implements conversation.Store.
func (s *MemoryStore) Lock(ctx context.Context, phone string) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[phone]
	if !ok {
		l = &userLock{ch: make(chan struct{}, 1)}
		s.locks[phone] = l
	}
	l.refs++
	s.mu.Unlock()

	waitCtx := ctx
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}

	select {
	case l.ch <- struct{}{}:
	case <-waitCtx.Done():
		s.release(phone, l)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, conversation.ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			s.release(phone, l)
		})
	}, nil
}

func (s *MemoryStore) release(phone string, l *userLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, phone)
	}
}

func hasExpired(expiresAt, now time.Time) bool {
	return !expiresAt.IsZero() && now.After(expiresAt)
}

var _ conversation.Store = (*MemoryStore)(nil)
