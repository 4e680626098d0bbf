package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/glucobot/internal/domain/conversation"
)

const lockRetryInterval = 50 * time.Millisecond

// unlockScript deletes the lock only while the caller still owns it.
var unlockScript = valkey.NewLuaScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ValkeyOptions tunes key naming and locking.
type ValkeyOptions struct {
	Prefix      string
	LockTimeout time.Duration
	LockLease   time.Duration
}

// ValkeyStore persists sessions in Valkey so several instances share dialogue state.
type ValkeyStore struct {
	client valkey.Client
	opts   ValkeyOptions
	logger *slog.Logger
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, opts ValkeyOptions, logger *slog.Logger) *ValkeyStore {
	if opts.Prefix == "" {
		opts.Prefix = "glucobot:session:"
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = 30 * time.Second
	}
	if opts.LockLease <= 0 {
		opts.LockLease = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ValkeyStore{client: client, opts: opts, logger: logger.With("component", "sessionstore.valkey")}
}

// Get implements conversation.Store.
func (s *ValkeyStore) Get(ctx context.Context, phone string) (conversation.Session, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.sessionKey(phone)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return conversation.Session{}, false, nil
		}
		return conversation.Session{}, false, err
	}
	var session conversation.Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return conversation.Session{}, false, fmt.Errorf("decode session: %w", err)
	}
	return session, true, nil
}

// Save implements conversation.Store.
func (s *ValkeyStore) Save(ctx context.Context, session conversation.Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.sessionKey(session.Phone)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

// Delete implements conversation.Store.
func (s *ValkeyStore) Delete(ctx context.Context, phone string) error {
	return s.client.Do(ctx, s.client.B().Del().Key(s.sessionKey(phone)).Build()).Error()
}

// Lock takes a leased SET NX lock, polling until LockTimeout.
func (s *ValkeyStore) Lock(ctx context.Context, phone string) (func(), error) {
	key := s.lockKey(phone)
	token := uuid.NewString()
	deadline := time.Now().Add(s.opts.LockTimeout)

	for {
		acquire := s.client.B().Set().Key(key).Value(token).Nx().PxMilliseconds(s.opts.LockLease.Milliseconds()).Build()
		err := s.client.Do(ctx, acquire).Error()
		if err == nil {
			break
		}
		if !valkey.IsValkeyNil(err) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, conversation.ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		released, err := unlockScript.Exec(releaseCtx, s.client, []string{key}, []string{token}).AsInt64()
		switch {
		case err != nil:
			s.logger.Warn("session unlock failed", "phone", phone, "error", err)
		case released == 0:
			s.logger.Warn("session lock lease expired before release", "phone", phone, "lease", s.opts.LockLease)
		}
	}, nil
}

func (s *ValkeyStore) sessionKey(phone string) string {
	return s.opts.Prefix + phone
}

func (s *ValkeyStore) lockKey(phone string) string {
	return s.opts.Prefix + "lock:" + phone
}

var _ conversation.Store = (*ValkeyStore)(nil)
