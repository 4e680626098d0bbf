package userrepo

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/glucobot/internal/domain/i18n"
	"github.com/yanqian/glucobot/internal/domain/profile"
)

// MemoryRepository provides an in-memory profile store for tests/dev.
type MemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]profile.Profile
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{profiles: make(map[string]profile.Profile)}
}

// Get returns the profile stored for phone.
func (r *MemoryRepository) Get(_ context.Context, phone string) (profile.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[phone]
	return p, ok, nil
}

// Create stores seed unless the phone is already known.
func (r *MemoryRepository) Create(_ context.Context, seed profile.Profile) (profile.Profile, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.profiles[seed.Phone]; ok {
		return existing, false, nil
	}
	r.profiles[seed.Phone] = seed
	return seed, true, nil
}

// Upsert replaces the profile, keeping the original creation time.
func (r *MemoryRepository) Upsert(_ context.Context, p profile.Profile) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.profiles[p.Phone]; ok && !existing.CreatedAt.IsZero() {
		p.CreatedAt = existing.CreatedAt
	}
	r.profiles[p.Phone] = p
	return p, nil
}

// UpdateLanguage sets the display language of an existing profile.
func (r *MemoryRepository) UpdateLanguage(_ context.Context, phone string, lang i18n.Lang) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[phone]
	if !ok {
		return nil
	}
	p.Language = lang
	r.profiles[phone] = p
	return nil
}

// Touch records activity.
func (r *MemoryRepository) Touch(_ context.Context, phone string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[phone]
	if !ok {
		return nil
	}
	p.LastActive = at
	r.profiles[phone] = p
	return nil
}

var _ profile.Repository = (*MemoryRepository)(nil)
