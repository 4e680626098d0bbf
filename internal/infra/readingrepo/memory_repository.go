package readingrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/glucobot/internal/domain/analytics"
	"github.com/yanqian/glucobot/internal/domain/glucose"
	"github.com/yanqian/glucobot/internal/domain/summary"
)

// MemoryRepository keeps readings in process memory. The schema always exists.
type MemoryRepository struct {
	mu       sync.RWMutex
	seq      int64
	readings []analytics.Reading
	now      func() time.Time
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

// Insert stores a reading and assigns its id.
func (r *MemoryRepository) Insert(_ context.Context, reading analytics.Reading) (analytics.Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	reading.ID = r.seq
	if reading.CreatedAt.IsZero() {
		reading.CreatedAt = r.now().UTC()
	}
	r.readings = append(r.readings, reading)
	return reading, nil
}

// Latest returns the most recent reading of phone.
func (r *MemoryRepository) Latest(_ context.Context, phone string) (analytics.Reading, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		latest analytics.Reading
		found  bool
	)
	for _, reading := range r.readings {
		if reading.OwnerPhone != phone {
			continue
		}
		if !found || !reading.CapturedAt.Before(latest.CapturedAt) {
			latest, found = reading, true
		}
	}
	return latest, found, nil
}

// ListBetween returns readings captured in [from, to], newest first.
func (r *MemoryRepository) ListBetween(_ context.Context, phone string, from, to time.Time, category *analytics.Category) ([]analytics.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []analytics.Reading
	for _, reading := range r.readings {
		if reading.OwnerPhone != phone || reading.CapturedAt.Before(from) || reading.CapturedAt.After(to) {
			continue
		}
		if category != nil && reading.Category != *category {
			continue
		}
		out = append(out, reading)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CapturedAt.After(out[j].CapturedAt) })
	return out, nil
}

// Provision is a no-op for the memory store.
func (r *MemoryRepository) Provision(context.Context) error {
	return nil
}

var (
	_ glucose.Repository    = (*MemoryRepository)(nil)
	_ glucose.Provisioner   = (*MemoryRepository)(nil)
	_ summary.ReadingLister = (*MemoryRepository)(nil)
)
