package mealrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/glucobot/internal/domain/analytics"
	"github.com/yanqian/glucobot/internal/domain/glucose"
	"github.com/yanqian/glucobot/internal/domain/meal"
	"github.com/yanqian/glucobot/internal/domain/summary"
	"github.com/yanqian/glucobot/pkg/util"
)

// MemoryRepository keeps food entries and rollups in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	seq     int64
	entries []meal.Entry
	rollups map[rollupKey]summary.DailyRollup
}

type rollupKey struct {
	phone string
	date  string
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rollups: make(map[rollupKey]summary.DailyRollup)}
}

// InsertEntry stores a food entry and assigns its id.
func (r *MemoryRepository) InsertEntry(_ context.Context, entry meal.Entry) (meal.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	entry.ID = r.seq
	r.entries = append(r.entries, entry)
	return entry, nil
}

// IncrementRollup folds one meal into the day's rollup.
func (r *MemoryRepository) IncrementRollup(_ context.Context, phone string, date time.Time, calories int, recommended bool) (summary.DailyRollup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := util.StartOfDay(date)
	key := rollupKey{phone: phone, date: day.Format(util.DateLayout)}
	rollup, ok := r.rollups[key]
	if !ok {
		rollup = summary.DailyRollup{OwnerPhone: phone, Date: day}
	}
	rollup.Add(calories, recommended)
	r.rollups[key] = rollup
	return rollup, nil
}

// MealsSince lists meals captured at or after since, oldest first.
func (r *MemoryRepository) MealsSince(_ context.Context, phone string, since time.Time) ([]analytics.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []analytics.Meal
	for _, e := range r.entries {
		if e.OwnerPhone != phone || e.CapturedAt.Before(since) {
			continue
		}
		out = append(out, toMeal(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CapturedAt.Before(out[j].CapturedAt) })
	return out, nil
}

// RollupFor returns the rollup of one day.
func (r *MemoryRepository) RollupFor(_ context.Context, phone string, date time.Time) (summary.DailyRollup, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rollup, ok := r.rollups[rollupKey{phone: phone, date: util.DateOf(date)}]
	return rollup, ok, nil
}

// RecentRollups returns at most limit rollups, newest first.
func (r *MemoryRepository) RecentRollups(_ context.Context, phone string, limit int) ([]summary.DailyRollup, error) {
	out := r.rollupsWhere(phone, func(summary.DailyRollup) bool { return true })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RollupsSince returns rollups dated on or after since, newest first.
func (r *MemoryRepository) RollupsSince(_ context.Context, phone string, since time.Time) ([]summary.DailyRollup, error) {
	from := util.StartOfDay(since)
	return r.rollupsWhere(phone, func(d summary.DailyRollup) bool { return !d.Date.Before(from) }), nil
}

func (r *MemoryRepository) rollupsWhere(phone string, keep func(summary.DailyRollup) bool) []summary.DailyRollup {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []summary.DailyRollup
	for key, rollup := range r.rollups {
		if key.phone == phone && keep(rollup) {
			out = append(out, rollup)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func toMeal(e meal.Entry) analytics.Meal {
	return analytics.Meal{
		ID:          e.ID,
		CapturedAt:  e.CapturedAt,
		Calories:    e.Calories,
		Details:     e.Details,
		Recommended: e.Recommended,
	}
}

var (
	_ meal.Repository    = (*MemoryRepository)(nil)
	_ glucose.MealSource = (*MemoryRepository)(nil)
	_ summary.Repository = (*MemoryRepository)(nil)
)
