package summary

import (
	"context"
	"time"

	"github.com/yanqian/glucobot/internal/domain/analytics"
)

// Repository reads daily rollups.
type Repository interface {
	RollupFor(ctx context.Context, phone string, date time.Time) (DailyRollup, bool, error)
	// RecentRollups returns at most limit rollups, newest first.
	RecentRollups(ctx context.Context, phone string, limit int) ([]DailyRollup, error)
	// RollupsSince returns rollups dated on or after since, newest first.
	RollupsSince(ctx context.Context, phone string, since time.Time) ([]DailyRollup, error)
}

// ReadingLister lists readings inside a time window.
type ReadingLister interface {
	ListBetween(ctx context.Context, phone string, from, to time.Time, category *analytics.Category) ([]analytics.Reading, error)
}
