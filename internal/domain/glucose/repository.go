package glucose

import (
	"context"
	"time"

	"github.com/yanqian/glucobot/internal/domain/analytics"
)

// Repository persists blood sugar readings.
type Repository interface {
	Insert(ctx context.Context, r analytics.Reading) (analytics.Reading, error)
	Latest(ctx context.Context, phone string) (analytics.Reading, bool, error)
	// ListBetween returns readings captured in [from, to], newest first.
	ListBetween(ctx context.Context, phone string, from, to time.Time, category *analytics.Category) ([]analytics.Reading, error)
}

// Provisioner creates the readings schema on first use.
type Provisioner interface {
	Provision(ctx context.Context) error
}

// MealSource lists meals for correlation.
type MealSource interface {
	MealsSince(ctx context.Context, phone string, since time.Time) ([]analytics.Meal, error)
}
