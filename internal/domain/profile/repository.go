package profile

import (
	"context"
	"time"

	"github.com/yanqian/glucobot/internal/domain/i18n"
)

// Repository persists profiles keyed by phone number.
type Repository interface {
	Get(ctx context.Context, phone string) (Profile, bool, error)
	// Create inserts seed unless a row already exists and returns the stored row.
	Create(ctx context.Context, seed Profile) (Profile, bool, error)
	Upsert(ctx context.Context, p Profile) (Profile, error)
	UpdateLanguage(ctx context.Context, phone string, lang i18n.Lang) error
	Touch(ctx context.Context, phone string, at time.Time) error
}
