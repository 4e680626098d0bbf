package profile

import (
	"time"

	"github.com/yanqian/glucobot/internal/domain/i18n"
)

// Profile is the per-phone user record built by onboarding.
type Profile struct {
	Phone             string
	Name              string
	DiabetesType      string
	DailyLimit        int
	DietaryPreference string
	TrackReadings     bool
	Language          i18n.Lang
	Onboarded         bool
	CreatedAt         time.Time
	LastActive        time.Time
}

// Lang returns the display language, defaulting to English.
func (p Profile) Lang() i18n.Lang {
	return i18n.Normalize(p.Language)
}
