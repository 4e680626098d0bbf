package glucose

import "github.com/yanqian/glucobot/internal/domain/analytics"

// Config tunes the reading service.
type Config struct {
	WindowDays int
}

// LogRequest describes a reading to record.
type LogRequest struct {
	Phone         string
	Value         float64
	Category      analytics.Category
	Note          string
	RelatedMealID *int64
}

// LogResult reports how the reading was stored.
type LogResult struct {
	Reading analytics.Reading
	// Provisioned is set when the readings table had to be created first.
	Provisioned bool
}
