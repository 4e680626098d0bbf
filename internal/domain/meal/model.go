package meal

import (
	"time"

	"github.com/yanqian/glucobot/internal/domain/profile"
	"github.com/yanqian/glucobot/internal/domain/summary"
	"github.com/yanqian/glucobot/pkg/metrics"
)

// Config controls the vision model call.
type Config struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Entry is a stored, analysed meal.
type Entry struct {
	ID          int64
	OwnerPhone  string
	CapturedAt  time.Time
	Calories    int
	Details     string
	Analysis    string
	Recommended bool
	Reason      string
	Advice      string
	PhotoKey    string
}

// AnalysisRequest carries the photo and context for one analysis.
type AnalysisRequest struct {
	Image       []byte
	MimeType    string
	Description string
	Profile     *profile.Profile
}

// Analysis is the model's verdict on a meal. Failed marks the fixed
// fallback returned when the model errored or answered malformed JSON.
type Analysis struct {
	Calories    int
	Recommended bool
	Reason      string
	Detail      string
	Tips        string
	Failed      bool
	Usage       metrics.TokenUsage
}

// RecordResult is what the reply needs after a meal is stored.
type RecordResult struct {
	Entry     Entry
	Onboarded bool
	Today     *summary.DailyRollup
}

// Outcome bundles a full photo analysis round trip.
type Outcome struct {
	Analysis Analysis
	Record   RecordResult
	Profile  profile.Profile
}

// StoredPhoto captures persisted photo metadata.
type StoredPhoto struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}
