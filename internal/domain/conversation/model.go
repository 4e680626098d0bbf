package conversation

import (
	"strings"
	"time"

	"github.com/yanqian/glucobot/internal/domain/analytics"
	"github.com/yanqian/glucobot/internal/domain/i18n"
	"github.com/yanqian/glucobot/internal/domain/profile"
)

// Mode is the dialogue a user is currently in.
type Mode string

const (
	ModeNone                    Mode = "none"
	ModeOnboarding              Mode = "onboarding"
	ModeAwaitingReadingCategory Mode = "awaiting_reading_category"
	ModeAwaitingReadingValue    Mode = "awaiting_reading_value"
	ModeAwaitingMealDetails     Mode = "awaiting_meal_details"
)

// Step is the onboarding question awaiting an answer.
type Step string

const (
	StepName          Step = "name"
	StepDiabetesType  Step = "diabetes_type"
	StepDailyLimit    Step = "daily_limit"
	StepPreferences   Step = "preferences"
	StepTrackReadings Step = "track_readings"
	StepLanguage      Step = "language"
)

// Valid reports whether s is a known onboarding step.
func (s Step) Valid() bool {
	switch s {
	case StepName, StepDiabetesType, StepDailyLimit, StepPreferences, StepTrackReadings, StepLanguage:
		return true
	default:
		return false
	}
}

// Draft accumulates onboarding answers until the final step persists them.
type Draft struct {
	Name              string    `json:"name,omitempty"`
	DiabetesType      string    `json:"diabetesType,omitempty"`
	DailyLimit        int       `json:"dailyLimit,omitempty"`
	DietaryPreference string    `json:"dietaryPreference,omitempty"`
	TrackReadings     bool      `json:"trackReadings,omitempty"`
	Language          i18n.Lang `json:"language,omitempty"`
	CreatedAt         time.Time `json:"createdAt,omitempty"`
}

// DraftFrom seeds a draft from an existing profile so re-onboarding keeps
// the current values until they are answered again.
func DraftFrom(p profile.Profile) Draft {
	return Draft{
		Name:              p.Name,
		DiabetesType:      p.DiabetesType,
		DailyLimit:        p.DailyLimit,
		DietaryPreference: p.DietaryPreference,
		TrackReadings:     p.TrackReadings,
		Language:          p.Lang(),
		CreatedAt:         p.CreatedAt,
	}
}

// Profile converts a completed draft into an onboarded profile.
func (d Draft) Profile(phone string) profile.Profile {
	return profile.Profile{
		Phone:             phone,
		Name:              d.Name,
		DiabetesType:      d.DiabetesType,
		DailyLimit:        d.DailyLimit,
		DietaryPreference: d.DietaryPreference,
		TrackReadings:     d.TrackReadings,
		Language:          i18n.Normalize(d.Language),
		Onboarded:         true,
		CreatedAt:         d.CreatedAt,
	}
}

// Session is the per-user dialogue state. At most one exists per phone.
type Session struct {
	Phone        string             `json:"phone"`
	Mode         Mode               `json:"mode"`
	Step         Step               `json:"step,omitempty"`
	Draft        Draft              `json:"draft"`
	Category     analytics.Category `json:"category,omitempty"`
	PhotoKey     string             `json:"photoKey,omitempty"`
	ExpectButton bool               `json:"expectButton,omitempty"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// Open reports whether the session holds an active dialogue.
func (s Session) Open() bool {
	return s.Mode != "" && s.Mode != ModeNone
}

// Accepts reports whether in belongs to the open dialogue. Text always
// does; selections only when the current step offered buttons.
func (s Session) Accepts(in Input) bool {
	if !s.Open() {
		return false
	}
	if in.Kind == InputText {
		return true
	}
	switch s.Mode {
	case ModeOnboarding:
		return s.ExpectButton
	case ModeAwaitingReadingCategory:
		return true
	default:
		return false
	}
}

// InputKind distinguishes typed text from button or list selections.
type InputKind uint8

const (
	InputText InputKind = iota + 1
	InputSelection
)

// Input is one user answer.
type Input struct {
	Kind        InputKind
	Text        string
	SelectionID string
}

// TextInput wraps typed text.
func TextInput(text string) Input {
	return Input{Kind: InputText, Text: text}
}

// SelectionInput wraps a button or list reply id.
func SelectionInput(id string) Input {
	return Input{Kind: InputSelection, SelectionID: id}
}

// Value returns the trimmed text or selection id.
func (in Input) Value() string {
	if in.Kind == InputSelection {
		return strings.TrimSpace(in.SelectionID)
	}
	return strings.TrimSpace(in.Text)
}
