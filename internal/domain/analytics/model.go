package analytics

import (
	"strings"
	"time"
)

// Category classifies when a blood sugar reading was taken.
type Category string

const (
	Fasting  Category = "fasting"
	PostMeal Category = "post_meal"
	Random   Category = "random"
)

// Categories lists every valid category in menu order.
var Categories = []Category{Fasting, PostMeal, Random}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case Fasting, PostMeal, Random:
		return true
	default:
		return false
	}
}

// ParseCategory accepts button ids, stored values and the numeric menu tokens.
func ParseCategory(raw string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "fasting":
		return Fasting, true
	case "2", "post_meal", "post-meal", "postmeal":
		return PostMeal, true
	case "3", "random":
		return Random, true
	default:
		return "", false
	}
}

// Reading value bounds in mg/dL.
const (
	MinReadingValue = 10.0
	MaxReadingValue = 600.0
)

// Time-in-range band in mg/dL, inclusive on both ends.
const (
	InRangeLow  = 70.0
	InRangeHigh = 180.0
)

// CorrelationWindow is how long after a meal a post-meal reading is attributed to it.
const CorrelationWindow = 120 * time.Minute

// Reading is a single blood glucose measurement.
type Reading struct {
	ID            int64
	OwnerPhone    string
	Value         float64
	Category      Category
	CapturedAt    time.Time
	Note          string
	RelatedMealID *int64
	CreatedAt     time.Time
}

// Meal is the slice of a food entry the analytics need.
type Meal struct {
	ID          int64
	CapturedAt  time.Time
	Calories    int
	Details     string
	Recommended bool
}

// Trend labels the direction of readings over a window.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
	TrendNoData  Trend = "no data"
)

// TrendReport holds descriptive statistics over a window of readings.
// Pointer fields are nil when there is nothing to report.
type TrendReport struct {
	Count             int
	Average           *float64
	Min               *float64
	Max               *float64
	FastingAverage    *float64
	PostMealAverage   *float64
	InRangePercentage *float64
	Trend             Trend
}

// MealCorrelation pairs a meal with the post-meal readings that followed it.
type MealCorrelation struct {
	Meal     Meal
	Readings []CorrelatedReading
}

// CorrelatedReading is a post-meal reading annotated with its delay.
type CorrelatedReading struct {
	Value            float64
	CapturedAt       time.Time
	MinutesAfterMeal int
}
