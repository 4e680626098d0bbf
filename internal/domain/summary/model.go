package summary

import (
	"time"

	"github.com/yanqian/glucobot/internal/domain/analytics"
)

// Kind selects the summary window.
type Kind string

const (
	KindDaily   Kind = "daily"
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
)

// ParseKind maps a list selection id such as "weekly_summary" to a Kind.
func ParseKind(raw string) (Kind, bool) {
	switch raw {
	case "daily", "daily_summary":
		return KindDaily, true
	case "weekly", "weekly_summary":
		return KindWeekly, true
	case "monthly", "monthly_summary":
		return KindMonthly, true
	}
	return "", false
}

// DailyRollup aggregates one user's meals for one calendar day.
type DailyRollup struct {
	OwnerPhone       string
	Date             time.Time
	TotalCalories    int
	MealCount        int
	FavorableCount   int
	UnfavorableCount int
}

// Add folds one analysed meal into the rollup.
func (r *DailyRollup) Add(calories int, recommended bool) {
	if calories > 0 {
		r.TotalCalories += calories
	}
	r.MealCount++
	if recommended {
		r.FavorableCount++
	} else {
		r.UnfavorableCount++
	}
}

// DailyView is today's rollup together with today's readings.
type DailyView struct {
	Rollup   DailyRollup
	Readings []analytics.Reading
}

// View is the input for Format. Daily is used for KindDaily, Rollups otherwise.
type View struct {
	Daily   *DailyView
	Rollups []DailyRollup
}

// Stats are the totals and averages over a set of rollups.
type Stats struct {
	TotalCalories       int
	TotalMeals          int
	TotalFavorable      int
	TotalUnfavorable    int
	AvgDailyCalories    int
	AvgDailyMeals       float64
	FavorablePercentage int
}
