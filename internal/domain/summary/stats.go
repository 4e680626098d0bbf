package summary

import "math"

// CalculateAverages sums the rollups and derives per-day averages.
func CalculateAverages(rollups []DailyRollup) Stats {
	var s Stats
	if len(rollups) == 0 {
		return s
	}
	for _, r := range rollups {
		s.TotalCalories += r.TotalCalories
		s.TotalMeals += r.MealCount
		s.TotalFavorable += r.FavorableCount
		s.TotalUnfavorable += r.UnfavorableCount
	}
	days := float64(len(rollups))
	s.AvgDailyCalories = int(math.Round(float64(s.TotalCalories) / days))
	s.AvgDailyMeals = math.Round(float64(s.TotalMeals)/days*10) / 10
	s.FavorablePercentage = favorablePercentage(s.TotalFavorable, s.TotalUnfavorable)
	return s
}

func favorablePercentage(favorable, unfavorable int) int {
	total := favorable + unfavorable
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(favorable) / float64(total) * 100))
}

const (
	insightHighCalories    = "⚠️ Your daily calorie intake is above the recommended range. Consider reducing portion sizes."
	insightLowCalories     = "⚠️ Your daily calorie intake is below the recommended range. Make sure you're getting enough nutrients."
	insightFewMeals        = "⚠️ You're having fewer meals than recommended. Try to maintain regular meal times."
	insightManyMeals       = "⚠️ You're having more frequent meals than recommended. Consider spacing them out more."
	insightFewFavorable    = "⚠️ Less than half of your choices are marked as healthy. Try incorporating more balanced meals."
	insightMostlyFavorable = "✅ Great job! You're making mostly healthy choices. Keep it up!"
)

// Insights applies the fixed advisory thresholds. Comparisons are strict.
func Insights(s Stats) []string {
	insights := make([]string, 0, 3)
	switch {
	case s.AvgDailyCalories > 2500:
		insights = append(insights, insightHighCalories)
	case s.AvgDailyCalories < 1500:
		insights = append(insights, insightLowCalories)
	}
	switch {
	case s.AvgDailyMeals < 2:
		insights = append(insights, insightFewMeals)
	case s.AvgDailyMeals > 5:
		insights = append(insights, insightManyMeals)
	}
	switch {
	case s.FavorablePercentage < 50:
		insights = append(insights, insightFewFavorable)
	case s.FavorablePercentage > 80:
		insights = append(insights, insightMostlyFavorable)
	}
	return insights
}
