package analytics

import "math"

// CorrelateWithMeals attaches to every meal the post-meal readings captured
// between the meal time and CorrelationWindow after it, both ends inclusive.
func CorrelateWithMeals(readings []Reading, meals []Meal) []MealCorrelation {
	out := make([]MealCorrelation, 0, len(meals))
	for _, meal := range meals {
		related := make([]CorrelatedReading, 0)
		for _, r := range readings {
			if r.Category != PostMeal {
				continue
			}
			diff := r.CapturedAt.Sub(meal.CapturedAt)
			if diff < 0 || diff > CorrelationWindow {
				continue
			}
			related = append(related, CorrelatedReading{
				Value:            r.Value,
				CapturedAt:       r.CapturedAt,
				MinutesAfterMeal: int(math.Round(diff.Minutes())),
			})
		}
		out = append(out, MealCorrelation{Meal: meal, Readings: related})
	}
	return out
}
