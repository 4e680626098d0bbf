package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCorrelateWithMealsWindow(t *testing.T) {
	meal := Meal{ID: 7, CapturedAt: base, Calories: 450, Details: "dal rice", Recommended: true}
	readings := []Reading{
		reading(150, PostMeal, 119*time.Minute),
		reading(160, PostMeal, 121*time.Minute),
		reading(140, PostMeal, -time.Minute),
		reading(130, PostMeal, 0),
		reading(145, PostMeal, 120*time.Minute),
		reading(99, Fasting, 30*time.Minute),
	}

	got := CorrelateWithMeals(readings, []Meal{meal})

	require.Len(t, got, 1)
	require.Equal(t, meal, got[0].Meal)
	require.Len(t, got[0].Readings, 3)
	require.Equal(t, 150.0, got[0].Readings[0].Value)
	require.Equal(t, 119, got[0].Readings[0].MinutesAfterMeal)
	require.Equal(t, 0, got[0].Readings[1].MinutesAfterMeal)
	require.Equal(t, 120, got[0].Readings[2].MinutesAfterMeal)
}

func TestCorrelateRoundsMinutes(t *testing.T) {
	meal := Meal{ID: 1, CapturedAt: base}
	got := CorrelateWithMeals([]Reading{reading(150, PostMeal, 45*time.Minute+31*time.Second)}, []Meal{meal})
	require.Equal(t, 46, got[0].Readings[0].MinutesAfterMeal)
}

func TestCorrelateMealWithoutReadings(t *testing.T) {
	got := CorrelateWithMeals(nil, []Meal{{ID: 1, CapturedAt: base}, {ID: 2, CapturedAt: base.Add(time.Hour)}})
	require.Len(t, got, 2)
	require.Empty(t, got[0].Readings)
	require.Equal(t, int64(2), got[1].Meal.ID)
}
