package summary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateAverages(t *testing.T) {
	stats := CalculateAverages([]DailyRollup{
		{TotalCalories: 1800, MealCount: 3, FavorableCount: 2, UnfavorableCount: 1},
		{TotalCalories: 2100, MealCount: 4, FavorableCount: 1, UnfavorableCount: 3},
	})
	require.Equal(t, 3900, stats.TotalCalories)
	require.Equal(t, 7, stats.TotalMeals)
	require.Equal(t, 1950, stats.AvgDailyCalories)
	require.Equal(t, 3.5, stats.AvgDailyMeals)
	require.Equal(t, 43, stats.FavorablePercentage)
}

func TestCalculateAveragesWithoutMeals(t *testing.T) {
	stats := CalculateAverages([]DailyRollup{{}})
	require.Equal(t, 0, stats.FavorablePercentage)
	require.Zero(t, stats.AvgDailyMeals)
}

func TestInsightThresholdsAreStrict(t *testing.T) {
	atBounds := Insights(Stats{AvgDailyCalories: 2500, AvgDailyMeals: 2, FavorablePercentage: 50})
	require.Empty(t, atBounds)

	upper := Insights(Stats{AvgDailyCalories: 2501, AvgDailyMeals: 5.1, FavorablePercentage: 81})
	require.Equal(t, []string{insightHighCalories, insightManyMeals, insightMostlyFavorable}, upper)

	lower := Insights(Stats{AvgDailyCalories: 1499, AvgDailyMeals: 1.9, FavorablePercentage: 49})
	require.Equal(t, []string{insightLowCalories, insightFewMeals, insightFewFavorable}, lower)
}

func TestParseKind(t *testing.T) {
	kind, ok := ParseKind("weekly_summary")
	require.True(t, ok)
	require.Equal(t, KindWeekly, kind)
	_, ok = ParseKind("yearly_summary")
	require.False(t, ok)
}

func TestRollupAddKeepsCountsConsistent(t *testing.T) {
	var r DailyRollup
	r.Add(400, true)
	r.Add(650, false)
	r.Add(0, false)
	require.Equal(t, 1050, r.TotalCalories)
	require.Equal(t, 3, r.MealCount)
	require.Equal(t, r.MealCount, r.FavorableCount+r.UnfavorableCount)
}
