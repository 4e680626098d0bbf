package summary

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yanqian/glucobot/internal/domain/analytics"
)

const closingTip = "\n\n💡 Tip: Remember to maintain a balanced diet and stay hydrated!"

// Format renders a summary reply. An empty view yields the "no summary" sentence.
func Format(kind Kind, view View) string {
	if isEmpty(kind, view) {
		return fmt.Sprintf("No %s summary available yet. Start tracking your meals to see your progress!", kind)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Your %s Summary:\n\n", kind)
	if kind == KindDaily {
		writeDaily(&b, *view.Daily)
	} else {
		writePeriod(&b, view.Rollups)
	}
	b.WriteString(closingTip)
	return b.String()
}

func isEmpty(kind Kind, view View) bool {
	if kind == KindDaily {
		return view.Daily == nil
	}
	return len(view.Rollups) == 0
}

func writeDaily(b *strings.Builder, view DailyView) {
	r := view.Rollup
	fmt.Fprintf(b, "Total Calories: %d kcal\n", r.TotalCalories)
	fmt.Fprintf(b, "Meals Today: %d\n", r.MealCount)
	fmt.Fprintf(b, "✅ Good Choices: %d\n", r.FavorableCount)
	fmt.Fprintf(b, "⚠️ Caution Needed: %d\n", r.UnfavorableCount)

	if len(view.Readings) > 0 {
		writeReadings(b, view.Readings)
	}

	if favorablePercentage(r.FavorableCount, r.UnfavorableCount) < 50 {
		b.WriteString("\nToday's Insight: Try to make more balanced choices in your next meal.")
	} else {
		b.WriteString("\nToday's Insight: You're making good progress! Keep it up!")
	}
}

func writeReadings(b *strings.Builder, readings []analytics.Reading) {
	b.WriteString("\n📈 Blood Sugar Readings Today:\n")
	minV, maxV := readings[0].Value, readings[0].Value
	var sum float64
	for _, r := range readings {
		sum += r.Value
		minV = math.Min(minV, r.Value)
		maxV = math.Max(maxV, r.Value)
	}
	fmt.Fprintf(b, "Readings: %d\n", len(readings))
	fmt.Fprintf(b, "Average: %d mg/dL\n", roundedMean(sum, len(readings)))
	fmt.Fprintf(b, "Range: %s - %s mg/dL\n", analytics.FormatValue(minV), analytics.FormatValue(maxV))

	if avg, ok := categoryMean(readings, analytics.Fasting); ok {
		fmt.Fprintf(b, "Fasting Average: %d mg/dL\n", avg)
	}
	if avg, ok := categoryMean(readings, analytics.PostMeal); ok {
		fmt.Fprintf(b, "Post-Meal Average: %d mg/dL\n", avg)
	}
}

func categoryMean(readings []analytics.Reading, category analytics.Category) (int, bool) {
	var sum float64
	n := 0
	for _, r := range readings {
		if r.Category == category {
			sum += r.Value
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return roundedMean(sum, n), true
}

func roundedMean(sum float64, n int) int {
	return int(math.Round(sum / float64(n)))
}

func writePeriod(b *strings.Builder, rollups []DailyRollup) {
	stats := CalculateAverages(rollups)
	fmt.Fprintf(b, "Total Calories: %d kcal\n", stats.TotalCalories)
	fmt.Fprintf(b, "Total Meals: %d\n", stats.TotalMeals)
	fmt.Fprintf(b, "✅ Good Choices: %d\n", stats.TotalFavorable)
	fmt.Fprintf(b, "⚠️ Caution Needed: %d\n", stats.TotalUnfavorable)
	fmt.Fprintf(b, "\nAverage Daily Calories: %d kcal\n", stats.AvgDailyCalories)
	fmt.Fprintf(b, "Average Daily Meals: %s\n", strconv.FormatFloat(stats.AvgDailyMeals, 'f', 1, 64))
	fmt.Fprintf(b, "Healthy Choice Rate: %d%%\n", stats.FavorablePercentage)

	if insights := Insights(stats); len(insights) > 0 {
		b.WriteString("\n📝 Insights:\n")
		b.WriteString(strings.Join(insights, "\n"))
	}
}
