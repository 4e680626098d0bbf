package analytics

import (
	"math"
	"sort"
)

// Trends computes the descriptive summary over readings. The input order does not matter.
func Trends(readings []Reading) TrendReport {
	if len(readings) == 0 {
		return TrendReport{Trend: TrendNoData}
	}

	var (
		sum, fastingSum, postMealSum float64
		fastingN, postMealN, inRange int
		minVal                       = math.Inf(1)
		maxVal                       = math.Inf(-1)
	)
	for _, r := range readings {
		sum += r.Value
		minVal = math.Min(minVal, r.Value)
		maxVal = math.Max(maxVal, r.Value)
		if r.Value >= InRangeLow && r.Value <= InRangeHigh {
			inRange++
		}
		switch r.Category {
		case Fasting:
			fastingSum += r.Value
			fastingN++
		case PostMeal:
			postMealSum += r.Value
			postMealN++
		}
	}

	n := float64(len(readings))
	report := TrendReport{
		Count:             len(readings),
		Average:           ptr(round1(sum / n)),
		Min:               ptr(minVal),
		Max:               ptr(maxVal),
		InRangePercentage: ptr(round1(float64(inRange) / n * 100)),
		Trend:             trendOf(readings),
	}
	if fastingN > 0 {
		report.FastingAverage = ptr(round1(fastingSum / float64(fastingN)))
	}
	if postMealN > 0 {
		report.PostMealAverage = ptr(round1(postMealSum / float64(postMealN)))
	}
	return report
}

// trendOf compares the mean of the older half against the newer half.
// Fewer than three readings always count as stable.
func trendOf(readings []Reading) Trend {
	if len(readings) < 3 {
		return TrendStable
	}
	sorted := make([]Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CapturedAt.Before(sorted[j].CapturedAt)
	})

	mid := len(sorted) / 2
	first := mean(sorted[:mid])
	second := mean(sorted[mid:])
	switch {
	case second > first*1.1:
		return TrendRising
	case second < first*0.9:
		return TrendFalling
	default:
		return TrendStable
	}
}

func mean(readings []Reading) float64 {
	if len(readings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range readings {
		sum += r.Value
	}
	return sum / float64(len(readings))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func ptr(v float64) *float64 {
	return &v
}
