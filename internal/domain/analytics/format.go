package analytics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yanqian/glucobot/internal/domain/i18n"
)

const noTrendData = "No blood sugar data available. Start logging your blood sugar readings to see trends."

type trendLabels struct {
	title, readings, window, average, rangeLabel, fasting, postMeal, inRange, analysis string
	verdicts                                                                          map[Trend]string
}

var trendText = map[i18n.Lang]trendLabels{
	i18n.English: {
		title:      "📊 Blood Sugar Trends 📊",
		readings:   "Readings",
		window:     "in the last %d days",
		average:    "Average",
		rangeLabel: "Range",
		fasting:    "Fasting Average",
		postMeal:   "Post-Meal Average",
		inRange:    "Time in Range",
		analysis:   "Analysis",
		verdicts: map[Trend]string{
			TrendRising:  "⚠️ Your blood sugar levels show an upward trend. Consider reviewing your diet and medication.",
			TrendFalling: "Your blood sugar levels show a downward trend. If too low, consider consulting your healthcare provider.",
			TrendStable:  "👍 Your blood sugar levels appear stable.",
		},
	},
	i18n.Hindi: {
		title:      "📊 रक्त शर्करा रुझान 📊",
		readings:   "रीडिंग",
		window:     "पिछले %d दिनों में",
		average:    "औसत",
		rangeLabel: "सीमा",
		fasting:    "उपवास औसत",
		postMeal:   "भोजन के बाद औसत",
		inRange:    "सीमा में समय",
		analysis:   "विश्लेषण",
		verdicts: map[Trend]string{
			TrendRising:  "⚠️ आपके रक्त शर्करा के स्तर में बढ़ोतरी का रुझान है। अपने आहार और दवा की समीक्षा करें।",
			TrendFalling: "आपके रक्त शर्करा के स्तर में गिरावट का रुझान है। यदि बहुत कम हो, तो अपने डॉक्टर से परामर्श करें।",
			TrendStable:  "👍 आपके रक्त शर्करा के स्तर स्थिर लगते हैं।",
		},
	},
}

// FormatTrends renders a trend report as a chat message.
func FormatTrends(report TrendReport, days int) i18n.Message {
	if report.Count == 0 {
		return i18n.Key(noTrendData)
	}
	byLang := make(map[i18n.Lang]string, len(trendText))
	for lang, labels := range trendText {
		byLang[lang] = renderTrends(report, days, labels)
	}
	return i18n.Literal(byLang)
}

func renderTrends(report TrendReport, days int, l trendLabels) string {
	var b strings.Builder
	b.WriteString(l.title + "\n\n")
	fmt.Fprintf(&b, "%s: %d %s\n", l.readings, report.Count, fmt.Sprintf(l.window, days))
	fmt.Fprintf(&b, "%s: %s mg/dL\n", l.average, FormatValue(deref(report.Average)))
	fmt.Fprintf(&b, "%s: %s - %s mg/dL\n\n", l.rangeLabel, FormatValue(deref(report.Min)), FormatValue(deref(report.Max)))
	if report.FastingAverage != nil {
		fmt.Fprintf(&b, "%s: %s mg/dL\n", l.fasting, FormatValue(*report.FastingAverage))
	}
	if report.PostMealAverage != nil {
		fmt.Fprintf(&b, "%s: %s mg/dL\n", l.postMeal, FormatValue(*report.PostMealAverage))
	}
	fmt.Fprintf(&b, "%s: %s%%\n\n", l.inRange, FormatValue(deref(report.InRangePercentage)))
	verdict, ok := l.verdicts[report.Trend]
	if !ok {
		verdict = "Not enough data to determine a trend."
	}
	fmt.Fprintf(&b, "%s: %s", l.analysis, verdict)
	return b.String()
}

// FormatValue prints a reading without trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
