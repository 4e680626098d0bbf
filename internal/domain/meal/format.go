package meal

import (
	"fmt"
	"strings"

	"github.com/yanqian/glucobot/internal/domain/i18n"
	"github.com/yanqian/glucobot/internal/domain/summary"
)

// FormatResult renders the reply for an analysed meal. Users who have not
// finished onboarding get a nudge instead of the personalised section.
func FormatResult(a Analysis, onboarded bool, today *summary.DailyRollup) i18n.Message {
	return i18n.Text(
		renderResult(a, onboarded, today, resultLabels[i18n.English]),
		renderResult(a, onboarded, today, resultLabels[i18n.Hindi]),
	)
}

type labels struct {
	calories       string
	recommendation string
	good           string
	notRecommended string
	reason         string
	nudge          string
	advice         string
	today          string
	total          string
	meals          string
	goodChoices    string
	caution        string
}

var resultLabels = map[i18n.Lang]labels{
	i18n.English: {
		calories:       "Calorie estimate",
		recommendation: "Recommendation",
		good:           "✅ Good choice!",
		notRecommended: "⚠️ Not recommended",
		reason:         "Reason",
		nudge:          "I notice you haven't completed your profile setup yet. Setting up your profile will help me provide more personalized recommendations.\n\nType 'start onboarding' to set up your profile.",
		advice:         "Personalized advice",
		today:          "Today's Summary",
		total:          "Total Calories",
		meals:          "Meals",
		goodChoices:    "Good Choices",
		caution:        "Caution Needed",
	},
	i18n.Hindi: {
		calories:       "कैलोरी अनुमान",
		recommendation: "अनुशंसा",
		good:           "✅ अच्छा विकल्प!",
		notRecommended: "⚠️ अनुशंसित नहीं",
		reason:         "कारण",
		nudge:          "मैंने देखा कि आपने अभी तक अपना प्रोफ़ाइल सेटअप पूरा नहीं किया है। अपना प्रोफ़ाइल सेट करने से मुझे अधिक व्यक्तिगत सिफारिशें प्रदान करने में मदद मिलेगी।\n\nअपना प्रोफ़ाइल सेट करने के लिए 'start onboarding' टाइप करें।",
		advice:         "व्यक्तिगत सलाह",
		today:          "आज का सारांश",
		total:          "कुल कैलोरी",
		meals:          "भोजन",
		goodChoices:    "अच्छे विकल्प",
		caution:        "सावधानी आवश्यक",
	},
}

func renderResult(a Analysis, onboarded bool, today *summary.DailyRollup, l labels) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d kcal\n", l.calories, a.Calories)
	verdict := l.notRecommended
	if a.Recommended {
		verdict = l.good
	}
	fmt.Fprintf(&b, "%s: %s\n", l.recommendation, verdict)
	fmt.Fprintf(&b, "%s: %s", l.reason, a.Reason)

	if !onboarded {
		b.WriteString("\n\n")
		b.WriteString(l.nudge)
		return b.String()
	}
	if a.Tips != "" {
		fmt.Fprintf(&b, "\n\n%s: %s", l.advice, a.Tips)
	}
	if today != nil {
		fmt.Fprintf(&b, "\n\n%s:\n", l.today)
		fmt.Fprintf(&b, "- %s: %d\n", l.total, today.TotalCalories)
		fmt.Fprintf(&b, "- %s: %d\n", l.meals, today.MealCount)
		fmt.Fprintf(&b, "- %s: %d\n", l.goodChoices, today.FavorableCount)
		fmt.Fprintf(&b, "- %s: %d", l.caution, today.UnfavorableCount)
	}
	return b.String()
}
