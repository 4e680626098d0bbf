package conversation

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/yanqian/glucobot/internal/domain/analytics"
	"github.com/yanqian/glucobot/internal/domain/i18n"
	"github.com/yanqian/glucobot/internal/domain/reply"
)

var readingTypePrompt = reply.Buttons(
	i18n.Text("Blood Sugar Log", "रक्त शर्करा लॉग"),
	i18n.Text("What type of blood sugar reading would you like to log?", "आप किस प्रकार की रक्त शर्करा रीडिंग लॉग करना चाहेंगे?"),
	reply.Option{ID: string(analytics.Fasting), Label: i18n.Text("Fasting (before meal)", "उपवास (भोजन से पहले)")},
	reply.Option{ID: string(analytics.PostMeal), Label: i18n.Text("Post-meal (1-2 hours after eating)", "भोजन के बाद (खाने के 1-2 घंटे बाद)")},
	reply.Option{ID: string(analytics.Random), Label: i18n.Text("Random (any other time)", "रैंडम (किसी भी अन्य समय)")},
)

const (
	phraseInvalidSelection = "Invalid selection. Please enter 1, 2, or 3 to select a blood sugar reading type."
	phraseEnterValue       = "Please enter your blood sugar value (in mg/dL):"
	phraseNoValue          = "You didn't enter any value. Please enter your blood sugar reading as a number in mg/dL."
	phraseDigitsOnly       = "Please enter only digits for your blood sugar value in mg/dL."
	phraseRarelyBelow      = "Blood sugar values are rarely below 10 mg/dL. Please verify your reading or add a decimal point if needed."
	phraseRarelyAbove      = "Blood sugar values are rarely above 600 mg/dL. If this reading is correct, please seek medical attention immediately."
	phraseTryAgainRestart  = "Do you want to try again? Type 'log blood sugar' to restart."
	phraseLogFailed        = "Sorry, there was an error logging your blood sugar reading."
	phraseTryAgain         = "Type 'log blood sugar' to try again."
	phraseSettingUp        = "Setting up blood sugar tracking feature for the first time. This may take a moment..."
	phraseSetupDone        = "Blood sugar tracking feature has been set up successfully!"
	phraseSetupFailed      = "Sorry, there was an error setting up the blood sugar tracking feature. Please contact support for assistance."
	phraseTrendsHint       = "Type 'blood sugar trends' to see your overall patterns."
)

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)`)

// parseReadingValue reads the numeric prefix of raw, so "120 mg/dL" is 120.
func parseReadingValue(raw string) (float64, bool) {
	match := leadingFloat.FindString(raw)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func notANumber(input string) i18n.Message {
	return i18n.Join(" ",
		i18n.Text(fmt.Sprintf("%q is not a valid number.", input), fmt.Sprintf("%q एक मान्य संख्या नहीं है।", input)),
		i18n.Key(phraseDigitsOnly),
	)
}

func outOfRange(value float64) i18n.Message {
	v := analytics.FormatValue(value)
	hint := phraseRarelyAbove
	if value < analytics.MinReadingValue {
		hint = phraseRarelyBelow
	}
	return i18n.Join("\n\n",
		i18n.Join(" ",
			i18n.Text(
				fmt.Sprintf("The blood sugar value %s mg/dL seems outside the normal range.", v),
				fmt.Sprintf("रक्त शर्करा मान %s mg/dL सामान्य सीमा से बाहर लगता है।", v),
			),
			i18n.Key(hint),
		),
		i18n.Key(phraseTryAgainRestart),
	)
}

func loggedSuccessfully(value float64) i18n.Message {
	v := analytics.FormatValue(value)
	return i18n.Text(
		fmt.Sprintf("Blood sugar reading (%s mg/dL) logged successfully.", v),
		fmt.Sprintf("रक्त शर्करा रीडिंग (%s mg/dL) सफलतापूर्वक लॉग की गई।", v),
	)
}

func interpretation(category analytics.Category, value float64) i18n.Message {
	marker := "✅ "
	if analytics.IsWarning(category, value) {
		marker = "⚠️ "
	}
	return i18n.Concat(i18n.Raw(marker), i18n.Key(analytics.Interpret(category, value)))
}
