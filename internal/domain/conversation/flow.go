package conversation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yanqian/glucobot/internal/domain/i18n"
	"github.com/yanqian/glucobot/internal/domain/reply"
)

// inputError rejects an answer. The step is asked again after msg, if any.
type inputError struct {
	msg i18n.Message
}

func (e *inputError) Error() string {
	return i18n.Resolve(e.msg, i18n.English)
}

func reject(msg i18n.Message) error {
	return &inputError{msg: msg}
}

// stepDef is one row of the onboarding table.
type stepDef struct {
	prompt   reply.Reply
	buttons  bool
	validate func(in Input) (func(*Draft), error)
	next     Step
	terminal bool
}

var (
	namePrompt = reply.Text(i18n.Text(
		"Welcome to the health tracking service! Let's set up your profile. What's your name?",
		"स्वास्थ्य ट्रैकिंग सेवा में आपका स्वागत है! आइए आपका प्रोफ़ाइल सेट करें। आपका नाम क्या है?",
	))
	diabetesPrompt = reply.Buttons(
		i18n.Text("Diabetes Type", "मधुमेह प्रकार"),
		i18n.Text("What type of diabetes do you have?", "आपको किस प्रकार का मधुमेह है?"),
		reply.Option{ID: "type1", Label: i18n.Text("Type 1", "टाइप 1")},
		reply.Option{ID: "type2", Label: i18n.Text("Type 2", "टाइप 2")},
		reply.Option{ID: "none", Label: i18n.Text("None", "कोई नहीं")},
	)
	dailyLimitPrompt = reply.Text(i18n.Text(
		"Got it. Now, what's your daily calorie limit goal?",
		"समझ गया। अब, आपका दैनिक कैलोरी सीमा लक्ष्य क्या है?",
	))
	preferencesPrompt = reply.Text(i18n.Text(
		"Do you have any dietary preferences? (e.g., vegetarian, low-carb, etc.)",
		"क्या आपकी कोई आहार संबंधी प्राथमिकताएँ हैं? (जैसे, शाकाहारी, कम-कार्ब, आदि)",
	))
	trackPrompt = reply.Buttons(
		i18n.Text("Blood Sugar Tracking", "रक्त शर्करा ट्रैकिंग"),
		i18n.Text("Do you want to track your blood sugar levels?", "क्या आप अपने रक्त शर्करा के स्तर को ट्रैक करना चाहते हैं?"),
		reply.Option{ID: "yes_blood_sugar", Label: i18n.Text("Yes", "हां")},
		reply.Option{ID: "no_blood_sugar", Label: i18n.Text("No", "नहीं")},
	)
	languagePrompt = reply.Buttons(
		i18n.Text("Language Preference", "भाषा प्राथमिकता"),
		i18n.Text("What is your preferred language?", "आपकी पसंदीदा भाषा क्या है?"),
		reply.Option{ID: "lang_en", Label: i18n.Text("English", "अंग्रेजी")},
		reply.Option{ID: "lang_hi", Label: i18n.Text("Hindi", "हिंदी")},
	)

	onboardingComplete = i18n.Text(
		"Great! Your profile is now set up. You can update these details anytime by typing 'update profile'.",
		"बहुत अच्छा! आपका प्रोफ़ाइल अब सेट हो गया है। आप 'update profile' टाइप करके किसी भी समय इन विवरणों को अपडेट कर सकते हैं।",
	)
	invalidDailyLimit = i18n.Text(
		"Please enter a valid number for your daily calorie limit.",
		"कृपया अपनी दैनिक कैलोरी सीमा के लिए एक वैध संख्या दर्ज करें।",
	)
)

var onboardingFlow = map[Step]stepDef{
	StepName:          {prompt: namePrompt, validate: acceptName, next: StepDiabetesType},
	StepDiabetesType:  {prompt: diabetesPrompt, buttons: true, validate: acceptDiabetesType, next: StepDailyLimit},
	StepDailyLimit:    {prompt: dailyLimitPrompt, validate: acceptDailyLimit, next: StepPreferences},
	StepPreferences:   {prompt: preferencesPrompt, validate: acceptPreferences, next: StepTrackReadings},
	StepTrackReadings: {prompt: trackPrompt, buttons: true, validate: acceptTrackReadings, next: StepLanguage},
	StepLanguage:      {prompt: languagePrompt, buttons: true, validate: acceptLanguage, terminal: true},
}

func acceptName(in Input) (func(*Draft), error) {
	name := in.Value()
	if in.Kind != InputText || name == "" {
		return nil, reject(i18n.Message{})
	}
	return func(d *Draft) { d.Name = name }, nil
}

var diabetesTypes = map[string]string{
	"type1":    "Type 1",
	"type 1":   "Type 1",
	"1":        "Type 1",
	"टाइप 1":   "Type 1",
	"type2":    "Type 2",
	"type 2":   "Type 2",
	"2":        "Type 2",
	"टाइप 2":   "Type 2",
	"none":     "None",
	"no":       "None",
	"3":        "None",
	"कोई नहीं": "None",
}

func acceptDiabetesType(in Input) (func(*Draft), error) {
	raw := in.Value()
	if raw == "" {
		return nil, reject(i18n.Message{})
	}
	value, ok := diabetesTypes[strings.ToLower(raw)]
	if !ok {
		if in.Kind == InputSelection {
			return nil, reject(i18n.Message{})
		}
		value = raw
	}
	return func(d *Draft) { d.DiabetesType = value }, nil
}

var leadingInt = regexp.MustCompile(`^[+-]?\d+`)

func acceptDailyLimit(in Input) (func(*Draft), error) {
	if in.Kind != InputText {
		return nil, reject(invalidDailyLimit)
	}
	digits := leadingInt.FindString(in.Value())
	limit, err := strconv.Atoi(digits)
	if err != nil {
		return nil, reject(invalidDailyLimit)
	}
	return func(d *Draft) { d.DailyLimit = limit }, nil
}

func acceptPreferences(in Input) (func(*Draft), error) {
	if in.Kind != InputText {
		return nil, reject(i18n.Message{})
	}
	prefs := in.Value()
	return func(d *Draft) { d.DietaryPreference = prefs }, nil
}

func acceptTrackReadings(in Input) (func(*Draft), error) {
	var track bool
	switch strings.ToLower(in.Value()) {
	case "yes_blood_sugar", "yes", "y", "1", "हां", "हाँ":
		track = true
	case "no_blood_sugar", "no", "n", "2", "नहीं":
		track = false
	default:
		if in.Kind == InputSelection {
			return nil, reject(i18n.Message{})
		}
	}
	return func(d *Draft) { d.TrackReadings = track }, nil
}

func acceptLanguage(in Input) (func(*Draft), error) {
	raw := in.Value()
	if in.Kind == InputSelection && raw != "lang_en" && raw != "lang_hi" {
		return nil, reject(i18n.Message{})
	}
	var lang i18n.Lang
	switch raw {
	case "1":
		lang = i18n.English
	case "2":
		lang = i18n.Hindi
	default:
		lang = i18n.ParseLang(raw)
	}
	return func(d *Draft) { d.Language = lang }, nil
}
