package chatbot

import (
	"github.com/yanqian/glucobot/internal/domain/i18n"
	"github.com/yanqian/glucobot/internal/domain/reply"
)

// Selection and command ids shared by menus and keyword commands.
const (
	cmdStartOnboarding  = "start_onboarding"
	cmdHelp             = "help"
	cmdSummary          = "summary"
	cmdLogBloodSugar    = "log_blood_sugar"
	cmdBloodSugarTrends = "blood_sugar_trends"
	cmdLanguage         = "language"
	cmdSendFood         = "send_food"
	cmdLangEnglish      = "lang_en"
	cmdLangHindi        = "lang_hi"
)

var restartPhrases = map[string]bool{
	"start onboarding": true,
	"update profile":   true,
}

var keywords = map[string]string{
	"summary":            cmdSummary,
	"log blood sugar":    cmdLogBloodSugar,
	"blood sugar":        cmdLogBloodSugar,
	"blood sugar trends": cmdBloodSugarTrends,
	"trends":             cmdBloodSugarTrends,
	"language":           cmdLanguage,
	"change language":    cmdLanguage,
	"help":               cmdHelp,
}

const (
	phraseGeneric        = "Sorry, something went wrong. Please try again later."
	phraseImageFailed    = "Sorry, there was an error processing your image."
	phraseSummaryFailed  = "Sorry, there was an error processing your summary request. Please try again later."
	phraseTrendsFailed   = "Sorry, there was an error fetching your blood sugar trends. Please try again later."
	phraseLanguageFailed = "There was an error updating your language preference. Please try again later."
	phraseOnboardFailed  = "Sorry, there was an error starting the onboarding process. Please try again later."
	phraseSendFood       = "To analyze your food, simply send a photo of your meal, and I'll provide calorie estimates and health recommendations. You can also add a description after sending the image for more accurate analysis."
)

var helpMenu = reply.List(
	i18n.Text("Help Menu", "सहायता मेनू"),
	i18n.Text(
		"Select an option to learn more or type the command directly",
		"अधिक जानने के लिए एक विकल्प चुनें या सीधे कमांड टाइप करें",
	),
	i18n.Text("View Options", "विकल्प देखें"),
	reply.Section{
		Title: i18n.Text("Available Commands", "उपलब्ध कमांड्स"),
		Rows: []reply.Row{
			{
				ID:          cmdSendFood,
				Title:       i18n.Text("Send Food Image", "खाद्य छवि भेजें"),
				Description: i18n.Text("Get calorie estimates and recommendations", "कैलोरी अनुमान और सिफारिशें प्राप्त करें"),
			},
			{
				ID:          cmdStartOnboarding,
				Title:       i18n.Text("Start Onboarding", "प्रोफाइल सेटअप"),
				Description: i18n.Text("Set up or update your profile", "अपना प्रोफ़ाइल सेट अप या अपडेट करें"),
			},
			{
				ID:          cmdLogBloodSugar,
				Title:       i18n.Text("Log Blood Sugar", "रक्त शर्करा लॉग करें"),
				Description: i18n.Text("Log a new blood sugar reading", "एक नया रक्त शर्करा रीडिंग लॉग करें"),
			},
			{
				ID:          cmdBloodSugarTrends,
				Title:       i18n.Text("Blood Sugar Trends", "रक्त शर्करा रुझान"),
				Description: i18n.Text("See your trends and analysis", "अपने रुझान और विश्लेषण देखें"),
			},
			{
				ID:          cmdSummary,
				Title:       i18n.Text("Summary", "सारांश"),
				Description: i18n.Text("View your health tracking summaries", "अपने स्वास्थ्य ट्रैकिंग सारांश देखें"),
			},
			{
				ID:          cmdLanguage,
				Title:       i18n.Text("Change Language", "भाषा बदलें"),
				Description: i18n.Text("Change your language preference", "अपनी भाषा प्राथमिकता बदलें"),
			},
		},
	},
)

var summaryMenu = reply.List(
	i18n.Text("Health Summary", "स्वास्थ्य सारांश"),
	i18n.Text("What type of summary would you like to see?", "आप किस प्रकार का सारांश देखना चाहेंगे?"),
	i18n.Text("Select Option", "विकल्प चुनें"),
	reply.Section{
		Title: i18n.Text("Summary Types", "सारांश प्रकार"),
		Rows: []reply.Row{
			{ID: "daily_summary", Title: i18n.Text("Daily Summary", "दैनिक सारांश")},
			{ID: "weekly_summary", Title: i18n.Text("Weekly Summary", "साप्ताहिक सारांश")},
			{ID: "monthly_summary", Title: i18n.Text("Monthly Summary", "मासिक सारांश")},
		},
	},
)

var welcomeMenu = reply.Buttons(
	i18n.Text("Welcome!", "स्वागत है!"),
	i18n.Text(
		"Welcome to the health tracking service! To get started, set up your profile or send a food image to get calorie estimates.",
		"स्वास्थ्य ट्रैकिंग सेवा में आपका स्वागत है! शुरू करने के लिए, अपना प्रोफाइल सेट करें या कैलोरी अनुमान प्राप्त करने के लिए एक खाद्य छवि भेजें।",
	),
	reply.Option{ID: cmdStartOnboarding, Label: i18n.Text("Set Up Profile", "प्रोफ़ाइल सेट करें")},
	reply.Option{ID: cmdHelp, Label: i18n.Text("Show Help", "सहायता दिखाएँ")},
)

var languageMenu = reply.Buttons(
	i18n.Text("Language Settings", "भाषा सेटिंग्स"),
	i18n.Text("Select your preferred language:", "अपनी पसंदीदा भाषा चुनें:"),
	reply.Option{ID: cmdLangEnglish, Label: i18n.Text("English", "अंग्रेजी")},
	reply.Option{ID: cmdLangHindi, Label: i18n.Text("Hindi", "हिंदी")},
)

var languageUpdated = map[i18n.Lang]i18n.Message{
	i18n.English: i18n.Text("Your language preference has been updated to English.", "आपकी भाषा प्राथमिकता अंग्रेजी में अपडेट कर दी गई है।"),
	i18n.Hindi:   i18n.Text("Your language preference has been updated to Hindi.", "आपकी भाषा प्राथमिकता हिंदी में अपडेट कर दी गई है।"),
}

func echo(text string) reply.Reply {
	return reply.Text(i18n.Text("Echo: "+text, "प्रतिध्वनि: "+text))
}

func apology(phrase string) reply.Reply {
	return reply.Text(i18n.Key(phrase))
}
