package i18n

import "strings"

// Lang is a supported display language.
type Lang string

const (
	English Lang = "en"
	Hindi   Lang = "hi"
)

// Supported lists the languages the bot can render.
var Supported = []Lang{English, Hindi}

// IsSupported reports whether lang has a rendering.
func IsSupported(lang Lang) bool {
	for _, l := range Supported {
		if l == lang {
			return true
		}
	}
	return false
}

// Normalize maps unsupported languages to English.
func Normalize(lang Lang) Lang {
	if IsSupported(lang) {
		return lang
	}
	return English
}

// ParseLang understands language codes and names users type during onboarding.
func ParseLang(raw string) Lang {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hi", "hindi", "हिंदी", "हिन्दी", "lang_hi":
		return Hindi
	default:
		return English
	}
}
