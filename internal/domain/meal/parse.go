package meal

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/yanqian/glucobot/internal/domain/i18n"
)

type analysisWire struct {
	Calories      json.RawMessage `json:"calories"`
	IsRecommended json.RawMessage `json:"is_recommended"`
	Reason        string          `json:"reason"`
	Analysis      string          `json:"analysis"`
	Tips          string          `json:"personalized_tips"`
}

func parseAnalysis(raw string) (Analysis, error) {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	sanitized = strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))

	var wire analysisWire
	if err := json.Unmarshal([]byte(sanitized), &wire); err != nil {
		return Analysis{}, err
	}
	calories, err := coerceCalories(wire.Calories)
	if err != nil {
		return Analysis{}, err
	}
	recommended, err := coerceBool(wire.IsRecommended)
	if err != nil {
		return Analysis{}, err
	}
	return Analysis{
		Calories:    calories,
		Recommended: recommended,
		Reason:      strings.TrimSpace(wire.Reason),
		Detail:      strings.TrimSpace(wire.Analysis),
		Tips:        strings.TrimSpace(wire.Tips),
	}, nil
}

func coerceCalories(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New("calories missing")
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err != nil {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, errors.New("calories must be a number")
		}
		text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "kcal"))
		num, err = strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, errors.New("calories must be a number")
		}
	}
	if num < 0 || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, errors.New("calories out of range")
	}
	return int(math.Round(num)), nil
}

func coerceBool(raw json.RawMessage) (bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return false, errors.New("is_recommended must be a boolean")
	}
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "yes":
		return true, nil
	case "false", "no", "":
		return false, nil
	}
	return false, errors.New("is_recommended must be a boolean")
}

// malformedAnalysis is returned when the model answered but not in the agreed shape.
func malformedAnalysis(lang i18n.Lang) Analysis {
	if lang == i18n.Hindi {
		return Analysis{
			Reason: "भोजन का विश्लेषण करने में असमर्थ",
			Detail: "पार्सिंग त्रुटि के कारण विश्लेषण विफल रहा",
			Tips:   "व्यक्तिगत सिफारिशें प्रदान करने में असमर्थ",
			Failed: true,
		}
	}
	return Analysis{
		Reason: "Could not analyze the meal properly",
		Detail: "Analysis failed due to parsing error",
		Tips:   "Unable to provide personalized recommendations",
		Failed: true,
	}
}

// unavailableAnalysis is returned when the model call itself failed.
func unavailableAnalysis(lang i18n.Lang) Analysis {
	if lang == i18n.Hindi {
		return Analysis{
			Reason: "विश्लेषण विफल रहा",
			Detail: "छवि का विश्लेषण नहीं किया जा सका",
			Tips:   "व्यक्तिगत सिफारिशें प्रदान करने में असमर्थ",
			Failed: true,
		}
	}
	return Analysis{
		Reason: "Analysis failed",
		Detail: "Could not analyze the image",
		Tips:   "Unable to provide personalized recommendations",
		Failed: true,
	}
}
