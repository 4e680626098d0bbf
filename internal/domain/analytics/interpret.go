package analytics

// Interpret returns the canonical phrase describing a freshly logged value.
func Interpret(category Category, value float64) string {
	switch category {
	case Fasting:
		switch {
		case value < 70:
			return "Your fasting blood sugar is below the normal range (70-100 mg/dL). This could indicate hypoglycemia."
		case value <= 100:
			return "Your fasting blood sugar is within the normal range (70-100 mg/dL)."
		case value <= 125:
			return "Your fasting blood sugar is in the prediabetic range (100-125 mg/dL)."
		default:
			return "Your fasting blood sugar is above 125 mg/dL, which is in the diabetic range."
		}
	case PostMeal:
		switch {
		case value < 70:
			return "Your post-meal blood sugar is too low. Consider consulting your healthcare provider."
		case value < 140:
			return "Your post-meal blood sugar is within the normal range (less than 140 mg/dL)."
		case value <= 180:
			return "Your post-meal blood sugar is slightly elevated."
		default:
			return "Your post-meal blood sugar is above 180 mg/dL, which is higher than recommended."
		}
	default:
		switch {
		case value < 70:
			return "Your blood sugar is below 70 mg/dL, which may indicate hypoglycemia."
		case value <= 140:
			return "Your blood sugar is within a generally acceptable range."
		default:
			return "Your blood sugar is elevated. Consider checking again later."
		}
	}
}

// IsWarning reports whether the interpretation of value should carry a warning marker.
func IsWarning(category Category, value float64) bool {
	switch category {
	case Fasting:
		return value < 70 || value > 100
	case PostMeal:
		return value < 70 || value >= 140
	default:
		return value < 70 || value > 140
	}
}
