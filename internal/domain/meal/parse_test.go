package meal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/glucobot/internal/domain/i18n"
)

func TestParseAnalysisStripsFences(t *testing.T) {
	raw := "```json\n{\"calories\": 450, \"is_recommended\": true, \"reason\": \"balanced\", \"analysis\": \"dal and rice\", \"personalized_tips\": \"add salad\"}\n```"
	a, err := parseAnalysis(raw)
	require.NoError(t, err)
	require.Equal(t, 450, a.Calories)
	require.True(t, a.Recommended)
	require.Equal(t, "balanced", a.Reason)
	require.Equal(t, "dal and rice", a.Detail)
	require.Equal(t, "add salad", a.Tips)
	require.False(t, a.Failed)
}

func TestParseAnalysisCoercesLooseFields(t *testing.T) {
	a, err := parseAnalysis(`{"calories": "612.6 kcal", "is_recommended": "no", "reason": "fried"}`)
	require.NoError(t, err)
	require.Equal(t, 613, a.Calories)
	require.False(t, a.Recommended)
}

func TestParseAnalysisRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		"I think this is about 500 calories",
		`{"is_recommended": true}`,
		`{"calories": -20}`,
		`{"calories": 200, "is_recommended": "maybe"}`,
	} {
		_, err := parseAnalysis(raw)
		require.Error(t, err, raw)
	}
}

func TestFallbackAnalysesAreLocalised(t *testing.T) {
	en := malformedAnalysis(i18n.English)
	require.Equal(t, "Could not analyze the meal properly", en.Reason)
	require.Zero(t, en.Calories)
	require.False(t, en.Recommended)
	require.True(t, en.Failed)

	hi := unavailableAnalysis(i18n.Hindi)
	require.Equal(t, "विश्लेषण विफल रहा", hi.Reason)
}
