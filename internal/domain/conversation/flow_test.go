package conversation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/glucobot/internal/domain/i18n"
)

func TestParseReadingValue(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"120", 120, true},
		{"120 mg/dL", 120, true},
		{"98.6", 98.6, true},
		{".5", 0.5, true},
		{"-4", -4, true},
		{"mg 120", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseReadingValue(tc.in)
		require.Equal(t, tc.ok, ok, tc.in)
		require.InDelta(t, tc.want, got, 0.0001, tc.in)
	}
}

func TestAcceptDailyLimit(t *testing.T) {
	apply, err := acceptDailyLimit(TextInput("2000cal"))
	require.NoError(t, err)
	var d Draft
	apply(&d)
	require.Equal(t, 2000, d.DailyLimit)

	_, err = acceptDailyLimit(TextInput("about 2000"))
	require.Error(t, err)
	_, err = acceptDailyLimit(SelectionInput("2000"))
	require.Error(t, err)
}

func TestAcceptLanguage(t *testing.T) {
	for raw, want := range map[string]i18n.Lang{"Hindi": i18n.Hindi, "हिंदी": i18n.Hindi, "english": i18n.English, "fr": i18n.English, "1": i18n.English, "2": i18n.Hindi} {
		apply, err := acceptLanguage(TextInput(raw))
		require.NoError(t, err)
		var d Draft
		apply(&d)
		require.Equal(t, want, d.Language, raw)
	}
	_, err := acceptLanguage(SelectionInput("lang_fr"))
	require.Error(t, err)
}

func TestAcceptNameRejectsSelection(t *testing.T) {
	_, err := acceptName(SelectionInput("help"))
	require.Error(t, err)
	var rejected *inputError
	require.ErrorAs(t, err, &rejected)
	require.True(t, rejected.msg.IsZero())
}

func TestAcceptDiabetesTypeNumberedChoices(t *testing.T) {
	for raw, want := range map[string]string{"1": "Type 1", "2": "Type 2", "3": "None", "type 2": "Type 2", "LADA": "LADA"} {
		apply, err := acceptDiabetesType(TextInput(raw))
		require.NoError(t, err)
		var d Draft
		apply(&d)
		require.Equal(t, want, d.DiabetesType, raw)
	}
}

func TestAcceptTrackReadingsNumberedChoices(t *testing.T) {
	for raw, want := range map[string]bool{"1": true, "yes": true, "हां": true, "2": false, "no": false, "maybe": false} {
		apply, err := acceptTrackReadings(TextInput(raw))
		require.NoError(t, err)
		d := Draft{TrackReadings: !want}
		apply(&d)
		require.Equal(t, want, d.TrackReadings, raw)
	}
	_, err := acceptTrackReadings(SelectionInput("lang_en"))
	require.Error(t, err)
}
