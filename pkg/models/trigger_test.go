package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTriggerConfig_Defaults(t *testing.T) {
	config, err := ParseTriggerConfig(map[string]any{"trigger_type": "keyword", "keyword": "hi"})
	require.NoError(t, err)

	assert.Equal(t, TriggerKeyword, config.Type)
	assert.Equal(t, "hi", config.Keyword)
	assert.Equal(t, MatchModeContains, config.MatchMode)
	assert.Equal(t, 9, config.Hours.StartHour)
	assert.Equal(t, 18, config.Hours.EndHour)
}

func TestParseTriggerConfig_RejectsUnknownType(t *testing.T) {
	_, err := ParseTriggerConfig(map[string]any{"trigger_type": "lunar_phase"})
	assert.Error(t, err)

	_, err = ParseTriggerConfig(map[string]any{})
	assert.Error(t, err)
}

func TestParseTriggerConfig_ReadsHourWindow(t *testing.T) {
	config, err := ParseTriggerConfig(map[string]any{
		"trigger_type": "business_hours",
		"hours": map[string]any{
			"start_hour": float64(8),
			"end_hour":   float64(20),
			"timezone":   "America/Sao_Paulo",
			"weekdays":   []any{float64(1), float64(2), float64(3)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 8, config.Hours.StartHour)
	assert.Equal(t, 20, config.Hours.EndHour)
	assert.Equal(t, "America/Sao_Paulo", config.Hours.Timezone)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday}, config.Hours.Weekdays)
}

func TestHourWindow_Contains(t *testing.T) {
	window := DefaultHourWindow()

	// Wednesday 10:00 UTC.
	inside := time.Date(2025, time.June, 4, 10, 0, 0, 0, time.UTC)
	assert.True(t, window.Contains(inside))

	// Wednesday 20:00 UTC.
	evening := time.Date(2025, time.June, 4, 20, 0, 0, 0, time.UTC)
	assert.False(t, window.Contains(evening))

	// Sunday 10:00 UTC.
	sunday := time.Date(2025, time.June, 8, 10, 0, 0, 0, time.UTC)
	assert.False(t, window.Contains(sunday))
}

func TestHourWindow_ContainsHonorsTimezone(t *testing.T) {
	window := DefaultHourWindow()
	window.Timezone = "America/Sao_Paulo"

	// Wednesday 11:00 UTC is 08:00 in Sao Paulo, before opening.
	at := time.Date(2025, time.June, 4, 11, 0, 0, 0, time.UTC)
	assert.False(t, window.Contains(at))

	// Wednesday 13:00 UTC is 10:00 in Sao Paulo.
	later := time.Date(2025, time.June, 4, 13, 0, 0, 0, time.UTC)
	assert.True(t, window.Contains(later))
}

func TestInputTypeAccepts(t *testing.T) {
	assert.True(t, InputTypeAccepts(InputTypeText, "text"))
	assert.True(t, InputTypeAccepts(InputTypeInteractive, "button_click"))
	assert.True(t, InputTypeAccepts(InputTypeInteractive, "list_reply"))
	assert.True(t, InputTypeAccepts(InputTypeAny, "image"))
	assert.False(t, InputTypeAccepts(InputTypeText, "image"))
	assert.False(t, InputTypeAccepts(InputTypeTimer, "text"))
}
