package models

import (
	"fmt"
	"time"
)

// TriggerType classifies what kind of inbound event starts a workflow.
type TriggerType string

const (
	TriggerKeyword         TriggerType = "keyword"
	TriggerMessageReceived TriggerType = "message_received"
	TriggerFirstContact    TriggerType = "first_contact"
	TriggerBusinessHours   TriggerType = "business_hours"
	TriggerOutsideHours    TriggerType = "outside_hours"
	TriggerMediaReceived   TriggerType = "media_received"
	TriggerWebhook         TriggerType = "webhook"
)

// SupportedTriggerTypes lists the trigger types the matcher evaluates.
var SupportedTriggerTypes = map[TriggerType]bool{
	TriggerKeyword:         true,
	TriggerMessageReceived: true,
	TriggerFirstContact:    true,
	TriggerBusinessHours:   true,
	TriggerOutsideHours:    true,
	TriggerMediaReceived:   true,
	TriggerWebhook:         true,
}

// Keyword match modes.
const (
	MatchModeExact    = "exact"
	MatchModeContains = "contains"
)

// HourWindow is a wall-clock window used by business_hours / outside_hours
// triggers. The zero value is not useful; DefaultHourWindow gives Mon-Fri 9-18.
type HourWindow struct {
	StartHour int            `json:"start_hour"`
	EndHour   int            `json:"end_hour"`
	Weekdays  []time.Weekday `json:"weekdays"`
	Timezone  string         `json:"timezone,omitempty"`
}

// DefaultHourWindow returns the Mon-Fri 9-18 default window.
func DefaultHourWindow() HourWindow {
	return HourWindow{
		StartHour: 9,
		EndHour:   18,
		Weekdays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
	}
}

// Contains reports whether the instant falls inside the window, evaluated in
// the window's timezone (UTC when unset or unknown).
func (w HourWindow) Contains(at time.Time) bool {
	if w.Timezone != "" {
		if loc, err := time.LoadLocation(w.Timezone); err == nil {
			at = at.In(loc)
		}
	}

	dayOK := false

	for _, day := range w.Weekdays {
		if at.Weekday() == day {
			dayOK = true

			break
		}
	}

	if !dayOK {
		return false
	}

	return at.Hour() >= w.StartHour && at.Hour() < w.EndHour
}

// TriggerConfig is the free-form trigger configuration carried on a trigger
// node, parsed once by the matcher.
type TriggerConfig struct {
	Type            TriggerType `json:"trigger_type"`
	Keyword         string      `json:"keyword,omitempty"`
	MatchMode       string      `json:"match_mode,omitempty"`
	Hours           HourWindow  `json:"hours"`
	CooldownMinutes int         `json:"cooldown_minutes,omitempty"`
	MediaTypes      []string    `json:"media_types,omitempty"`
}

// ParseTriggerConfig reads the trigger configuration off a trigger node's
// config map. Missing hour settings fall back to the default window.
func ParseTriggerConfig(config map[string]any) (*TriggerConfig, error) {
	tc := &TriggerConfig{
		MatchMode: MatchModeContains,
		Hours:     DefaultHourWindow(),
	}

	rawType, ok := config["trigger_type"].(string)
	if !ok || rawType == "" {
		return nil, fmt.Errorf("trigger node missing trigger_type")
	}

	tc.Type = TriggerType(rawType)
	if !SupportedTriggerTypes[tc.Type] {
		return nil, fmt.Errorf("unsupported trigger type %q", rawType)
	}

	if keyword, ok := config["keyword"].(string); ok {
		tc.Keyword = keyword
	}

	if mode, ok := config["match_mode"].(string); ok && mode != "" {
		tc.MatchMode = mode
	}

	if cooldown, ok := toInt(config["cooldown_minutes"]); ok {
		tc.CooldownMinutes = cooldown
	}

	if hours, ok := config["hours"].(map[string]any); ok {
		if start, ok := toInt(hours["start_hour"]); ok {
			tc.Hours.StartHour = start
		}

		if end, ok := toInt(hours["end_hour"]); ok {
			tc.Hours.EndHour = end
		}

		if tz, ok := hours["timezone"].(string); ok {
			tc.Hours.Timezone = tz
		}

		if days, ok := hours["weekdays"].([]any); ok {
			tc.Hours.Weekdays = tc.Hours.Weekdays[:0]
			for _, day := range days {
				if n, ok := toInt(day); ok {
					tc.Hours.Weekdays = append(tc.Hours.Weekdays, time.Weekday(n))
				}
			}
		}
	}

	if media, ok := config["media_types"].([]any); ok {
		for _, m := range media {
			if s, ok := m.(string); ok {
				tc.MediaTypes = append(tc.MediaTypes, s)
			}
		}
	}

	return tc, nil
}

// toInt normalizes the numeric types a JSON config decode can produce.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
