package waitinput

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// phonePattern accepts international formats with optional separators.
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-.]{6,18}[0-9]$`)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidationError reports a response that failed the configured rule. The
// configured message is what the conversation caller surfaces to the user;
// the record stays waiting.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateResponse applies the validation rule embedded in a wait node's
// config snapshot to a response payload. A nil or empty rule accepts
// everything.
func ValidateResponse(config map[string]any, response map[string]any) error {
	rule, ok := config["validation"].(map[string]any)
	if !ok {
		return nil
	}

	kind, _ := rule["type"].(string)
	if kind == "" {
		return nil
	}

	text, _ := response["text"].(string)
	message, _ := rule["error_message"].(string)

	if message == "" {
		message = "invalid response"
	}

	fail := func() error {
		return &ValidationError{Message: message}
	}

	switch kind {
	case "regex":
		pattern, _ := rule["pattern"].(string)

		matcher, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid validation pattern %q: %w", pattern, err)
		}

		if !matcher.MatchString(text) {
			return fail()
		}
	case "contains":
		value, _ := rule["value"].(string)
		if !strings.Contains(strings.ToLower(text), strings.ToLower(value)) {
			return fail()
		}
	case "min_length":
		if length, ok := ruleInt(rule, "value"); ok && len(text) < length {
			return fail()
		}
	case "max_length":
		if length, ok := ruleInt(rule, "value"); ok && len(text) > length {
			return fail()
		}
	case "email":
		if !emailPattern.MatchString(strings.TrimSpace(text)) {
			return fail()
		}
	case "phone":
		if !phonePattern.MatchString(strings.TrimSpace(text)) {
			return fail()
		}
	case "number":
		if _, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err != nil {
			return fail()
		}
	}

	return nil
}

func ruleInt(rule map[string]any, key string) (int, bool) {
	switch v := rule[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}

		return n, true
	default:
		return 0, false
	}
}
