// Package template resolves {{path}} placeholders in user-authored workflow
// fields against the execution context.
package template

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/convy/flow/pkg/models"
)

// Resolve scans the input for {{path}} occurrences and replaces each with the
// stringified context value at that path. Unresolved paths degrade to the
// empty string rather than erroring: workflows are user-authored and must not
// crash on typos.
func Resolve(input string, ctx *models.ExecutionContext) string {
	var out strings.Builder

	for {
		start := strings.Index(input, "{{")
		if start < 0 {
			out.WriteString(input)

			break
		}

		end := strings.Index(input[start:], "}}")
		if end < 0 {
			out.WriteString(input)

			break
		}

		out.WriteString(input[:start])

		path := strings.TrimSpace(input[start+2 : start+end])
		if value, ok := ctx.Get(path); ok {
			out.WriteString(Stringify(value))
		}

		input = input[start+end+2:]
	}

	return out.String()
}

// ResolveValue resolves templates recursively through maps, slices and
// strings, leaving other values untouched. Node configs are resolved with it
// before execution.
func ResolveValue(value any, ctx *models.ExecutionContext) any {
	switch typed := value.(type) {
	case string:
		return Resolve(typed, ctx)
	case map[string]any:
		resolved := make(map[string]any, len(typed))
		for k, v := range typed {
			resolved[k] = ResolveValue(v, ctx)
		}

		return resolved
	case []any:
		resolved := make([]any, len(typed))
		for i, v := range typed {
			resolved[i] = ResolveValue(v, ctx)
		}

		return resolved
	default:
		return value
	}
}

// Stringify renders a context value for interpolation. Numbers drop trailing
// zeroes, composites render as JSON, nil renders empty.
func Stringify(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case map[string]any, []any:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprintf("%v", typed)
		}

		return string(encoded)
	default:
		return fmt.Sprintf("%v", typed)
	}
}
