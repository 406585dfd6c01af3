package template

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/convy/flow/pkg/models"
)

func testContext() *models.ExecutionContext {
	return models.NewExecutionContext("exec-1", "wf-1", "org-1", map[string]any{
		"lead": map[string]any{
			"name":  "Alice",
			"phone": "+5511999990000",
			"score": 75.0,
		},
		"greeting": "hello",
		"vip":      true,
	})
}

func TestResolve_SimplePath(t *testing.T) {
	ctx := testContext()

	assert.Equal(t, "Hi Alice!", Resolve("Hi {{lead.name}}!", ctx))
	assert.Equal(t, "hello", Resolve("{{greeting}}", ctx))
}

func TestResolve_MultiplePlaceholders(t *testing.T) {
	ctx := testContext()

	result := Resolve("{{lead.name}} ({{lead.phone}})", ctx)
	assert.Equal(t, "Alice (+5511999990000)", result)
}

func TestResolve_MissingPathDegradesToEmpty(t *testing.T) {
	ctx := testContext()

	assert.Equal(t, "Hi !", Resolve("Hi {{lead.nickname}}!", ctx))
}

func TestResolve_WhitespaceInsidePlaceholder(t *testing.T) {
	ctx := testContext()

	assert.Equal(t, "Alice", Resolve("{{ lead.name }}", ctx))
}

func TestResolve_NumberDropsTrailingZeroes(t *testing.T) {
	ctx := testContext()

	assert.Equal(t, "score: 75", Resolve("score: {{lead.score}}", ctx))
}

func TestResolve_BooleanValue(t *testing.T) {
	ctx := testContext()

	assert.Equal(t, "true", Resolve("{{vip}}", ctx))
}

func TestResolve_UnterminatedPlaceholderLeftIntact(t *testing.T) {
	ctx := testContext()

	assert.Equal(t, "Hi {{lead.name", Resolve("Hi {{lead.name", ctx))
}

func TestResolveValue_Recursive(t *testing.T) {
	ctx := testContext()

	input := map[string]any{
		"to":    "{{lead.phone}}",
		"body":  map[string]any{"text": "Hi {{lead.name}}"},
		"tags":  []any{"{{greeting}}", "static"},
		"count": 3,
	}

	resolved, ok := ResolveValue(input, ctx).(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "+5511999990000", resolved["to"])
	assert.Equal(t, map[string]any{"text": "Hi Alice"}, resolved["body"])
	assert.Equal(t, []any{"hello", "static"}, resolved["tags"])
	assert.Equal(t, 3, resolved["count"])
}

func TestStringify_CompositeRendersJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, Stringify(map[string]any{"a": 1}))
	assert.Equal(t, "", Stringify(nil))
}
