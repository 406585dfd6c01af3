package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewExecutionContext_SeedsIdentity(t *testing.T) {
	ec := NewExecutionContext("exec-1", "wf-1", "org-1", map[string]any{"foo": "bar"})

	org, ok := ec.Get(ContextKeyOrganizationID)
	assert.True(t, ok)
	assert.Equal(t, "org-1", org)

	execID, ok := ec.Get(ContextKeyExecutionID)
	assert.True(t, ok)
	assert.Equal(t, "exec-1", execID)

	foo, ok := ec.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, "bar", foo)
}

func TestGet_DotPathWalk(t *testing.T) {
	ec := NewExecutionContext("exec-1", "wf-1", "org-1", map[string]any{
		"lead": map[string]any{"contact": map[string]any{"phone": "+55"}},
	})

	value, ok := ec.Get("lead.contact.phone")
	assert.True(t, ok)
	assert.Equal(t, "+55", value)

	_, ok = ec.Get("lead.contact.email")
	assert.False(t, ok)

	_, ok = ec.Get("lead.contact.phone.digits")
	assert.False(t, ok)

	_, ok = ec.Get("")
	assert.False(t, ok)
}

func TestSet_CreatesIntermediateMaps(t *testing.T) {
	ec := NewExecutionContext("exec-1", "wf-1", "org-1", nil)

	ec.Set("a.b.c", 1)

	value, ok := ec.Get("a.b.c")
	assert.True(t, ok)
	assert.Equal(t, 1, value)
}

func TestSet_ReplacesNonMapIntermediate(t *testing.T) {
	ec := NewExecutionContext("exec-1", "wf-1", "org-1", map[string]any{"a": "scalar"})

	ec.Set("a.b", 2)

	value, ok := ec.Get("a.b")
	assert.True(t, ok)
	assert.Equal(t, 2, value)
}

func TestClone_IsolatesWrites(t *testing.T) {
	ec := NewExecutionContext("exec-1", "wf-1", "org-1", map[string]any{
		"lead": map[string]any{"name": "Alice"},
		"tags": []any{map[string]any{"k": "v"}},
	})

	clone := ec.Clone()
	clone.Set("lead.name", "Bob")
	clone.Set("extra", true)

	name, _ := ec.Get("lead.name")
	assert.Equal(t, "Alice", name)

	_, ok := ec.Get("extra")
	assert.False(t, ok)
}

func TestMerge_LastWriterWins(t *testing.T) {
	ec := NewExecutionContext("exec-1", "wf-1", "org-1", map[string]any{"x": 1})

	ec.Merge(map[string]any{"x": 2, "y": 3})

	x, _ := ec.Get("x")
	assert.Equal(t, 2, x)

	y, _ := ec.Get("y")
	assert.Equal(t, 3, y)
}
