package models

import "strings"

// Reserved context keys seeded by the engine at execution start. They are
// ordinary values as far as nodes are concerned.
const (
	ContextKeyOrganizationID = "organization_id"
	ContextKeyExecutionID    = "execution_id"
	ContextKeyConnectionID   = "connection_id"
	ContextKeyConversationID = "conversation_id"
	ContextKeyLastOutput     = "last_output"
	ContextKeyResponse       = "response"
)

// ExecutionContext is the per-execution variable store. Keys are dot-delimited
// paths into nested maps; nodes read user-authored fields like "lead.phone"
// through it and write their outputs back into it.
type ExecutionContext struct {
	ID             string         `json:"id"`
	WorkflowID     string         `json:"workflow_id"`
	OrganizationID string         `json:"organization_id"`
	Values         map[string]any `json:"values"`
}

// NewExecutionContext creates a context seeded with the given values. A nil
// seed yields an empty store.
func NewExecutionContext(id, workflowID, organizationID string, seed map[string]any) *ExecutionContext {
	values := make(map[string]any, len(seed)+3)
	for k, v := range seed {
		values[k] = v
	}

	values[ContextKeyOrganizationID] = organizationID
	values[ContextKeyExecutionID] = id

	return &ExecutionContext{
		ID:             id,
		WorkflowID:     workflowID,
		OrganizationID: organizationID,
		Values:         values,
	}
}

// Get walks dot-segments through nested map values. It returns false on any
// missing or non-map intermediate; it never errors, since paths come from
// user-authored workflow fields.
func (c *ExecutionContext) Get(path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = c.Values

	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// Set writes a value at a dot-delimited path, creating intermediate maps as
// needed. A non-map intermediate is replaced.
func (c *ExecutionContext) Set(path string, value any) {
	if path == "" {
		return
	}

	segments := strings.Split(path, ".")
	current := c.Values

	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}

		current = next
	}

	current[segments[len(segments)-1]] = value
}

// Merge copies the given values into the context, overwriting existing keys.
// Nested maps are merged shallowly at the top level only.
func (c *ExecutionContext) Merge(values map[string]any) {
	for k, v := range values {
		c.Values[k] = v
	}
}

// Clone returns a deep copy of the context. Fan-out branches each receive
// their own clone so sibling branches never alias the same store.
func (c *ExecutionContext) Clone() *ExecutionContext {
	return &ExecutionContext{
		ID:             c.ID,
		WorkflowID:     c.WorkflowID,
		OrganizationID: c.OrganizationID,
		Values:         deepCopyMap(c.Values),
	}
}

func deepCopyMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))

	for k, v := range src {
		switch typed := v.(type) {
		case map[string]any:
			dst[k] = deepCopyMap(typed)
		case []any:
			items := make([]any, len(typed))
			for i, item := range typed {
				if m, ok := item.(map[string]any); ok {
					items[i] = deepCopyMap(m)
				} else {
					items[i] = item
				}
			}

			dst[k] = items
		default:
			dst[k] = v
		}
	}

	return dst
}
