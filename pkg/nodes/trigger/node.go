// Package trigger provides the entry node every workflow graph starts from.
// Matching against inbound events happens in the trigger matcher; by the time
// this node executes, the event data is already seeded into the context.
package trigger

import (
	"context"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/protocol"
)

type TriggerNode struct {
	id string
}

func NewTriggerNode(id string) *TriggerNode {
	return &TriggerNode{id: id}
}

func (n *TriggerNode) ID() string {
	return n.id
}

func (n *TriggerNode) Type() string {
	return models.NodeTypeTrigger
}

func (n *TriggerNode) Execute(_ context.Context, _ *models.ExecutionContext, _ *models.NodeInput) (*models.NodeResult, error) {
	return models.Success(n.id, nil), nil
}

type Factory struct{}

func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

func (f *Factory) Create(_ context.Context, id string, _ map[string]any) (protocol.Node, error) {
	return NewTriggerNode(id), nil
}

func (f *Factory) ID() string {
	return models.NodeTypeTrigger
}

func (f *Factory) Name() string {
	return "Trigger"
}

func (f *Factory) Description() string {
	return "Entry point of a workflow, fired by the trigger matcher for a matching inbound event"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"trigger_type": map[string]any{
				"type":        "string",
				"description": "What kind of inbound event starts this workflow",
				"enum": []string{
					"keyword", "message_received", "first_contact",
					"business_hours", "outside_hours", "media_received", "webhook",
				},
			},
			"keyword":          map[string]any{"type": "string"},
			"match_mode":       map[string]any{"type": "string", "enum": []string{"exact", "contains"}},
			"cooldown_minutes": map[string]any{"type": "number", "minimum": 0},
			"hours":            map[string]any{"type": "object"},
			"media_types":      map[string]any{"type": "array"},
		},
		"required": []string{"trigger_type"},
	}
}
