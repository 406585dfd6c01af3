package waitinput

import (
	"context"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/protocol"
)

type Factory struct{}

func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

func (f *Factory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewWaitInputNode(id, config)
}

func (f *Factory) ID() string {
	return models.NodeTypeWaitInput
}

func (f *Factory) Name() string {
	return "Wait for Input"
}

func (f *Factory) Description() string {
	return "Suspends the execution until a matching response arrives on the conversation or a timeout fires"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"input_type": map[string]any{
				"type":    "string",
				"enum":    []string{"text", "interactive", "image", "audio", "video", "document", "any"},
				"default": "any",
			},
			"variable": map[string]any{
				"type":        "string",
				"description": "Context path to store the response text under",
			},
			"timeout": map[string]any{
				"type":        "string",
				"description": "Duration string; empty means wait forever",
			},
			"timeout_action": map[string]any{
				"type": "string",
				"enum": []string{"continue", "branch", "stop"},
			},
			"timeout_branch": map[string]any{"type": "string"},
			"validation": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type": map[string]any{
						"type": "string",
						"enum": []string{"regex", "contains", "min_length", "max_length", "email", "phone", "number"},
					},
					"pattern":       map[string]any{"type": "string"},
					"value":         map[string]any{},
					"error_message": map[string]any{"type": "string"},
				},
			},
			"branches": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"button_id":      map[string]any{"type": "string"},
						"next_branch_id": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}
