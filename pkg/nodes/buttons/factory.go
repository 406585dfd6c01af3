package buttons

import (
	"context"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/protocol"
)

type Factory struct {
	messenger protocol.Messenger
}

func NewFactory(messenger protocol.Messenger) protocol.NodeFactory {
	return &Factory{messenger: messenger}
}

func (f *Factory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewButtonsNode(id, config, f.messenger)
}

func (f *Factory) ID() string {
	return models.NodeTypeButtons
}

func (f *Factory) Name() string {
	return "Buttons"
}

func (f *Factory) Description() string {
	return "Sends an interactive button, list or CTA message and optionally waits for the reply"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Message text; supports {{path}} templating",
			},
			"style": map[string]any{
				"type":    "string",
				"enum":    []string{"buttons", "list", "cta"},
				"default": "buttons",
			},
			"buttons": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":    map[string]any{"type": "string"},
						"label": map[string]any{"type": "string"},
					},
					"required": []string{"id"},
				},
			},
			"wait_for_reply": map[string]any{"type": "boolean"},
			"timeout": map[string]any{
				"type":        "string",
				"description": "How long to wait for a click, e.g. 30m or 1d",
			},
		},
		"required": []string{"message", "buttons"},
	}
}
