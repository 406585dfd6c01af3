package abtest

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
	return NewABTestNode(id, config)
}

func (f *Factory) ID() string {
	return models.NodeTypeABTest
}

func (f *Factory) Name() string {
	return "A/B Test"
}

func (f *Factory) Description() string {
	return "Splits traffic deterministically across weighted paths keyed on the lead identity"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"paths": map[string]any{
				"type":        "array",
				"description": "Weighted paths; percentages should sum to 100. Defaults to two 50/50 paths.",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":         map[string]any{"type": "string"},
						"percentage": map[string]any{"type": "number", "minimum": 0, "maximum": 100},
					},
					"required": []string{"id"},
				},
			},
		},
	}
}
