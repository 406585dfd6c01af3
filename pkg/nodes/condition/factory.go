package condition

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
	return NewConditionNode(id, config)
}

func (f *Factory) ID() string {
	return models.NodeTypeCondition
}

func (f *Factory) Name() string {
	return "Condition"
}

func (f *Factory) Description() string {
	return "Evaluates comparisons against the context and routes execution on the True or False edge"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"logic": map[string]any{
				"type":        "string",
				"description": "How multiple conditions combine",
				"enum":        []string{LogicAll, LogicAny},
				"default":     LogicAll,
			},
			"conditions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"field": map[string]any{
							"type":        "string",
							"description": "Context path to compare, e.g. lead.score",
						},
						"operator": map[string]any{
							"type": "string",
							"enum": []string{
								"equals", "not_equals",
								"greater_than", "greater_equal", "less_than", "less_equal",
								"contains", "starts_with", "ends_with",
								"is_set", "is_empty",
							},
						},
						"value": map[string]any{
							"description": "Operand; supports {{path}} templating",
						},
					},
					"required": []string{"field", "operator"},
				},
			},
		},
		"required": []string{"conditions"},
	}
}
