package aiagent

import (
	"context"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/protocol"
)

type Factory struct {
	client protocol.AIClient
}

func NewFactory(client protocol.AIClient) protocol.NodeFactory {
	return &Factory{client: client}
}

func (f *Factory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewAIAgentNode(id, config, f.client)
}

func (f *Factory) ID() string {
	return models.NodeTypeAIAgent
}

func (f *Factory) Name() string {
	return "AI Agent"
}

func (f *Factory) Description() string {
	return "Runs a templated prompt against the inference backend and stores the reply"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "Prompt text; supports {{path}} templating",
			},
			"task_type": map[string]any{
				"type":    "string",
				"default": "completion",
			},
			"variable": map[string]any{
				"type":        "string",
				"description": "Context path the reply is also stored under",
			},
			"payload": map[string]any{
				"type":        "object",
				"description": "Extra task parameters passed through to the backend",
			},
		},
		"required": []string{"prompt"},
	}
}
