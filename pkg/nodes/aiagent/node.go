// Package aiagent provides the ai_agent node, which delegates a templated
// prompt to the inference backend and stores the reply in the execution
// context.
package aiagent

import (
	"context"
	"errors"
	"fmt"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/protocol"
	"github.com/convy/flow/pkg/template"
)

type AIAgentNode struct {
	id       string
	client   protocol.AIClient
	taskType string
	prompt   string
	variable string
	payload  map[string]any
}

func NewAIAgentNode(id string, config map[string]any, client protocol.AIClient) (*AIAgentNode, error) {
	if client == nil {
		return nil, errors.New("ai client is not configured")
	}

	node := &AIAgentNode{id: id, client: client, taskType: "completion"}

	prompt, ok := config["prompt"].(string)
	if !ok || prompt == "" {
		return nil, errors.New("missing required field 'prompt'")
	}

	node.prompt = prompt

	if taskType, ok := config["task_type"].(string); ok && taskType != "" {
		node.taskType = taskType
	}

	node.variable, _ = config["variable"].(string)

	if payload, ok := config["payload"].(map[string]any); ok {
		node.payload = payload
	}

	return node, nil
}

func (n *AIAgentNode) ID() string {
	return n.id
}

func (n *AIAgentNode) Type() string {
	return models.NodeTypeAIAgent
}

func (n *AIAgentNode) Execute(ctx context.Context, ec *models.ExecutionContext, input *models.NodeInput) (*models.NodeResult, error) {
	if input.Resumed {
		return models.Success(n.id, nil), nil
	}

	payload := map[string]any{
		"prompt": template.Resolve(n.prompt, ec),
	}

	for key, value := range n.payload {
		payload[key] = template.ResolveValue(value, ec)
	}

	result, err := n.client.Execute(ctx, protocol.AIRequest{
		OrganizationID: ec.OrganizationID,
		TaskType:       n.taskType,
		Payload:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}

	if !result.Success {
		return models.Failure(n.id, "inference backend reported failure"), nil
	}

	output := map[string]any{"text": result.Data}

	ec.Set("ai."+n.id, result.Data)
	ec.Set(models.ContextKeyLastOutput, result.Data)

	if n.variable != "" {
		ec.Set(n.variable, result.Data)
	}

	return models.Success(n.id, output), nil
}
