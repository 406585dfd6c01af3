package crm

import (
	"context"
	"errors"
	"fmt"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/protocol"
	"github.com/convy/flow/pkg/template"
)

// StageNode moves the conversation's lead to a pipeline stage.
type StageNode struct {
	id      string
	service protocol.CRMService
	stage   string
}

func NewStageNode(id string, config map[string]any, service protocol.CRMService) (*StageNode, error) {
	if service == nil {
		return nil, errors.New("crm service is not configured")
	}

	stage, ok := config["stage"].(string)
	if !ok || stage == "" {
		return nil, errors.New("missing required field 'stage'")
	}

	return &StageNode{id: id, service: service, stage: stage}, nil
}

func (n *StageNode) ID() string {
	return n.id
}

func (n *StageNode) Type() string {
	return models.NodeTypeStage
}

func (n *StageNode) Execute(ctx context.Context, ec *models.ExecutionContext, input *models.NodeInput) (*models.NodeResult, error) {
	if input.Resumed {
		return models.Success(n.id, nil), nil
	}

	leadID := leadID(ec)
	if leadID == "" {
		return models.Failure(n.id, "no lead in execution context"), nil
	}

	stage := template.Resolve(n.stage, ec)

	result, err := n.service.UpdateLeadStatus(ctx, ec.OrganizationID, leadID, stage)
	if err != nil {
		return nil, fmt.Errorf("stage move failed: %w", err)
	}

	if !result.Success {
		return models.Failure(n.id, result.Error), nil
	}

	return models.Success(n.id, map[string]any{"stage": stage}), nil
}
