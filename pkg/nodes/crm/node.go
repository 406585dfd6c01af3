// Package crm provides the lead-mutation nodes (crm, tag, stage) backed by
// the product's CRM service.
package crm

import (
	"context"
	"errors"
	"fmt"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/protocol"
	"github.com/convy/flow/pkg/template"
)

const (
	ActionCreateLead   = "create_lead"
	ActionUpdateStatus = "update_status"
)

// CRMNode performs a generic lead mutation picked by the 'action' field.
type CRMNode struct {
	id      string
	service protocol.CRMService
	action  string
	status  string
	fields  map[string]any
}

func NewCRMNode(id string, config map[string]any, service protocol.CRMService) (*CRMNode, error) {
	if service == nil {
		return nil, errors.New("crm service is not configured")
	}

	node := &CRMNode{id: id, service: service}

	action, ok := config["action"].(string)
	if !ok || action == "" {
		return nil, errors.New("missing required field 'action'")
	}

	switch action {
	case ActionCreateLead, ActionUpdateStatus:
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}

	node.action = action
	node.status, _ = config["status"].(string)

	if node.action == ActionUpdateStatus && node.status == "" {
		return nil, errors.New("action update_status requires 'status'")
	}

	if fields, ok := config["fields"].(map[string]any); ok {
		node.fields = fields
	}

	return node, nil
}

func (n *CRMNode) ID() string {
	return n.id
}

func (n *CRMNode) Type() string {
	return models.NodeTypeCRM
}

func (n *CRMNode) Execute(ctx context.Context, ec *models.ExecutionContext, input *models.NodeInput) (*models.NodeResult, error) {
	if input.Resumed {
		return models.Success(n.id, nil), nil
	}

	var (
		result *protocol.DomainResult
		err    error
	)

	switch n.action {
	case ActionCreateLead:
		fields := map[string]any{}
		for key, value := range n.fields {
			fields[key] = template.ResolveValue(value, ec)
		}

		result, err = n.service.CreateLead(ctx, ec.OrganizationID, fields)
	case ActionUpdateStatus:
		leadID := leadID(ec)
		if leadID == "" {
			return models.Failure(n.id, "no lead in execution context"), nil
		}

		result, err = n.service.UpdateLeadStatus(ctx, ec.OrganizationID, leadID, template.Resolve(n.status, ec))
	}

	if err != nil {
		return nil, fmt.Errorf("crm %s failed: %w", n.action, err)
	}

	if !result.Success {
		return models.Failure(n.id, result.Error), nil
	}

	if n.action == ActionCreateLead {
		if id, ok := result.Data["id"]; ok {
			ec.Set("lead.id", id)
		}
	}

	return models.Success(n.id, result.Data), nil
}

func leadID(ec *models.ExecutionContext) string {
	if value, ok := ec.Get("lead.id"); ok {
		if s, ok := value.(string); ok {
			return s
		}
	}

	return ""
}
