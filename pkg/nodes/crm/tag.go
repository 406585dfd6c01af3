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
	TagActionAdd    = "add"
	TagActionRemove = "remove"
)

// TagNode adds or removes a tag on the conversation's lead.
type TagNode struct {
	id      string
	service protocol.CRMService
	action  string
	tag     string
}

func NewTagNode(id string, config map[string]any, service protocol.CRMService) (*TagNode, error) {
	if service == nil {
		return nil, errors.New("crm service is not configured")
	}

	node := &TagNode{id: id, service: service, action: TagActionAdd}

	tag, ok := config["tag"].(string)
	if !ok || tag == "" {
		return nil, errors.New("missing required field 'tag'")
	}

	node.tag = tag

	if action, ok := config["action"].(string); ok && action != "" {
		if action != TagActionAdd && action != TagActionRemove {
			return nil, fmt.Errorf("unknown action %q", action)
		}

		node.action = action
	}

	return node, nil
}

func (n *TagNode) ID() string {
	return n.id
}

func (n *TagNode) Type() string {
	return models.NodeTypeTag
}

func (n *TagNode) Execute(ctx context.Context, ec *models.ExecutionContext, input *models.NodeInput) (*models.NodeResult, error) {
	if input.Resumed {
		return models.Success(n.id, nil), nil
	}

	leadID := leadID(ec)
	if leadID == "" {
		return models.Failure(n.id, "no lead in execution context"), nil
	}

	tag := template.Resolve(n.tag, ec)

	var (
		result *protocol.DomainResult
		err    error
	)

	if n.action == TagActionRemove {
		result, err = n.service.RemoveTag(ctx, ec.OrganizationID, leadID, tag)
	} else {
		result, err = n.service.AddTag(ctx, ec.OrganizationID, leadID, tag)
	}

	if err != nil {
		return nil, fmt.Errorf("tag %s failed: %w", n.action, err)
	}

	if !result.Success {
		return models.Failure(n.id, result.Error), nil
	}

	return models.Success(n.id, map[string]any{"tag": tag, "action": n.action}), nil
}
