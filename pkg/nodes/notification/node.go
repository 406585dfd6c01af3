// Package notification provides the notification node, which alerts team
// members over an internal channel.
package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/protocol"
	"github.com/convy/flow/pkg/template"
)

type NotificationNode struct {
	id       string
	notifier protocol.Notifier
	channel  string
	message  string
}

func NewNotificationNode(id string, config map[string]any, notifier protocol.Notifier) (*NotificationNode, error) {
	if notifier == nil {
		return nil, errors.New("notifier is not configured")
	}

	node := &NotificationNode{id: id, notifier: notifier, channel: "in_app"}

	message, ok := config["message"].(string)
	if !ok || message == "" {
		return nil, errors.New("missing required field 'message'")
	}

	node.message = message

	if channel, ok := config["channel"].(string); ok && channel != "" {
		node.channel = channel
	}

	return node, nil
}

func (n *NotificationNode) ID() string {
	return n.id
}

func (n *NotificationNode) Type() string {
	return models.NodeTypeNotification
}

func (n *NotificationNode) Execute(ctx context.Context, ec *models.ExecutionContext, input *models.NodeInput) (*models.NodeResult, error) {
	if input.Resumed {
		return models.Success(n.id, nil), nil
	}

	message := template.Resolve(n.message, ec)

	if err := n.notifier.Notify(ctx, ec.OrganizationID, n.channel, message); err != nil {
		return nil, fmt.Errorf("notification failed: %w", err)
	}

	return models.Success(n.id, map[string]any{"channel": n.channel}), nil
}
