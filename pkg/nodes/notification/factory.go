package notification

import (
	"context"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/protocol"
)

type Factory struct {
	notifier protocol.Notifier
}

func NewFactory(notifier protocol.Notifier) protocol.NodeFactory {
	return &Factory{notifier: notifier}
}

func (f *Factory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewNotificationNode(id, config, f.notifier)
}

func (f *Factory) ID() string {
	return models.NodeTypeNotification
}

func (f *Factory) Name() string {
	return "Notification"
}

func (f *Factory) Description() string {
	return "Notifies team members over email or in-app channels"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Notification text; supports {{path}} templating",
			},
			"channel": map[string]any{
				"type":    "string",
				"enum":    []string{"in_app", "email"},
				"default": "in_app",
			},
		},
		"required": []string{"message"},
	}
}
