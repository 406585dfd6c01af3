package sendmessage

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
	return NewSendMessageNode(id, config, f.messenger)
}

func (f *Factory) ID() string {
	return models.NodeTypeSendMessage
}

func (f *Factory) Name() string {
	return "Send Message"
}

func (f *Factory) Description() string {
	return "Sends a channel message to the conversation through the connected transport"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Message text; supports {{path}} templating",
			},
			"connection_id": map[string]any{
				"type":        "string",
				"description": "Channel connection; defaults to the triggering conversation's connection",
			},
			"recipient": map[string]any{"type": "string"},
			"media_url": map[string]any{"type": "string"},
		},
		"required": []string{"message"},
	}
}
