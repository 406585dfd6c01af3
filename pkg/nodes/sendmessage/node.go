// Package sendmessage provides the outbound channel message node. Sends go
// through the Messenger collaborator; the external message id lands back in
// the context for later nodes.
package sendmessage

import (
	"context"
	"errors"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/protocol"
	"github.com/convy/flow/pkg/template"
)

type SendMessageNode struct {
	id        string
	messenger protocol.Messenger

	connectionID string
	recipient    string
	text         string
	mediaURL     string
}

func NewSendMessageNode(id string, config map[string]any, messenger protocol.Messenger) (*SendMessageNode, error) {
	if messenger == nil {
		return nil, errors.New("messenger is not configured")
	}

	node := &SendMessageNode{id: id, messenger: messenger}

	text, ok := config["message"].(string)
	if !ok || text == "" {
		return nil, errors.New("missing required field 'message'")
	}

	node.text = text
	node.connectionID, _ = config["connection_id"].(string)
	node.recipient, _ = config["recipient"].(string)
	node.mediaURL, _ = config["media_url"].(string)

	return node, nil
}

func (n *SendMessageNode) ID() string {
	return n.id
}

func (n *SendMessageNode) Type() string {
	return models.NodeTypeSendMessage
}

func (n *SendMessageNode) Execute(ctx context.Context, ec *models.ExecutionContext, input *models.NodeInput) (*models.NodeResult, error) {
	if input.Resumed {
		// Re-entered after a suspend downstream; the send already happened.
		return models.Success(n.id, nil), nil
	}

	connectionID := template.Resolve(n.connectionID, ec)
	if connectionID == "" {
		connectionID = contextString(ec, models.ContextKeyConnectionID)
	}

	recipient := template.Resolve(n.recipient, ec)
	if recipient == "" {
		recipient = contextString(ec, models.ContextKeyConversationID)
	}

	content := map[string]any{
		"type": "text",
		"text": template.Resolve(n.text, ec),
	}

	if n.mediaURL != "" {
		content["type"] = "media"
		content["media_url"] = template.Resolve(n.mediaURL, ec)
	}

	ack, err := n.messenger.Send(ctx, connectionID, recipient, content, ec.OrganizationID)
	if err != nil {
		return nil, err
	}

	if !ack.Success {
		return models.Failure(n.id, ack.Error), nil
	}

	output := map[string]any{"external_id": ack.ExternalID}
	ec.Set("messages."+n.id, output)

	return models.Success(n.id, output), nil
}

func contextString(ec *models.ExecutionContext, key string) string {
	if value, ok := ec.Get(key); ok {
		if s, ok := value.(string); ok {
			return s
		}
	}

	return ""
}
