// Package buttons provides the interactive message node: it sends a button,
// list or call-to-action message, and optionally waits for the reply using
// the configured options as the implicit validation set.
package buttons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/nodes/delay"
	"github.com/convy/flow/pkg/protocol"
	"github.com/convy/flow/pkg/template"
)

// HandleContinue is the pass-through handle followed when no reply routing
// applies.
const HandleContinue = models.HandleContinue

type Option struct {
	ID    string
	Label string
}

type ButtonsNode struct {
	id        string
	messenger protocol.Messenger
	config    map[string]any

	text         string
	style        string
	options      []Option
	waitForReply bool
	timeout      time.Duration
}

func NewButtonsNode(id string, config map[string]any, messenger protocol.Messenger) (*ButtonsNode, error) {
	if messenger == nil {
		return nil, errors.New("messenger is not configured")
	}

	node := &ButtonsNode{id: id, messenger: messenger, config: config, style: "buttons"}

	text, ok := config["message"].(string)
	if !ok || text == "" {
		return nil, errors.New("missing required field 'message'")
	}

	node.text = text

	if style, ok := config["style"].(string); ok && style != "" {
		node.style = style
	}

	raw, ok := config["buttons"].([]any)
	if !ok || len(raw) == 0 {
		return nil, errors.New("missing required field 'buttons'")
	}

	for i, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("button %d is not an object", i)
		}

		option := Option{}
		option.ID, _ = entry["id"].(string)
		option.Label, _ = entry["label"].(string)

		if option.ID == "" {
			return nil, fmt.Errorf("button %d missing id", i)
		}

		node.options = append(node.options, option)
	}

	if wait, ok := config["wait_for_reply"].(bool); ok {
		node.waitForReply = wait
	}

	if raw, ok := config["timeout"].(string); ok && raw != "" {
		timeout, err := delay.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}

		node.timeout = timeout
	}

	return node, nil
}

func (n *ButtonsNode) ID() string {
	return n.id
}

func (n *ButtonsNode) Type() string {
	return models.NodeTypeButtons
}

func (n *ButtonsNode) Execute(ctx context.Context, ec *models.ExecutionContext, input *models.NodeInput) (*models.NodeResult, error) {
	if input.Resumed {
		return n.resume(ec, input), nil
	}

	if err := n.send(ctx, ec); err != nil {
		return nil, err
	}

	if n.shouldWait(input.OutgoingHandles) {
		result := models.Success(n.id, nil)
		result.Suspend = &models.SuspendRequest{
			Input: &models.PendingInputSpec{
				InputType:     models.InputTypeInteractive,
				NodeConfig:    n.config,
				Timeout:       n.timeout,
				TimeoutAction: models.TimeoutActionContinue,
			},
		}

		return result, nil
	}

	return models.Success(n.id, nil), nil
}

func (n *ButtonsNode) send(ctx context.Context, ec *models.ExecutionContext) error {
	options := make([]any, 0, len(n.options))
	for _, option := range n.options {
		options = append(options, map[string]any{
			"id":    option.ID,
			"label": template.Resolve(option.Label, ec),
		})
	}

	content := map[string]any{
		"type":    "interactive",
		"style":   n.style,
		"text":    template.Resolve(n.text, ec),
		"buttons": options,
	}

	connectionID := contextString(ec, models.ContextKeyConnectionID)
	recipient := contextString(ec, models.ContextKeyConversationID)

	ack, err := n.messenger.Send(ctx, connectionID, recipient, content, ec.OrganizationID)
	if err != nil {
		return err
	}

	if !ack.Success {
		return errors.New(ack.Error)
	}

	ec.Set("messages."+n.id, map[string]any{"external_id": ack.ExternalID})

	return nil
}

// shouldWait is true when the node is explicitly configured to wait, or when
// an outgoing edge routes on one of the button ids, meaning the graph author
// expects the click to steer the flow.
func (n *ButtonsNode) shouldWait(outgoingHandles []string) bool {
	if n.waitForReply {
		return true
	}

	for _, handle := range outgoingHandles {
		for _, option := range n.options {
			if handle == option.ID {
				return true
			}
		}
	}

	return false
}

func (n *ButtonsNode) resume(ec *models.ExecutionContext, input *models.NodeInput) *models.NodeResult {
	result := models.Success(n.id, input.Response)

	if input.TimedOut {
		result.SelectedHandle = HandleContinue

		return result
	}

	ec.Set(models.ContextKeyResponse, input.Response)

	buttonID, _ := input.Response["button_id"].(string)

	for _, option := range n.options {
		if option.ID == buttonID {
			result.SelectedHandle = buttonID

			return result
		}
	}

	result.SelectedHandle = HandleContinue

	return result
}

func contextString(ec *models.ExecutionContext, key string) string {
	if value, ok := ec.Get(key); ok {
		if s, ok := value.(string); ok {
			return s
		}
	}

	return ""
}
