// Package waitinput provides the node that suspends an execution until a
// satisfying response arrives on the conversation, or a timeout fires.
package waitinput

import (
	"context"
	"fmt"
	"time"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/nodes/delay"
)

// Output handles the engine routes on after a resume.
const (
	HandleSuccess = "success"
	HandleTimeout = "timeout"
)

type WaitInputNode struct {
	id     string
	config map[string]any

	inputType     string
	variable      string
	timeout       time.Duration
	timeoutAction models.TimeoutAction
	timeoutBranch string
	branches      map[string]string
}

func NewWaitInputNode(id string, config map[string]any) (*WaitInputNode, error) {
	node := &WaitInputNode{
		id:            id,
		config:        config,
		inputType:     models.InputTypeAny,
		timeoutAction: models.TimeoutActionContinue,
		branches:      make(map[string]string),
	}

	if inputType, ok := config["input_type"].(string); ok && inputType != "" {
		node.inputType = inputType
	}

	if variable, ok := config["variable"].(string); ok {
		node.variable = variable
	}

	if raw, ok := config["timeout"].(string); ok && raw != "" {
		timeout, err := delay.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}

		node.timeout = timeout
	}

	if action, ok := config["timeout_action"].(string); ok && action != "" {
		node.timeoutAction = models.TimeoutAction(action)
	}

	if branch, ok := config["timeout_branch"].(string); ok {
		node.timeoutBranch = branch
	}

	if raw, ok := config["branches"].([]any); ok {
		for _, item := range raw {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}

			buttonID, _ := entry["button_id"].(string)
			next, _ := entry["next_branch_id"].(string)

			if buttonID != "" && next != "" {
				node.branches[buttonID] = next
			}
		}
	}

	return node, nil
}

func (n *WaitInputNode) ID() string {
	return n.id
}

func (n *WaitInputNode) Type() string {
	return models.NodeTypeWaitInput
}

func (n *WaitInputNode) Execute(_ context.Context, ec *models.ExecutionContext, input *models.NodeInput) (*models.NodeResult, error) {
	if !input.Resumed {
		return n.suspend(), nil
	}

	return n.resume(ec, input), nil
}

// suspend asks the engine to persist a pending-input record. The node config
// snapshot travels inside it so the eventual resume can validate the response
// without re-reading the workflow definition.
func (n *WaitInputNode) suspend() *models.NodeResult {
	result := models.Success(n.id, nil)
	result.Suspend = &models.SuspendRequest{
		Input: &models.PendingInputSpec{
			InputType:     n.inputType,
			NodeConfig:    n.config,
			Timeout:       n.timeout,
			TimeoutAction: n.timeoutAction,
			TimeoutBranch: n.timeoutBranch,
		},
	}

	return result
}

func (n *WaitInputNode) resume(ec *models.ExecutionContext, input *models.NodeInput) *models.NodeResult {
	result := models.Success(n.id, input.Response)

	switch {
	case input.NextBranchID != "":
		result.SelectedHandle = input.NextBranchID
	case input.TimedOut:
		result.SelectedHandle = HandleTimeout
	default:
		result.SelectedHandle = HandleSuccess

		ec.Set(models.ContextKeyResponse, input.Response)

		if n.variable != "" {
			if text, ok := input.Response["text"]; ok {
				ec.Set(n.variable, text)
			}
		}

		if buttonID, ok := input.Response["button_id"].(string); ok && buttonID != "" {
			if next, mapped := n.branches[buttonID]; mapped {
				result.SelectedHandle = next
			}
		}
	}

	return result
}
