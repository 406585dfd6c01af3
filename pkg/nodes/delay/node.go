// Package delay provides the pause node. Delay nodes never execute
// synchronously: they record an absolute wake time and always suspend, so a
// waiting execution consumes nothing but its persisted rows.
package delay

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/protocol"
)

type DelayNode struct {
	id       string
	duration time.Duration
}

func NewDelayNode(id string, config map[string]any) (*DelayNode, error) {
	raw, ok := config["duration"].(string)
	if !ok {
		if num, isNum := config["duration"].(float64); isNum {
			raw = strconv.Itoa(int(num))
		} else {
			return nil, errors.New("missing required field 'duration'")
		}
	}

	duration, err := ParseDuration(raw)
	if err != nil {
		return nil, err
	}

	return &DelayNode{id: id, duration: duration}, nil
}

// ParseDuration understands "30s", "5m", "2h", "1d"; a bare integer defaults
// to minutes. Zero and negative durations are config errors.
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("empty duration")
	}

	unit := time.Minute
	digits := raw

	switch suffix := raw[len(raw)-1]; suffix {
	case 's':
		unit = time.Second
		digits = raw[:len(raw)-1]
	case 'm':
		unit = time.Minute
		digits = raw[:len(raw)-1]
	case 'h':
		unit = time.Hour
		digits = raw[:len(raw)-1]
	case 'd':
		unit = 24 * time.Hour
		digits = raw[:len(raw)-1]
	}

	amount, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	if amount <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", raw)
	}

	return time.Duration(amount) * unit, nil
}

func (n *DelayNode) ID() string {
	return n.id
}

func (n *DelayNode) Type() string {
	return models.NodeTypeDelay
}

func (n *DelayNode) Execute(_ context.Context, _ *models.ExecutionContext, input *models.NodeInput) (*models.NodeResult, error) {
	if input.Resumed {
		return models.Success(n.id, nil), nil
	}

	wakeAt := time.Now().UTC().Add(n.duration)

	result := models.Success(n.id, map[string]any{"wake_at": wakeAt.Format(time.RFC3339)})
	result.Suspend = &models.SuspendRequest{WakeAt: &wakeAt}

	return result, nil
}

type Factory struct{}

func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

func (f *Factory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewDelayNode(id, config)
}

func (f *Factory) ID() string {
	return models.NodeTypeDelay
}

func (f *Factory) Name() string {
	return "Delay"
}

func (f *Factory) Description() string {
	return "Pauses the execution until an absolute wake time computed from a duration string"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"duration": map[string]any{
				"description": "Duration string: 30s, 5m, 2h, 1d; bare integers are minutes",
			},
		},
		"required": []string{"duration"},
	}
}
