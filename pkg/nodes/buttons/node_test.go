package buttons

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convy/flow/pkg/mocks"
	"github.com/convy/flow/pkg/models"
)

func buttonsConfig(extra map[string]any) map[string]any {
	config := map[string]any{
		"message": "Pick one, {{lead.name}}",
		"buttons": []any{
			map[string]any{"id": "yes", "label": "Yes"},
			map[string]any{"id": "no", "label": "No"},
		},
	}

	for k, v := range extra {
		config[k] = v
	}

	return config
}

func buttonsContext() *models.ExecutionContext {
	return models.NewExecutionContext("exec-1", "wf-1", "org-1", map[string]any{
		"lead":            map[string]any{"name": "Alice"},
		"connection_id":   "conn-1",
		"conversation_id": "conv-1",
	})
}

func TestExecute_SendsInteractiveMessage(t *testing.T) {
	messenger := &mocks.Messenger{}

	node, err := NewButtonsNode("b1", buttonsConfig(nil), messenger)
	require.NoError(t, err)

	result, err := node.Execute(context.Background(), buttonsContext(), &models.NodeInput{})
	require.NoError(t, err)

	assert.Nil(t, result.Suspend)
	require.Len(t, messenger.Sent, 1)

	sent := messenger.Sent[0]
	assert.Equal(t, "conn-1", sent.ConnectionID)
	assert.Equal(t, "conv-1", sent.Recipient)
	assert.Equal(t, "Pick one, Alice", sent.Content["text"])
	assert.Equal(t, "interactive", sent.Content["type"])
}

func TestExecute_WaitsWhenConfigured(t *testing.T) {
	messenger := &mocks.Messenger{}

	node, err := NewButtonsNode("b1", buttonsConfig(map[string]any{"wait_for_reply": true}), messenger)
	require.NoError(t, err)

	result, err := node.Execute(context.Background(), buttonsContext(), &models.NodeInput{})
	require.NoError(t, err)

	require.NotNil(t, result.Suspend)
	require.NotNil(t, result.Suspend.Input)
	assert.Equal(t, models.InputTypeInteractive, result.Suspend.Input.InputType)
}

func TestExecute_WaitsWhenEdgesRouteOnButtons(t *testing.T) {
	messenger := &mocks.Messenger{}

	node, err := NewButtonsNode("b1", buttonsConfig(nil), messenger)
	require.NoError(t, err)

	input := &models.NodeInput{OutgoingHandles: []string{"yes", "no"}}

	result, err := node.Execute(context.Background(), buttonsContext(), input)
	require.NoError(t, err)
	assert.NotNil(t, result.Suspend)
}

func TestExecute_ResumeSelectsClickedButton(t *testing.T) {
	messenger := &mocks.Messenger{}

	node, err := NewButtonsNode("b1", buttonsConfig(nil), messenger)
	require.NoError(t, err)

	ec := buttonsContext()
	input := &models.NodeInput{
		Resumed:  true,
		Response: map[string]any{"kind": "button_click", "button_id": "no"},
	}

	result, err := node.Execute(context.Background(), ec, input)
	require.NoError(t, err)

	assert.Equal(t, "no", result.SelectedHandle)
	assert.Empty(t, messenger.Sent)
}

func TestExecute_ResumeUnknownButtonContinues(t *testing.T) {
	messenger := &mocks.Messenger{}

	node, err := NewButtonsNode("b1", buttonsConfig(nil), messenger)
	require.NoError(t, err)

	input := &models.NodeInput{
		Resumed:  true,
		Response: map[string]any{"kind": "text", "text": "neither"},
	}

	result, err := node.Execute(context.Background(), buttonsContext(), input)
	require.NoError(t, err)
	assert.Equal(t, HandleContinue, result.SelectedHandle)
}

func TestExecute_SendFailureFailsNode(t *testing.T) {
	messenger := &mocks.Messenger{Fail: true}

	node, err := NewButtonsNode("b1", buttonsConfig(nil), messenger)
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), buttonsContext(), &models.NodeInput{})
	assert.Error(t, err)
}
