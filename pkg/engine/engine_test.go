package engine

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convy/flow/pkg/mocks"
	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/persistence"
	"github.com/convy/flow/pkg/persistence/file"
	"github.com/convy/flow/pkg/registry"
)

type fixture struct {
	engine    *Engine
	persist   persistence.Persistence
	messenger *mocks.Messenger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	persist := file.NewPersistence(t.TempDir())
	t.Cleanup(func() { _ = persist.Close(context.Background()) })

	messenger := &mocks.Messenger{}

	reg := registry.NewRegistry(slog.Default())
	registry.RegisterDefaults(reg, registry.Dependencies{
		Messenger: messenger,
		AI:        &mocks.AIClient{Reply: "generated"},
		CRM:       &mocks.CRMService{},
		Billing:   &mocks.BillingService{},
		Notifier:  &mocks.Notifier{},
	})

	return &fixture{
		engine:    NewEngine(slog.Default(), reg, persist, nil),
		persist:   persist,
		messenger: messenger,
	}
}

func triggerNode() *models.WorkflowNode {
	return &models.WorkflowNode{
		ID:     "t1",
		Type:   models.NodeTypeTrigger,
		Config: map[string]any{"trigger_type": "message_received"},
	}
}

func messageNode(id, text string) *models.WorkflowNode {
	return &models.WorkflowNode{
		ID:     id,
		Type:   models.NodeTypeSendMessage,
		Config: map[string]any{"message": text},
	}
}

func buildWorkflow(nodes []*models.WorkflowNode, edges []*models.Edge) *models.Workflow {
	return &models.Workflow{
		ID:             "wf-1",
		OrganizationID: "org-1",
		Name:           "Test flow",
		Status:         models.WorkflowStatusActive,
		Nodes:          nodes,
		Edges:          edges,
	}
}

func TestStart_SinglePathVisitsEveryNode(t *testing.T) {
	f := newFixture(t)

	wf := buildWorkflow(
		[]*models.WorkflowNode{triggerNode(), messageNode("m1", "one"), messageNode("m2", "two")},
		[]*models.Edge{
			{ID: "e1", Source: "t1", Target: "m1"},
			{ID: "e2", Source: "m1", Target: "m2"},
		},
	)

	execution, err := f.engine.Start(context.Background(), wf, StartOptions{ConversationID: "conv-1"})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.NotNil(t, execution.CompletedAt)
	assert.Equal(t, []string{"one", "two"}, f.messenger.Texts())

	stored, err := f.persist.Executions().ByID(context.Background(), execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, stored.Status)
}

func TestStart_ConditionRoutesOnLabels(t *testing.T) {
	f := newFixture(t)

	conditionNode := &models.WorkflowNode{
		ID:   "c1",
		Type: models.NodeTypeCondition,
		Config: map[string]any{
			"conditions": []any{
				map[string]any{"field": "lead.score", "operator": "greater_than", "value": float64(50)},
			},
		},
	}

	wf := buildWorkflow(
		[]*models.WorkflowNode{triggerNode(), conditionNode, messageNode("vip", "VIP"), messageNode("std", "Standard")},
		[]*models.Edge{
			{ID: "e1", Source: "t1", Target: "c1"},
			{ID: "e2", Source: "c1", Target: "vip", Label: "True"},
			{ID: "e3", Source: "c1", Target: "std", Label: "False"},
		},
	)

	seed := map[string]any{"lead": map[string]any{"score": 75.0}}

	execution, err := f.engine.Start(context.Background(), wf, StartOptions{Seed: seed})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, []string{"VIP"}, f.messenger.Texts())
}

func TestStart_FanOutRunsEveryBranch(t *testing.T) {
	f := newFixture(t)

	wf := buildWorkflow(
		[]*models.WorkflowNode{triggerNode(), messageNode("m1", "left"), messageNode("m2", "right")},
		[]*models.Edge{
			{ID: "e1", Source: "t1", Target: "m1"},
			{ID: "e2", Source: "t1", Target: "m2"},
		},
	)

	execution, err := f.engine.Start(context.Background(), wf, StartOptions{})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.ElementsMatch(t, []string{"left", "right"}, f.messenger.Texts())
}

func TestStart_BranchFailureLeavesSiblingUnaffected(t *testing.T) {
	f := newFixture(t)

	// The http node has no url, so its branch fails at construction.
	broken := &models.WorkflowNode{ID: "h1", Type: models.NodeTypeHTTP, Config: map[string]any{}}

	wf := buildWorkflow(
		[]*models.WorkflowNode{triggerNode(), broken, messageNode("m1", "still sent")},
		[]*models.Edge{
			{ID: "e1", Source: "t1", Target: "h1"},
			{ID: "e2", Source: "t1", Target: "m1"},
		},
	)

	execution, err := f.engine.Start(context.Background(), wf, StartOptions{})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
	assert.Contains(t, execution.ErrorMessage, "h1")
	assert.Equal(t, []string{"still sent"}, f.messenger.Texts())
}

func TestStart_WaitInputSuspendsAndPersistsPendingInput(t *testing.T) {
	f := newFixture(t)

	wait := &models.WorkflowNode{
		ID:   "w1",
		Type: models.NodeTypeWaitInput,
		Config: map[string]any{
			"input_type": "text",
			"timeout":    "1h",
		},
	}

	wf := buildWorkflow(
		[]*models.WorkflowNode{triggerNode(), messageNode("m1", "question"), wait, messageNode("m2", "thanks")},
		[]*models.Edge{
			{ID: "e1", Source: "t1", Target: "m1"},
			{ID: "e2", Source: "m1", Target: "w1"},
			{ID: "e3", Source: "w1", Target: "m2"},
		},
	)

	execution, err := f.engine.Start(context.Background(), wf, StartOptions{ConversationID: "conv-1"})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusWaiting, execution.Status)
	assert.Nil(t, execution.CompletedAt)
	assert.Equal(t, []string{"question"}, f.messenger.Texts())

	pending, err := f.persist.PendingInputs().ByExecutionAndNode(context.Background(), execution.ID, "w1")
	require.NoError(t, err)
	assert.Equal(t, models.PendingInputWaiting, pending.Status)
	assert.Equal(t, models.InputTypeText, pending.InputType)
	require.NotNil(t, pending.TimeoutAt)
}

func TestResume_ContinuesWithoutRepeatingSideEffects(t *testing.T) {
	f := newFixture(t)

	wait := &models.WorkflowNode{
		ID:     "w1",
		Type:   models.NodeTypeWaitInput,
		Config: map[string]any{"input_type": "text", "variable": "answers.name"},
	}

	wf := buildWorkflow(
		[]*models.WorkflowNode{triggerNode(), messageNode("m1", "what is your name?"), wait, messageNode("m2", "hi {{answers.name}}")},
		[]*models.Edge{
			{ID: "e1", Source: "t1", Target: "m1"},
			{ID: "e2", Source: "m1", Target: "w1"},
			{ID: "e3", Source: "w1", Target: "m2"},
		},
	)

	execution, err := f.engine.Start(context.Background(), wf, StartOptions{ConversationID: "conv-1"})
	require.NoError(t, err)
	require.Equal(t, models.ExecutionStatusWaiting, execution.Status)

	input := &models.NodeInput{Response: map[string]any{"kind": "text", "text": "Alice"}}

	resumed, err := f.engine.Resume(context.Background(), wf, execution, "w1", input)
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCompleted, resumed.Status)
	assert.Equal(t, []string{"what is your name?", "hi Alice"}, f.messenger.Texts())
}

func TestResume_TimeoutFollowsTimeoutEdge(t *testing.T) {
	f := newFixture(t)

	wait := &models.WorkflowNode{
		ID:     "w1",
		Type:   models.NodeTypeWaitInput,
		Config: map[string]any{"input_type": "text", "timeout": "1m"},
	}

	wf := buildWorkflow(
		[]*models.WorkflowNode{triggerNode(), wait, messageNode("ok", "got it"), messageNode("late", "too late")},
		[]*models.Edge{
			{ID: "e1", Source: "t1", Target: "w1"},
			{ID: "e2", Source: "w1", Target: "ok", SourceHandle: "success"},
			{ID: "e3", Source: "w1", Target: "late", SourceHandle: "timeout"},
		},
	)

	execution, err := f.engine.Start(context.Background(), wf, StartOptions{ConversationID: "conv-1"})
	require.NoError(t, err)
	require.Equal(t, models.ExecutionStatusWaiting, execution.Status)

	resumed, err := f.engine.Resume(context.Background(), wf, execution, "w1", &models.NodeInput{TimedOut: true})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCompleted, resumed.Status)
	assert.Equal(t, []string{"too late"}, f.messenger.Texts())
}

func TestResume_UnknownButtonClickFollowsEveryEdge(t *testing.T) {
	f := newFixture(t)

	buttons := &models.WorkflowNode{
		ID:   "b1",
		Type: models.NodeTypeButtons,
		Config: map[string]any{
			"message": "pick one",
			"buttons": []any{
				map[string]any{"id": "yes", "label": "Yes"},
				map[string]any{"id": "no", "label": "No"},
			},
		},
	}

	wf := buildWorkflow(
		[]*models.WorkflowNode{triggerNode(), buttons, messageNode("m-yes", "confirmed"), messageNode("m-no", "declined")},
		[]*models.Edge{
			{ID: "e1", Source: "t1", Target: "b1"},
			{ID: "e2", Source: "b1", Target: "m-yes", SourceHandle: "yes"},
			{ID: "e3", Source: "b1", Target: "m-no", SourceHandle: "no"},
		},
	)

	execution, err := f.engine.Start(context.Background(), wf, StartOptions{ConversationID: "conv-1"})
	require.NoError(t, err)
	require.Equal(t, models.ExecutionStatusWaiting, execution.Status)

	input := &models.NodeInput{Response: map[string]any{"kind": "interactive", "button_id": "maybe"}}

	resumed, err := f.engine.Resume(context.Background(), wf, execution, "b1", input)
	require.NoError(t, err)

	// A click that matches no button still moves the flow forward: with only
	// handled edges available, the continue pass-through takes all of them.
	assert.Equal(t, models.ExecutionStatusCompleted, resumed.Status)
	assert.Equal(t, []string{"pick one", "confirmed", "declined"}, f.messenger.Texts())
}

func TestStart_DelaySuspendsWithTimerRecord(t *testing.T) {
	f := newFixture(t)

	delayNode := &models.WorkflowNode{
		ID:     "d1",
		Type:   models.NodeTypeDelay,
		Config: map[string]any{"duration": "5m"},
	}

	wf := buildWorkflow(
		[]*models.WorkflowNode{triggerNode(), delayNode, messageNode("m1", "later")},
		[]*models.Edge{
			{ID: "e1", Source: "t1", Target: "d1"},
			{ID: "e2", Source: "d1", Target: "m1"},
		},
	)

	execution, err := f.engine.Start(context.Background(), wf, StartOptions{})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusWaiting, execution.Status)
	assert.Empty(t, f.messenger.Texts())

	pending, err := f.persist.PendingInputs().ByExecutionAndNode(context.Background(), execution.ID, "d1")
	require.NoError(t, err)
	assert.Equal(t, models.InputTypeTimer, pending.InputType)
	require.NotNil(t, pending.TimeoutAt)
}

func TestStart_ABTestFollowsSelectedHandle(t *testing.T) {
	f := newFixture(t)

	ab := &models.WorkflowNode{ID: "ab1", Type: models.NodeTypeABTest, Config: map[string]any{}}

	wf := buildWorkflow(
		[]*models.WorkflowNode{triggerNode(), ab, messageNode("ma", "path a"), messageNode("mb", "path b")},
		[]*models.Edge{
			{ID: "e1", Source: "t1", Target: "ab1"},
			{ID: "e2", Source: "ab1", Target: "ma", SourceHandle: "a"},
			{ID: "e3", Source: "ab1", Target: "mb", SourceHandle: "b"},
		},
	)

	seed := map[string]any{"lead": map[string]any{"id": "lead-1"}}

	execution, err := f.engine.Start(context.Background(), wf, StartOptions{Seed: seed})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	require.Len(t, f.messenger.Texts(), 1)
	assert.Contains(t, []string{"path a", "path b"}, f.messenger.Texts()[0])
}

func TestStart_RejectsInvalidWorkflow(t *testing.T) {
	f := newFixture(t)

	wf := buildWorkflow([]*models.WorkflowNode{messageNode("m1", "no trigger")}, nil)

	_, err := f.engine.Start(context.Background(), wf, StartOptions{})
	assert.ErrorIs(t, err, models.ErrNoTriggerNode)
}
