package file

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/persistence"
)

func newStore(t *testing.T) *Persistence {
	t.Helper()

	return NewPersistence(t.TempDir())
}

func TestWorkflows_SaveAndFetch(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	wf := &models.Workflow{
		ID:             "wf-1",
		OrganizationID: "org-1",
		Name:           "Welcome",
		Status:         models.WorkflowStatusActive,
		Nodes: []*models.WorkflowNode{
			{ID: "t1", Type: models.NodeTypeTrigger, Config: map[string]any{"trigger_type": "keyword"}},
		},
	}

	require.NoError(t, store.Workflows().Save(ctx, wf))

	loaded, err := store.Workflows().ByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, wf.Name, loaded.Name)
	require.Len(t, loaded.Nodes, 1)
	assert.Equal(t, "keyword", loaded.Nodes[0].Config["trigger_type"])

	_, err = store.Workflows().ByID(ctx, "ghost")
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestWorkflows_ActiveByOrganizationFilters(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	save := func(id, org string, status models.WorkflowStatus) {
		require.NoError(t, store.Workflows().Save(ctx, &models.Workflow{
			ID: id, OrganizationID: org, Name: "flow " + id, Status: status,
		}))
	}

	save("wf-1", "org-1", models.WorkflowStatusActive)
	save("wf-2", "org-1", models.WorkflowStatusDraft)
	save("wf-3", "org-2", models.WorkflowStatusActive)

	active, err := store.Workflows().ActiveByOrganization(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "wf-1", active[0].ID)
}

func TestWorkflows_Delete(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Workflows().Save(ctx, &models.Workflow{
		ID: "wf-1", OrganizationID: "org-1", Name: "Welcome", Status: models.WorkflowStatusDraft,
	}))
	require.NoError(t, store.Workflows().Delete(ctx, "wf-1"))

	_, err := store.Workflows().ByID(ctx, "wf-1")
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestExecutions_LatestForLead(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	base := time.Date(2025, time.June, 4, 10, 0, 0, 0, time.UTC)

	save := func(id string, startedAt time.Time) {
		require.NoError(t, store.Executions().Save(ctx, &models.Execution{
			ID: id, WorkflowID: "wf-1", OrganizationID: "org-1", LeadID: "lead-1",
			Status: models.ExecutionStatusCompleted, StartedAt: startedAt,
		}))
	}

	save("exec-1", base)
	save("exec-2", base.Add(time.Hour))
	save("exec-3", base.Add(30*time.Minute))

	latest, err := store.Executions().LatestForLead(ctx, "wf-1", "lead-1")
	require.NoError(t, err)
	assert.Equal(t, "exec-2", latest.ID)

	_, err = store.Executions().LatestForLead(ctx, "wf-1", "lead-other")
	assert.ErrorIs(t, err, persistence.ErrExecutionNotFound)
}

func TestExecutions_ContextSurvivesRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	execution := &models.Execution{
		ID: "exec-1", WorkflowID: "wf-1", OrganizationID: "org-1",
		Status:    models.ExecutionStatusWaiting,
		StartedAt: time.Now().UTC(),
		Context: map[string]any{
			"lead": map[string]any{"name": "Alice"},
		},
	}

	require.NoError(t, store.Executions().Save(ctx, execution))

	loaded, err := store.Executions().ByID(ctx, "exec-1")
	require.NoError(t, err)

	lead, ok := loaded.Context["lead"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Alice", lead["name"])
}

func TestPendingInputs_UpsertKeyedByExecutionAndNode(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	record := &models.PendingInput{
		ID: "p-1", ExecutionID: "exec-1", NodeID: "w1",
		OrganizationID: "org-1", ConversationID: "conv-1",
		InputType: models.InputTypeText,
		Status:    models.PendingInputWaiting,
		CreatedAt: time.Now().UTC(),
	}

	require.NoError(t, store.PendingInputs().Upsert(ctx, record))

	// A second upsert for the same pair replaces, never duplicates.
	record.InputType = models.InputTypeAny
	require.NoError(t, store.PendingInputs().Upsert(ctx, record))

	waiting, err := store.PendingInputs().WaitingByConversation(ctx, "org-1", "conv-1")
	require.NoError(t, err)
	require.Len(t, waiting, 1)
	assert.Equal(t, models.InputTypeAny, waiting[0].InputType)
}

func TestPendingInputs_CompleteIsOneWay(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.PendingInputs().Upsert(ctx, &models.PendingInput{
		ID: "p-1", ExecutionID: "exec-1", NodeID: "w1",
		OrganizationID: "org-1", ConversationID: "conv-1",
		Status:    models.PendingInputWaiting,
		CreatedAt: time.Now().UTC(),
	}))

	response := map[string]any{"text": "yes"}
	require.NoError(t, store.PendingInputs().Complete(ctx, "exec-1", "w1", models.PendingInputCompleted, response))

	record, err := store.PendingInputs().ByExecutionAndNode(ctx, "exec-1", "w1")
	require.NoError(t, err)
	assert.Equal(t, models.PendingInputCompleted, record.Status)
	assert.Equal(t, "yes", record.Response["text"])
	assert.NotNil(t, record.CompletedAt)

	err = store.PendingInputs().Complete(ctx, "exec-1", "w1", models.PendingInputTimedOut, nil)
	assert.ErrorIs(t, err, persistence.ErrPendingInputNotWaiting)
}

func TestPendingInputs_Expired(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	save := func(execID string, timeoutAt *time.Time) {
		require.NoError(t, store.PendingInputs().Upsert(ctx, &models.PendingInput{
			ID: "p-" + execID, ExecutionID: execID, NodeID: "w1",
			OrganizationID: "org-1", ConversationID: "conv-1",
			Status: models.PendingInputWaiting, TimeoutAt: timeoutAt,
			CreatedAt: now,
		}))
	}

	save("exec-1", &past)
	save("exec-2", &future)
	save("exec-3", nil)

	expired, err := store.PendingInputs().Expired(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "exec-1", expired[0].ExecutionID)
}
