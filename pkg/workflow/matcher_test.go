package workflow

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convy/flow/pkg/events"
	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/persistence"
	"github.com/convy/flow/pkg/persistence/file"
)

func newMatcherFixture(t *testing.T) (*Matcher, persistence.Persistence) {
	t.Helper()

	persist := file.NewPersistence(t.TempDir())
	t.Cleanup(func() { _ = persist.Close(context.Background()) })

	return NewMatcher(slog.Default(), persist), persist
}

func saveTriggerWorkflow(t *testing.T, persist persistence.Persistence, id string, triggerConfig map[string]any) *models.Workflow {
	t.Helper()

	wf := &models.Workflow{
		ID:             id,
		OrganizationID: "org-1",
		Name:           "flow " + id,
		Status:         models.WorkflowStatusActive,
		Nodes: []*models.WorkflowNode{
			{ID: "t1", Type: models.NodeTypeTrigger, Config: triggerConfig},
			{ID: "m1", Type: models.NodeTypeSendMessage, Config: map[string]any{"message": "hi"}},
		},
		Edges: []*models.Edge{{ID: "e1", Source: "t1", Target: "m1"}},
	}

	require.NoError(t, persist.Workflows().Save(context.Background(), wf))

	return wf
}

func textMessage(text string) *events.InboundMessage {
	return &events.InboundMessage{
		ID:             "msg-1",
		OrganizationID: "org-1",
		ConversationID: "conv-1",
		LeadID:         "lead-1",
		Kind:           events.InboundKindText,
		Text:           text,
		ReceivedAt:     time.Date(2025, time.June, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestMatch_KeywordContains(t *testing.T) {
	matcher, persist := newMatcherFixture(t)
	saveTriggerWorkflow(t, persist, "wf-1", map[string]any{
		"trigger_type": "keyword",
		"keyword":      "pricing",
	})

	matched, err := matcher.Match(context.Background(), textMessage("tell me about PRICING please"))
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "wf-1", matched[0].ID)

	matched, err = matcher.Match(context.Background(), textMessage("hello there"))
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestMatch_KeywordExact(t *testing.T) {
	matcher, persist := newMatcherFixture(t)
	saveTriggerWorkflow(t, persist, "wf-1", map[string]any{
		"trigger_type": "keyword",
		"keyword":      "start",
		"match_mode":   "exact",
	})

	matched, err := matcher.Match(context.Background(), textMessage("  Start "))
	require.NoError(t, err)
	assert.Len(t, matched, 1)

	matched, err = matcher.Match(context.Background(), textMessage("start now"))
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestMatch_FirstContact(t *testing.T) {
	matcher, persist := newMatcherFixture(t)
	saveTriggerWorkflow(t, persist, "wf-1", map[string]any{"trigger_type": "first_contact"})

	msg := textMessage("hello")
	msg.PriorConversations = 0

	matched, err := matcher.Match(context.Background(), msg)
	require.NoError(t, err)
	assert.Len(t, matched, 1)

	msg.PriorConversations = 3

	matched, err = matcher.Match(context.Background(), msg)
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestMatch_BusinessAndOutsideHours(t *testing.T) {
	matcher, persist := newMatcherFixture(t)
	saveTriggerWorkflow(t, persist, "wf-in", map[string]any{"trigger_type": "business_hours"})
	saveTriggerWorkflow(t, persist, "wf-out", map[string]any{"trigger_type": "outside_hours"})

	// Wednesday 10:00 UTC, inside the default window.
	morning := textMessage("hi")

	matched, err := matcher.Match(context.Background(), morning)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "wf-in", matched[0].ID)

	// Sunday 22:00 UTC.
	night := textMessage("hi")
	night.ReceivedAt = time.Date(2025, time.June, 8, 22, 0, 0, 0, time.UTC)

	matched, err = matcher.Match(context.Background(), night)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "wf-out", matched[0].ID)
}

func TestMatch_MediaReceived(t *testing.T) {
	matcher, persist := newMatcherFixture(t)
	saveTriggerWorkflow(t, persist, "wf-1", map[string]any{
		"trigger_type": "media_received",
		"media_types":  []any{"image"},
	})

	image := textMessage("")
	image.Kind = events.InboundKindImage

	matched, err := matcher.Match(context.Background(), image)
	require.NoError(t, err)
	assert.Len(t, matched, 1)

	audio := textMessage("")
	audio.Kind = events.InboundKindAudio

	matched, err = matcher.Match(context.Background(), audio)
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestMatch_WebhookOnlyMatchesWebhookTrigger(t *testing.T) {
	matcher, persist := newMatcherFixture(t)
	saveTriggerWorkflow(t, persist, "wf-hook", map[string]any{"trigger_type": "webhook"})
	saveTriggerWorkflow(t, persist, "wf-msg", map[string]any{"trigger_type": "message_received"})

	hook := textMessage("")
	hook.Kind = events.InboundKindWebhook

	matched, err := matcher.Match(context.Background(), hook)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "wf-hook", matched[0].ID)
}

func TestMatch_CooldownVetoesRecentLead(t *testing.T) {
	matcher, persist := newMatcherFixture(t)
	wf := saveTriggerWorkflow(t, persist, "wf-1", map[string]any{
		"trigger_type":     "keyword",
		"keyword":          "hi",
		"cooldown_minutes": float64(10),
	})

	msg := textMessage("hi")

	// Last run 5 minutes before the event: vetoed.
	require.NoError(t, persist.Executions().Save(context.Background(), &models.Execution{
		ID:             "exec-1",
		WorkflowID:     wf.ID,
		OrganizationID: "org-1",
		LeadID:         "lead-1",
		Status:         models.ExecutionStatusCompleted,
		StartedAt:      msg.ReceivedAt.Add(-5 * time.Minute),
	}))

	matched, err := matcher.Match(context.Background(), msg)
	require.NoError(t, err)
	assert.Empty(t, matched)

	// Last run 11 minutes before the event: allowed again.
	require.NoError(t, persist.Executions().Save(context.Background(), &models.Execution{
		ID:             "exec-1",
		WorkflowID:     wf.ID,
		OrganizationID: "org-1",
		LeadID:         "lead-1",
		Status:         models.ExecutionStatusCompleted,
		StartedAt:      msg.ReceivedAt.Add(-11 * time.Minute),
	}))

	matched, err = matcher.Match(context.Background(), msg)
	require.NoError(t, err)
	assert.Len(t, matched, 1)
}

func TestMatch_SkipsWorkflowWithBadTriggerConfig(t *testing.T) {
	matcher, persist := newMatcherFixture(t)
	saveTriggerWorkflow(t, persist, "wf-bad", map[string]any{"trigger_type": "lunar_phase"})
	saveTriggerWorkflow(t, persist, "wf-ok", map[string]any{"trigger_type": "message_received"})

	matched, err := matcher.Match(context.Background(), textMessage("hello"))
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "wf-ok", matched[0].ID)
}
