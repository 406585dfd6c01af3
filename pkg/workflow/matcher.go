// Package workflow turns inbound conversation events into engine work: the
// matcher decides which workflows an event starts, and the runner resumes
// suspended executions and applies wait timeouts.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/convy/flow/pkg/events"
	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/persistence"
)

// Matcher evaluates an organization's active workflows against an inbound
// event. A lookup or config error on one workflow skips that workflow only.
type Matcher struct {
	logger      *slog.Logger
	persistence persistence.Persistence
}

func NewMatcher(logger *slog.Logger, persist persistence.Persistence) *Matcher {
	return &Matcher{
		logger:      logger.With("module", "trigger_matcher"),
		persistence: persist,
	}
}

// Match returns the workflows the event should start, in storage order. The
// cooldown veto is evaluated last, after the trigger itself matched.
func (m *Matcher) Match(ctx context.Context, msg *events.InboundMessage) ([]*models.Workflow, error) {
	workflows, err := m.persistence.Workflows().ActiveByOrganization(ctx, msg.OrganizationID)
	if err != nil {
		return nil, err
	}

	var matched []*models.Workflow

	for _, workflow := range workflows {
		trigger, err := workflow.TriggerNode()
		if err != nil {
			m.logger.Warn("Skipping workflow without usable trigger",
				"workflow_id", workflow.ID, "error", err)

			continue
		}

		config, err := models.ParseTriggerConfig(trigger.Config)
		if err != nil {
			m.logger.Warn("Skipping workflow with invalid trigger config",
				"workflow_id", workflow.ID, "error", err)

			continue
		}

		if !triggerMatches(config, msg) {
			continue
		}

		vetoed, err := m.cooldownVeto(ctx, workflow, config, msg)
		if err != nil {
			m.logger.Warn("Skipping workflow after cooldown lookup failure",
				"workflow_id", workflow.ID, "error", err)

			continue
		}

		if vetoed {
			m.logger.Debug("Cooldown vetoed trigger",
				"workflow_id", workflow.ID, "lead_id", msg.LeadID)

			continue
		}

		matched = append(matched, workflow)
	}

	return matched, nil
}

func triggerMatches(config *models.TriggerConfig, msg *events.InboundMessage) bool {
	switch config.Type {
	case models.TriggerKeyword:
		if msg.Kind != events.InboundKindText {
			return false
		}

		text := strings.ToLower(strings.TrimSpace(msg.Text))
		keyword := strings.ToLower(strings.TrimSpace(config.Keyword))

		if keyword == "" {
			return false
		}

		if config.MatchMode == models.MatchModeExact {
			return text == keyword
		}

		return strings.Contains(text, keyword)
	case models.TriggerMessageReceived:
		return msg.Kind != events.InboundKindWebhook
	case models.TriggerFirstContact:
		return msg.Kind != events.InboundKindWebhook && msg.PriorConversations == 0
	case models.TriggerBusinessHours:
		return msg.Kind != events.InboundKindWebhook && config.Hours.Contains(msg.ReceivedAt)
	case models.TriggerOutsideHours:
		return msg.Kind != events.InboundKindWebhook && !config.Hours.Contains(msg.ReceivedAt)
	case models.TriggerMediaReceived:
		if !events.MediaKinds[msg.Kind] {
			return false
		}

		if len(config.MediaTypes) == 0 {
			return true
		}

		for _, kind := range config.MediaTypes {
			if kind == msg.Kind {
				return true
			}
		}

		return false
	case models.TriggerWebhook:
		return msg.Kind == events.InboundKindWebhook
	default:
		return false
	}
}

// cooldownVeto reports whether a recent enough execution of the workflow for
// this lead blocks a new one.
func (m *Matcher) cooldownVeto(ctx context.Context, workflow *models.Workflow, config *models.TriggerConfig, msg *events.InboundMessage) (bool, error) {
	if config.CooldownMinutes <= 0 || msg.LeadID == "" {
		return false, nil
	}

	latest, err := m.persistence.Executions().LatestForLead(ctx, workflow.ID, msg.LeadID)
	if err != nil {
		if errors.Is(err, persistence.ErrExecutionNotFound) {
			return false, nil
		}

		return false, err
	}

	elapsed := msg.ReceivedAt.Sub(latest.StartedAt)

	return elapsed.Minutes() < float64(config.CooldownMinutes), nil
}
