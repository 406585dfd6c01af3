package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/convy/flow/pkg/engine"
	"github.com/convy/flow/pkg/events"
	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/nodes/waitinput"
	"github.com/convy/flow/pkg/persistence"
)

// Runner is the per-event entry point: it resumes suspended executions an
// inbound event satisfies, starts newly triggered workflows otherwise, and
// sweeps wait timeouts on a schedule.
type Runner struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	engine      *engine.Engine
	matcher     *Matcher
}

func NewRunner(logger *slog.Logger, persist persistence.Persistence, eng *engine.Engine, matcher *Matcher) *Runner {
	return &Runner{
		logger:      logger.With("module", "runner"),
		persistence: persist,
		engine:      eng,
		matcher:     matcher,
	}
}

// HandleInbound processes one conversation event. Suspended wait-points take
// precedence over triggers: an event consumed by a resume never also starts
// workflows. A validation failure leaves the wait-point untouched and is
// returned to the caller; it is not an execution failure.
func (r *Runner) HandleInbound(ctx context.Context, msg *events.InboundMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	resumed, err := r.resumeWaiting(ctx, msg)
	if err != nil {
		return err
	}

	if resumed > 0 {
		return nil
	}

	return r.startTriggered(ctx, msg)
}

// resumeWaiting matches the event against the conversation's waiting records
// and resumes every satisfied one. Type-incompatible records are left
// waiting.
func (r *Runner) resumeWaiting(ctx context.Context, msg *events.InboundMessage) (int, error) {
	waiting, err := r.persistence.PendingInputs().WaitingByConversation(ctx, msg.OrganizationID, msg.ConversationID)
	if err != nil {
		return 0, fmt.Errorf("list waiting inputs: %w", err)
	}

	resumed := 0

	for _, pending := range waiting {
		if !models.InputTypeAccepts(pending.InputType, msg.Kind) {
			continue
		}

		response := msg.ResponsePayload()

		if err := waitinput.ValidateResponse(pending.NodeConfig, response); err != nil {
			return resumed, err
		}

		if err := r.resume(ctx, pending, models.PendingInputCompleted, response, &models.NodeInput{Response: response}); err != nil {
			r.logger.Error("Failed to resume execution",
				"execution_id", pending.ExecutionID, "node_id", pending.NodeID, "error", err)

			continue
		}

		resumed++
	}

	return resumed, nil
}

func (r *Runner) startTriggered(ctx context.Context, msg *events.InboundMessage) error {
	matched, err := r.matcher.Match(ctx, msg)
	if err != nil {
		return fmt.Errorf("match triggers: %w", err)
	}

	for _, workflow := range matched {
		trigger, err := workflow.TriggerNode()
		if err != nil {
			continue
		}

		triggerType, _ := trigger.Config["trigger_type"].(string)

		_, err = r.engine.Start(ctx, workflow, engine.StartOptions{
			ConversationID: msg.ConversationID,
			LeadID:         msg.LeadID,
			TriggerType:    triggerType,
			Seed:           msg.ContextSeed(),
		})
		if err != nil {
			r.logger.Error("Failed to start workflow",
				"workflow_id", workflow.ID, "error", err)
		}
	}

	return nil
}

// SweepTimeouts finds waiting records past their deadline and applies each
// node's configured timeout action. Per-record failures are logged and do not
// stop the sweep.
func (r *Runner) SweepTimeouts(ctx context.Context, now time.Time) error {
	expired, err := r.persistence.PendingInputs().Expired(ctx, now)
	if err != nil {
		return fmt.Errorf("list expired inputs: %w", err)
	}

	for _, pending := range expired {
		if err := r.applyTimeout(ctx, pending); err != nil {
			r.logger.Error("Failed to apply wait timeout",
				"execution_id", pending.ExecutionID, "node_id", pending.NodeID, "error", err)
		}
	}

	return nil
}

func (r *Runner) applyTimeout(ctx context.Context, pending *models.PendingInput) error {
	switch pending.TimeoutAction {
	case models.TimeoutActionStop:
		return r.stopTimedOut(ctx, pending)
	case models.TimeoutActionBranch:
		return r.resume(ctx, pending, models.PendingInputTimedOut, nil,
			&models.NodeInput{TimedOut: true, NextBranchID: pending.TimeoutBranch})
	default:
		return r.resume(ctx, pending, models.PendingInputTimedOut, nil,
			&models.NodeInput{TimedOut: true})
	}
}

// stopTimedOut fails the execution without re-entering the graph.
func (r *Runner) stopTimedOut(ctx context.Context, pending *models.PendingInput) error {
	if err := r.persistence.PendingInputs().Complete(ctx, pending.ExecutionID, pending.NodeID, models.PendingInputTimedOut, nil); err != nil {
		return fmt.Errorf("complete pending input: %w", err)
	}

	execution, err := r.persistence.Executions().ByID(ctx, pending.ExecutionID)
	if err != nil {
		return fmt.Errorf("load execution: %w", err)
	}

	now := time.Now().UTC()
	execution.Status = models.ExecutionStatusFailed
	execution.ErrorMessage = fmt.Sprintf("node %s: wait timed out", pending.NodeID)
	execution.CompletedAt = &now

	return r.persistence.Executions().Save(ctx, execution)
}

// resume completes the pending record and re-enters the engine at its node.
func (r *Runner) resume(ctx context.Context, pending *models.PendingInput, status models.PendingInputStatus, response map[string]any, input *models.NodeInput) error {
	if err := r.persistence.PendingInputs().Complete(ctx, pending.ExecutionID, pending.NodeID, status, response); err != nil {
		return fmt.Errorf("complete pending input: %w", err)
	}

	execution, err := r.persistence.Executions().ByID(ctx, pending.ExecutionID)
	if err != nil {
		return fmt.Errorf("load execution: %w", err)
	}

	workflow, err := r.persistence.Workflows().ByID(ctx, execution.WorkflowID)
	if err != nil {
		return fmt.Errorf("load workflow: %w", err)
	}

	_, err = r.engine.Resume(ctx, workflow, execution, pending.NodeID, input)

	return err
}
