// Package engine walks workflow graphs: it executes nodes through the
// registry, selects outgoing edges per node type, forks cloned contexts on
// fan-out, and persists wait state when a node suspends.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/convy/flow/pkg/eventbus"
	"github.com/convy/flow/pkg/events"
	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/persistence"
	"github.com/convy/flow/pkg/registry"
)

// maxNodeExecutions bounds a single run so a cyclic graph cannot spin
// forever.
const maxNodeExecutions = 1000

type Engine struct {
	logger      *slog.Logger
	registry    *registry.Registry
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
}

func NewEngine(logger *slog.Logger, reg *registry.Registry, persist persistence.Persistence, publisher eventbus.EventPublisher) *Engine {
	return &Engine{
		logger:      logger.With("module", "engine"),
		registry:    reg,
		persistence: persist,
		publisher:   publisher,
	}
}

// StartOptions carries the conversation identity and seed values of a new
// run.
type StartOptions struct {
	ConversationID string
	LeadID         string
	TriggerType    string
	Seed           map[string]any
}

// branchStatus is the outcome of one continuation. Failure outranks waiting,
// which outranks completion, when branches disagree.
type branchStatus int

const (
	branchCompleted branchStatus = iota
	branchWaiting
	branchFailed
)

func worse(a, b branchStatus) branchStatus {
	if b > a {
		return b
	}

	return a
}

type run struct {
	workflow  *models.Workflow
	execution *models.Execution
	steps     int
	errors    []string
}

// Start validates the workflow and runs it from its trigger node. The
// returned execution reflects the final (or suspended) state and has been
// persisted.
func (e *Engine) Start(ctx context.Context, workflow *models.Workflow, opts StartOptions) (*models.Execution, error) {
	if err := workflow.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workflow %s: %w", workflow.ID, err)
	}

	triggerNode, err := workflow.TriggerNode()
	if err != nil {
		return nil, err
	}

	executionID := uuid.NewString()
	ec := models.NewExecutionContext(executionID, workflow.ID, workflow.OrganizationID, opts.Seed)

	if opts.ConversationID != "" {
		ec.Set(models.ContextKeyConversationID, opts.ConversationID)
	}

	execution := &models.Execution{
		ID:             executionID,
		WorkflowID:     workflow.ID,
		OrganizationID: workflow.OrganizationID,
		ConversationID: opts.ConversationID,
		LeadID:         opts.LeadID,
		Status:         models.ExecutionStatusRunning,
		StartedAt:      time.Now().UTC(),
	}

	if err := e.persistence.Executions().Save(ctx, execution); err != nil {
		return nil, fmt.Errorf("persist execution: %w", err)
	}

	e.publish(ctx, execution.ID, events.ExecutionStarted{
		BaseEvent:   e.baseEvent(events.ExecutionStartedEvent, workflow.ID),
		ExecutionID: execution.ID,
		TriggerType: opts.TriggerType,
	})

	logger := e.logger.With("workflow_id", workflow.ID, "execution_id", execution.ID)
	logger.Info("Starting execution", "trigger_type", opts.TriggerType)

	rs := &run{workflow: workflow, execution: execution}
	status := e.runNode(ctx, rs, triggerNode.ID, ec, &models.NodeInput{})

	return execution, e.finalize(ctx, rs, ec, status)
}

// Resume re-enters a suspended execution at the recorded node with the given
// input. The node sees Resumed=true and must not repeat its side effects.
func (e *Engine) Resume(ctx context.Context, workflow *models.Workflow, execution *models.Execution, nodeID string, input *models.NodeInput) (*models.Execution, error) {
	if execution.Terminal() {
		return nil, fmt.Errorf("execution %s already %s", execution.ID, execution.Status)
	}

	if _, ok := workflow.NodeByID(nodeID); !ok {
		return nil, fmt.Errorf("resume node %s not in workflow %s", nodeID, workflow.ID)
	}

	ec := &models.ExecutionContext{
		ID:             execution.ID,
		WorkflowID:     workflow.ID,
		OrganizationID: execution.OrganizationID,
		Values:         execution.Context,
	}
	if ec.Values == nil {
		ec.Values = map[string]any{}
	}

	execution.Status = models.ExecutionStatusRunning
	if err := e.persistence.Executions().Save(ctx, execution); err != nil {
		return nil, fmt.Errorf("persist execution: %w", err)
	}

	e.publish(ctx, execution.ID, events.ExecutionResumed{
		BaseEvent:   e.baseEvent(events.ExecutionResumedEvent, workflow.ID),
		ExecutionID: execution.ID,
		NodeID:      nodeID,
	})

	e.logger.Info("Resuming execution",
		"workflow_id", workflow.ID, "execution_id", execution.ID, "node_id", nodeID)

	input.Resumed = true

	rs := &run{workflow: workflow, execution: execution}
	status := e.runNode(ctx, rs, nodeID, ec, input)

	return execution, e.finalize(ctx, rs, ec, status)
}

// runNode executes one node and recursively follows its selected edges. A
// failure aborts only this continuation; sibling branches spawned earlier
// keep running.
func (e *Engine) runNode(ctx context.Context, rs *run, nodeID string, ec *models.ExecutionContext, input *models.NodeInput) branchStatus {
	rs.steps++
	if rs.steps > maxNodeExecutions {
		rs.fail(nodeID, "workflow exceeded maximum node executions")

		return branchFailed
	}

	wfNode, ok := rs.workflow.NodeByID(nodeID)
	if !ok {
		rs.fail(nodeID, "node not found in workflow")

		return branchFailed
	}

	edges := rs.workflow.OutgoingEdges(nodeID)
	input.OutgoingHandles = sourceHandles(edges)

	node, err := e.registry.Create(ctx, wfNode.Type, wfNode.ID, wfNode.Config)
	if err != nil {
		rs.fail(nodeID, err.Error())

		return branchFailed
	}

	result, err := node.Execute(ctx, ec, input)
	if err != nil {
		rs.fail(nodeID, err.Error())

		return branchFailed
	}

	if result.Status == models.NodeStatusError {
		rs.fail(nodeID, result.Error)

		return branchFailed
	}

	if result.Output != nil {
		ec.Set("nodes."+nodeID, result.Output)
	}

	if result.Suspend != nil {
		if err := e.suspend(ctx, rs, wfNode, result.Suspend); err != nil {
			rs.fail(nodeID, err.Error())

			return branchFailed
		}

		return branchWaiting
	}

	return e.follow(ctx, rs, selectEdges(edges, result), ec)
}

// follow walks the selected continuations. A single edge continues on the
// same context; fan-out gives each branch its own clone and merges writes
// back in definition order, last writer wins.
func (e *Engine) follow(ctx context.Context, rs *run, edges []*models.Edge, ec *models.ExecutionContext) branchStatus {
	switch len(edges) {
	case 0:
		return branchCompleted
	case 1:
		return e.runNode(ctx, rs, edges[0].Target, ec, &models.NodeInput{})
	}

	status := branchCompleted

	for _, edge := range edges {
		branch := ec.Clone()
		status = worse(status, e.runNode(ctx, rs, edge.Target, branch, &models.NodeInput{}))
		ec.Merge(branch.Values)
	}

	return status
}

// selectEdges applies the per-type routing rules. Condition outcomes route on
// edge labels; chosen handles route on source handles, falling back to the
// edge carrying the same id, then to unhandled edges, and for a plain
// continue to every edge; everything else broadcasts.
func selectEdges(edges []*models.Edge, result *models.NodeResult) []*models.Edge {
	if result.Condition != nil {
		label := "False"
		if *result.Condition {
			label = "True"
		}

		var matched []*models.Edge

		for _, edge := range edges {
			if strings.EqualFold(edge.Label, label) {
				matched = append(matched, edge)
			}
		}

		return matched
	}

	if result.SelectedHandle == "" {
		return edges
	}

	var matched, unhandled []*models.Edge

	for _, edge := range edges {
		switch {
		case edge.SourceHandle == result.SelectedHandle || edge.ID == result.SelectedHandle:
			matched = append(matched, edge)
		case edge.SourceHandle == "":
			unhandled = append(unhandled, edge)
		}
	}

	if len(matched) > 0 {
		return matched
	}

	if len(unhandled) > 0 {
		return unhandled
	}

	// A plain continue passes through every edge when the graph only has
	// handled ones (a buttons node whose reply matched no button still moves
	// on). Specific handles that match nothing stay dead ends.
	if result.SelectedHandle == models.HandleContinue {
		return edges
	}

	return nil
}

// suspend records the wait-point: the pending input row is the durable resume
// address, and the waiting event announces it. The execution row itself is
// written by finalize with the merged context snapshot.
func (e *Engine) suspend(ctx context.Context, rs *run, node *models.WorkflowNode, req *models.SuspendRequest) error {
	now := time.Now().UTC()

	pending := &models.PendingInput{
		ID:             uuid.NewString(),
		ExecutionID:    rs.execution.ID,
		NodeID:         node.ID,
		OrganizationID: rs.execution.OrganizationID,
		ConversationID: rs.execution.ConversationID,
		Status:         models.PendingInputWaiting,
		CreatedAt:      now,
	}

	switch {
	case req.Input != nil:
		pending.InputType = req.Input.InputType
		pending.NodeConfig = req.Input.NodeConfig
		pending.TimeoutAction = req.Input.TimeoutAction
		pending.TimeoutBranch = req.Input.TimeoutBranch

		if req.Input.Timeout > 0 {
			at := now.Add(req.Input.Timeout)
			pending.TimeoutAt = &at
		}
	case req.WakeAt != nil:
		pending.InputType = models.InputTypeTimer
		pending.TimeoutAction = models.TimeoutActionContinue
		pending.TimeoutAt = req.WakeAt
	default:
		return fmt.Errorf("node %s requested suspension without wake condition", node.ID)
	}

	if err := e.persistence.PendingInputs().Upsert(ctx, pending); err != nil {
		return fmt.Errorf("persist pending input: %w", err)
	}

	e.publish(ctx, rs.execution.ID, events.ExecutionWaiting{
		BaseEvent:   e.baseEvent(events.ExecutionWaitingEvent, rs.workflow.ID),
		ExecutionID: rs.execution.ID,
		NodeID:      node.ID,
		WakeAt:      pending.TimeoutAt,
	})

	e.logger.Info("Execution suspended",
		"execution_id", rs.execution.ID, "node_id", node.ID, "input_type", pending.InputType)

	return nil
}

// finalize persists the merged context snapshot and the run's resulting
// status, then publishes the matching lifecycle event.
func (e *Engine) finalize(ctx context.Context, rs *run, ec *models.ExecutionContext, status branchStatus) error {
	execution := rs.execution
	execution.Context = ec.Values

	now := time.Now().UTC()
	duration := now.Sub(execution.StartedAt)

	switch status {
	case branchFailed:
		execution.Status = models.ExecutionStatusFailed
		execution.ErrorMessage = strings.Join(rs.errors, "; ")
		execution.CompletedAt = &now
	case branchWaiting:
		execution.Status = models.ExecutionStatusWaiting
	default:
		execution.Status = models.ExecutionStatusCompleted
		execution.CompletedAt = &now
	}

	if err := e.persistence.Executions().Save(ctx, execution); err != nil {
		return fmt.Errorf("persist execution: %w", err)
	}

	switch execution.Status {
	case models.ExecutionStatusCompleted:
		e.publish(ctx, execution.ID, events.ExecutionCompleted{
			BaseEvent:   e.baseEvent(events.ExecutionCompletedEvent, execution.WorkflowID),
			ExecutionID: execution.ID,
			Duration:    duration,
		})
		e.logger.Info("Execution completed", "execution_id", execution.ID, "duration", duration)
	case models.ExecutionStatusFailed:
		e.publish(ctx, execution.ID, events.ExecutionFailed{
			BaseEvent:   e.baseEvent(events.ExecutionFailedEvent, execution.WorkflowID),
			ExecutionID: execution.ID,
			Error:       execution.ErrorMessage,
			Duration:    duration,
		})
		e.logger.Warn("Execution failed", "execution_id", execution.ID, "error", execution.ErrorMessage)
	}

	return nil
}

func (rs *run) fail(nodeID, message string) {
	rs.errors = append(rs.errors, fmt.Sprintf("node %s: %s", nodeID, message))
}

func (e *Engine) baseEvent(eventType events.EventType, workflowID string) events.BaseEvent {
	return events.BaseEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

func (e *Engine) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, key, event); err != nil {
		e.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func sourceHandles(edges []*models.Edge) []string {
	var handles []string

	for _, edge := range edges {
		if edge.SourceHandle != "" {
			handles = append(handles, edge.SourceHandle)
		}
	}

	return handles
}
