// Package persistence provides the storage abstraction for workflows,
// executions and pending inputs.
package persistence

import (
	"context"
	"time"

	"github.com/convy/flow/pkg/models"
)

// Persistence bundles the repositories a driver provides.
type Persistence interface {
	Workflows() WorkflowRepository
	Executions() ExecutionRepository
	PendingInputs() PendingInputRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflow definitions.
type WorkflowRepository interface {
	Save(ctx context.Context, workflow *models.Workflow) error
	ByID(ctx context.Context, id string) (*models.Workflow, error)

	// ActiveByOrganization returns the active workflows the trigger matcher
	// evaluates for an organization's inbound events.
	ActiveByOrganization(ctx context.Context, organizationID string) ([]*models.Workflow, error)

	Delete(ctx context.Context, id string) error
}

// ExecutionRepository stores workflow runs.
type ExecutionRepository interface {
	Save(ctx context.Context, execution *models.Execution) error
	ByID(ctx context.Context, id string) (*models.Execution, error)

	// LatestForLead returns the most recently started execution of a workflow
	// for a lead. The cooldown veto is decided on its StartedAt.
	LatestForLead(ctx context.Context, workflowID, leadID string) (*models.Execution, error)
}

// PendingInputRepository stores suspended wait-points. The (execution_id,
// node_id) pair is the upsert key; drivers must not create a second waiting
// record for the same pair.
type PendingInputRepository interface {
	Upsert(ctx context.Context, input *models.PendingInput) error
	ByExecutionAndNode(ctx context.Context, executionID, nodeID string) (*models.PendingInput, error)

	// WaitingByConversation returns waiting records an inbound event on the
	// conversation could satisfy.
	WaitingByConversation(ctx context.Context, organizationID, conversationID string) ([]*models.PendingInput, error)

	// Complete transitions a record out of waiting, storing the response.
	Complete(ctx context.Context, executionID, nodeID string, status models.PendingInputStatus, response map[string]any) error

	// Expired returns waiting records whose deadline passed before now.
	Expired(ctx context.Context, now time.Time) ([]*models.PendingInput, error)
}
