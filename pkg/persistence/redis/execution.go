package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/persistence"
)

// ExecutionRepository stores executions under flow:execution:<id>. A sorted
// set per (workflow, lead) pair, scored by start time, answers the cooldown
// lookup without scanning.
type ExecutionRepository struct {
	client *redis.Client
}

func executionKey(id string) string {
	return "flow:execution:" + id
}

func leadIndexKey(workflowID, leadID string) string {
	return "flow:lead:" + workflowID + ":" + leadID
}

func (r *ExecutionRepository) Save(ctx context.Context, execution *models.Execution) error {
	if err := setJSON(ctx, r.client, executionKey(execution.ID), execution); err != nil {
		return err
	}

	if execution.LeadID == "" {
		return nil
	}

	member := redis.Z{
		Score:  float64(execution.StartedAt.UnixMilli()),
		Member: execution.ID,
	}

	if err := r.client.ZAdd(ctx, leadIndexKey(execution.WorkflowID, execution.LeadID), member).Err(); err != nil {
		return fmt.Errorf("failed to index execution %s: %w", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) ByID(ctx context.Context, id string) (*models.Execution, error) {
	var execution models.Execution

	found, err := getJSON(ctx, r.client, executionKey(id), &execution)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.ErrExecutionNotFound
	}

	return &execution, nil
}

func (r *ExecutionRepository) LatestForLead(ctx context.Context, workflowID, leadID string) (*models.Execution, error) {
	ids, err := r.client.ZRevRange(ctx, leadIndexKey(workflowID, leadID), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query lead index: %w", err)
	}

	if len(ids) == 0 {
		return nil, persistence.ErrExecutionNotFound
	}

	return r.ByID(ctx, ids[0])
}
