package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/persistence"
)

// WorkflowRepository stores workflows under flow:workflow:<id> with a
// per-organization index set.
type WorkflowRepository struct {
	client *redis.Client
}

func workflowKey(id string) string {
	return "flow:workflow:" + id
}

func organizationIndexKey(organizationID string) string {
	return "flow:org:" + organizationID + ":workflows"
}

func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	if err := setJSON(ctx, r.client, workflowKey(workflow.ID), workflow); err != nil {
		return err
	}

	if err := r.client.SAdd(ctx, organizationIndexKey(workflow.OrganizationID), workflow.ID).Err(); err != nil {
		return fmt.Errorf("failed to index workflow %s: %w", workflow.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) ByID(ctx context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow

	found, err := getJSON(ctx, r.client, workflowKey(id), &workflow)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.ErrWorkflowNotFound
	}

	return &workflow, nil
}

func (r *WorkflowRepository) ActiveByOrganization(ctx context.Context, organizationID string) ([]*models.Workflow, error) {
	ids, err := r.client.SMembers(ctx, organizationIndexKey(organizationID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows for organization %s: %w", organizationID, err)
	}

	var active []*models.Workflow

	for _, id := range ids {
		workflow, err := r.ByID(ctx, id)
		if errors.Is(err, persistence.ErrWorkflowNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		if workflow.Status == models.WorkflowStatusActive {
			active = append(active, workflow)
		}
	}

	return active, nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	workflow, err := r.ByID(ctx, id)
	if errors.Is(err, persistence.ErrWorkflowNotFound) {
		return nil
	}

	if err != nil {
		return err
	}

	if err := r.client.SRem(ctx, organizationIndexKey(workflow.OrganizationID), id).Err(); err != nil {
		return fmt.Errorf("failed to unindex workflow %s: %w", id, err)
	}

	return r.client.Del(ctx, workflowKey(id)).Err()
}
