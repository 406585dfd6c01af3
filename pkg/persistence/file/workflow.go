package file

import (
	"context"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/persistence"
)

const kindWorkflows = "workflows"

// WorkflowRepository stores workflow definitions as JSON documents.
type WorkflowRepository struct {
	store *Persistence
}

func (r *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.writeJSON(kindWorkflows, workflow.ID, workflow)
}

func (r *WorkflowRepository) ByID(_ context.Context, id string) (*models.Workflow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var workflow models.Workflow

	found, err := r.store.readJSON(kindWorkflows, id, &workflow)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.ErrWorkflowNotFound
	}

	return &workflow, nil
}

func (r *WorkflowRepository) ActiveByOrganization(_ context.Context, organizationID string) ([]*models.Workflow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var active []*models.Workflow

	err := readAll(r.store, kindWorkflows, func(w *models.Workflow) {
		if w.OrganizationID == organizationID && w.Status == models.WorkflowStatusActive {
			active = append(active, w)
		}
	})
	if err != nil {
		return nil, err
	}

	return active, nil
}

func (r *WorkflowRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.remove(kindWorkflows, id)
}
