package file

import (
	"context"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/persistence"
)

const kindExecutions = "executions"

// ExecutionRepository stores workflow runs as JSON documents.
type ExecutionRepository struct {
	store *Persistence
}

func (r *ExecutionRepository) Save(_ context.Context, execution *models.Execution) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.writeJSON(kindExecutions, execution.ID, execution)
}

func (r *ExecutionRepository) ByID(_ context.Context, id string) (*models.Execution, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var execution models.Execution

	found, err := r.store.readJSON(kindExecutions, id, &execution)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.ErrExecutionNotFound
	}

	return &execution, nil
}

func (r *ExecutionRepository) LatestForLead(_ context.Context, workflowID, leadID string) (*models.Execution, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var latest *models.Execution

	err := readAll(r.store, kindExecutions, func(e *models.Execution) {
		if e.WorkflowID != workflowID || e.LeadID != leadID {
			return
		}

		if latest == nil || e.StartedAt.After(latest.StartedAt) {
			latest = e
		}
	})
	if err != nil {
		return nil, err
	}

	if latest == nil {
		return nil, persistence.ErrExecutionNotFound
	}

	return latest, nil
}
