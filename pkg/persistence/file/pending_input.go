package file

import (
	"context"
	"time"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/persistence"
)

const kindPendingInputs = "pending_inputs"

// PendingInputRepository stores suspended wait-points as JSON documents named
// by their (execution, node) pair, which makes the pair naturally unique.
type PendingInputRepository struct {
	store *Persistence
}

func pendingInputName(executionID, nodeID string) string {
	return executionID + "--" + nodeID
}

func (r *PendingInputRepository) Upsert(_ context.Context, input *models.PendingInput) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.writeJSON(kindPendingInputs, pendingInputName(input.ExecutionID, input.NodeID), input)
}

func (r *PendingInputRepository) ByExecutionAndNode(_ context.Context, executionID, nodeID string) (*models.PendingInput, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var input models.PendingInput

	found, err := r.store.readJSON(kindPendingInputs, pendingInputName(executionID, nodeID), &input)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.ErrPendingInputNotFound
	}

	return &input, nil
}

func (r *PendingInputRepository) WaitingByConversation(_ context.Context, organizationID, conversationID string) ([]*models.PendingInput, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var waiting []*models.PendingInput

	err := readAll(r.store, kindPendingInputs, func(p *models.PendingInput) {
		if p.Status != models.PendingInputWaiting {
			return
		}

		if p.OrganizationID == organizationID && p.ConversationID == conversationID {
			waiting = append(waiting, p)
		}
	})
	if err != nil {
		return nil, err
	}

	return waiting, nil
}

func (r *PendingInputRepository) Complete(ctx context.Context, executionID, nodeID string, status models.PendingInputStatus, response map[string]any) error {
	input, err := r.ByExecutionAndNode(ctx, executionID, nodeID)
	if err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if input.Status != models.PendingInputWaiting {
		return persistence.ErrPendingInputNotWaiting
	}

	now := time.Now().UTC()
	input.Status = status
	input.Response = response
	input.CompletedAt = &now

	return r.store.writeJSON(kindPendingInputs, pendingInputName(executionID, nodeID), input)
}

func (r *PendingInputRepository) Expired(_ context.Context, now time.Time) ([]*models.PendingInput, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var expired []*models.PendingInput

	err := readAll(r.store, kindPendingInputs, func(p *models.PendingInput) {
		if p.Expired(now) {
			expired = append(expired, p)
		}
	})
	if err != nil {
		return nil, err
	}

	return expired, nil
}
