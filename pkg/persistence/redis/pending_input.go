package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/persistence"
)

const deadlinesKey = "flow:pending:deadlines"

// PendingInputRepository stores wait-points under flow:pending:<exec>:<node>,
// which makes the (execution, node) pair the natural upsert key. Waiting
// records are indexed per conversation, deadlines in one global sorted set
// for the timeout sweep.
type PendingInputRepository struct {
	client *redis.Client
}

func pendingKey(executionID, nodeID string) string {
	return "flow:pending:" + executionID + ":" + nodeID
}

func waitingIndexKey(organizationID, conversationID string) string {
	return "flow:pending:waiting:" + organizationID + ":" + conversationID
}

func pendingMember(executionID, nodeID string) string {
	return executionID + "|" + nodeID
}

func (r *PendingInputRepository) Upsert(ctx context.Context, input *models.PendingInput) error {
	if err := setJSON(ctx, r.client, pendingKey(input.ExecutionID, input.NodeID), input); err != nil {
		return err
	}

	member := pendingMember(input.ExecutionID, input.NodeID)

	index := waitingIndexKey(input.OrganizationID, input.ConversationID)
	if err := r.client.SAdd(ctx, index, member).Err(); err != nil {
		return fmt.Errorf("failed to index pending input: %w", err)
	}

	if input.TimeoutAt != nil {
		deadline := redis.Z{Score: float64(input.TimeoutAt.UnixMilli()), Member: member}
		if err := r.client.ZAdd(ctx, deadlinesKey, deadline).Err(); err != nil {
			return fmt.Errorf("failed to index pending input deadline: %w", err)
		}
	}

	return nil
}

func (r *PendingInputRepository) ByExecutionAndNode(ctx context.Context, executionID, nodeID string) (*models.PendingInput, error) {
	var input models.PendingInput

	found, err := getJSON(ctx, r.client, pendingKey(executionID, nodeID), &input)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.ErrPendingInputNotFound
	}

	return &input, nil
}

func (r *PendingInputRepository) WaitingByConversation(ctx context.Context, organizationID, conversationID string) ([]*models.PendingInput, error) {
	members, err := r.client.SMembers(ctx, waitingIndexKey(organizationID, conversationID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list waiting inputs: %w", err)
	}

	var waiting []*models.PendingInput

	for _, member := range members {
		executionID, nodeID, ok := splitPendingMember(member)
		if !ok {
			continue
		}

		input, err := r.ByExecutionAndNode(ctx, executionID, nodeID)
		if errors.Is(err, persistence.ErrPendingInputNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		if input.Status == models.PendingInputWaiting {
			waiting = append(waiting, input)
		}
	}

	return waiting, nil
}

func (r *PendingInputRepository) Complete(ctx context.Context, executionID, nodeID string, status models.PendingInputStatus, response map[string]any) error {
	input, err := r.ByExecutionAndNode(ctx, executionID, nodeID)
	if err != nil {
		return err
	}

	if input.Status != models.PendingInputWaiting {
		return persistence.ErrPendingInputNotWaiting
	}

	now := time.Now().UTC()
	input.Status = status
	input.Response = response
	input.CompletedAt = &now

	if err := setJSON(ctx, r.client, pendingKey(executionID, nodeID), input); err != nil {
		return err
	}

	member := pendingMember(executionID, nodeID)
	index := waitingIndexKey(input.OrganizationID, input.ConversationID)

	if err := r.client.SRem(ctx, index, member).Err(); err != nil {
		return fmt.Errorf("failed to unindex pending input: %w", err)
	}

	return r.client.ZRem(ctx, deadlinesKey, member).Err()
}

func (r *PendingInputRepository) Expired(ctx context.Context, now time.Time) ([]*models.PendingInput, error) {
	members, err := r.client.ZRangeByScore(ctx, deadlinesKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query deadline index: %w", err)
	}

	var expired []*models.PendingInput

	for _, member := range members {
		executionID, nodeID, ok := splitPendingMember(member)
		if !ok {
			continue
		}

		input, err := r.ByExecutionAndNode(ctx, executionID, nodeID)
		if errors.Is(err, persistence.ErrPendingInputNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		if input.Status == models.PendingInputWaiting {
			expired = append(expired, input)
		}
	}

	return expired, nil
}

func splitPendingMember(member string) (string, string, bool) {
	parts := strings.SplitN(member, "|", 2)
	if len(parts) != 2 {
		return "", "", false
	}

	return parts[0], parts[1], true
}
