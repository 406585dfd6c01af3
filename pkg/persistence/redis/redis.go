// Package redis provides a Redis persistence driver. Entities are stored as
// JSON values with secondary indexes kept in sets and sorted sets.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/convy/flow/pkg/persistence"
)

// Persistence implements persistence.Persistence on a Redis instance.
type Persistence struct {
	client        *redis.Client
	workflows     *WorkflowRepository
	executions    *ExecutionRepository
	pendingInputs *PendingInputRepository
}

// NewPersistence connects to Redis using a redis:// URL.
func NewPersistence(url string) (*Persistence, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	p := &Persistence{client: redis.NewClient(opts)}
	p.workflows = &WorkflowRepository{client: p.client}
	p.executions = &ExecutionRepository{client: p.client}
	p.pendingInputs = &PendingInputRepository{client: p.client}

	return p, nil
}

func (p *Persistence) Workflows() persistence.WorkflowRepository {
	return p.workflows
}

func (p *Persistence) Executions() persistence.ExecutionRepository {
	return p.executions
}

func (p *Persistence) PendingInputs() persistence.PendingInputRepository {
	return p.pendingInputs
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}

func setJSON(ctx context.Context, client *redis.Client, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	return nil
}

// getJSON loads a key into the target; it reports false when the key is
// missing.
func getJSON(ctx context.Context, client *redis.Client, key string, into any) (bool, error) {
	data, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, into); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return true, nil
}
