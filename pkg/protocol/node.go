// Package protocol defines the contracts between the engine, node
// implementations and external collaborators.
package protocol

import (
	"context"

	"github.com/convy/flow/pkg/models"
)

// Node is one executable unit of a workflow graph. Implementations perform
// their side effects inside Execute and report the outcome as a typed result;
// the engine never performs side effects itself.
type Node interface {
	// ID returns the workflow-node id this instance was created for.
	ID() string

	// Type returns the node type tag.
	Type() string

	// Execute runs the node against the execution context. A fresh entry gets
	// a zero NodeInput; a resumed entry carries the injected response, and the
	// node must take the resumed code path instead of re-issuing its side
	// effect. The returned error is reserved for infrastructure faults; node
	// level failures travel in the result.
	Execute(ctx context.Context, ec *models.ExecutionContext, input *models.NodeInput) (*models.NodeResult, error)
}

// NodeFactory creates node instances and describes the node type.
type NodeFactory interface {
	// Create builds a node instance for the given workflow node id and config.
	Create(ctx context.Context, id string, config map[string]any) (Node, error)

	// ID returns the node type tag this factory serves.
	ID() string

	// Name returns the human-readable name for this node type.
	Name() string

	// Description returns a description of what this node does.
	Description() string

	// Schema returns the JSON schema for this node type's configuration.
	Schema() map[string]any
}
