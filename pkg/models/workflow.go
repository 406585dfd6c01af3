// Package models defines the core domain models for conversation automation workflows.
package models

import (
	"errors"
	"fmt"
	"time"
)

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft    WorkflowStatus = "draft"    // Editable, not executable
	WorkflowStatusActive   WorkflowStatus = "active"   // Executable, evaluated by the trigger matcher
	WorkflowStatusArchived WorkflowStatus = "archived" // Historical, not executable
)

// Built-in node types. Each type has a registered factory in pkg/registry.
const (
	NodeTypeTrigger      = "trigger"
	NodeTypeSendMessage  = "send_message"
	NodeTypeEmail        = "email"
	NodeTypeSMS          = "sms"
	NodeTypeHTTP         = "http"
	NodeTypeCondition    = "condition"
	NodeTypeABTest       = "ab_test"
	NodeTypeDelay        = "delay"
	NodeTypeWaitInput    = "wait_input"
	NodeTypeButtons      = "buttons"
	NodeTypeAIAgent      = "ai_agent"
	NodeTypeCRM          = "crm"
	NodeTypeTag          = "tag"
	NodeTypeStage        = "stage"
	NodeTypeBilling      = "billing"
	NodeTypeNotification = "notification"
)

// WorkflowNode is a node instance in a workflow graph. Config is an opaque
// payload interpreted by the node's factory.
type WorkflowNode struct {
	ID     string         `json:"id"     validate:"required"`
	Type   string         `json:"type"   validate:"required"`
	Name   string         `json:"name,omitempty"`
	Config map[string]any `json:"config"`
}

// Edge is a directed connection between two nodes. SourceHandle identifies the
// output the edge leaves from (button id, ab_test path id, "timeout", ...);
// Label carries condition routing ("True"/"False").
type Edge struct {
	ID           string `json:"id"            validate:"required"`
	Source       string `json:"source"        validate:"required"`
	Target       string `json:"target"        validate:"required"`
	SourceHandle string `json:"source_handle,omitempty"`
	Label        string `json:"label,omitempty"`
}

// Workflow is an immutable definition of an automation graph. It is loaded
// read-only per execution; editing happens elsewhere and produces a new copy.
type Workflow struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id" validate:"required"`
	Name           string          `json:"name"            validate:"required,min=3"`
	Description    string          `json:"description,omitempty"`
	Status         WorkflowStatus  `json:"status"          validate:"required"`
	Nodes          []*WorkflowNode `json:"nodes"`
	Edges          []*Edge         `json:"edges"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

var (
	ErrNoTriggerNode       = errors.New("workflow has no trigger node")
	ErrMultipleTriggerNode = errors.New("workflow has more than one trigger node")
)

// Validate checks structural invariants of the graph: exactly one trigger node
// and no dangling edges. These are construction errors and refuse the workflow
// before any execution starts.
func (w *Workflow) Validate() error {
	byID := make(map[string]*WorkflowNode, len(w.Nodes))
	triggers := 0

	for _, node := range w.Nodes {
		byID[node.ID] = node

		if node.Type == NodeTypeTrigger {
			triggers++
		}
	}

	if triggers == 0 {
		return ErrNoTriggerNode
	}

	if triggers > 1 {
		return ErrMultipleTriggerNode
	}

	for _, edge := range w.Edges {
		if _, ok := byID[edge.Source]; !ok {
			return fmt.Errorf("edge %s references missing source node %s", edge.ID, edge.Source)
		}

		if _, ok := byID[edge.Target]; !ok {
			return fmt.Errorf("edge %s references missing target node %s", edge.ID, edge.Target)
		}
	}

	return nil
}

// TriggerNode returns the unique trigger node of the workflow.
func (w *Workflow) TriggerNode() (*WorkflowNode, error) {
	var found *WorkflowNode

	for _, node := range w.Nodes {
		if node.Type == NodeTypeTrigger {
			if found != nil {
				return nil, ErrMultipleTriggerNode
			}

			found = node
		}
	}

	if found == nil {
		return nil, ErrNoTriggerNode
	}

	return found, nil
}

// NodeByID looks a node up by id.
func (w *Workflow) NodeByID(id string) (*WorkflowNode, bool) {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node, true
		}
	}

	return nil, false
}

// OutgoingEdges returns the edges leaving a node in definition order. Edge
// selection rules operate only on this set.
func (w *Workflow) OutgoingEdges(nodeID string) []*Edge {
	var out []*Edge

	for _, edge := range w.Edges {
		if edge.Source == nodeID {
			out = append(out, edge)
		}
	}

	return out
}
