package models

import "time"

// NodeStatus defines the outcome of a single node execution.
type NodeStatus string

const (
	NodeStatusSuccess NodeStatus = "success"
	NodeStatusError   NodeStatus = "error"
)

// HandleContinue is the pass-through selection: a node that has nothing
// specific to route on picks it, and the engine keeps walking even when no
// edge carries the handle.
const HandleContinue = "continue"

// NodeResult is the typed outcome a node hands back to the engine. Branching
// signals (condition result, selected handle) and suspension requests travel
// here rather than through reserved context keys, so the persisted context
// snapshot stays clean user data.
type NodeResult struct {
	NodeID string         `json:"node_id"`
	Status NodeStatus     `json:"status"`
	Error  string         `json:"error,omitempty"`
	Output map[string]any `json:"output,omitempty"`

	// Condition carries the boolean a condition node evaluated; the engine
	// routes on edge labels "True"/"False" accordingly.
	Condition *bool `json:"condition,omitempty"`

	// SelectedHandle names the output an ab_test or buttons node chose; the
	// engine follows the edge whose SourceHandle matches. HandleContinue is
	// special: when it matches no edge, the engine broadcasts instead.
	SelectedHandle string `json:"selected_handle,omitempty"`

	// Suspend, when non-nil, asks the engine to halt this continuation and
	// persist wait state. Suspension is control flow, never a failure.
	Suspend *SuspendRequest `json:"suspend,omitempty"`
}

// SuspendRequest describes why and how an execution should pause.
type SuspendRequest struct {
	// WakeAt is the absolute resume time for delay-style suspensions.
	WakeAt *time.Time `json:"wake_at,omitempty"`

	// Input describes the external input a wait-style suspension expects.
	Input *PendingInputSpec `json:"input,omitempty"`
}

// PendingInputSpec is the node-provided blueprint for a PendingInput record.
// NodeConfig embeds the node's configuration snapshot so a later resume can
// validate the response without re-reading the workflow definition.
type PendingInputSpec struct {
	InputType     string         `json:"input_type"`
	NodeConfig    map[string]any `json:"node_config,omitempty"`
	Timeout       time.Duration  `json:"timeout,omitempty"`
	TimeoutAction TimeoutAction  `json:"timeout_action,omitempty"`
	TimeoutBranch string         `json:"timeout_branch,omitempty"`
}

// NodeInput carries resume state into a node execution. The zero value means
// a fresh entry; Resumed distinguishes the re-entered code path so side
// effects are not re-issued.
type NodeInput struct {
	Resumed      bool           `json:"resumed"`
	Response     map[string]any `json:"response,omitempty"`
	TimedOut     bool           `json:"timed_out,omitempty"`
	NextBranchID string         `json:"next_branch_id,omitempty"`

	// OutgoingHandles lists the source handles of the node's outgoing edges,
	// injected by the engine. Buttons nodes use it to decide whether a reply
	// is being routed on and a wait is required.
	OutgoingHandles []string `json:"outgoing_handles,omitempty"`
}

// Success builds a successful result with the given output.
func Success(nodeID string, output map[string]any) *NodeResult {
	return &NodeResult{NodeID: nodeID, Status: NodeStatusSuccess, Output: output}
}

// Failure builds a failed result carrying the error message.
func Failure(nodeID string, message string) *NodeResult {
	return &NodeResult{NodeID: nodeID, Status: NodeStatusError, Error: message}
}
