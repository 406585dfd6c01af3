package models

import "time"

// PendingInputStatus defines the states of a suspended wait-point record.
// Completion is a one-way transition to completed or timeout.
type PendingInputStatus string

const (
	PendingInputWaiting   PendingInputStatus = "waiting"
	PendingInputCompleted PendingInputStatus = "completed"
	PendingInputTimedOut  PendingInputStatus = "timeout"
)

// TimeoutAction defines what the timeout sweep does with a waiting record that
// passed its deadline.
type TimeoutAction string

const (
	TimeoutActionContinue TimeoutAction = "continue" // resume through the timeout edge
	TimeoutActionBranch   TimeoutAction = "branch"   // resume with a specific next-branch id
	TimeoutActionStop     TimeoutAction = "stop"     // mark the execution failed without resuming
)

// Input type tags a wait node can declare, and the inbound event kinds that
// satisfy them.
const (
	InputTypeText        = "text"
	InputTypeInteractive = "interactive"
	InputTypeImage       = "image"
	InputTypeAudio       = "audio"
	InputTypeVideo       = "video"
	InputTypeDocument    = "document"
	InputTypeAny         = "any"

	// InputTypeTimer marks a pure time-based wait (delay nodes). No inbound
	// event satisfies it; only the timeout sweep wakes it.
	InputTypeTimer = "timer"
)

// eventInputTypes maps an inbound event kind to the input type it satisfies.
var eventInputTypes = map[string]string{
	"text":         InputTypeText,
	"button_click": InputTypeInteractive,
	"list_reply":   InputTypeInteractive,
	"image":        InputTypeImage,
	"audio":        InputTypeAudio,
	"video":        InputTypeVideo,
	"document":     InputTypeDocument,
}

// InputTypeAccepts reports whether a record waiting for the given input type
// is satisfied by an event of the given kind. Unknown event kinds only match
// "any" waits; a mismatch leaves the record waiting.
func InputTypeAccepts(waiting, eventKind string) bool {
	if waiting == InputTypeAny || waiting == "" {
		return true
	}

	return eventInputTypes[eventKind] == waiting
}

// PendingInput is the durable record of a suspended wait-point. At most one
// waiting record exists per (execution_id, node_id) pair; persistence drivers
// upsert on that key.
type PendingInput struct {
	ID             string             `json:"id"`
	ExecutionID    string             `json:"execution_id"    validate:"required"`
	NodeID         string             `json:"node_id"         validate:"required"`
	OrganizationID string             `json:"organization_id"`
	ConversationID string             `json:"conversation_id"`
	InputType      string             `json:"input_type"`
	NodeConfig     map[string]any     `json:"node_config,omitempty"`
	Status         PendingInputStatus `json:"status"`
	TimeoutAt      *time.Time         `json:"timeout_at,omitempty"`
	TimeoutAction  TimeoutAction      `json:"timeout_action,omitempty"`
	TimeoutBranch  string             `json:"timeout_branch,omitempty"`
	Response       map[string]any     `json:"response,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
}

// Expired reports whether a waiting record passed its deadline at the given
// instant. Records without a deadline never expire.
func (p *PendingInput) Expired(now time.Time) bool {
	return p.Status == PendingInputWaiting && p.TimeoutAt != nil && now.After(*p.TimeoutAt)
}
