package models

import "time"

// ExecutionStatus defines the lifecycle states of a workflow run. Transitions
// are monotonic forward except waiting -> running on resume; completed and
// failed are terminal.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusWaiting   ExecutionStatus = "waiting"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// Execution is one run of a workflow. Context holds the full clean snapshot of
// the variable store, persisted whenever the run suspends or finishes and
// reloaded verbatim on resume.
type Execution struct {
	ID             string          `json:"id"`
	WorkflowID     string          `json:"workflow_id"     validate:"required"`
	OrganizationID string          `json:"organization_id" validate:"required"`
	ConversationID string          `json:"conversation_id,omitempty"`
	LeadID         string          `json:"lead_id,omitempty"`
	Status         ExecutionStatus `json:"status"`
	Context        map[string]any  `json:"context,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
}

// Terminal reports whether the execution reached a final state.
func (e *Execution) Terminal() bool {
	return e.Status == ExecutionStatusCompleted || e.Status == ExecutionStatusFailed
}
