package protocol

import "context"

// The contracts below are the narrow call shapes the engine needs from the
// rest of the product. Their implementations (channel transports, inference
// backend, CRM and billing services) live outside this module.

// SendResult is the acknowledgement of an outbound message send.
type SendResult struct {
	Success    bool   `json:"success"`
	ExternalID string `json:"external_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Messenger delivers outbound messages over a connected channel.
type Messenger interface {
	Send(ctx context.Context, connectionID, recipient string, content map[string]any, organizationID string) (*SendResult, error)
}

// AIRequest is a task handed to the inference backend.
type AIRequest struct {
	OrganizationID string         `json:"organization_id"`
	TaskType       string         `json:"task_type"`
	Payload        map[string]any `json:"payload"`
}

// AIResult carries the raw textual output of an inference task.
type AIResult struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
}

// AIClient delegates prompts to the inference backend.
type AIClient interface {
	Execute(ctx context.Context, req AIRequest) (*AIResult, error)
}

// DomainResult is the shared response shape of CRM and billing mutations.
type DomainResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// CRMService mutates leads on behalf of crm, tag and stage nodes.
type CRMService interface {
	CreateLead(ctx context.Context, organizationID string, fields map[string]any) (*DomainResult, error)
	UpdateLeadStatus(ctx context.Context, organizationID, leadID, status string) (*DomainResult, error)
	AddTag(ctx context.Context, organizationID, leadID, tag string) (*DomainResult, error)
	RemoveTag(ctx context.Context, organizationID, leadID, tag string) (*DomainResult, error)
}

// BillingService issues invoices and quotes on behalf of billing nodes.
type BillingService interface {
	CreateInvoice(ctx context.Context, organizationID string, fields map[string]any) (*DomainResult, error)
	CreateQuote(ctx context.Context, organizationID string, fields map[string]any) (*DomainResult, error)
}

// Notifier delivers internal notifications (email, in-app) to team members.
type Notifier interface {
	Notify(ctx context.Context, organizationID, channel, message string) error
}
