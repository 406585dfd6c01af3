// Package clients provides development implementations of the engine's
// external collaborators. They log the would-be side effect and succeed, so
// a worker can run standalone against any workflow.
package clients

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/convy/flow/pkg/protocol"
)

type LogMessenger struct {
	logger *slog.Logger
}

func NewLogMessenger(logger *slog.Logger) *LogMessenger {
	return &LogMessenger{logger: logger.With("module", "messenger")}
}

func (m *LogMessenger) Send(ctx context.Context, connectionID, recipient string, content map[string]any, organizationID string) (*protocol.SendResult, error) {
	m.logger.InfoContext(ctx, "Sending message",
		"connection_id", connectionID, "recipient", recipient, "organization_id", organizationID)

	return &protocol.SendResult{Success: true, ExternalID: uuid.NewString()}, nil
}

type LogAIClient struct {
	logger *slog.Logger
}

func NewLogAIClient(logger *slog.Logger) *LogAIClient {
	return &LogAIClient{logger: logger.With("module", "ai_client")}
}

func (c *LogAIClient) Execute(ctx context.Context, req protocol.AIRequest) (*protocol.AIResult, error) {
	c.logger.InfoContext(ctx, "Running inference task",
		"task_type", req.TaskType, "organization_id", req.OrganizationID)

	return &protocol.AIResult{Success: true, Data: ""}, nil
}

type LogCRMService struct {
	logger *slog.Logger
}

func NewLogCRMService(logger *slog.Logger) *LogCRMService {
	return &LogCRMService{logger: logger.With("module", "crm_service")}
}

func (s *LogCRMService) CreateLead(ctx context.Context, organizationID string, fields map[string]any) (*protocol.DomainResult, error) {
	s.logger.InfoContext(ctx, "Creating lead", "organization_id", organizationID)

	return &protocol.DomainResult{Success: true, Data: map[string]any{"id": uuid.NewString()}}, nil
}

func (s *LogCRMService) UpdateLeadStatus(ctx context.Context, organizationID, leadID, status string) (*protocol.DomainResult, error) {
	s.logger.InfoContext(ctx, "Updating lead status",
		"organization_id", organizationID, "lead_id", leadID, "status", status)

	return &protocol.DomainResult{Success: true}, nil
}

func (s *LogCRMService) AddTag(ctx context.Context, organizationID, leadID, tag string) (*protocol.DomainResult, error) {
	s.logger.InfoContext(ctx, "Adding tag",
		"organization_id", organizationID, "lead_id", leadID, "tag", tag)

	return &protocol.DomainResult{Success: true}, nil
}

func (s *LogCRMService) RemoveTag(ctx context.Context, organizationID, leadID, tag string) (*protocol.DomainResult, error) {
	s.logger.InfoContext(ctx, "Removing tag",
		"organization_id", organizationID, "lead_id", leadID, "tag", tag)

	return &protocol.DomainResult{Success: true}, nil
}

type LogBillingService struct {
	logger *slog.Logger
}

func NewLogBillingService(logger *slog.Logger) *LogBillingService {
	return &LogBillingService{logger: logger.With("module", "billing_service")}
}

func (s *LogBillingService) CreateInvoice(ctx context.Context, organizationID string, fields map[string]any) (*protocol.DomainResult, error) {
	s.logger.InfoContext(ctx, "Creating invoice", "organization_id", organizationID)

	return &protocol.DomainResult{Success: true, Data: map[string]any{"id": uuid.NewString()}}, nil
}

func (s *LogBillingService) CreateQuote(ctx context.Context, organizationID string, fields map[string]any) (*protocol.DomainResult, error) {
	s.logger.InfoContext(ctx, "Creating quote", "organization_id", organizationID)

	return &protocol.DomainResult{Success: true, Data: map[string]any{"id": uuid.NewString()}}, nil
}

type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("module", "notifier")}
}

func (n *LogNotifier) Notify(ctx context.Context, organizationID, channel, message string) error {
	n.logger.InfoContext(ctx, "Notifying team",
		"organization_id", organizationID, "channel", channel, "message", message)

	return nil
}
