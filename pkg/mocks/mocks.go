// Package mocks provides recording fakes of the external collaborators for
// tests: every call is captured so assertions can check exactly which side
// effects a workflow produced.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/convy/flow/pkg/protocol"
)

// SentMessage is one captured Messenger.Send call.
type SentMessage struct {
	ConnectionID   string
	Recipient      string
	Content        map[string]any
	OrganizationID string
}

type Messenger struct {
	mu   sync.Mutex
	Fail bool

	Sent []SentMessage
}

func (m *Messenger) Send(_ context.Context, connectionID, recipient string, content map[string]any, organizationID string) (*protocol.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return &protocol.SendResult{Success: false, Error: "send refused"}, nil
	}

	m.Sent = append(m.Sent, SentMessage{
		ConnectionID:   connectionID,
		Recipient:      recipient,
		Content:        content,
		OrganizationID: organizationID,
	})

	return &protocol.SendResult{
		Success:    true,
		ExternalID: fmt.Sprintf("ext-%d", len(m.Sent)),
	}, nil
}

// Texts returns the text field of every sent message, in order.
func (m *Messenger) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	texts := make([]string, 0, len(m.Sent))
	for _, msg := range m.Sent {
		if text, ok := msg.Content["text"].(string); ok {
			texts = append(texts, text)
		}
	}

	return texts
}

type AIClient struct {
	mu       sync.Mutex
	Reply    string
	Requests []protocol.AIRequest
}

func (c *AIClient) Execute(_ context.Context, req protocol.AIRequest) (*protocol.AIResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Requests = append(c.Requests, req)

	return &protocol.AIResult{Success: true, Data: c.Reply}, nil
}

// CRMCall is one captured CRM mutation.
type CRMCall struct {
	Op     string
	LeadID string
	Value  string
	Fields map[string]any
}

type CRMService struct {
	mu    sync.Mutex
	Calls []CRMCall
}

func (s *CRMService) record(call CRMCall) *protocol.DomainResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Calls = append(s.Calls, call)

	return &protocol.DomainResult{Success: true, Data: map[string]any{"id": "lead-new"}}
}

func (s *CRMService) CreateLead(_ context.Context, _ string, fields map[string]any) (*protocol.DomainResult, error) {
	return s.record(CRMCall{Op: "create_lead", Fields: fields}), nil
}

func (s *CRMService) UpdateLeadStatus(_ context.Context, _, leadID, status string) (*protocol.DomainResult, error) {
	return s.record(CRMCall{Op: "update_status", LeadID: leadID, Value: status}), nil
}

func (s *CRMService) AddTag(_ context.Context, _, leadID, tag string) (*protocol.DomainResult, error) {
	return s.record(CRMCall{Op: "add_tag", LeadID: leadID, Value: tag}), nil
}

func (s *CRMService) RemoveTag(_ context.Context, _, leadID, tag string) (*protocol.DomainResult, error) {
	return s.record(CRMCall{Op: "remove_tag", LeadID: leadID, Value: tag}), nil
}

type BillingService struct {
	mu       sync.Mutex
	Invoices []map[string]any
	Quotes   []map[string]any
}

func (s *BillingService) CreateInvoice(_ context.Context, _ string, fields map[string]any) (*protocol.DomainResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Invoices = append(s.Invoices, fields)

	return &protocol.DomainResult{Success: true, Data: map[string]any{"id": "inv-1"}}, nil
}

func (s *BillingService) CreateQuote(_ context.Context, _ string, fields map[string]any) (*protocol.DomainResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Quotes = append(s.Quotes, fields)

	return &protocol.DomainResult{Success: true, Data: map[string]any{"id": "quo-1"}}, nil
}

// Notification is one captured Notify call.
type Notification struct {
	Channel string
	Message string
}

type Notifier struct {
	mu            sync.Mutex
	Notifications []Notification
}

func (n *Notifier) Notify(_ context.Context, _, channel, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.Notifications = append(n.Notifications, Notification{Channel: channel, Message: message})

	return nil
}
