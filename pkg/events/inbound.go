package events

import (
	"errors"
	"time"
)

// Inbound event kinds, matching the channel providers' payload detection.
const (
	InboundKindText        = "text"
	InboundKindImage       = "image"
	InboundKindAudio       = "audio"
	InboundKindVideo       = "video"
	InboundKindDocument    = "document"
	InboundKindButtonClick = "button_click"
	InboundKindListReply   = "list_reply"
	InboundKindWebhook     = "webhook"
)

// MediaKinds are the inbound kinds a media_received trigger considers media.
var MediaKinds = map[string]bool{
	InboundKindImage:    true,
	InboundKindAudio:    true,
	InboundKindVideo:    true,
	InboundKindDocument: true,
}

// InboundMessage is an event received on a conversation: a message, a button
// click, or an external webhook hit. It both starts workflows (via the
// trigger matcher) and resumes suspended ones (via the runner).
type InboundMessage struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	ConversationID string         `json:"conversation_id"`
	ConnectionID   string         `json:"connection_id,omitempty"`
	LeadID         string         `json:"lead_id,omitempty"`
	Kind           string         `json:"kind"`
	Text           string         `json:"text,omitempty"`
	ButtonID       string         `json:"button_id,omitempty"`
	MediaURL       string         `json:"media_url,omitempty"`
	Payload        map[string]any `json:"payload,omitempty"`
	ReceivedAt     time.Time      `json:"received_at"`

	// PriorConversations is the lead's conversation count before this one,
	// supplied by the ingest layer for first_contact evaluation.
	PriorConversations int `json:"prior_conversations,omitempty"`
}

// Validate checks the fields the matcher and runner depend on.
func (m *InboundMessage) Validate() error {
	if m.OrganizationID == "" {
		return errors.New("inbound message missing organization_id")
	}

	if m.ConversationID == "" {
		return errors.New("inbound message missing conversation_id")
	}

	if m.Kind == "" {
		return errors.New("inbound message missing kind")
	}

	return nil
}

// ContextSeed builds the initial execution context values for a workflow
// started by this message.
func (m *InboundMessage) ContextSeed() map[string]any {
	seed := map[string]any{
		"conversation_id": m.ConversationID,
		"connection_id":   m.ConnectionID,
		"message": map[string]any{
			"id":        m.ID,
			"kind":      m.Kind,
			"text":      m.Text,
			"media_url": m.MediaURL,
		},
	}

	if m.LeadID != "" {
		seed["lead"] = map[string]any{"id": m.LeadID}
	}

	for k, v := range m.Payload {
		if _, reserved := seed[k]; !reserved {
			seed[k] = v
		}
	}

	return seed
}

// ResponsePayload builds the response injected into a resumed execution's
// context under the "response" key.
func (m *InboundMessage) ResponsePayload() map[string]any {
	return map[string]any{
		"kind":      m.Kind,
		"text":      m.Text,
		"button_id": m.ButtonID,
		"media_url": m.MediaURL,
	}
}
