package httpsend

import (
	"context"
	"net/http"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/protocol"
)

// Factory serves one of the HTTP-backed send types (email or sms).
type Factory struct {
	nodeType string
	name     string
	client   *http.Client
}

func NewEmailFactory(client *http.Client) protocol.NodeFactory {
	return &Factory{nodeType: models.NodeTypeEmail, name: "Send Email", client: client}
}

func NewSMSFactory(client *http.Client) protocol.NodeFactory {
	return &Factory{nodeType: models.NodeTypeSMS, name: "Send SMS", client: client}
}

func (f *Factory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewHTTPSendNode(id, f.nodeType, config, f.client)
}

func (f *Factory) ID() string {
	return f.nodeType
}

func (f *Factory) Name() string {
	return f.name
}

func (f *Factory) Description() string {
	return "Delivers through an HTTP provider endpoint; non-2xx responses abort the branch"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"endpoint": map[string]any{
				"type":        "string",
				"description": "Provider endpoint URL",
			},
			"to":      map[string]any{"type": "string"},
			"subject": map[string]any{"type": "string"},
			"body":    map[string]any{"type": "string"},
		},
		"required": []string{"endpoint"},
	}
}
