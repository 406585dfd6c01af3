package httpcall

import (
	"context"
	"net/http"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/protocol"
)

type Factory struct {
	client *http.Client
}

func NewFactory(client *http.Client) protocol.NodeFactory {
	return &Factory{client: client}
}

func (f *Factory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewHTTPCallNode(id, config, f.client)
}

func (f *Factory) ID() string {
	return models.NodeTypeHTTP
}

func (f *Factory) Name() string {
	return "HTTP Request"
}

func (f *Factory) Description() string {
	return "Performs an outbound HTTP call with templated fields, a timeout and bounded retries"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Request URL; supports {{path}} templating",
			},
			"method": map[string]any{
				"type":    "string",
				"enum":    []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
				"default": "GET",
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Header values support templating",
			},
			"body": map[string]any{"type": "string"},
			"timeout": map[string]any{
				"type":        "number",
				"description": "Request timeout in seconds",
				"default":     defaultTimeoutSeconds,
				"minimum":     1,
				"maximum":     300,
			},
			"retries": map[string]any{
				"type":        "number",
				"description": "Retry attempts after the initial request",
				"minimum":     0,
				"maximum":     10,
			},
		},
		"required": []string{"url"},
	}
}
