package billing

import (
	"context"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/protocol"
)

type Factory struct {
	service protocol.BillingService
}

func NewFactory(service protocol.BillingService) protocol.NodeFactory {
	return &Factory{service: service}
}

func (f *Factory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewBillingNode(id, config, f.service)
}

func (f *Factory) ID() string {
	return models.NodeTypeBilling
}

func (f *Factory) Name() string {
	return "Billing"
}

func (f *Factory) Description() string {
	return "Issues an invoice or quote for the conversation's lead"
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"document": map[string]any{
				"type":    "string",
				"enum":    []string{DocumentInvoice, DocumentQuote},
				"default": DocumentInvoice,
			},
			"fields": map[string]any{
				"type":        "object",
				"description": "Document fields; values support {{path}} templating",
			},
		},
	}
}
