// Package billing provides the billing node, which issues invoices and
// quotes through the product's billing service.
package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/protocol"
	"github.com/convy/flow/pkg/template"
)

const (
	DocumentInvoice = "invoice"
	DocumentQuote   = "quote"
)

type BillingNode struct {
	id       string
	service  protocol.BillingService
	document string
	fields   map[string]any
}

func NewBillingNode(id string, config map[string]any, service protocol.BillingService) (*BillingNode, error) {
	if service == nil {
		return nil, errors.New("billing service is not configured")
	}

	node := &BillingNode{id: id, service: service, document: DocumentInvoice}

	if document, ok := config["document"].(string); ok && document != "" {
		if document != DocumentInvoice && document != DocumentQuote {
			return nil, fmt.Errorf("unknown document %q", document)
		}

		node.document = document
	}

	if fields, ok := config["fields"].(map[string]any); ok {
		node.fields = fields
	}

	return node, nil
}

func (n *BillingNode) ID() string {
	return n.id
}

func (n *BillingNode) Type() string {
	return models.NodeTypeBilling
}

func (n *BillingNode) Execute(ctx context.Context, ec *models.ExecutionContext, input *models.NodeInput) (*models.NodeResult, error) {
	if input.Resumed {
		return models.Success(n.id, nil), nil
	}

	fields := map[string]any{}
	for key, value := range n.fields {
		fields[key] = template.ResolveValue(value, ec)
	}

	var (
		result *protocol.DomainResult
		err    error
	)

	if n.document == DocumentQuote {
		result, err = n.service.CreateQuote(ctx, ec.OrganizationID, fields)
	} else {
		result, err = n.service.CreateInvoice(ctx, ec.OrganizationID, fields)
	}

	if err != nil {
		return nil, fmt.Errorf("billing %s failed: %w", n.document, err)
	}

	if !result.Success {
		return models.Failure(n.id, result.Error), nil
	}

	ec.Set("billing."+n.id, result.Data)

	return models.Success(n.id, result.Data), nil
}
