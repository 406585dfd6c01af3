// Package httpsend provides the email and sms nodes. Both deliver through an
// HTTP provider endpoint; any non-2xx response is a hard failure that aborts
// the branch.
package httpsend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/convy/flow/pkg/models"
	"github.com/convy/flow/pkg/template"
)

const sendTimeout = 30 * time.Second

type HTTPSendNode struct {
	id       string
	nodeType string
	client   *http.Client

	endpoint string
	fields   map[string]string
}

// NewHTTPSendNode builds an email or sms node. The provider endpoint comes
// from config; every other config string becomes a templated payload field.
func NewHTTPSendNode(id, nodeType string, config map[string]any, client *http.Client) (*HTTPSendNode, error) {
	if client == nil {
		client = http.DefaultClient
	}

	endpoint, ok := config["endpoint"].(string)
	if !ok || endpoint == "" {
		return nil, errors.New("missing required field 'endpoint'")
	}

	fields := make(map[string]string)

	for key, value := range config {
		if key == "endpoint" {
			continue
		}

		if s, ok := value.(string); ok {
			fields[key] = s
		}
	}

	return &HTTPSendNode{
		id:       id,
		nodeType: nodeType,
		client:   client,
		endpoint: endpoint,
		fields:   fields,
	}, nil
}

func (n *HTTPSendNode) ID() string {
	return n.id
}

func (n *HTTPSendNode) Type() string {
	return n.nodeType
}

func (n *HTTPSendNode) Execute(ctx context.Context, ec *models.ExecutionContext, input *models.NodeInput) (*models.NodeResult, error) {
	if input.Resumed {
		return models.Success(n.id, nil), nil
	}

	payload := map[string]any{
		"channel":         n.nodeType,
		"organization_id": ec.OrganizationID,
	}

	for key, value := range n.fields {
		payload[key] = template.Resolve(value, ec)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", n.nodeType, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, n.endpoint, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", n.nodeType, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s send failed: %w", n.nodeType, err)
	}
	defer resp.Body.Close()

	ack, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s provider returned status %d", n.nodeType, resp.StatusCode)
	}

	output := map[string]any{"status_code": resp.StatusCode}

	var decoded map[string]any
	if json.Unmarshal(ack, &decoded) == nil {
		if externalID, ok := decoded["id"].(string); ok {
			output["external_id"] = externalID
		}
	}

	ec.Set("messages."+n.id, output)

	return models.Success(n.id, output), nil
}
