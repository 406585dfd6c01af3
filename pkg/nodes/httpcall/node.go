// Package httpcall provides the generic outbound HTTP node with templated
// method, headers and body, a hard timeout and bounded retries.
package httpcall

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

const defaultTimeoutSeconds = 30

type Config struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    string
	Timeout time.Duration
	Retries int
}

type HTTPCallNode struct {
	id     string
	client *http.Client
	config Config
}

func NewHTTPCallNode(id string, config map[string]any, client *http.Client) (*HTTPCallNode, error) {
	if client == nil {
		client = http.DefaultClient
	}

	parsed := Config{
		Method:  http.MethodGet,
		Headers: make(map[string]string),
		Timeout: defaultTimeoutSeconds * time.Second,
	}

	url, ok := config["url"].(string)
	if !ok || url == "" {
		return nil, errors.New("missing required field 'url'")
	}

	parsed.URL = url

	if method, ok := config["method"].(string); ok && method != "" {
		parsed.Method = strings.ToUpper(method)
	}

	if headers, ok := config["headers"].(map[string]any); ok {
		for k, v := range headers {
			if s, ok := v.(string); ok {
				parsed.Headers[k] = s
			}
		}
	}

	if body, ok := config["body"].(string); ok {
		parsed.Body = body
	}

	if timeout, ok := config["timeout"].(float64); ok && timeout > 0 {
		parsed.Timeout = time.Duration(timeout) * time.Second
	}

	if retries, ok := config["retries"].(float64); ok && retries > 0 {
		parsed.Retries = int(retries)
	}

	return &HTTPCallNode{id: id, client: client, config: parsed}, nil
}

func (n *HTTPCallNode) ID() string {
	return n.id
}

func (n *HTTPCallNode) Type() string {
	return models.NodeTypeHTTP
}

func (n *HTTPCallNode) Execute(ctx context.Context, ec *models.ExecutionContext, _ *models.NodeInput) (*models.NodeResult, error) {
	url := template.Resolve(n.config.URL, ec)
	body := template.Resolve(n.config.Body, ec)

	headers := make(map[string]string, len(n.config.Headers))
	for k, v := range n.config.Headers {
		headers[k] = template.Resolve(v, ec)
	}

	var lastErr error

	for attempt := 0; attempt <= n.config.Retries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 2^attempt seconds, abandoned on shutdown.
			backoff := time.Duration(1<<attempt) * time.Second

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		output, err := n.doRequest(ctx, url, body, headers)
		if err == nil {
			return n.successResult(output), nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return models.Failure(n.id, fmt.Sprintf("request failed after %d attempts: %v", n.config.Retries+1, lastErr)), nil
}

func (n *HTTPCallNode) doRequest(ctx context.Context, url, body string, headers map[string]string) (map[string]any, error) {
	reqCtx, cancel := context.WithTimeout(ctx, n.config.Timeout)
	defer cancel()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(reqCtx, n.config.Method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if body != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	output := map[string]any{
		"status_code": resp.StatusCode,
		"body":        string(data),
	}

	var decoded any
	if json.Unmarshal(data, &decoded) == nil {
		output["json"] = decoded
	}

	return output, nil
}

func (n *HTTPCallNode) successResult(output map[string]any) *models.NodeResult {
	return models.Success(n.id, output)
}
