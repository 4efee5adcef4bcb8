package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPRenderer calls a render sidecar that wraps KaTeX behind a small JSON API:
//
//	POST /render {"expression": "...", "output": "mathml"}
//	200 {"markup": "..."}
//	422 {"error": "..."}
type HTTPRenderer struct {
	baseURL string
	client  *http.Client
}

// HTTPOption configures an HTTPRenderer.
type HTTPOption func(*HTTPRenderer)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(r *HTTPRenderer) {
		r.client = client
	}
}

// NewHTTPRenderer creates a renderer for the sidecar at baseURL.
func NewHTTPRenderer(baseURL string, opts ...HTTPOption) *HTTPRenderer {
	r := &HTTPRenderer{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type renderRequest struct {
	Expression string `json:"expression"`
	Output     string `json:"output"`
}

type renderResponse struct {
	Markup string `json:"markup"`
	Error  string `json:"error,omitempty"`
}

func (r *HTTPRenderer) Render(ctx context.Context, expr string) (string, error) {
	body, err := json.Marshal(renderRequest{Expression: expr, Output: "mathml"})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out renderResponse
	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.Unmarshal(respBody, &out); err != nil {
			return "", fmt.Errorf("unmarshal response: %w", err)
		}
		return out.Markup, nil
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		msg := string(respBody)
		if json.Unmarshal(respBody, &out) == nil && out.Error != "" {
			msg = out.Error
		}
		return "", fmt.Errorf("%w: %s", ErrUnrenderable, msg)
	default:
		return "", fmt.Errorf("render service error (status %d): %s", resp.StatusCode, string(respBody))
	}
}

// HealthCheck probes the sidecar's /healthz endpoint.
func (r *HTTPRenderer) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}
