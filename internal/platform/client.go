package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mymind1423/interflow-admin/internal/metrics"
)

// APIError is a structured upstream failure: a non-2xx response whose body
// carried an {"error": "..."} message, or the generic fallback when the body
// was empty or not JSON.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform: %s (status %d)", e.Message, e.Status)
}

// AsAPIError unwraps err into an *APIError when the upstream responded at
// all; transport failures do not match.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// TokenSource yields the bearer token to attach to an upstream request. An
// empty string means no Authorization header.
type TokenSource interface {
	Token(ctx context.Context) string
}

// StaticToken is a fixed token, used by command-line consumers.
type StaticToken string

func (t StaticToken) Token(context.Context) string { return string(t) }

type ctxTokenKey struct{}

// WithToken stores a bearer token on the context for ContextToken to pick up.
// The gateway's auth middleware uses this to forward the caller's own token
// upstream.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// ContextToken reads the token placed on the context by WithToken.
type ContextToken struct{}

func (ContextToken) Token(ctx context.Context) string {
	token, _ := ctx.Value(ctxTokenKey{}).(string)
	return token
}

// FallbackSource tries Primary first and falls back to Fallback, mirroring
// "live session token preferred, cached token otherwise".
type FallbackSource struct {
	Primary  TokenSource
	Fallback TokenSource
}

func (s FallbackSource) Token(ctx context.Context) string {
	if s.Primary != nil {
		if token := s.Primary.Token(ctx); token != "" {
			return token
		}
	}
	if s.Fallback != nil {
		return s.Fallback.Token(ctx)
	}
	return ""
}

// Client wraps the platform REST API: bearer injection, JSON bodies, uniform
// error unwrapping. It does not retry and does not cache.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	metrics    *metrics.Metrics
}

func NewClient(baseURL string, tokens TokenSource, httpClient *http.Client, m *metrics.Metrics) *Client {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: trimmed, tokens: tokens, httpClient: httpClient, metrics: m}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.request(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.request(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.request(ctx, http.MethodPut, path, body, out)
}

func (c *Client) request(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.UpstreamDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.countRequest(method, "transport")
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.countRequest(method, "transport")
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.countRequest(method, "error")
		return &APIError{Status: resp.StatusCode, Message: errorMessage(payload)}
	}
	c.countRequest(method, "ok")

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) countRequest(method, outcome string) {
	if c.metrics != nil {
		c.metrics.UpstreamRequests.WithLabelValues(method, outcome).Inc()
	}
}

// errorMessage pulls the server-provided message out of an error body,
// tolerating non-JSON and empty bodies.
func errorMessage(payload []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	if text := strings.TrimSpace(string(payload)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}
	return "request failed"
}
