package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/paykit/pkg/form"
	"github.com/samvad-hq/paykit/pkg/httpclient"
)

const (
	// DefaultAPIBase is used when BackendConfig.APIBase is empty.
	DefaultAPIBase   = "https://api.stripe.com"
	defaultUserAgent = "paykit-go"

	formContentType = "application/x-www-form-urlencoded"
	requestIDHeader = "Request-Id"
)

// BackendConfig carries the process-wide settings read at call time.
type BackendConfig struct {
	APIBase    string
	APIKey     string
	APIVersion string
	UserAgent  string
}

// Backend turns resource operations into transport calls. It is immutable
// after construction and safe for concurrent use.
type Backend struct {
	apiBase    string
	apiKey     string
	apiVersion string
	userAgent  string
	client     httpclient.Client
	log        Logger
}

// NewBackend builds a Backend over the given transport.
func NewBackend(cfg BackendConfig, client httpclient.Client, log Logger) *Backend {
	base := strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	if base == "" {
		base = DefaultAPIBase
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	if client == nil {
		client = httpclient.NewRestyClient(80 * time.Second)
	}

	return &Backend{
		apiBase:    base,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		apiVersion: strings.TrimSpace(cfg.APIVersion),
		userAgent:  ua,
		client:     client,
		log:        ensureLogger(log),
	}
}

// APIBase returns the base URL requests are sent to.
func (b *Backend) APIBase() string { return b.apiBase }

// Call issues exactly one request and decodes a 2xx body into out. GET and
// DELETE carry params in the query string, other verbs in a form body.
func (b *Backend) Call(ctx context.Context, method, path string, params Params, out any) error {
	if b == nil || b.client == nil {
		return fmt.Errorf("backend is not initialized")
	}

	method = strings.ToUpper(method)
	req := httpclient.Request{
		Method:  method,
		URL:     b.apiBase + path,
		Headers: b.headers(),
	}

	encoded := form.Encode(params).Encode()
	switch method {
	case http.MethodGet, http.MethodDelete:
		req.Query = encoded
	default:
		req.Body = encoded
		req.Headers["Content-Type"] = formContentType
	}

	start := time.Now()
	resp, err := b.client.Do(ctx, req)
	if err != nil {
		b.log.WarnObj("api request failed", "api_request_error", map[string]any{
			"method": method,
			"path":   path,
			"error":  err.Error(),
		})
		return newConnectionError(err)
	}

	status := resp.StatusCode()
	requestID := resp.Header().Get(requestIDHeader)
	b.log.DebugObj("api request completed", "api_request", map[string]any{
		"method":     method,
		"path":       path,
		"status":     status,
		"request_id": requestID,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	if status < 200 || status >= 300 {
		apiErr := newAPIError(status, resp.Body(), requestID)
		b.log.WarnObj("api request rejected", "api_error", map[string]any{
			"method":     method,
			"path":       path,
			"status":     status,
			"type":       apiErr.Type,
			"message":    apiErr.Message,
			"request_id": requestID,
		})
		return apiErr
	}

	if out == nil {
		return nil
	}
	return decodeInto(resp.Body(), out)
}

func (b *Backend) headers() map[string]string {
	h := map[string]string{
		"Accept":     "application/json",
		"User-Agent": b.userAgent,
	}
	if b.apiKey != "" {
		h["Authorization"] = "Bearer " + b.apiKey
	}
	if b.apiVersion != "" {
		h["Stripe-Version"] = b.apiVersion
	}
	return h
}

func decodeInto(body []byte, out any) error {
	if e, ok := out.(Entity); ok {
		return Decode(body, e)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %T: %w", out, err)
	}
	return nil
}
