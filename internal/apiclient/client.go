// Package apiclient talks to the statement analytics backend over HTTP.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/rs/zerolog"
)

// APIPrefix is the versioned path segment appended to the configured base URL.
const APIPrefix = "/api/v1"

// DefaultTimeout bounds every request unless WithTimeout overrides it.
const DefaultTimeout = 30 * time.Second

// Client is a typed client for the analytics backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger attaches a logger used for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the backend at baseURL. The versioned prefix is
// added automatically, so baseURL is just scheme and host (plus optional path).
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("apiclient.New: base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("apiclient.New: parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient.New: base URL %q must include scheme and host", baseURL)
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured base URL without the API prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Summary handles GET /analytics/summary
func (c *Client) Summary(ctx context.Context) (domain.SummaryMetrics, error) {
	var out domain.SummaryMetrics
	err := c.getJSON(ctx, "/analytics/summary", &out)
	return out, err
}

// Spending handles GET /analytics/spending
func (c *Client) Spending(ctx context.Context) (domain.SpendingByCategory, error) {
	out := domain.SpendingByCategory{}
	err := c.getJSON(ctx, "/analytics/spending", &out)
	return out, err
}

// Trends handles GET /analytics/trends
func (c *Client) Trends(ctx context.Context) (domain.TrendsByMonth, error) {
	out := domain.TrendsByMonth{}
	err := c.getJSON(ctx, "/analytics/trends", &out)
	return out, err
}

// Merchants handles GET /analytics/merchants
func (c *Client) Merchants(ctx context.Context) (domain.MerchantRanking, error) {
	var out domain.MerchantRanking
	if err := c.getJSON(ctx, "/analytics/merchants", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = domain.MerchantRanking{}
	}
	return out, nil
}

// Transactions handles GET /analytics/transactions
func (c *Client) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	var out []domain.Transaction
	if err := c.getJSON(ctx, "/analytics/transactions", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Transaction{}
	}
	return out, nil
}

// Reset handles POST /analytics/reset. The backend answers with its empty summary.
func (c *Client) Reset(ctx context.Context) (domain.SummaryMetrics, error) {
	var out domain.SummaryMetrics
	body, err := c.do(ctx, http.MethodPost, "/analytics/reset", nil, "")
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("POST /analytics/reset: decode response: %w", err)
	}
	return out, nil
}

// Upload handles POST /upload with a multipart body carrying the statement in field "file".
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (domain.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("POST /upload: create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return domain.UploadResult{}, fmt.Errorf("POST /upload: copy file content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return domain.UploadResult{}, fmt.Errorf("POST /upload: finalize multipart body: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/upload", &buf, mw.FormDataContentType())
	if err != nil {
		return domain.UploadResult{}, err
	}

	result, err := domain.DecodeUploadResponse(body)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("POST /upload: %w", err)
	}
	return result, nil
}

// HistoryEntry is one prior message as the backend expects it.
// Role is "user" or "assistant".
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string             `json:"message"`
	History []HistoryEntry     `json:"history"`
	Context domain.ChatContext `json:"context"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat handles POST /chat and returns the markdown reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if req.History == nil {
		req.History = []HistoryEntry{}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("POST /chat: marshal request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/chat", bytes.NewReader(payload), "application/json")
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("POST /chat: decode response: %w", err)
	}
	return resp.Response, nil
}

// HealthStatus is the body of the backend health probe.
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health checks GET {base}/health, which lives outside the versioned prefix.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var out HealthStatus
	body, err := c.send(ctx, http.MethodGet, c.baseURL+"/health", "/health", nil, "")
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("GET /health: decode response: %w", err)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	body, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("GET %s: decode response: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	return c.send(ctx, method, c.baseURL+APIPrefix+path, path, body, contentType)
}

// send performs the request and returns the body of a 2xx response.
// Non-2xx responses become *APIError.
func (c *Client) send(ctx context.Context, method, fullURL, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: create request: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(method, path, resp.StatusCode, data)
	}
	return data, nil
}
