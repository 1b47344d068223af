// Package base provides shared HTTP client infrastructure for the registry API.
package base

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "github.com/olgasafonova/brreg-search-mcp-server/internal/errors"
	"github.com/olgasafonova/brreg-search-mcp-server/metrics"
	"github.com/olgasafonova/brreg-search-mcp-server/tracing"
)

const (
	// DefaultTimeout for API requests
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the client to the registry
	DefaultUserAgent = "brreg-search-mcp-server/1.0"

	// maxBodySize caps how much of a response body is read (one listing page is far smaller)
	maxBodySize = 16 << 20
)

// Client provides common HTTP client infrastructure. Every call is a single
// attempt: no caching, retries or circuit breaking are layered on top.
type Client struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	UserAgent  string
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.HTTPClient = c
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(client *Client) {
		client.Logger = l
	}
}

// WithUserAgent sets the User-Agent header sent upstream
func WithUserAgent(ua string) ClientOption {
	return func(client *Client) {
		if ua != "" {
			client.UserAgent = ua
		}
	}
}

// WithTimeout replaces the HTTP client with a pooled client using timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(client *Client) {
		if timeout > 0 {
			client.HTTPClient = newHTTPClient(timeout)
		}
	}
}

// NewClient creates a new base client with default settings
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		HTTPClient: newHTTPClient(DefaultTimeout),
		Logger:     slog.Default(),
		UserAgent:  DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Close releases idle connections held by the client
func (c *Client) Close() {
	if c.HTTPClient != nil {
		c.HTTPClient.CloseIdleConnections()
	}
}

// RequestConfig configures a single HTTP request
type RequestConfig struct {
	URL    string
	Accept string // defaults to application/json
	Action string // metrics/tracing label, e.g. "list_units"
}

// DoRequest performs one GET request and returns the response body and status.
// Transport failures are returned as *errors.UpstreamError with a zero status;
// non-success statuses are returned to the caller, which decides how to map them.
func (c *Client) DoRequest(ctx context.Context, cfg RequestConfig) ([]byte, int, error) {
	ctx, span := tracing.Start(ctx, "registry."+cfg.Action,
		tracing.KeyAction.String(cfg.Action),
		attribute.String("http.url", cfg.URL),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	accept := cfg.Accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.UserAgent)

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		metrics.RecordAPICall(cfg.Action, duration, false, "transport")
		tracing.Fail(span, err)
		c.Logger.Warn("API request failed",
			"action", cfg.Action,
			"url", cfg.URL,
			"error", err)
		return nil, 0, &apperrors.UpstreamError{Path: cfg.URL, Err: err}
	}

	body, err := readAndClose(resp)
	duration := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordAPICall(cfg.Action, duration, false, "read")
		tracing.Fail(span, err)
		return nil, resp.StatusCode, &apperrors.UpstreamError{
			StatusCode: resp.StatusCode,
			Path:       cfg.URL,
			Message:    "failed to read response",
			Err:        err,
		}
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	success := resp.StatusCode < 400
	errorCode := ""
	if !success {
		errorCode = strconv.Itoa(resp.StatusCode)
		span.SetStatus(codes.Error, "HTTP "+errorCode)
	}
	metrics.RecordAPICall(cfg.Action, duration, success, errorCode)

	c.Logger.Debug("API request completed",
		"action", cfg.Action,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	return body, resp.StatusCode, nil
}

// readAndClose reads the response body and closes it
func readAndClose(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	_ = resp.Body.Close()
	return body, err
}

// Truncate shortens a string to maxLen, adding "..." if truncated
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// newHTTPClient creates an HTTP client with pooled transport settings sized
// for one page of concurrent role lookups against a single host
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		MaxConnsPerHost:       100,
		IdleConnTimeout:       120 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
