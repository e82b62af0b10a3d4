package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"ledgervault/internal/errors"
	"ledgervault/internal/metrics"

	"github.com/google/uuid"
)

// TraceIDHeader correlates client requests with backend logs.
const TraceIDHeader = "X-Trace-ID"

var emptyObject = json.RawMessage(`{}`)

// Client performs exactly one round trip per call against a fixed base URL.
// Credentials travel in cookies held by the client's jar. There are no retries
// and no client-side timeout; cancellation is the caller's context.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    metrics.Recorder
	logger     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. If it has no cookie jar, one is attached.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithMetrics(recorder metrics.Recorder) Option {
	return func(c *Client) {
		c.metrics = recorder
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for baseURL, e.g. https://host/api.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		metrics:    metrics.Noop{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}

	return c, nil
}

// BaseURL returns the origin plus API prefix requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.send(ctx, http.MethodGet, path, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.send(ctx, http.MethodPost, path, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.send(ctx, http.MethodDelete, path, path, nil)
}

// send performs the round trip. route is the templated path used as a metric label.
func (c *Client) send(ctx context.Context, method, route, path string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	traceID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(TraceIDHeader, traceID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.observe(method, route, "network_error", elapsed)
		c.logger.WarnContext(ctx, "backend request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("trace_id", traceID),
			slog.String("error", err.Error()),
		)
		return nil, &errors.NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data := readBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observe(method, route, "http_"+fmt.Sprint(resp.StatusCode), elapsed)
		reqErr := decodeError(resp.StatusCode, data)
		if reqErr.TraceID == "" {
			reqErr.TraceID = traceID
		}
		c.logger.DebugContext(ctx, "backend rejected request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("message", reqErr.Message),
			slog.String("trace_id", reqErr.TraceID),
		)
		return nil, reqErr
	}

	c.observe(method, route, "ok", elapsed)
	c.logger.DebugContext(ctx, "backend request completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Int64("duration_ms", elapsed.Milliseconds()),
		slog.String("trace_id", traceID),
	)
	return data, nil
}

func (c *Client) observe(method, route, outcome string, elapsed time.Duration) {
	c.metrics.IncrementCounter(metrics.ClientRequest, map[string]string{
		"method":  method,
		"path":    route,
		"outcome": outcome,
	})
	c.metrics.RecordProcessingTime(metrics.ClientRequest, elapsed, map[string]string{
		"method": method,
		"path":   route,
	})
}

// readBody returns the body as JSON, substituting an empty object for an
// empty, unreadable or malformed body.
func readBody(r io.Reader) json.RawMessage {
	data, err := io.ReadAll(r)
	if err != nil {
		return emptyObject
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || !json.Valid(data) {
		return emptyObject
	}
	return json.RawMessage(data)
}

func decodeError(status int, data json.RawMessage) *errors.RequestError {
	var body struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		TraceID string `json:"trace_id"`
	}
	// A non-object body (array, string) simply yields no message.
	_ = json.Unmarshal(data, &body)

	reqErr := errors.NewRequestError(status, body.Message)
	if body.Code != "" {
		reqErr.Code = body.Code
	}
	reqErr.TraceID = body.TraceID
	return reqErr
}
