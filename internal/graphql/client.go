package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jamesprial/petview/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/jamesprial/petview/internal/graphql"

// HTTPDoer is the subset of *http.Client used by HTTPClient.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithDoer swaps the underlying HTTPDoer, e.g. for a recording transport in
// tests.
func WithDoer(doer HTTPDoer) Option {
	return func(c *HTTPClient) {
		c.doer = doer
	}
}

// Compile-time interface check.
var _ Sender = (*HTTPClient)(nil)

// HTTPClient sends GraphQL documents over HTTP POST. It performs no retries,
// caching or de-duplication: every Send is exactly one request.
type HTTPClient struct {
	doer HTTPDoer
	url  string
}

// NewHTTPClient constructs an HTTPClient for the endpoint in cfg. A zero
// Timeout leaves the request without a client-side deadline.
func NewHTTPClient(cfg config.GraphQLConfig, opts ...Option) (*HTTPClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("graphql: %w", err)
	}

	c := &HTTPClient{
		doer: &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
		url:  cfg.URL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL returns the endpoint requests are posted to.
func (c *HTTPClient) URL() string { return c.url }

// request is the JSON body shape for a GraphQL HTTP request. Variables is
// always present, as {} when empty.
type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// Send posts query and variables to the endpoint and returns the decoded
// response body. The HTTP status code is not inspected: any JSON body is
// returned as-is. Failures are reported as *TransportError.
func (c *HTTPClient) Send(ctx context.Context, query string, variables map[string]any) (_ *Result, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "graphql.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("graphql.endpoint", c.url)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if variables == nil {
		variables = map[string]any{}
	}
	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return nil, &TransportError{Op: "marshal request", URL: c.url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "create request", URL: c.url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "post", URL: c.url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read response", URL: c.url, Status: resp.StatusCode, Err: err}
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &TransportError{Op: "decode response", URL: c.url, Status: resp.StatusCode, Err: err}
	}
	span.SetAttributes(attribute.Int("graphql.error_count", len(result.Errors)))

	return &result, nil
}
