// Package remote implements the provider transport that reaches a deployed
// provider over HTTP.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/skygate/skygate/internal/provider"
	"github.com/skygate/skygate/internal/provider/resilience"
)

// TransportName identifies this transport variant.
const TransportName = "remote"

// maxErrorBodyBytes limits how much of a failed response body is carried in
// the error for diagnostics.
const maxErrorBodyBytes = 512

// TransportConfig holds configuration for the remote transport.
type TransportConfig struct {
	// BaseURL is the provider base URL (required).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Timeout bounds each invocation. Default: provider.DefaultTimeout.
	Timeout time.Duration

	// Logger for invocation diagnostics.
	Logger zerolog.Logger
}

// Transport invokes provider operations as HTTP GETs against the configured
// base URL, with the operation's parameters serialized as a query string.
type Transport struct {
	baseURL    string
	httpClient *resilience.Client
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewTransport creates a new remote transport.
func NewTransport(cfg TransportConfig) *Transport {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("flight-provider"))
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = provider.DefaultTimeout
	}

	return &Transport{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		timeout:    timeout,
		logger:     cfg.Logger,
	}
}

// Name returns the transport variant name.
func (t *Transport) Name() string {
	return TransportName
}

// CircuitState exposes the underlying circuit breaker state for status
// reporting.
func (t *Transport) CircuitState() string {
	return t.httpClient.CircuitBreakerState().String()
}

// Invoke performs the operation's HTTP call and returns the response body.
// A non-2xx status is a failure carrying a snippet of the body as detail.
func (t *Transport) Invoke(ctx context.Context, op provider.Operation, params provider.Params) ([]byte, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("unknown provider operation %q", op)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	url := t.baseURL + op.RemotePath()
	if query := params.Query(op); query != "" {
		url += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := string(body)
		if len(detail) > maxErrorBodyBytes {
			detail = detail[:maxErrorBodyBytes]
		}
		return nil, fmt.Errorf("unexpected status code %d from %s: %s", resp.StatusCode, op.RemotePath(), detail)
	}

	t.logger.Debug().
		Str("operation", string(op)).
		Dur("duration", time.Since(start)).
		Int("bytes", len(body)).
		Msg("provider call completed")

	return body, nil
}
