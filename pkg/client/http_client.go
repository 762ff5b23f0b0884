package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/troikatech/care-voice/pkg/circuitbreaker"
	"github.com/troikatech/care-voice/pkg/metrics"
	"github.com/troikatech/care-voice/pkg/retry"
)

// maxBodyBytes caps how much of an upstream response is buffered.
const maxBodyBytes = 1 << 20

// StatusError is returned when the upstream keeps answering with a 5xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d", e.StatusCode)
}

// Response is a fully read upstream response.
type Response struct {
	StatusCode int
	Body       []byte
}

// HTTPClient wraps http.Client with retry and circuit breaker
type HTTPClient struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	serviceName    string
}

// Option customises an HTTPClient.
type Option func(*HTTPClient)

// WithRetry overrides the retry policy.
func WithRetry(cfg retry.Config) Option {
	return func(c *HTTPClient) { c.retryConfig = cfg }
}

// WithHTTPClient swaps the underlying http.Client (tests use httptest clients).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.client = hc }
}

// NewHTTPClient creates a new HTTP client with retry and circuit breaker
func NewHTTPClient(serviceName string, timeout time.Duration, opts ...Option) *HTTPClient {
	breakerCfg := circuitbreaker.DefaultConfig()
	breakerCfg.IsFailure = func(err error) bool {
		return !errors.Is(err, context.Canceled)
	}

	c := &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		circuitBreaker: circuitbreaker.New(breakerCfg),
		retryConfig:    retry.DefaultConfig(),
		serviceName:    serviceName,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET request with retry and circuit breaker.
// Responses below 500 are returned as-is; callers interpret 4xx codes.
func (c *HTTPClient) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, url, nil, headers)
}

// PostJSON marshals body and POSTs it with retry and circuit breaker.
func (c *HTTPClient) PostJSON(ctx context.Context, url string, body interface{}, headers map[string]string) (*Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	if headers == nil {
		headers = map[string]string{}
	}
	headers["Content-Type"] = "application/json"
	return c.do(ctx, http.MethodPost, url, jsonData, headers)
}

func (c *HTTPClient) do(ctx context.Context, method, url string, payload []byte, headers map[string]string) (*Response, error) {
	start := time.Now()
	var resp *Response

	err := c.circuitBreaker.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			var body io.Reader
			if payload != nil {
				body = bytes.NewReader(payload)
			}

			req, err := http.NewRequestWithContext(ctx, method, url, body)
			if err != nil {
				return retry.Permanent(err)
			}
			for k, v := range headers {
				req.Header.Set(k, v)
			}

			httpResp, err := c.client.Do(req)
			if err != nil {
				return err
			}
			defer httpResp.Body.Close()

			data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
			if err != nil {
				return err
			}

			if httpResp.StatusCode >= 500 {
				return &StatusError{StatusCode: httpResp.StatusCode}
			}

			resp = &Response{StatusCode: httpResp.StatusCode, Body: data}
			return nil
		})
	})

	success := err == nil && resp != nil && resp.StatusCode < 400
	metrics.RecordServiceCall(c.serviceName, success, time.Since(start))
	metrics.UpdateCircuitBreaker(c.serviceName, c.circuitBreaker.GetState().String(), int64(c.circuitBreaker.Failures()))

	if err != nil {
		return nil, err
	}
	return resp, nil
}
