package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wonny/ipo-scorecard/pkg/config"
	"github.com/wonny/ipo-scorecard/pkg/logger"
)

// Client builds retrying *http.Client values for outbound calls
// ⭐ SSOT: 외부 HTTP 호출(LLM 등)은 이 클라이언트를 통해서만 수행
type Client struct {
	timeout     time.Duration
	base        http.RoundTripper
	logger      *logger.Logger
	retryConfig RetryConfig
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Enabled      bool
}

// New creates a new HTTP client from config
func New(cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		timeout: 30 * time.Second, // Default timeout
		base:    http.DefaultTransport,
		logger:  log,
		retryConfig: RetryConfig{
			MaxRetries:   3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     10 * time.Second,
			Enabled:      true,
		},
	}
}

// NewWithTimeout creates a client with custom timeout
func NewWithTimeout(cfg *config.Config, log *logger.Logger, timeout time.Duration) *Client {
	client := New(cfg, log)
	client.timeout = timeout
	return client
}

// WithRetry configures retry behavior
func (c *Client) WithRetry(maxRetries int, initialDelay time.Duration) *Client {
	c.retryConfig.MaxRetries = maxRetries
	c.retryConfig.InitialDelay = initialDelay
	c.retryConfig.Enabled = true
	return c
}

// DisableRetry disables automatic retry
func (c *Client) DisableRetry() *Client {
	c.retryConfig.Enabled = false
	return c
}

// WithTransport replaces the underlying transport (tests)
func (c *Client) WithTransport(rt http.RoundTripper) *Client {
	c.base = rt
	return c
}

// HTTPClient returns an *http.Client whose transport logs and retries.
// SDKs that accept a custom client (genai) get retries without knowing about them.
func (c *Client) HTTPClient() *http.Client {
	return &http.Client{
		Timeout:   c.timeout,
		Transport: &transport{client: c},
	}
}

// Do executes req through the retrying transport
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.HTTPClient().Do(req)
}

type transport struct {
	client *Client
}

// RoundTrip executes the request with retry logic and logging
func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	c := t.client
	startTime := time.Now()
	method := req.Method
	host := req.URL.Host

	c.logger.WithFields(map[string]interface{}{
		"method": method,
		"host":   host,
		"path":   req.URL.Path,
	}).Debug("HTTP request started")

	var resp *http.Response
	var err error
	if c.retryConfig.Enabled {
		resp, err = c.doWithRetry(req)
	} else {
		resp, err = c.base.RoundTrip(req)
	}

	duration := time.Since(startTime)

	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"method":   method,
			"host":     host,
			"duration": duration,
			"error":    err.Error(),
		}).Error("HTTP request failed")
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"method":      method,
		"host":        host,
		"status_code": resp.StatusCode,
		"duration":    duration,
	}).Debug("HTTP request completed")

	return resp, nil
}

// doWithRetry executes the request with exponential backoff retry
func (c *Client) doWithRetry(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	delay := c.retryConfig.InitialDelay

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			if req, err = rewind(req); err != nil {
				return nil, err
			}
		}

		resp, err = c.base.RoundTrip(req)

		// Success (or a non-retryable status)
		if err == nil && !IsRetryableError(resp.StatusCode) {
			return resp, nil
		}

		// 컨텍스트 취소는 재시도하지 않음
		if ctxErr := req.Context().Err(); ctxErr != nil {
			if resp != nil {
				resp.Body.Close()
			}
			return nil, ctxErr
		}

		// Last attempt - return as is
		if attempt == c.retryConfig.MaxRetries {
			break
		}

		fields := map[string]interface{}{
			"attempt": attempt + 1,
			"delay":   delay,
			"host":    req.URL.Host,
		}
		if resp != nil {
			fields["status_code"] = resp.StatusCode
			drain(resp)
		}
		c.logger.WithFields(fields).Warn("Retrying HTTP request")

		if err := sleep(req.Context(), delay); err != nil {
			return nil, err
		}

		// Exponential backoff
		delay *= 2
		if delay > c.retryConfig.MaxDelay {
			delay = c.retryConfig.MaxDelay
		}
	}

	return resp, err
}

// rewind returns a clone of req with a fresh body
func rewind(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("cannot retry %s %s: request body is not replayable", req.Method, req.URL.Host)
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRetryableError checks if a status code should be retried
func IsRetryableError(statusCode int) bool {
	// Retry on 5xx server errors and 429 Too Many Requests
	return statusCode >= 500 || statusCode == 429
}
