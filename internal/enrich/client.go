package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"leadrouter/internal/config"
	"leadrouter/internal/metrics"
)

const (
	DefaultTimeout     = 5 * time.Second
	DefaultMaxAttempts = 3
)

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	BaseURL     string
	Endpoint    string
	Timeout     time.Duration
	MaxAttempts int
	// RetryDelay is the pause between attempts. Zero retries immediately.
	RetryDelay time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client calls the external enrichment API with a per-attempt timeout
// and a bounded retry policy. Transport errors, timeouts and 5xx replies
// are retried; other non-2xx replies and malformed bodies are not.
type Client struct {
	url         string
	http        *http.Client
	timeout     time.Duration
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	delay := opts.RetryDelay
	if delay < 0 {
		delay = 0
	}

	return &Client{
		url:         strings.TrimRight(opts.BaseURL, "/") + opts.Endpoint,
		http:        httpClient,
		timeout:     timeout,
		maxAttempts: attempts,
		retryDelay:  delay,
		logger:      opts.Logger,
	}
}

// NewFromConfig builds a Client from the enrichment config section.
func NewFromConfig(cfg config.EnrichmentConfig, logger *slog.Logger) *Client {
	return New(Options{
		BaseURL:     cfg.BaseURL,
		Endpoint:    cfg.Endpoint,
		Timeout:     time.Duration(cfg.TimeoutMs) * time.Millisecond,
		MaxAttempts: cfg.MaxAttempts,
		RetryDelay:  time.Duration(cfg.RetryDelayMs) * time.Millisecond,
		Logger:      logger,
	})
}

func (c *Client) logWarn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

// Enrich sends req to the enrichment API. It returns nil whenever no
// usable response could be obtained; callers treat that as "no
// enrichment". It never returns an error.
func (c *Client) Enrich(ctx context.Context, req *Request) *Response {
	if req == nil {
		c.logWarn("enrich_invalid_request", "error", "enrichment request cannot be nil")
		metrics.RecordEnrichResult(false)
		return nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		c.logWarn("enrich_invalid_request", "error", err.Error())
		metrics.RecordEnrichResult(false)
		return nil
	}

	var out *Response
	attempt := 0
	err = retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		attempt++
		resp, err := c.send(ctx, body)
		if err != nil {
			c.logWarn("enrich_attempt_failed",
				"url", c.url,
				"attempt", attempt,
				"max_attempts", c.maxAttempts,
				"error", err.Error(),
			)
			return err
		}
		out = resp
		return nil
	})
	if err != nil {
		c.logWarn("enrich_failed", "url", c.url, "attempts", attempt, "error", err.Error())
		metrics.RecordEnrichResult(false)
		return nil
	}

	metrics.RecordEnrichResult(true)
	return out
}

func (c *Client) backoff() retry.Backoff {
	var b retry.Backoff
	if c.retryDelay > 0 {
		b = retry.NewConstant(c.retryDelay)
	} else {
		b = retry.BackoffFunc(func() (time.Duration, bool) { return 0, false })
	}
	return retry.WithMaxRetries(uint64(c.maxAttempts-1), b)
}

// send performs one attempt. Errors wrapped with retry.RetryableError are
// transient; anything else ends the retry loop.
func (c *Client) send(ctx context.Context, body []byte) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	res, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.transportError(ctx, attemptCtx, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 500 && res.StatusCode <= 599 {
		_, _ = io.Copy(io.Discard, res.Body)
		metrics.RecordEnrichAttempt("server_error")
		return nil, retry.RetryableError(fmt.Errorf("enrichment api returned %d", res.StatusCode))
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		metrics.RecordEnrichAttempt("client_error")
		return nil, fmt.Errorf("enrichment api returned %d", res.StatusCode)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, c.transportError(ctx, attemptCtx, err)
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		metrics.RecordEnrichAttempt("decode_error")
		return nil, fmt.Errorf("decode enrichment response: %w", err)
	}

	metrics.RecordEnrichAttempt("success")
	return &out, nil
}

// transportError classifies a failed round trip. Cancellation of the
// caller's context is final; a per-attempt timeout or an unreachable host
// is retried.
func (c *Client) transportError(ctx, attemptCtx context.Context, err error) error {
	if ctx.Err() != nil {
		metrics.RecordEnrichAttempt("canceled")
		return ctx.Err()
	}

	var netErr net.Error
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		metrics.RecordEnrichAttempt("timeout")
		return retry.RetryableError(fmt.Errorf("timed out after %s: %w", c.timeout, err))
	}

	metrics.RecordEnrichAttempt("transport")
	return retry.RetryableError(fmt.Errorf("unreachable: %w", err))
}
