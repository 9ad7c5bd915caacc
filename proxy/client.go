// Package proxy is the transport client for the remote fetch/analysis
// backend. It normalizes every failure into the ErrorKind taxonomy and
// applies the bounded retry policy before anything reaches the decision
// layer.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/webscout/config"
	"github.com/use-agent/webscout/models"
)

// maxBody caps response reads at 10 MB.
const maxBody = 10 << 20

// Client talks to the proxy and analysis endpoints. Safe for concurrent
// use; per-call state lives on the stack.
type Client struct {
	baseURL     string
	analysisURL string
	fallbackKey string

	httpClient      *http.Client
	analysisTimeout time.Duration
	limiter         *rate.Limiter

	maxAttempts    int
	initialBackoff time.Duration

	// sleep is swappable so tests can observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient builds a Client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:         strings.TrimRight(cfg.Proxy.BaseURL, "/"),
		analysisURL:     strings.TrimRight(cfg.Analysis.BaseURL, "/"),
		fallbackKey:     cfg.Proxy.APIKey,
		httpClient:      &http.Client{Timeout: cfg.Proxy.Timeout},
		analysisTimeout: cfg.Analysis.Timeout,
		limiter:         rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst),
		maxAttempts:     cfg.Retry.MaxAttempts,
		initialBackoff:  cfg.Retry.InitialBackoff,
		sleep:           sleepCtx,
	}
}

// FetchResult is one successful proxy fetch.
type FetchResult struct {
	StatusCode int
	Body       string
	// JSON is set when the response declared a JSON content type or the
	// caller requested JSON and the body parsed.
	JSON       json.RawMessage
	Retries    int
	DurationMs int64
}

// Fetch requests targetURL through the proxy. The retry policy:
//
//   - 401 fails immediately, regardless of budget.
//   - 500 retries with exponentially doubling backoff, up to the budget.
//   - Every other non-2xx status fails without retry.
//   - A transport-level error retries exactly once.
//
// On failure the returned error is a *models.GatewayError; the UsedOptions
// are returned either way so the envelope can report what was applied.
func (c *Client) Fetch(ctx context.Context, apiKey, targetURL string, opts FetchOptions) (*FetchResult, models.UsedOptions, error) {
	q, used := opts.query(targetURL, c.key(apiKey))
	fullURL := c.baseURL + "?" + q.Encode()
	wantJSON := opts.JSONResponse || opts.LLMExtract != "" || opts.AutoExtract != "" || opts.ReturnLinks

	start := time.Now()
	attempt := 0
	delay := c.initialBackoff

	// fail stamps the retries performed so far onto the returned error, so
	// failure envelopes can report them.
	fail := func(kind models.ErrorKind, status int, msg string, cause error) error {
		ge := models.NewGatewayError(kind, status, msg, cause)
		ge.Retries = attempt
		return ge
	}

	for attempt < c.maxAttempts {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, used, fail(models.ErrKindNetworkError, 0, "rate limiter interrupted", err)
		}

		status, body, contentType, err := c.get(ctx, fullURL)
		if err != nil {
			if attempt < 1 {
				slog.Debug("transport error, retrying once", "url", targetURL, "error", err)
				if serr := c.sleep(ctx, delay); serr != nil {
					return nil, used, fail(models.ErrKindNetworkError, 0, "cancelled during backoff", serr)
				}
				attempt++
				continue
			}
			return nil, used, fail(models.ErrKindNetworkError, 0, transportMessage(err), err)
		}

		if status >= 200 && status < 300 {
			result := &FetchResult{
				StatusCode: status,
				Body:       body,
				Retries:    attempt,
				DurationMs: time.Since(start).Milliseconds(),
			}
			if wantJSON || strings.Contains(contentType, "application/json") {
				if json.Valid([]byte(body)) {
					result.JSON = json.RawMessage(body)
				}
			}
			return result, used, nil
		}

		kind := models.ClassifyStatus(status)
		if kind == models.ErrKindAuthFailed {
			return nil, used, fail(kind, status, "API key rejected by the backend", nil)
		}
		if status == 500 && attempt < c.maxAttempts-1 {
			slog.Debug("server error, backing off", "url", targetURL, "attempt", attempt, "delay", delay)
			if serr := c.sleep(ctx, delay); serr != nil {
				return nil, used, fail(models.ErrKindNetworkError, 0, "cancelled during backoff", serr)
			}
			delay *= 2
			attempt++
			continue
		}
		return nil, used, fail(kind, status, fmt.Sprintf("backend returned HTTP %d", status), nil)
	}

	return nil, used, fail(models.ErrKindUnknown, 0, "retry budget exhausted", nil)
}

// key resolves the per-session key, falling back to the configured one.
func (c *Client) key(sessionKey string) string {
	if sessionKey != "" {
		return sessionKey
	}
	return c.fallbackKey
}

func (c *Client) get(ctx context.Context, fullURL string) (status int, body, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, "", "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return 0, "", "", fmt.Errorf("read body: %w", err)
	}

	return resp.StatusCode, string(raw), resp.Header.Get("Content-Type"), nil
}

// transportMessage distinguishes a deadline expiry from other transport
// failures, so timeouts stay identifiable downstream.
func transportMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return "connection to the backend failed"
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
