package proxy

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/use-agent/webscout/evidence"
	"github.com/use-agent/webscout/models"
)

// Sample performs a single fetch and returns the outcome as evidence,
// bypassing the retry policy: the diagnostic tools want a blocked response's
// body and status, not a classified error. Only a transport-level failure
// returns an error.
func (c *Client) Sample(ctx context.Context, apiKey, targetURL string, opts FetchOptions) (models.Evidence, models.UsedOptions, error) {
	q, used := opts.query(targetURL, c.key(apiKey))
	fullURL := c.baseURL + "?" + q.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return models.Evidence{}, used, models.NewGatewayError(models.ErrKindNetworkError, 0, "rate limiter interrupted", err)
	}

	start := time.Now()
	status, body, contentType, err := c.get(ctx, fullURL)
	if err != nil {
		return models.Evidence{}, used, models.NewGatewayError(models.ErrKindNetworkError, 0, transportMessage(err), err)
	}

	// A JSON-wrapped response still carries the page HTML in its body field.
	if strings.Contains(contentType, "application/json") {
		body = unwrapBody(body)
	}

	success := status >= 200 && status < 300
	kind := models.ErrorKind("")
	if !success {
		kind = models.ClassifyStatus(status)
	}

	return evidence.Collect(body, status, success, kind, time.Since(start).Milliseconds()), used, nil
}

// unwrapBody pulls the page HTML out of a JSON proxy envelope. Malformed
// JSON degrades to the raw body.
func unwrapBody(body string) string {
	var wrapper struct {
		Body string `json:"body"`
	}
	if err := json.Unmarshal([]byte(body), &wrapper); err == nil && wrapper.Body != "" {
		return wrapper.Body
	}
	return body
}
