package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/use-agent/webscout/models"
)

// StabilityAnalysis is the selector-stability payload from the analysis
// backend: a classification label plus the fingerprint metrics behind it.
type StabilityAnalysis struct {
	Classification string `json:"classification"`
	models.StabilityMetrics
}

// ClassifyPageType asks the analysis backend what kind of page a URL is
// (article, product, listing, search, ...). The raw JSON verdict is passed
// through to the caller.
func (c *Client) ClassifyPageType(ctx context.Context, apiKey, targetURL string) (json.RawMessage, error) {
	return c.post(ctx, apiKey, "/analysis/page-type", map[string]any{"url": targetURL})
}

// GenerateDataSchema asks the analysis backend for an extraction schema
// matching the page's content.
func (c *Client) GenerateDataSchema(ctx context.Context, apiKey, targetURL, userPrompt string) (json.RawMessage, error) {
	body := map[string]any{"url": targetURL}
	if userPrompt != "" {
		body["prompt"] = userPrompt
	}
	return c.post(ctx, apiKey, "/analysis/data-schema", body)
}

// SelectorStability runs the multi-sample fingerprint comparison on the
// analysis backend and returns its label and metrics.
func (c *Client) SelectorStability(ctx context.Context, apiKey, targetURL string, selectors []string, renderJS bool) (*StabilityAnalysis, error) {
	raw, err := c.post(ctx, apiKey, "/analysis/selector-stability", map[string]any{
		"url":       targetURL,
		"selectors": selectors,
		"render_js": renderJS,
	})
	if err != nil {
		return nil, err
	}

	var result StabilityAnalysis
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, models.NewGatewayError(models.ErrKindUnknown, 0, "malformed stability analysis response", err)
	}
	return &result, nil
}

// post sends a JSON body to an analysis endpoint with the per-endpoint
// timeout armed. The timeout is surfaced as a distinguishable error so the
// envelope path still produces a well-formed response.
func (c *Client) post(ctx context.Context, apiKey, path string, payload any) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, models.NewGatewayError(models.ErrKindNetworkError, 0, "rate limiter interrupted", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.analysisTimeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.analysisURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.key(apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.NewGatewayError(models.ErrKindNetworkError, 0, "analysis call timed out", err)
		}
		return nil, models.NewGatewayError(models.ErrKindNetworkError, 0, "analysis call failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, models.NewGatewayError(models.ErrKindNetworkError, 0, "read analysis response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := models.ClassifyStatus(resp.StatusCode)
		return nil, models.NewGatewayError(kind, resp.StatusCode,
			fmt.Sprintf("analysis backend returned HTTP %d", resp.StatusCode), nil)
	}

	return json.RawMessage(raw), nil
}
