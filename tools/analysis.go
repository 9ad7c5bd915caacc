package tools

import (
	"context"
	"fmt"

	"github.com/andybalholm/cascadia"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/use-agent/webscout/models"
	"github.com/use-agent/webscout/stability"
)

func classifyPageTool() mcp.Tool {
	return mcp.NewTool("classify_page_type",
		mcp.WithDescription("Ask the analysis backend what kind of page a URL is (article, product, listing, search results, ...)."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to classify"),
		),
	)
}

func (h *handlers) handleClassifyPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	verdict, err := h.client.ClassifyPageType(ctx, sessionKey(ctx), targetURL)
	if err != nil {
		return failureEnvelope(targetURL, nil, err), nil
	}

	return jsonResult(map[string]any{
		"success":        true,
		"url":            targetURL,
		"classification": verdict,
	}), nil
}

func generateDataSchemaTool() mcp.Tool {
	return mcp.NewTool("generate_data_schema",
		mcp.WithDescription("Ask the analysis backend to propose an extraction schema matching a page's content, optionally guided by a prompt describing what you want."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to build an extraction schema for"),
		),
		mcp.WithString("prompt",
			mcp.Description("Optional description of the data you want the schema to cover"),
		),
	)
}

func (h *handlers) handleGenerateDataSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	schema, err := h.client.GenerateDataSchema(ctx, sessionKey(ctx), targetURL, request.GetString("prompt", ""))
	if err != nil {
		return failureEnvelope(targetURL, nil, err), nil
	}

	return jsonResult(map[string]any{
		"success": true,
		"url":     targetURL,
		"schema":  schema,
	}), nil
}

func checkSelectorStabilityTool() mcp.Tool {
	return mcp.NewTool("check_selector_stability",
		mcp.WithDescription("Check how stable CSS selectors are on a page across multiple loads, and get a selector strategy: which selectors to use and which to avoid."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to analyze"),
		),
		mcp.WithArray("selectors",
			mcp.Description("Specific CSS selectors to evaluate (optional)"),
		),
		mcp.WithBoolean("render_js",
			mcp.Description("Sample the rendered page instead of the plain HTML (costs extra credits)"),
		),
	)
}

type selectorStabilityResponse struct {
	Success bool                   `json:"success"`
	URL     string                 `json:"url"`
	Report  models.StabilityReport `json:"report"`
}

func (h *handlers) handleCheckSelectorStability(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	selectors := request.GetStringSlice("selectors", nil)
	for _, sel := range selectors {
		if _, err := cascadia.Parse(sel); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid CSS selector %q: %v", sel, err)), nil
		}
	}

	analysis, err := h.client.SelectorStability(ctx, sessionKey(ctx), targetURL, selectors, request.GetBool("render_js", false))
	if err != nil {
		return failureEnvelope(targetURL, nil, err), nil
	}

	return jsonResult(selectorStabilityResponse{
		Success: true,
		URL:     targetURL,
		Report:  stability.Classify(analysis.Classification, analysis.StabilityMetrics),
	}), nil
}
