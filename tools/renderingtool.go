package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/use-agent/webscout/models"
	"github.com/use-agent/webscout/rendering"
)

func checkRenderingTool() mcp.Tool {
	return mcp.NewTool("check_rendering_needed",
		mcp.WithDescription("Fetch a page twice (with and without JavaScript rendering) and report whether the page needs rendering to show its content, with itemized reasons. The rendered fetch costs extra credits."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to analyze"),
		),
	)
}

type renderingResponse struct {
	Success bool                    `json:"success"`
	URL     string                  `json:"url"`
	Verdict models.RenderingVerdict `json:"verdict"`
}

func (h *handlers) handleCheckRendering(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	key := sessionKey(ctx)
	opts := fetchOptionsFromRequest(request)
	opts.RenderJS = false

	noJS, used, err := h.client.Sample(ctx, key, targetURL, opts)
	if err != nil {
		return failureEnvelope(targetURL, used, err), nil
	}

	opts.RenderJS = true
	rendered, usedRendered, err := h.client.Sample(ctx, key, targetURL, opts)
	if err != nil {
		return failureEnvelope(targetURL, usedRendered, err), nil
	}

	return jsonResult(renderingResponse{
		Success: true,
		URL:     targetURL,
		Verdict: rendering.Analyze(noJS, rendered),
	}), nil
}
