// Package tools registers the MCP tool set and implements its handlers.
// Every handler answers with a JSON document; domain failures are rendered
// as envelopes, never returned as Go errors to the transport.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/webscout/content"
	"github.com/use-agent/webscout/models"
	"github.com/use-agent/webscout/proxy"
	"github.com/use-agent/webscout/recommend"
)

type ctxKey int

const sessionKeyCtx ctxKey = iota

// WithSessionKey stashes a per-session API key into the context. The HTTP
// transport calls this from its header hook; stdio sessions never set it and
// fall back to the configured key.
func WithSessionKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionKeyCtx, key)
}

func sessionKey(ctx context.Context) string {
	if key, ok := ctx.Value(sessionKeyCtx).(string); ok {
		return key
	}
	return ""
}

// handlers bundles the collaborators the tool handlers share.
type handlers struct {
	client *proxy.Client
	shaper *content.Shaper
}

// Register adds every tool to the MCP server.
func Register(s *server.MCPServer, client *proxy.Client) {
	h := &handlers{client: client, shaper: content.NewShaper()}

	s.AddTool(browsePageTool(), h.handleBrowsePage)
	s.AddTool(extractDataTool(), h.handleExtractData)
	s.AddTool(getPageLinksTool(), h.handleGetPageLinks)
	s.AddTool(analyzeDifficultyTool(), h.handleAnalyzeDifficulty)
	s.AddTool(checkRenderingTool(), h.handleCheckRendering)
	s.AddTool(detectAntibotTool(), h.handleDetectAntibot)
	s.AddTool(checkLegalityTool(), h.handleCheckLegality)
	s.AddTool(classifyPageTool(), h.handleClassifyPage)
	s.AddTool(identifyDataSourcesTool(), h.handleIdentifyDataSources)
	s.AddTool(analyzeAPIEndpointsTool(), h.handleAnalyzeAPIEndpoints)
	s.AddTool(detectTechStackTool(), h.handleDetectTechStack)
	s.AddTool(checkSelectorStabilityTool(), h.handleCheckSelectorStability)
	s.AddTool(generateDataSchemaTool(), h.handleGenerateDataSchema)
}

// jsonResult pretty-prints any value as the tool's text result. Encoding
// failures become error results so the transport never sees a Go error.
func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		slog.Error("response encoding failed", "error", err)
		return mcp.NewToolResultError("internal: response encoding failed")
	}
	return mcp.NewToolResultText(string(raw))
}

// failureEnvelope renders a fetch failure through the permission gate. The
// retry count comes from the error itself.
func failureEnvelope(url string, used models.UsedOptions, err error) *mcp.CallToolResult {
	var ge *models.GatewayError
	if !errors.As(err, &ge) {
		ge = models.NewGatewayError(models.ErrKindUnknown, 0, err.Error(), err)
	}
	return jsonResult(recommend.Build(url, ge.Kind, ge.StatusCode, used, ge.Retries))
}

// fetchOptionsFromRequest reads the shared optional fetch flags.
func fetchOptionsFromRequest(request mcp.CallToolRequest) proxy.FetchOptions {
	var followRedirects *bool
	if args := request.GetArguments(); args != nil {
		if v, ok := args["follow_redirects"].(bool); ok {
			followRedirects = &v
		}
	}
	return proxy.FetchOptions{
		Country:         request.GetString("country", ""),
		Residential:     request.GetBool("residential", false),
		Mobile:          request.GetBool("mobile", false),
		Premium:         request.GetString("premium", ""),
		RenderJS:        request.GetBool("render_js", false),
		WaitFor:         request.GetString("wait_for", ""),
		Wait:            request.GetInt("wait", 0),
		Scroll:          request.GetBool("scroll", false),
		Screenshot:      request.GetBool("screenshot", false),
		Bypass:          request.GetString("bypass_level", ""),
		DeviceType:      request.GetString("device_type", ""),
		FollowRedirects: followRedirects,
		SessionNumber:   request.GetInt("session_number", 0),
		OptimizeRequest: request.GetBool("optimize_request", false),
		MaxRequestCost:  request.GetInt("max_request_cost", 0),
	}
}

// withFetchFlags appends the shared optional fetch flags to a tool schema.
func withFetchFlags(opts ...mcp.ToolOption) []mcp.ToolOption {
	shared := []mcp.ToolOption{
		mcp.WithString("country",
			mcp.Description("Proxy geolocation: us, gb, de, fr, ca, au, jp, in, br, nl, es, it"),
		),
		mcp.WithBoolean("residential",
			mcp.Description("Use residential proxies (advanced; costs extra credits)"),
		),
		mcp.WithBoolean("mobile",
			mcp.Description("Use mobile proxies (advanced; costs extra credits)"),
		),
		mcp.WithString("premium",
			mcp.Description("Premium proxy tier (advanced; costs extra credits)"),
			mcp.Enum("level_1", "level_2"),
		),
		mcp.WithBoolean("render_js",
			mcp.Description("Render the page in a headless browser (advanced; costs extra credits)"),
		),
		mcp.WithString("wait_for",
			mcp.Description("CSS selector to wait for before returning (requires render_js)"),
		),
		mcp.WithNumber("wait",
			mcp.Description("Extra wait in milliseconds after load (requires render_js)"),
		),
		mcp.WithBoolean("scroll",
			mcp.Description("Scroll the page to trigger lazy loading (requires render_js)"),
		),
		mcp.WithBoolean("screenshot",
			mcp.Description("Capture a screenshot (requires render_js)"),
		),
		mcp.WithString("bypass_level",
			mcp.Description("Anti-bot bypass level (advanced; costs extra credits)"),
			mcp.Enum("level_1", "level_2", "level_3",
				"cloudflare_level_1", "cloudflare_level_2", "cloudflare_level_3",
				"datadome", "perimeterx"),
		),
		mcp.WithString("device_type",
			mcp.Description("Device profile, e.g. desktop or mobile"),
		),
		mcp.WithBoolean("follow_redirects",
			mcp.Description("Follow HTTP redirects (default true on the backend)"),
		),
		mcp.WithNumber("session_number",
			mcp.Description("Sticky session id (1-10000) to reuse the same proxy IP"),
		),
		mcp.WithBoolean("optimize_request",
			mcp.Description("Let the backend pick the cheapest working configuration (advanced)"),
		),
		mcp.WithNumber("max_request_cost",
			mcp.Description("Credit ceiling per request when optimize_request is set"),
		),
	}
	return append(opts, shared...)
}
