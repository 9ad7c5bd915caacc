package tools

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mark3labs/mcp-go/mcp"
)

func identifyDataSourcesTool() mcp.Tool {
	return mcp.NewTool("identify_data_sources",
		mcp.WithDescription("Fetch a page once and list the structured data it already exposes: JSON-LD blocks, embedded framework state, feeds, and data attributes. Structured sources are usually easier to scrape than the rendered DOM."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to inspect"),
		),
	)
}

type dataSourcesResponse struct {
	Success       bool     `json:"success"`
	URL           string   `json:"url"`
	JSONLDTypes   []string `json:"jsonld_types"`
	EmbeddedState []string `json:"embedded_state"`
	Feeds         []string `json:"feeds"`
	DataAttrs     []string `json:"data_attributes"`
	Summary       string   `json:"summary"`
}

func (h *handlers) handleIdentifyDataSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	ev, used, err := h.client.Sample(ctx, sessionKey(ctx), targetURL, fetchOptionsFromRequest(request))
	if err != nil {
		return failureEnvelope(targetURL, used, err), nil
	}

	sources := scanDataSources(ev.HTML)
	sources.Success = true
	sources.URL = targetURL
	return jsonResult(sources), nil
}

// embeddedStatePatterns find framework state objects inlined into the page.
var embeddedStatePatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"__NEXT_DATA__", regexp.MustCompile(`__NEXT_DATA__`)},
	{"__NUXT__", regexp.MustCompile(`__NUXT__`)},
	{"__INITIAL_STATE__", regexp.MustCompile(`__INITIAL_STATE__`)},
	{"__APOLLO_STATE__", regexp.MustCompile(`__APOLLO_STATE__`)},
	{"__PRELOADED_STATE__", regexp.MustCompile(`__PRELOADED_STATE__`)},
}

func scanDataSources(htmlStr string) dataSourcesResponse {
	out := dataSourcesResponse{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		out.Summary = "The page HTML did not parse; no data sources found."
		return out
	}

	// JSON-LD blocks. A malformed block is skipped, never fatal.
	seen := make(map[string]bool)
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var block struct {
			Type any `json:"@type"`
		}
		if err := json.Unmarshal([]byte(s.Text()), &block); err != nil {
			return
		}
		for _, t := range jsonldTypes(block.Type) {
			if !seen[t] {
				seen[t] = true
				out.JSONLDTypes = append(out.JSONLDTypes, t)
			}
		}
	})

	for _, p := range embeddedStatePatterns {
		if p.re.MatchString(htmlStr) {
			out.EmbeddedState = append(out.EmbeddedState, p.name)
		}
	}

	doc.Find(`link[type="application/rss+xml"], link[type="application/atom+xml"]`).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			out.Feeds = append(out.Feeds, href)
		}
	})

	// Repeated data attributes hint at machine-readable markup.
	attrCount := make(map[string]int)
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range s.Nodes[0].Attr {
			if strings.HasPrefix(attr.Key, "data-") {
				attrCount[attr.Key]++
			}
		}
	})
	for attr, n := range attrCount {
		if n >= 3 {
			out.DataAttrs = append(out.DataAttrs, attr)
		}
	}

	out.Summary = dataSourcesSummary(out)
	return out
}

func jsonldTypes(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		var types []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				types = append(types, s)
			}
		}
		return types
	}
	return nil
}

func dataSourcesSummary(s dataSourcesResponse) string {
	if len(s.JSONLDTypes) == 0 && len(s.EmbeddedState) == 0 && len(s.Feeds) == 0 {
		return "No structured data sources found; scrape the rendered DOM."
	}
	var parts []string
	if len(s.JSONLDTypes) > 0 {
		parts = append(parts, "JSON-LD ("+strings.Join(s.JSONLDTypes, ", ")+")")
	}
	if len(s.EmbeddedState) > 0 {
		parts = append(parts, "embedded state ("+strings.Join(s.EmbeddedState, ", ")+")")
	}
	if len(s.Feeds) > 0 {
		parts = append(parts, "feeds")
	}
	return "Prefer structured sources over the DOM: " + strings.Join(parts, ", ") + "."
}

func analyzeAPIEndpointsTool() mcp.Tool {
	return mcp.NewTool("analyze_api_endpoints",
		mcp.WithDescription("Fetch a page once and scan its scripts for API endpoints the frontend calls. Calling those endpoints directly is often more reliable than scraping the DOM."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL whose frontend to inspect"),
		),
	)
}

type apiEndpoint struct {
	URL        string `json:"url"`
	Pagination string `json:"pagination,omitempty"`
}

type apiEndpointsResponse struct {
	Success   bool          `json:"success"`
	URL       string        `json:"url"`
	Endpoints []apiEndpoint `json:"endpoints"`
	Summary   string        `json:"summary"`
}

func (h *handlers) handleAnalyzeAPIEndpoints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	ev, used, err := h.client.Sample(ctx, sessionKey(ctx), targetURL, fetchOptionsFromRequest(request))
	if err != nil {
		return failureEnvelope(targetURL, used, err), nil
	}

	endpoints := scanAPIEndpoints(ev.HTML)
	summary := "No API endpoints found in the page's scripts."
	if len(endpoints) > 0 {
		summary = "The frontend calls these endpoints; try them before scraping the DOM."
	}

	return jsonResult(apiEndpointsResponse{
		Success:   true,
		URL:       targetURL,
		Endpoints: endpoints,
		Summary:   summary,
	}), nil
}

var (
	apiURLPattern   = regexp.MustCompile(`["'](https?://[^"'\s]+/(?:api|graphql)[^"'\s]*|/(?:api|graphql)(?:/[^"'\s]*)?)["']`)
	fetchPattern    = regexp.MustCompile(`fetch\(\s*["']([^"']+)["']`)
	paginationHints = []string{"page=", "offset=", "cursor=", "limit=", "per_page="}
)

// scanAPIEndpoints pulls API-looking URLs out of inline scripts. Findings
// are deduplicated; a degenerate page degrades to an empty list.
func scanAPIEndpoints(htmlStr string) []apiEndpoint {
	seen := make(map[string]bool)
	var endpoints []apiEndpoint

	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		endpoints = append(endpoints, apiEndpoint{URL: u, Pagination: paginationHint(u)})
	}

	for _, m := range apiURLPattern.FindAllStringSubmatch(htmlStr, -1) {
		add(m[1])
	}
	for _, m := range fetchPattern.FindAllStringSubmatch(htmlStr, -1) {
		if strings.Contains(m[1], "/api") || strings.Contains(m[1], "graphql") {
			add(m[1])
		}
	}

	return endpoints
}

// paginationHint sniffs the pagination shape from an endpoint's query
// string.
func paginationHint(endpoint string) string {
	for _, hint := range paginationHints {
		if strings.Contains(endpoint, hint) {
			return strings.TrimSuffix(hint, "=")
		}
	}
	return ""
}
