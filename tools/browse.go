package tools

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/use-agent/webscout/models"
	"github.com/use-agent/webscout/proxy"
)

func browsePageTool() mcp.Tool {
	return mcp.NewTool("browse_page",
		withFetchFlags(
			mcp.WithDescription("Fetch a web page through the scraping proxy and return its content as markdown, plain text, or HTML. On failure, explains what went wrong and whether costlier retry options could help — those are never applied without your confirmation."),
			mcp.WithString("url",
				mcp.Required(),
				mcp.Description("The URL of the web page to fetch"),
			),
			mcp.WithString("output_format",
				mcp.Description("Output format: 'markdown' (default), 'text', or 'html'"),
				mcp.Enum("markdown", "text", "html"),
			),
			mcp.WithString("extract_mode",
				mcp.Description("'main_content' (default, strips navigation/ads) or 'raw' (whole page)"),
				mcp.Enum("main_content", "raw"),
			),
		)...,
	)
}

type browseResponse struct {
	Success          bool               `json:"success"`
	URL              string             `json:"url"`
	StatusCode       int                `json:"status_code"`
	RetriesAttempted int                `json:"retries_attempted"`
	OptionsUsed      models.UsedOptions `json:"options_used"`
	Format           string             `json:"format"`
	Title            string             `json:"title,omitempty"`
	Content          string             `json:"content"`
	DurationMs       int64              `json:"duration_ms"`
}

func (h *handlers) handleBrowsePage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	opts := fetchOptionsFromRequest(request)
	if err := opts.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, used, err := h.client.Fetch(ctx, sessionKey(ctx), targetURL, opts)
	if err != nil {
		return failureEnvelope(targetURL, used, err), nil
	}

	format := request.GetString("output_format", "markdown")
	mainContent := request.GetString("extract_mode", "main_content") != "raw"
	output, title := h.shaper.Shape(pageHTML(result), targetURL, format, mainContent)

	return jsonResult(browseResponse{
		Success:          true,
		URL:              targetURL,
		StatusCode:       result.StatusCode,
		RetriesAttempted: result.Retries,
		OptionsUsed:      used,
		Format:           format,
		Title:            title,
		Content:          output,
		DurationMs:       result.DurationMs,
	}), nil
}

func extractDataTool() mcp.Tool {
	return mcp.NewTool("extract_data",
		withFetchFlags(
			mcp.WithDescription("Fetch a page and extract structured data with the backend's LLM extractor, guided by a schema or a natural-language prompt."),
			mcp.WithString("url",
				mcp.Required(),
				mcp.Description("The URL of the web page to extract from"),
			),
			mcp.WithString("prompt",
				mcp.Description("Natural-language description of the data to extract"),
			),
			mcp.WithString("schema",
				mcp.Description("JSON schema string describing the desired output structure"),
			),
			mcp.WithString("response_type",
				mcp.Description("Shape of the extractor response: 'json' (default) or 'text'"),
				mcp.Enum("json", "text"),
			),
		)...,
	)
}

func (h *handlers) handleExtractData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	prompt := request.GetString("prompt", "")
	schema := request.GetString("schema", "")
	if prompt == "" && schema == "" {
		return mcp.NewToolResultError("either prompt or schema is required"), nil
	}
	if schema != "" && !json.Valid([]byte(schema)) {
		return mcp.NewToolResultError("schema must be valid JSON"), nil
	}

	opts := fetchOptionsFromRequest(request)
	opts.LLMExtract = prompt
	opts.LLMDataSchema = schema
	opts.LLMExtractResponseType = request.GetString("response_type", "")
	if err := opts.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, used, err := h.client.Fetch(ctx, sessionKey(ctx), targetURL, opts)
	if err != nil {
		return failureEnvelope(targetURL, used, err), nil
	}

	response := map[string]any{
		"success":           true,
		"url":               targetURL,
		"status_code":       result.StatusCode,
		"retries_attempted": result.Retries,
		"options_used":      used,
	}
	if result.JSON != nil {
		response["data"] = result.JSON
	} else {
		response["data"] = result.Body
	}
	return jsonResult(response), nil
}

func getPageLinksTool() mcp.Tool {
	return mcp.NewTool("get_page_links",
		withFetchFlags(
			mcp.WithDescription("Fetch a page and return every link on it, grouped into internal and external."),
			mcp.WithString("url",
				mcp.Required(),
				mcp.Description("The URL of the web page to collect links from"),
			),
		)...,
	)
}

type pageLinksResponse struct {
	Success     bool               `json:"success"`
	URL         string             `json:"url"`
	Internal    []string           `json:"internal"`
	External    []string           `json:"external"`
	Total       int                `json:"total"`
	OptionsUsed models.UsedOptions `json:"options_used"`
}

func (h *handlers) handleGetPageLinks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	opts := fetchOptionsFromRequest(request)
	opts.ReturnLinks = true
	if err := opts.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, used, err := h.client.Fetch(ctx, sessionKey(ctx), targetURL, opts)
	if err != nil {
		return failureEnvelope(targetURL, used, err), nil
	}

	links := linksFromResult(result)
	if len(links) == 0 {
		links = harvestLinks(pageHTML(result), targetURL)
	}
	internal, external := splitLinks(links, targetURL)

	return jsonResult(pageLinksResponse{
		Success:     true,
		URL:         targetURL,
		Internal:    internal,
		External:    external,
		Total:       len(internal) + len(external),
		OptionsUsed: used,
	}), nil
}

// pageHTML returns the page HTML from a fetch result, unwrapping the JSON
// envelope when the backend returned one.
func pageHTML(result *proxy.FetchResult) string {
	if result.JSON != nil {
		var wrapper struct {
			Body string `json:"body"`
		}
		if err := json.Unmarshal(result.JSON, &wrapper); err == nil && wrapper.Body != "" {
			return wrapper.Body
		}
	}
	return result.Body
}

// linksFromResult reads the backend's return_links payload when present.
func linksFromResult(result *proxy.FetchResult) []string {
	if result.JSON == nil {
		return nil
	}
	var wrapper struct {
		Links []string `json:"links"`
	}
	if err := json.Unmarshal(result.JSON, &wrapper); err != nil {
		return nil
	}
	return wrapper.Links
}

// harvestLinks extracts anchor hrefs from HTML, resolving them against the
// page URL. Parse failures degrade to an empty list.
func harvestLinks(htmlStr, pageURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if !seen[abs] {
			seen[abs] = true
			links = append(links, abs)
		}
	})
	return links
}

func splitLinks(links []string, pageURL string) (internal, external []string) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, links
	}
	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil {
			continue
		}
		if u.Host == base.Host {
			internal = append(internal, link)
		} else {
			external = append(external, link)
		}
	}
	return internal, external
}
