package tools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/use-agent/webscout/proxy"
)

func checkLegalityTool() mcp.Tool {
	return mcp.NewTool("check_scraping_legality",
		mcp.WithDescription("Check what a site declares about scraping a URL: robots.txt allow/disallow for the path, crawl-delay, sitemap pointers, and the page's meta robots signals (noindex, nofollow). Informational only, not legal advice."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL whose scraping rules to check"),
		),
	)
}

type legalityResponse struct {
	Success     bool     `json:"success"`
	URL         string   `json:"url"`
	RobotsURL   string   `json:"robots_url"`
	Allowed     bool     `json:"allowed"`
	MatchedRule string   `json:"matched_rule,omitempty"`
	CrawlDelay  int      `json:"crawl_delay,omitempty"`
	Sitemaps    []string `json:"sitemaps,omitempty"`
	MetaRobots  []string `json:"meta_robots,omitempty"`
	Notes       []string `json:"notes"`
}

func (h *handlers) handleCheckLegality(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	parsed, err := url.Parse(targetURL)
	if err != nil || parsed.Host == "" {
		return mcp.NewToolResultError(fmt.Sprintf("invalid url: %s", targetURL)), nil
	}
	robotsURL := parsed.Scheme + "://" + parsed.Host + "/robots.txt"

	ev, used, err := h.client.Sample(ctx, sessionKey(ctx), robotsURL, proxy.FetchOptions{})
	if err != nil {
		return failureEnvelope(robotsURL, used, err), nil
	}

	notes := []string{
		"robots.txt expresses the site operator's crawling preferences; it is informational, not legal advice.",
		"Check the site's terms of service for binding restrictions.",
	}

	signals, metaNote := h.metaRobots(ctx, targetURL)
	if metaNote != "" {
		notes = append(notes, metaNote)
	}

	if !ev.Success {
		// No readable robots.txt is conventionally treated as "no
		// restrictions declared".
		return jsonResult(legalityResponse{
			Success:    true,
			URL:        targetURL,
			RobotsURL:  robotsURL,
			Allowed:    true,
			MetaRobots: signals,
			Notes: append([]string{
				fmt.Sprintf("robots.txt was not readable (HTTP %d); no crawling restrictions are declared.", ev.StatusCode),
			}, notes...),
		}), nil
	}

	rules := parseRobots(ev.HTML)
	allowed, matched := rules.allows(parsed.Path)

	return jsonResult(legalityResponse{
		Success:     true,
		URL:         targetURL,
		RobotsURL:   robotsURL,
		Allowed:     allowed,
		MatchedRule: matched,
		CrawlDelay:  rules.crawlDelay,
		Sitemaps:    rules.sitemaps,
		MetaRobots:  signals,
		Notes:       notes,
	}), nil
}

// metaRobots fetches the page itself and reports its meta robots signals.
// A failed page fetch does not fail the tool; it only yields a note.
func (h *handlers) metaRobots(ctx context.Context, targetURL string) ([]string, string) {
	ev, _, err := h.client.Sample(ctx, sessionKey(ctx), targetURL, proxy.FetchOptions{})
	if err != nil || !ev.Success {
		return nil, "The page itself could not be fetched; meta robots signals were not checked."
	}

	signals := metaRobotsSignals(ev.HTML)
	for _, s := range signals {
		if s == "noindex" || s == "none" {
			return signals, "The page declares noindex: the operator does not want its content indexed or republished."
		}
	}
	return signals, ""
}

// metaRobotsSignals extracts the directive tokens from <meta name="robots">
// tags, lowercased and deduplicated in document order.
func metaRobotsSignals(rawHTML string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var signals []string
	doc.Find(`meta[name]`).Each(func(_ int, sel *goquery.Selection) {
		name, _ := sel.Attr("name")
		if !strings.EqualFold(strings.TrimSpace(name), "robots") {
			return
		}
		content, _ := sel.Attr("content")
		for _, token := range strings.Split(content, ",") {
			token = strings.ToLower(strings.TrimSpace(token))
			if token == "" || seen[token] {
				continue
			}
			seen[token] = true
			signals = append(signals, token)
		}
	})
	return signals
}

// robotsRules holds the directives applying to generic crawlers (the "*"
// user-agent group) plus file-wide sitemap entries.
type robotsRules struct {
	disallow   []string
	allow      []string
	crawlDelay int
	sitemaps   []string
}

// parseRobots reads the "*" user-agent group of a robots.txt body. The
// parser is deliberately lenient: unparseable lines are skipped.
func parseRobots(body string) robotsRules {
	var rules robotsRules
	inStarGroup := false
	sawAgentLine := false

	for _, line := range strings.Split(body, "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		field = strings.ToLower(strings.TrimSpace(field))
		value = strings.TrimSpace(value)

		switch field {
		case "user-agent":
			// Consecutive user-agent lines share one group; any other
			// directive closes the agent list.
			if !sawAgentLine {
				inStarGroup = false
			}
			if value == "*" {
				inStarGroup = true
			}
			sawAgentLine = true
			continue
		case "sitemap":
			rules.sitemaps = append(rules.sitemaps, value)
		case "disallow":
			if inStarGroup && value != "" {
				rules.disallow = append(rules.disallow, value)
			}
		case "allow":
			if inStarGroup && value != "" {
				rules.allow = append(rules.allow, value)
			}
		case "crawl-delay":
			if inStarGroup {
				if d, err := strconv.Atoi(value); err == nil {
					rules.crawlDelay = d
				}
			}
		}
		sawAgentLine = false
	}

	return rules
}

// allows reports whether path is permitted, using longest-prefix-wins
// between allow and disallow rules. An empty path means the site root.
func (r robotsRules) allows(path string) (bool, string) {
	if path == "" {
		path = "/"
	}

	bestLen := -1
	allowed := true
	matched := ""

	for _, rule := range r.disallow {
		if strings.HasPrefix(path, rule) && len(rule) > bestLen {
			bestLen = len(rule)
			allowed = false
			matched = "Disallow: " + rule
		}
	}
	for _, rule := range r.allow {
		if strings.HasPrefix(path, rule) && len(rule) >= bestLen {
			bestLen = len(rule)
			allowed = true
			matched = "Allow: " + rule
		}
	}

	return allowed, matched
}
