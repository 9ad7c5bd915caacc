package tools

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/use-agent/webscout/models"
)

func TestFailureEnvelopeCarriesRetryCount(t *testing.T) {
	gerr := models.NewGatewayError(models.ErrKindServerError, 500, "backend returned HTTP 500", nil)
	gerr.Retries = 2

	res := failureEnvelope("https://example.com", models.UsedOptions{}, gerr)
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	var env models.Envelope
	if err := json.Unmarshal([]byte(text.Text), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.RetriesAttempted != 2 {
		t.Errorf("retries_attempted = %d, want 2", env.RetriesAttempted)
	}
	if env.ErrorType != models.ErrKindServerError {
		t.Errorf("error_type = %s, want server_error", env.ErrorType)
	}
}

func TestParseRobots(t *testing.T) {
	body := `# comment
User-agent: googlebot
Disallow: /google-only/

User-agent: *
Disallow: /admin/
Disallow: /private/
Allow: /private/press/
Crawl-delay: 5

Sitemap: https://example.com/sitemap.xml
`

	rules := parseRobots(body)

	if len(rules.disallow) != 2 {
		t.Errorf("disallow rules = %v, want the two generic ones", rules.disallow)
	}
	for _, r := range rules.disallow {
		if r == "/google-only/" {
			t.Error("rules from another user-agent group must not apply")
		}
	}
	if rules.crawlDelay != 5 {
		t.Errorf("crawl_delay = %d, want 5", rules.crawlDelay)
	}
	if len(rules.sitemaps) != 1 || rules.sitemaps[0] != "https://example.com/sitemap.xml" {
		t.Errorf("sitemaps = %v", rules.sitemaps)
	}
}

func TestRobotsAllows(t *testing.T) {
	rules := robotsRules{
		disallow: []string{"/admin/", "/private/"},
		allow:    []string{"/private/press/"},
	}

	tests := []struct {
		path    string
		allowed bool
	}{
		{"/", true},
		{"/products/1", true},
		{"/admin/users", false},
		{"/private/data", false},
		{"/private/press/2026", true}, // longest prefix wins
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			allowed, _ := rules.allows(tt.path)
			if allowed != tt.allowed {
				t.Errorf("allows(%q) = %v, want %v", tt.path, allowed, tt.allowed)
			}
		})
	}
}

func TestMetaRobotsSignals(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "noindex nofollow",
			html: `<head><meta name="robots" content="noindex, nofollow"></head>`,
			want: []string{"noindex", "nofollow"},
		},
		{
			name: "case and whitespace normalized",
			html: `<head><meta name="ROBOTS" content=" NoIndex ,NOARCHIVE"></head>`,
			want: []string{"noindex", "noarchive"},
		},
		{
			name: "duplicates across tags collapsed",
			html: `<head><meta name="robots" content="nofollow"><meta name="robots" content="nofollow, noindex"></head>`,
			want: []string{"nofollow", "noindex"},
		},
		{
			name: "other meta names ignored",
			html: `<head><meta name="description" content="noindex"><meta name="viewport" content="width=device-width"></head>`,
			want: nil,
		},
		{
			name: "no meta tags",
			html: `<html><body><p>hello</p></body></html>`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := metaRobotsSignals(tt.html)
			if len(got) != len(tt.want) {
				t.Fatalf("signals = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("signals[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestScanDataSources(t *testing.T) {
	html := `<html><head>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Product","name":"Widget"}</script>
<script type="application/ld+json">{broken json</script>
<link rel="alternate" type="application/rss+xml" href="/feed.xml">
</head><body>
<script>window.__INITIAL_STATE__ = {"items":[]};</script>
<div data-testid="a"></div><div data-testid="b"></div><div data-testid="c"></div>
</body></html>`

	out := scanDataSources(html)

	if len(out.JSONLDTypes) != 1 || out.JSONLDTypes[0] != "Product" {
		t.Errorf("jsonld_types = %v, want [Product] (malformed blocks skipped)", out.JSONLDTypes)
	}
	if len(out.EmbeddedState) != 1 || out.EmbeddedState[0] != "__INITIAL_STATE__" {
		t.Errorf("embedded_state = %v", out.EmbeddedState)
	}
	if len(out.Feeds) != 1 {
		t.Errorf("feeds = %v", out.Feeds)
	}
	foundAttr := false
	for _, a := range out.DataAttrs {
		if a == "data-testid" {
			foundAttr = true
		}
	}
	if !foundAttr {
		t.Errorf("data_attributes = %v, want data-testid", out.DataAttrs)
	}
}

func TestScanDataSources_EmptyPage(t *testing.T) {
	out := scanDataSources("<html><body><p>hello</p></body></html>")

	if len(out.JSONLDTypes) != 0 || len(out.EmbeddedState) != 0 {
		t.Errorf("plain page should expose nothing: %+v", out)
	}
	if !strings.Contains(out.Summary, "No structured data") {
		t.Errorf("summary = %q", out.Summary)
	}
}

func TestScanAPIEndpoints(t *testing.T) {
	html := `<script>
const base = "https://api.example.com/api/v2/products?page=1&limit=20";
fetch("/api/search?cursor=abc");
fetch("/static/logo.png");
const dup = "https://api.example.com/api/v2/products?page=1&limit=20";
</script>`

	endpoints := scanAPIEndpoints(html)

	if len(endpoints) != 2 {
		t.Fatalf("endpoints = %v, want 2 deduplicated API URLs", endpoints)
	}
	if endpoints[0].Pagination != "page" {
		t.Errorf("pagination hint = %q, want page", endpoints[0].Pagination)
	}
	if endpoints[1].Pagination != "cursor" {
		t.Errorf("pagination hint = %q, want cursor", endpoints[1].Pagination)
	}
}

func TestScanAPIEndpoints_NoneFound(t *testing.T) {
	if got := scanAPIEndpoints("<html><body>static page</body></html>"); len(got) != 0 {
		t.Errorf("expected no endpoints, got %v", got)
	}
}

func TestSplitLinks(t *testing.T) {
	links := []string{
		"https://example.com/a",
		"https://example.com/b",
		"https://other.example/c",
	}

	internal, external := splitLinks(links, "https://example.com/page")

	if len(internal) != 2 {
		t.Errorf("internal = %v", internal)
	}
	if len(external) != 1 {
		t.Errorf("external = %v", external)
	}
}

func TestHarvestLinks(t *testing.T) {
	html := `<html><body>
<a href="/about">About</a>
<a href="https://other.example/x">Other</a>
<a href="#section">Anchor</a>
<a href="javascript:void(0)">JS</a>
<a href="/about">Duplicate</a>
</body></html>`

	links := harvestLinks(html, "https://example.com/page")

	if len(links) != 2 {
		t.Fatalf("links = %v, want 2 (relative resolved, fragments/js/dupes dropped)", links)
	}
	if links[0] != "https://example.com/about" {
		t.Errorf("relative link not resolved: %v", links[0])
	}
}

func TestDifficultyScore(t *testing.T) {
	blocked := models.Evidence{Success: false, StatusCode: 403}
	antibot := []models.Detection{{
		Name:               "Cloudflare",
		Confidence:         models.ConfidenceHigh,
		IsActivelyBlocking: true,
	}}
	frameworks := []models.FrameworkDetection{{Name: "React", RenderingLikelyRequired: true}}

	score, findings := difficultyScore(blocked, antibot, frameworks)
	if score < 7 {
		t.Errorf("actively blocked SPA should score high, got %d", score)
	}
	if len(findings) == 0 {
		t.Error("expected findings")
	}

	easy := models.Evidence{Success: true, TextContent: strings.Repeat("a", 2000)}
	score, _ = difficultyScore(easy, nil, nil)
	if score != 1 {
		t.Errorf("clean page should score 1, got %d", score)
	}
	if difficultyRating(score) != "easy" {
		t.Errorf("rating = %s", difficultyRating(score))
	}
}
