// Package content shapes fetched HTML into the output formats the browse
// tool offers: markdown, plain text, or raw HTML, with an optional
// main-content extraction pass.
package content

import (
	"log/slog"
	nurl "net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	readability "github.com/go-shiori/go-readability"

	"github.com/use-agent/webscout/evidence"
)

// minContentLength is the minimum extracted text length for the readability
// pass to be trusted; below it the raw HTML is used instead.
const minContentLength = 50

// Shaper converts fetched HTML into agent-facing output. The converter is
// goroutine-safe and built once.
type Shaper struct {
	conv *converter.Converter
}

// NewShaper builds a Shaper with an LLM-friendly markdown configuration:
// base plugin strips script/style/head noise, commonmark renders standard
// markdown, and the table plugin keeps tabular structure with minimal cell
// padding to save tokens.
func NewShaper() *Shaper {
	return &Shaper{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Shape renders rawHTML in the requested format: "markdown" (default),
// "text", or "html". When mainContent is true, the Mozilla Readability
// algorithm strips navigation/footer/ads first; on failure the raw HTML is
// used so the tool call never fails over formatting.
func (s *Shaper) Shape(rawHTML, sourceURL, format string, mainContent bool) (output string, title string) {
	htmlIn := rawHTML
	if mainContent {
		article, ok := extractMainContent(rawHTML, sourceURL)
		if ok {
			htmlIn = article.Content
			title = article.Title
		}
	}

	switch format {
	case "html":
		return htmlIn, title
	case "text":
		return evidence.StripTags(htmlIn), title
	default:
		md, err := s.conv.ConvertString(htmlIn, converter.WithDomain(domainOf(sourceURL)))
		if err != nil {
			slog.Warn("markdown conversion failed, returning plain text", "url", sourceURL, "error", err)
			return evidence.StripTags(htmlIn), title
		}
		return md, title
	}
}

// extractMainContent runs readability, reporting whether the result is
// trustworthy.
func extractMainContent(rawHTML, sourceURL string) (readability.Article, bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		return readability.Article{}, false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("readability extraction failed, using full HTML", "url", sourceURL, "error", err)
		return readability.Article{}, false
	}
	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		return readability.Article{}, false
	}
	return article, true
}

func domainOf(sourceURL string) string {
	if u, err := nurl.Parse(sourceURL); err == nil {
		return u.Scheme + "://" + u.Host
	}
	return ""
}
