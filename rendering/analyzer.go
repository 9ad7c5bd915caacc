// Package rendering decides whether a page needs JavaScript rendering by
// comparing a non-rendered and a rendered fetch of the same URL.
package rendering

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/webscout/evidence"
	"github.com/use-agent/webscout/models"
	"github.com/use-agent/webscout/signature"
)

// mountPoint is one known empty SPA container signature. The pattern matches
// an id-based container element with no content between its tags.
type mountPoint struct {
	id string
	re *regexp.Regexp
}

func emptyContainer(id string) mountPoint {
	return mountPoint{
		id: id,
		re: regexp.MustCompile(`(?is)<(?:div|main|section)[^>]*\bid=["']` + id + `["'][^>]*>\s*</(?:div|main|section)>`),
	}
}

var spaMountPoints = []mountPoint{
	emptyContainer("root"),
	emptyContainer("app"),
	emptyContainer("__next"),
	emptyContainer("__nuxt"),
	emptyContainer("svelte"),
	emptyContainer("___gatsby"),
}

const (
	ratioThreshold    = 1.5
	diffThreshold     = 2000
	bigDiffThreshold  = 5000
	thinPageThreshold = 500
	noscriptMinChars  = 10
	noscriptQuoteLen  = 100
)

// Analyze compares a non-rendered and a rendered Evidence pair. Every rule
// is evaluated; each triggered rule appends one reason, and the verdict is
// the OR of all triggers. Pure function: deterministic, no I/O.
func Analyze(noJS, js models.Evidence) models.RenderingVerdict {
	noJSLen := len(noJS.TextContent)
	jsLen := len(js.TextContent)

	var ratio float64
	switch {
	case noJSLen == 0 && jsLen > 0:
		ratio = math.Inf(1)
	case noJSLen > 0 && jsLen > 0:
		ratio = float64(jsLen) / float64(noJSLen)
	}
	diff := jsLen - noJSLen

	var reasons []string

	// Rule 1: the plain fetch failed where the rendered one succeeded.
	if !noJS.Success && js.Success {
		reasons = append(reasons, "The page could not be fetched without rendering, but the rendered fetch succeeded.")
	}

	// Rule 2: rendered text is substantially larger.
	ratioFired := ratio > ratioThreshold && diff > diffThreshold
	if ratioFired {
		reasons = append(reasons, fmt.Sprintf(
			"Rendered content is %.1fx larger than the plain fetch (%d vs %d characters).",
			ratio, jsLen, noJSLen))
	}

	// Rule 3: a known empty SPA mount point in the non-rendered HTML.
	for _, mp := range spaMountPoints {
		if mp.re.MatchString(noJS.HTML) {
			reasons = append(reasons, fmt.Sprintf(
				"The plain HTML contains an empty %q container, a single-page-app mount point.", mp.id))
			break
		}
	}

	// Rule 4: a meaningful <noscript> block.
	if block := firstNoscriptText(noJS.HTML); block != "" {
		reasons = append(reasons, fmt.Sprintf(
			"The page carries a <noscript> notice: %q.", evidence.Preview(block, noscriptQuoteLen)))
	}

	// Rule 5: thin plain text plus a client-side-rendering framework.
	if noJSLen < thinPageThreshold {
		for _, fw := range unionFrameworks(noJS.HTML, js.HTML) {
			if fw.RenderingLikelyRequired {
				reasons = append(reasons, fmt.Sprintf(
					"The plain fetch returned only %d characters and the page uses %s, which renders client-side.",
					noJSLen, fw.Name))
				break
			}
		}
	}

	// Rule 6: large absolute growth, when rule 2 did not already say so.
	if diff > bigDiffThreshold && !ratioFired {
		reasons = append(reasons, fmt.Sprintf(
			"The rendered version adds %d characters of content.", diff))
	}

	return models.RenderingVerdict{
		NeedsRendering: len(reasons) > 0,
		Reasons:        reasons,
		Metrics: models.RenderingMetrics{
			NoJSLen:           noJSLen,
			JSLen:             jsLen,
			Ratio:             ratio,
			Diff:              diff,
			StructureDistance: structureDistance(noJS.HTML, js.HTML),
		},
		NoJSPreview: evidence.Preview(noJS.TextContent, evidence.PreviewLen),
		JSPreview:   evidence.Preview(js.TextContent, evidence.PreviewLen),
	}
}

// firstNoscriptText returns the stripped text of the first <noscript> block
// longer than the minimum, empty when no such block exists or the HTML does
// not parse.
func firstNoscriptText(htmlStr string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}
	text := ""
	doc.Find("noscript").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		candidate := strings.Join(strings.Fields(s.Text()), " ")
		if len(candidate) > noscriptMinChars {
			text = candidate
			return false
		}
		return true
	})
	return text
}

// unionFrameworks merges framework detections from both samples, first
// occurrence wins.
func unionFrameworks(noJSHTML, jsHTML string) []models.FrameworkDetection {
	seen := make(map[string]bool)
	var union []models.FrameworkDetection
	for _, fw := range append(signature.DetectFrameworks(noJSHTML), signature.DetectFrameworks(jsHTML)...) {
		if !seen[fw.Name] {
			seen[fw.Name] = true
			union = append(union, fw)
		}
	}
	return union
}
