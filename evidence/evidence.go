// Package evidence normalizes raw fetch outcomes into the structured
// records the classifiers consume.
package evidence

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/use-agent/webscout/models"
)

// PreviewLen is the number of characters of stripped text carried in
// verdict previews.
const PreviewLen = 500

// Collect builds an Evidence record from one fetch outcome.
func Collect(body string, statusCode int, success bool, kind models.ErrorKind, timingMs int64) models.Evidence {
	return models.Evidence{
		HTML:        body,
		TextContent: StripTags(body),
		StatusCode:  statusCode,
		Success:     success,
		ErrorKind:   kind,
		TimingMs:    timingMs,
	}
}

// StripTags walks HTML with the tokenizer and returns the visible text,
// whitespace-normalized. Script, style and noscript contents are skipped.
func StripTags(htmlStr string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlStr))
	var sb strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if isInvisible(string(tn)) {
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			if isInvisible(string(tn)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				sb.Write(tokenizer.Text())
				sb.WriteByte(' ')
			}
		}
	}
}

// Preview returns the first n characters of s.
func Preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func isInvisible(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}
