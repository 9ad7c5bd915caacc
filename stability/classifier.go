// Package stability turns the multi-sample selector fingerprint metrics
// computed by the analysis backend into concrete selector strategy guidance.
// It performs no fetching and no entropy math of its own.
package stability

import (
	"fmt"

	"github.com/use-agent/webscout/models"
)

// Classify maps a stability label and its metrics onto one of four fixed
// strategy templates. Pure and deterministic.
func Classify(label string, m models.StabilityMetrics) models.StabilityReport {
	switch models.StabilityLabel(label) {
	case models.StabilityStable:
		return stableReport(m)
	case models.StabilityDynamic:
		return dynamicReport(m)
	case models.StabilityObfuscated:
		return obfuscatedReport(m)
	default:
		return fallbackReport(m)
	}
}

func stableReport(m models.StabilityMetrics) models.StabilityReport {
	summary := "Selectors on this page are stable across samples"
	if m.StabilityScore != nil {
		summary = fmt.Sprintf("Selectors on this page are stable across samples (stability score %.0f%%)", *m.StabilityScore*100)
	}
	return models.StabilityReport{
		Label:   models.StabilityStable,
		Summary: summary + ".",
		Strategy: models.SelectorStrategy{
			Approach: "direct",
			Use: []string{
				"class selectors",
				"ID selectors",
				"data-* attribute selectors",
			},
			Avoid: []string{
				"long chained selectors",
				"positional selectors (nth-child, nth-of-type)",
			},
		},
		Recommendations: []string{
			"Target elements by their class, ID, or data attributes directly.",
			"Keep selectors short; deep chains break on minor layout changes.",
		},
		Metrics: m,
	}
}

func dynamicReport(m models.StabilityMetrics) models.StabilityReport {
	summary := "Class names on this page change between loads"
	if m.StabilityScore != nil {
		summary = fmt.Sprintf("Class names on this page change between loads (stability score %.0f%%, %d selectors changed across samples)",
			*m.StabilityScore*100, m.ChangingSelectors)
	}
	return models.StabilityReport{
		Label:   models.StabilityDynamic,
		Summary: summary + ".",
		Strategy: models.SelectorStrategy{
			Approach: "partial-match",
			Use: []string{
				"ID selectors",
				"data-* attribute selectors",
				"prefix class matching ([class^=...], [class*=...])",
			},
			Avoid: []string{
				"exact class names with hash suffixes",
			},
		},
		Recommendations: []string{
			"Prefer IDs and data attributes; they usually survive rebuilds.",
			"Match the stable prefix of generated class names instead of the full name.",
		},
		Metrics: m,
	}
}

func obfuscatedReport(m models.StabilityMetrics) models.StabilityReport {
	summary := "Class names look machine-generated"
	switch {
	case m.AvgEntropy != nil && m.RandomRatio != nil:
		summary = fmt.Sprintf("Class names look machine-generated (average entropy %.1f, %.0f%% random)",
			*m.AvgEntropy, *m.RandomRatio*100)
	case m.AvgEntropy != nil:
		summary = fmt.Sprintf("Class names look machine-generated (average entropy %.1f)", *m.AvgEntropy)
	case m.RandomRatio != nil:
		summary = fmt.Sprintf("Class names look machine-generated (%.0f%% random)", *m.RandomRatio*100)
	}
	return models.StabilityReport{
		Label:   models.StabilityObfuscated,
		Summary: summary + ".",
		Strategy: models.SelectorStrategy{
			Approach: "semantic",
			Use: []string{
				"semantic tags (article, nav, main, table)",
				"ARIA attributes (role, aria-label)",
				"data-* attribute selectors",
				"structured data (JSON-LD, embedded state) instead of the DOM",
			},
			Avoid: []string{
				"any class-based selector",
			},
		},
		Recommendations: []string{
			"Do not build selectors from class names on this page; they are regenerated per build.",
			"Anchor on semantic tags and ARIA or data attributes.",
			"Check for JSON-LD or embedded state objects; structured data beats DOM scraping here.",
		},
		Metrics: m,
	}
}

func fallbackReport(m models.StabilityMetrics) models.StabilityReport {
	return models.StabilityReport{
		Label:   models.StabilityUnknown,
		Summary: "Not enough samples to judge selector stability; assume selectors are unstable.",
		Strategy: models.SelectorStrategy{
			Approach: "conservative",
			Use: []string{
				"semantic tags",
				"structural position within landmarks (header, main, footer)",
			},
			Avoid: []string{
				"generated-looking class names",
			},
		},
		Recommendations: []string{
			"Treat every selector as fragile until more samples are available.",
			"Re-run the stability check with JavaScript rendering enabled for a better signal.",
		},
		Metrics: m,
	}
}
