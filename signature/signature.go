// Package signature holds the declarative pattern tables for anti-bot
// protection, JavaScript framework, and technology detection, plus the
// matcher that evaluates them.
//
// The tables are immutable and compiled once at package init; adding a new
// signature never touches the matching logic.
package signature

import "regexp"

// pattern pairs a regex with its original source string. Evidence strings
// quote the source, not the compiled form.
type pattern struct {
	source string
	re     *regexp.Regexp
}

// pat compiles a case-insensitive pattern. Called at init only; panics on
// an invalid table entry.
func pat(source string) pattern {
	return pattern{source: source, re: regexp.MustCompile("(?i)" + source)}
}

func pats(sources ...string) []pattern {
	out := make([]pattern, len(sources))
	for i, s := range sources {
		out[i] = pat(s)
	}
	return out
}

// Definition describes one anti-bot protection vendor. A challenge pattern
// hit means the page is an interstitial/challenge; a presence pattern hit
// only means the vendor is deployed on the site.
type Definition struct {
	Name              string
	ChallengePatterns []pattern
	PresencePatterns  []pattern
}

// FrameworkDefinition describes one JavaScript framework. Matching stops at
// the first pattern hit.
type FrameworkDefinition struct {
	Name                    string
	Patterns                []pattern
	RenderingLikelyRequired bool
}

// TechnologyDefinition describes one detectable technology.
type TechnologyDefinition struct {
	Name     string
	Category string
	Patterns []pattern
}
