package models

// StabilityLabel is the selector-stability class of a page, as reported by
// the multi-sample fingerprint comparison on the analysis backend.
type StabilityLabel string

const (
	StabilityStable     StabilityLabel = "stable"
	StabilityDynamic    StabilityLabel = "dynamic"
	StabilityObfuscated StabilityLabel = "obfuscated"
	StabilityUnknown    StabilityLabel = "unknown"
)

// StabilityMetrics are the externally computed numbers behind a stability
// label. All numeric fields are optional; the classifier formats only what
// is present.
type StabilityMetrics struct {
	StabilityScore    *float64 `json:"stability_score,omitempty"`
	RandomRatio       *float64 `json:"random_ratio,omitempty"`
	AvgEntropy        *float64 `json:"avg_entropy,omitempty"`
	CommonSelectors   int      `json:"common_selectors,omitempty"`
	ChangingSelectors int      `json:"changing_selectors,omitempty"`
}

// SelectorStrategy is the concrete guidance attached to a stability class.
type SelectorStrategy struct {
	Approach string   `json:"approach"`
	Use      []string `json:"use"`
	Avoid    []string `json:"avoid"`
}

// StabilityReport is the classifier output for one page.
type StabilityReport struct {
	Label           StabilityLabel   `json:"label"`
	Summary         string           `json:"summary"`
	Strategy        SelectorStrategy `json:"strategy"`
	Recommendations []string         `json:"recommendations"`
	Metrics         StabilityMetrics `json:"metrics"`
}
