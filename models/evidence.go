package models

// Evidence is the normalized record of one fetch outcome. It is built once
// per fetch by the evidence collector, is immutable afterwards, and is the
// common input to every classifier.
type Evidence struct {
	// HTML is the raw body text as returned by the backend.
	HTML string

	// TextContent is HTML with all tags stripped (script/style/noscript
	// contents excluded).
	TextContent string

	// StatusCode is the HTTP status of the fetch, 0 if no response arrived.
	StatusCode int

	// Success reports whether the fetch completed with a 2xx status.
	Success bool

	// ErrorKind is set when Success is false.
	ErrorKind ErrorKind

	// TimingMs is the wall-clock duration of the fetch in milliseconds.
	TimingMs int64
}

// Confidence is the strength tier assigned to a detection.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Detection is one matched anti-bot signature. Produced fresh per call,
// never persisted.
type Detection struct {
	Name               string     `json:"name"`
	Confidence         Confidence `json:"confidence"`
	IsActivelyBlocking bool       `json:"is_actively_blocking"`
	Evidence           []string   `json:"evidence"`
}

// FrameworkDetection is one matched JavaScript framework signature.
type FrameworkDetection struct {
	Name                    string `json:"name"`
	RenderingLikelyRequired bool   `json:"rendering_likely_required"`
}

// TechnologyDetection is one matched technology signature.
type TechnologyDetection struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}
