package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// RenderingMetrics carries the raw numbers behind a rendering verdict.
type RenderingMetrics struct {
	NoJSLen int
	JSLen   int
	// Ratio is JSLen/NoJSLen; +Inf when the non-rendered sample is empty
	// but the rendered one is not.
	Ratio float64
	Diff  int
	// StructureDistance is the Hamming distance between DOM-shape
	// fingerprints of the two samples (0-64; lower means more similar).
	StructureDistance int
}

// MarshalJSON renders Ratio as a string so an infinite ratio survives JSON
// encoding (encoding/json rejects +Inf float values).
func (m RenderingMetrics) MarshalJSON() ([]byte, error) {
	ratio := "0"
	switch {
	case math.IsInf(m.Ratio, 1):
		ratio = "inf"
	case m.Ratio != 0:
		ratio = strconv.FormatFloat(m.Ratio, 'f', 2, 64)
	}
	return json.Marshal(struct {
		NoJSLen           int    `json:"no_js_length"`
		JSLen             int    `json:"js_length"`
		Ratio             string `json:"ratio"`
		Diff              int    `json:"difference"`
		StructureDistance int    `json:"structure_distance"`
	}{m.NoJSLen, m.JSLen, ratio, m.Diff, m.StructureDistance})
}

// RenderingVerdict is the outcome of the differential rendering analysis.
type RenderingVerdict struct {
	NeedsRendering bool             `json:"needs_rendering"`
	Reasons        []string         `json:"reasons"`
	Metrics        RenderingMetrics `json:"metrics"`

	// Previews carry the first 500 characters of stripped text per sample
	// for human review.
	NoJSPreview string `json:"no_js_preview"`
	JSPreview   string `json:"js_preview"`
}
