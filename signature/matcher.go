package signature

import (
	"fmt"

	"github.com/use-agent/webscout/models"
)

// Blocked reports whether the transport call was actually blocked.
func Blocked(statusCode int) bool {
	return statusCode == 403 || statusCode == 503
}

// DetectAntiBot evaluates every anti-bot signature against text, in table
// order. Signatures with zero hits are omitted. When the request was
// blocked (403/503) and nothing matched, a single unknown-protection
// detection is synthesized so a block never goes unreported.
func DetectAntiBot(text string, statusCode int) []models.Detection {
	requestBlocked := Blocked(statusCode)
	var detections []models.Detection

	for _, def := range antiBotSignatures {
		var ev []string
		isBlocking := false

		for _, p := range def.ChallengePatterns {
			if p.re.MatchString(text) {
				isBlocking = true
				ev = append(ev, "Challenge pattern: "+p.source)
			}
		}
		for _, p := range def.PresencePatterns {
			if p.re.MatchString(text) {
				ev = append(ev, "Presence detected: "+p.source)
			}
		}
		if len(ev) == 0 {
			continue
		}

		detections = append(detections, models.Detection{
			Name:               def.Name,
			Confidence:         confidence(isBlocking, len(ev), requestBlocked),
			IsActivelyBlocking: isBlocking && requestBlocked,
			Evidence:           ev,
		})
	}

	if requestBlocked && len(detections) == 0 {
		detections = append(detections, models.Detection{
			Name:               "Unknown Anti-Bot Protection",
			Confidence:         models.ConfidenceMedium,
			IsActivelyBlocking: true,
			Evidence:           []string{fmt.Sprintf("Request blocked with HTTP %d", statusCode)},
		})
	}

	return detections
}

func confidence(isBlocking bool, evidenceCount int, requestBlocked bool) models.Confidence {
	switch {
	case isBlocking || (evidenceCount >= 3 && requestBlocked):
		return models.ConfidenceHigh
	case evidenceCount >= 2 || requestBlocked:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// DetectFrameworks evaluates the framework table against text. Matching
// stops at the first hit per framework; there is no confidence scoring.
func DetectFrameworks(text string) []models.FrameworkDetection {
	var found []models.FrameworkDetection
	for _, def := range frameworkSignatures {
		for _, p := range def.Patterns {
			if p.re.MatchString(text) {
				found = append(found, models.FrameworkDetection{
					Name:                    def.Name,
					RenderingLikelyRequired: def.RenderingLikelyRequired,
				})
				break
			}
		}
	}
	return found
}

// DetectTechnologies evaluates the technology table against text. Purely
// presence-based; no blocking concept.
func DetectTechnologies(text string) []models.TechnologyDetection {
	var found []models.TechnologyDetection
	for _, def := range technologySignatures {
		for _, p := range def.Patterns {
			if p.re.MatchString(text) {
				found = append(found, models.TechnologyDetection{
					Name:     def.Name,
					Category: def.Category,
				})
				break
			}
		}
	}
	return found
}

// GroupByCategory buckets technology detections for reporting. Insertion
// order within a category follows table order.
func GroupByCategory(detections []models.TechnologyDetection) map[string][]string {
	grouped := make(map[string][]string)
	for _, d := range detections {
		grouped[d.Category] = append(grouped[d.Category], d.Name)
	}
	return grouped
}
