// Package recommend builds the response envelope for a failed fetch and
// enforces the consent-before-escalation rule: advanced, costlier options
// are only ever proposed through a permission_request block, never applied
// unasked.
package recommend

import (
	"fmt"
	"strings"

	"github.com/use-agent/webscout/models"
)

// estimatedCost is the fixed cost note attached to every permission request.
const estimatedCost = "10-50 credits per request, depending on the options applied (a basic request costs 1 credit)"

const confirmInstruction = "To proceed, call the same tool again with the suggested options set. Nothing is retried until you do."

// kindTemplate drives the per-kind messaging and escalation eligibility.
type kindTemplate struct {
	message string
	// canRetryWithAdvanced marks kinds where costlier options might help.
	// Eligibility still requires the failed request to have been basic.
	canRetryWithAdvanced bool
	suggested            models.UsedOptions
	causes               []string
}

var kindTemplates = map[models.ErrorKind]kindTemplate{
	models.ErrKindAuthFailed: {
		message: "The backend rejected the API key. Check the configured key; no retry will help until it is fixed.",
	},
	models.ErrKindForbidden: {
		message:              "The site refused the request (HTTP 403), which usually means anti-bot protection.",
		canRetryWithAdvanced: true,
		suggested: models.UsedOptions{
			"residential":  true,
			"bypass_level": "level_2",
		},
		causes: []string{
			"Anti-bot protection is blocking the proxy's IP range.",
			"The site fingerprints requests and rejects automation.",
		},
	},
	models.ErrKindNotFound: {
		message: "The page does not exist (HTTP 404). Check the URL; retrying will not help.",
	},
	models.ErrKindRateLimited: {
		message:              "The site is rate-limiting requests (HTTP 429).",
		canRetryWithAdvanced: true,
		suggested: models.UsedOptions{
			"residential": true,
		},
		causes: []string{
			"Too many requests from the same IP range.",
		},
	},
	models.ErrKindServerError: {
		message:              "The fetch failed with a server error (HTTP 500), even after retrying.",
		canRetryWithAdvanced: true,
		suggested: models.UsedOptions{
			"render_js": true,
		},
		causes: []string{
			"The page may require JavaScript rendering to respond properly.",
			"The site may be having a temporary outage.",
		},
	},
	models.ErrKindBadGateway: {
		message: "The backend could not reach the site (HTTP 502). This is usually transient; try again later.",
	},
	models.ErrKindServiceUnavailable: {
		message: "The site is unavailable (HTTP 503). It may be down or refusing all automated traffic right now.",
	},
	models.ErrKindNetworkError: {
		message: "The connection to the backend failed. Check connectivity and try again.",
	},
	models.ErrKindUnknown: {
		message:              "The fetch failed for an unrecognized reason.",
		canRetryWithAdvanced: true,
		// No concrete suggestion; the caller may still decide to escalate.
		suggested: models.UsedOptions{},
		causes: []string{
			"The failure did not match any known error signature.",
		},
	},
}

// Build computes the envelope for one failed fetch. Pure function of its
// inputs; no cross-call state.
func Build(url string, kind models.ErrorKind, statusCode int, used models.UsedOptions, retries int) models.Envelope {
	tpl, ok := kindTemplates[kind]
	if !ok {
		tpl = kindTemplates[models.ErrKindUnknown]
	}

	if used == nil {
		used = models.UsedOptions{}
	}
	usedAdvanced := used.AdvancedUsed()
	wasBasic := len(usedAdvanced) == 0

	env := models.Envelope{
		Success:          false,
		URL:              url,
		Error:            tpl.message,
		ErrorType:        kind,
		StatusCode:       statusCode,
		RetriesAttempted: retries,
		OptionsUsed:      used,
	}

	eligible := tpl.canRetryWithAdvanced && wasBasic
	switch {
	case eligible && len(tpl.suggested) > 0:
		env.PermissionRequest = &models.PermissionRequest{
			Message: tpl.message,
			Question: fmt.Sprintf("May I retry %s with advanced options (%s)? This costs extra credits.",
				url, strings.Join(optionNames(tpl.suggested), ", ")),
			SuggestedOptions: tpl.suggested,
			EstimatedCost:    estimatedCost,
			Instruction:      confirmInstruction,
		}
	case !wasBasic:
		env.Diagnostic = &models.Diagnostic{
			OptionsTried:   usedAdvanced,
			PossibleCauses: causes(tpl, usedAdvanced),
		}
	}

	return env
}

func optionNames(opts models.UsedOptions) []string {
	names := make([]string, 0, len(opts))
	for _, name := range models.AdvancedParams {
		if _, ok := opts[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

func causes(tpl kindTemplate, tried []string) []string {
	out := append([]string{}, tpl.causes...)
	out = append(out, fmt.Sprintf(
		"The advanced options already applied (%s) were not enough; this target may need a different approach entirely.",
		strings.Join(tried, ", ")))
	return out
}
