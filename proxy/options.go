package proxy

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/use-agent/webscout/models"
)

// validCountries are the proxy geolocation codes the backend accepts.
var validCountries = map[string]bool{
	"us": true, "gb": true, "de": true, "fr": true, "ca": true, "au": true,
	"jp": true, "in": true, "br": true, "nl": true, "es": true, "it": true,
}

var validPremiumLevels = map[string]bool{
	"level_1": true,
	"level_2": true,
}

// validBypassLevels mixes generic escalation levels with provider-specific
// ones the backend understands.
var validBypassLevels = map[string]bool{
	"level_1": true, "level_2": true, "level_3": true,
	"cloudflare_level_1": true, "cloudflare_level_2": true, "cloudflare_level_3": true,
	"datadome": true, "perimeterx": true,
}

// FetchOptions are the optional flags forwarded to the proxy endpoint.
// Zero values mean "not requested" and are omitted from the query.
type FetchOptions struct {
	Country         string
	Residential     bool
	Mobile          bool
	Premium         string // level_1 | level_2
	RenderJS        bool
	WaitFor         string // CSS selector to wait for
	Wait            int    // milliseconds
	Scroll          bool
	Screenshot      bool
	Bypass          string // anti-bot bypass level
	DeviceType      string
	FollowRedirects *bool
	SessionNumber   int // 1..10000
	OptimizeRequest bool
	MaxRequestCost  int
	JSONResponse    bool
	ReturnLinks     bool

	AutoExtract            string
	LLMExtract             string
	LLMDataSchema          string
	LLMExtractResponseType string
}

// Validate rejects option values the backend would refuse, before any
// credits are spent.
func (o *FetchOptions) Validate() error {
	if o.Country != "" && !validCountries[o.Country] {
		return fmt.Errorf("invalid country code %q", o.Country)
	}
	if o.Premium != "" && !validPremiumLevels[o.Premium] {
		return fmt.Errorf("invalid premium level %q (use level_1 or level_2)", o.Premium)
	}
	if o.Bypass != "" && !validBypassLevels[o.Bypass] {
		return fmt.Errorf("invalid bypass level %q", o.Bypass)
	}
	if o.SessionNumber != 0 && (o.SessionNumber < 1 || o.SessionNumber > 10000) {
		return fmt.Errorf("session_number %d out of range [1,10000]", o.SessionNumber)
	}
	return nil
}

// query assembles the outgoing query parameters, recording every applied
// option into used as it goes. The returned UsedOptions is what the
// permission gate later inspects.
func (o *FetchOptions) query(targetURL, apiKey string) (url.Values, models.UsedOptions) {
	q := url.Values{}
	used := models.UsedOptions{}

	q.Set("url", targetURL)
	if apiKey != "" {
		q.Set("api_key", apiKey)
	}

	setStr := func(param, usedName, v string) {
		if v != "" {
			q.Set(param, v)
			used.Set(usedName, v)
		}
	}
	setBool := func(param, usedName string, v bool) {
		if v {
			q.Set(param, "true")
			used.Set(usedName, true)
		}
	}
	setInt := func(param, usedName string, v int) {
		if v != 0 {
			q.Set(param, strconv.Itoa(v))
			used.Set(usedName, v)
		}
	}

	setStr("country", "country", o.Country)
	setBool("residential", "residential", o.Residential)
	setBool("mobile", "mobile", o.Mobile)
	setStr("premium", "premium", o.Premium)
	setBool("render_js", "render_js", o.RenderJS)
	setStr("wait_for", "wait_for", o.WaitFor)
	setInt("wait", "wait", o.Wait)
	setBool("scroll", "scroll", o.Scroll)
	setBool("screenshot", "screenshot", o.Screenshot)
	// The query flag is "bypass"; the permission gate knows it as
	// "bypass_level".
	setStr("bypass", "bypass_level", o.Bypass)
	setStr("device_type", "device_type", o.DeviceType)
	if o.FollowRedirects != nil {
		q.Set("follow_redirects", strconv.FormatBool(*o.FollowRedirects))
		used.Set("follow_redirects", *o.FollowRedirects)
	}
	setInt("session_number", "session_number", o.SessionNumber)
	setBool("optimize_request", "optimize_request", o.OptimizeRequest)
	setInt("max_request_cost", "max_request_cost", o.MaxRequestCost)
	setBool("json_response", "json_response", o.JSONResponse)
	setBool("return_links", "return_links", o.ReturnLinks)

	setStr("auto_extract", "auto_extract", o.AutoExtract)
	setStr("llm_extract", "llm_extract", o.LLMExtract)
	setStr("llm_data_schema", "llm_data_schema", o.LLMDataSchema)
	setStr("llm_extract_response_type", "llm_extract_response_type", o.LLMExtractResponseType)

	return q, used
}
