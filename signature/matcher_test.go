package signature

import (
	"strings"
	"testing"

	"github.com/use-agent/webscout/models"
)

func findDetection(detections []models.Detection, name string) *models.Detection {
	for i := range detections {
		if detections[i].Name == name {
			return &detections[i]
		}
	}
	return nil
}

func TestDetectAntiBot_TurnstilePresenceNotBlocked(t *testing.T) {
	html := `<html><body><div class="cf-turnstile" data-sitekey="abc"></div></body></html>`

	detections := DetectAntiBot(html, 200)

	cf := findDetection(detections, "Cloudflare")
	if cf == nil {
		t.Fatalf("expected a Cloudflare detection, got %v", detections)
	}
	if cf.IsActivelyBlocking {
		t.Error("presence-only match with status 200 must not be actively blocking")
	}
	if cf.Confidence != models.ConfidenceLow {
		t.Errorf("single presence hit without a block should be low confidence, got %s", cf.Confidence)
	}
}

func TestDetectAntiBot_ChallengeWhileBlocked(t *testing.T) {
	html := `<html><head><script>window.__cf_chl_ctx = {};</script></head></html>`

	detections := DetectAntiBot(html, 403)

	cf := findDetection(detections, "Cloudflare")
	if cf == nil {
		t.Fatalf("expected a Cloudflare detection, got %v", detections)
	}
	if cf.Confidence != models.ConfidenceHigh {
		t.Errorf("challenge match should be high confidence, got %s", cf.Confidence)
	}
	if !cf.IsActivelyBlocking {
		t.Error("challenge match on a blocked request must be actively blocking")
	}
	if len(cf.Evidence) == 0 || !strings.HasPrefix(cf.Evidence[0], "Challenge pattern: ") {
		t.Errorf("challenge evidence not recorded: %v", cf.Evidence)
	}
}

func TestDetectAntiBot_ChallengeWithoutBlock(t *testing.T) {
	html := `checking your browser before accessing`

	detections := DetectAntiBot(html, 200)

	cf := findDetection(detections, "Cloudflare")
	if cf == nil {
		t.Fatal("expected a Cloudflare detection")
	}
	if cf.Confidence != models.ConfidenceHigh {
		t.Errorf("challenge match alone is still high confidence, got %s", cf.Confidence)
	}
	if cf.IsActivelyBlocking {
		t.Error("a challenge signature without a blocked response is not actively blocking")
	}
}

func TestDetectAntiBot_MultiplePresenceHits(t *testing.T) {
	html := `served by cloudflare, header cf-ray: 12345`

	detections := DetectAntiBot(html, 200)

	cf := findDetection(detections, "Cloudflare")
	if cf == nil {
		t.Fatal("expected a Cloudflare detection")
	}
	if cf.Confidence != models.ConfidenceMedium {
		t.Errorf("two presence hits should be medium confidence, got %s", cf.Confidence)
	}
}

func TestDetectAntiBot_UnknownBlockerSynthesis(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantEv     string
	}{
		{"forbidden", 403, "Request blocked with HTTP 403"},
		{"unavailable", 503, "Request blocked with HTTP 503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detections := DetectAntiBot("<html><body>Access denied.</body></html>", tt.statusCode)

			if len(detections) != 1 {
				t.Fatalf("expected exactly one synthesized detection, got %d", len(detections))
			}
			d := detections[0]
			if d.Name != "Unknown Anti-Bot Protection" {
				t.Errorf("unexpected name %q", d.Name)
			}
			if d.Confidence != models.ConfidenceMedium {
				t.Errorf("synthesized detection should be medium confidence, got %s", d.Confidence)
			}
			if !d.IsActivelyBlocking {
				t.Error("synthesized detection must be actively blocking")
			}
			if len(d.Evidence) != 1 || d.Evidence[0] != tt.wantEv {
				t.Errorf("evidence = %v, want [%q]", d.Evidence, tt.wantEv)
			}
		})
	}
}

func TestDetectAntiBot_CleanPage(t *testing.T) {
	detections := DetectAntiBot("<html><body><h1>Plain page</h1></body></html>", 200)
	if len(detections) != 0 {
		t.Errorf("clean page should produce no detections, got %v", detections)
	}
}

func TestDetectFrameworks(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		want     string
		renderJS bool
	}{
		{"next", `<script id="__NEXT_DATA__" type="application/json">{}</script>`, "Next.js", false},
		{"react", `<div id="root" data-reactroot=""></div>`, "React", true},
		{"vue", `<div data-v-7ba5bd90 class="app"></div>`, "Vue", true},
		{"angular", `<app-root ng-version="17.0.1"></app-root>`, "Angular", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := DetectFrameworks(tt.html)
			if len(found) == 0 {
				t.Fatalf("expected a detection for %q", tt.html)
			}
			var hit *models.FrameworkDetection
			for i := range found {
				if found[i].Name == tt.want {
					hit = &found[i]
				}
			}
			if hit == nil {
				t.Fatalf("expected %s in %v", tt.want, found)
			}
			if hit.RenderingLikelyRequired != tt.renderJS {
				t.Errorf("%s rendering_likely_required = %v, want %v", tt.want, hit.RenderingLikelyRequired, tt.renderJS)
			}
		})
	}
}

func TestDetectFrameworks_FirstMatchWins(t *testing.T) {
	// Both React patterns present; the framework must be reported once.
	html := `<div data-reactroot=""></div><script src="/react-dom.production.min.js"></script>`

	found := DetectFrameworks(html)

	count := 0
	for _, f := range found {
		if f.Name == "React" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("React reported %d times, want 1", count)
	}
}

func TestDetectTechnologies(t *testing.T) {
	html := `<link href="/wp-content/themes/x/style.css"><script src="https://www.googletagmanager.com/gtm.js"></script>` +
		`<script src="https://code.jquery.com/jquery-3.7.1.min.js"></script>`

	grouped := GroupByCategory(DetectTechnologies(html))

	wantGroups := map[string]string{
		"cms":       "WordPress",
		"analytics": "Google Tag Manager",
		"frontend":  "jQuery",
	}
	for cat, name := range wantGroups {
		names := grouped[cat]
		ok := false
		for _, n := range names {
			if n == name {
				ok = true
			}
		}
		if !ok {
			t.Errorf("category %s missing %s: %v", cat, name, names)
		}
	}
}
