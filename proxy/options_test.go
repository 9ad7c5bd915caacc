package proxy

import (
	"testing"
)

func TestFetchOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    FetchOptions
		wantErr bool
	}{
		{"empty", FetchOptions{}, false},
		{"valid country", FetchOptions{Country: "de"}, false},
		{"invalid country", FetchOptions{Country: "zz"}, true},
		{"valid premium", FetchOptions{Premium: "level_2"}, false},
		{"invalid premium", FetchOptions{Premium: "level_9"}, true},
		{"valid bypass", FetchOptions{Bypass: "cloudflare_level_2"}, false},
		{"invalid bypass", FetchOptions{Bypass: "nuclear"}, true},
		{"session in range", FetchOptions{SessionNumber: 10000}, false},
		{"session out of range", FetchOptions{SessionNumber: 10001}, true},
		{"session negative", FetchOptions{SessionNumber: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFetchOptions_QueryRecordsUsedOptions(t *testing.T) {
	opts := FetchOptions{
		Country:     "us",
		Residential: true,
		RenderJS:    true,
		Bypass:      "level_2",
		Wait:        1500,
	}

	q, used := opts.query("https://example.com/page", "k")

	if q.Get("url") != "https://example.com/page" {
		t.Errorf("url param = %q", q.Get("url"))
	}
	if q.Get("bypass") != "level_2" {
		t.Errorf("bypass param = %q, want level_2", q.Get("bypass"))
	}
	if _, ok := used["bypass_level"]; !ok {
		t.Error("the bypass flag must be recorded under the bypass_level name")
	}
	if _, ok := used["bypass"]; ok {
		t.Error("used options must not contain the raw query name for bypass")
	}

	advanced := used.AdvancedUsed()
	wantAdvanced := map[string]bool{"render_js": true, "residential": true, "bypass_level": true}
	if len(advanced) != len(wantAdvanced) {
		t.Fatalf("advanced = %v, want %v", advanced, wantAdvanced)
	}
	for _, name := range advanced {
		if !wantAdvanced[name] {
			t.Errorf("unexpected advanced param %q", name)
		}
	}
}

func TestFetchOptions_BasicRequestHasNoAdvanced(t *testing.T) {
	opts := FetchOptions{Country: "gb", Wait: 500}

	_, used := opts.query("https://example.com", "k")

	if !used.IsBasic() {
		t.Errorf("country and wait are not advanced params; advanced = %v", used.AdvancedUsed())
	}
}

func TestFetchOptions_FalseValuesOmitted(t *testing.T) {
	var opts FetchOptions
	_, used := opts.query("https://example.com", "k")

	if len(used) != 0 {
		t.Errorf("zero options should record nothing, got %v", used)
	}
}
