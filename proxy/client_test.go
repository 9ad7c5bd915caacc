package proxy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/webscout/models"
)

func testClient(baseURL string, maxAttempts int) (*Client, *[]time.Duration) {
	delays := &[]time.Duration{}
	c := &Client{
		baseURL:         baseURL,
		analysisURL:     baseURL,
		fallbackKey:     "test-key",
		httpClient:      &http.Client{Timeout: 5 * time.Second},
		analysisTimeout: 2 * time.Second,
		limiter:         rate.NewLimiter(rate.Inf, 1),
		maxAttempts:     maxAttempts,
		initialBackoff:  100 * time.Millisecond,
		sleep: func(_ context.Context, d time.Duration) error {
			*delays = append(*delays, d)
			return nil
		},
	}
	return c, delays
}

func gatewayError(t *testing.T, err error) *models.GatewayError {
	t.Helper()
	var ge *models.GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("expected a *models.GatewayError, got %T: %v", err, err)
	}
	return ge
}

func TestFetch_AuthFailureNeverRetried(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, delays := testClient(srv.URL, 5)
	_, _, err := c.Fetch(context.Background(), "", "https://example.com", FetchOptions{})

	ge := gatewayError(t, err)
	if ge.Kind != models.ErrKindAuthFailed {
		t.Errorf("kind = %s, want auth_failed", ge.Kind)
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("401 was attempted %d times, want 1", n)
	}
	if len(*delays) != 0 {
		t.Errorf("401 must never back off, got delays %v", *delays)
	}
}

func TestFetch_ServerErrorRetriesWithDoublingBackoff(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, delays := testClient(srv.URL, 3)
	_, _, err := c.Fetch(context.Background(), "", "https://example.com", FetchOptions{})

	ge := gatewayError(t, err)
	if ge.Kind != models.ErrKindServerError {
		t.Errorf("kind = %s, want server_error", ge.Kind)
	}
	if ge.Retries != 2 {
		t.Errorf("Retries = %d, want 2 (the two backoff attempts)", ge.Retries)
	}
	if n := atomic.LoadInt32(&requests); n != 3 {
		t.Errorf("500 with budget 3 should be attempted 3 times, got %d", n)
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if len(*delays) != len(want) {
		t.Fatalf("delays = %v, want %v", *delays, want)
	}
	for i, d := range want {
		if (*delays)[i] != d {
			t.Errorf("delay[%d] = %v, want %v (each delay doubles)", i, (*delays)[i], d)
		}
	}
}

func TestFetch_ServerErrorThenSuccess(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&requests, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	c, _ := testClient(srv.URL, 3)
	result, _, err := c.Fetch(context.Background(), "", "https://example.com", FetchOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Retries != 1 {
		t.Errorf("retries_attempted = %d, want 1", result.Retries)
	}
	if result.Body == "" {
		t.Error("body should carry the response text")
	}
}

func TestFetch_NonRetryableStatuses(t *testing.T) {
	tests := []struct {
		status int
		kind   models.ErrorKind
	}{
		{403, models.ErrKindForbidden},
		{404, models.ErrKindNotFound},
		{429, models.ErrKindRateLimited},
		{502, models.ErrKindBadGateway},
		{503, models.ErrKindServiceUnavailable},
		{418, models.ErrKindUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			var requests int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				atomic.AddInt32(&requests, 1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c, _ := testClient(srv.URL, 3)
			_, _, err := c.Fetch(context.Background(), "", "https://example.com", FetchOptions{})

			ge := gatewayError(t, err)
			if ge.Kind != tt.kind {
				t.Errorf("status %d: kind = %s, want %s", tt.status, ge.Kind, tt.kind)
			}
			if ge.StatusCode != tt.status {
				t.Errorf("status code = %d, want %d", ge.StatusCode, tt.status)
			}
			if n := atomic.LoadInt32(&requests); n != 1 {
				t.Errorf("status %d attempted %d times, want 1", tt.status, n)
			}
		})
	}
}

func TestFetch_TransportErrorRetriesExactlyOnce(t *testing.T) {
	var attempts int32
	c, _ := testClient("http://127.0.0.1:1", 5)
	c.httpClient = &http.Client{
		Transport: roundTripperFunc(func(_ *http.Request) (*http.Response, error) {
			atomic.AddInt32(&attempts, 1)
			return nil, errors.New("connection refused")
		}),
	}

	_, _, err := c.Fetch(context.Background(), "", "https://example.com", FetchOptions{})

	ge := gatewayError(t, err)
	if ge.Kind != models.ErrKindNetworkError {
		t.Errorf("kind = %s, want network_error", ge.Kind)
	}
	if ge.Retries != 1 {
		t.Errorf("Retries = %d, want 1", ge.Retries)
	}
	if n := atomic.LoadInt32(&attempts); n != 2 {
		t.Errorf("transport error attempted %d times, want 2 (one retry regardless of budget)", n)
	}
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestFetch_JSONResponseParsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"body":"<html></html>","links":["https://a.example"]}`))
	}))
	defer srv.Close()

	c, _ := testClient(srv.URL, 3)
	result, _, err := c.Fetch(context.Background(), "", "https://example.com", FetchOptions{JSONResponse: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.JSON == nil {
		t.Error("JSON should be set for a declared JSON response")
	}
}

func TestFetch_MalformedJSONDegradesToText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"truncated": `))
	}))
	defer srv.Close()

	c, _ := testClient(srv.URL, 3)
	result, _, err := c.Fetch(context.Background(), "", "https://example.com", FetchOptions{})
	if err != nil {
		t.Fatalf("malformed JSON must not fail the call: %v", err)
	}
	if result.JSON != nil {
		t.Error("JSON should be nil when the body does not parse")
	}
	if result.Body != `{"truncated": ` {
		t.Errorf("body should still be available, got %q", result.Body)
	}
}

func TestFetch_SessionKeyOverridesFallback(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("api_key")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c, _ := testClient(srv.URL, 3)
	if _, _, err := c.Fetch(context.Background(), "session-key", "https://example.com", FetchOptions{}); err != nil {
		t.Fatal(err)
	}
	if gotKey != "session-key" {
		t.Errorf("api_key = %q, want the session key", gotKey)
	}

	if _, _, err := c.Fetch(context.Background(), "", "https://example.com", FetchOptions{}); err != nil {
		t.Fatal(err)
	}
	if gotKey != "test-key" {
		t.Errorf("api_key = %q, want the configured fallback", gotKey)
	}
}

func TestSelectorStability_ParsesMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Errorf("missing API key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"classification":"dynamic","stability_score":0.4,"changing_selectors":12}`))
	}))
	defer srv.Close()

	c, _ := testClient(srv.URL, 3)
	result, err := c.SelectorStability(context.Background(), "", "https://example.com", []string{".price"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Classification != "dynamic" {
		t.Errorf("classification = %q, want dynamic", result.Classification)
	}
	if result.StabilityScore == nil || *result.StabilityScore != 0.4 {
		t.Errorf("stability_score not parsed: %+v", result)
	}
	if result.ChangingSelectors != 12 {
		t.Errorf("changing_selectors = %d, want 12", result.ChangingSelectors)
	}
}
