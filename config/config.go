package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Proxy     ProxyConfig
	Analysis  AnalysisConfig
	Retry     RetryConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the inbound MCP transport.
type ServerConfig struct {
	// Transport selects how tool calls arrive: "stdio" or "http"
	// (streamable HTTP). default: "stdio"
	Transport string

	// HTTPAddr is the listen address for the HTTP transport.
	HTTPAddr string // default: ":8090"
}

// ProxyConfig controls the outbound proxy endpoint used for page fetches.
type ProxyConfig struct {
	// BaseURL is the single authoritative proxy endpoint. There is no
	// second development endpoint; point this wherever you need.
	BaseURL string // default: "https://proxy.webscout.dev/v1"

	// APIKey is the process-wide fallback key, used when a session does
	// not supply its own via the x-api-key header.
	APIKey string

	// Timeout is the per-fetch deadline.
	Timeout time.Duration // default: 120s
}

// AnalysisConfig controls the outbound analysis endpoints (page-type
// classification, data-schema lookup, selector stability).
type AnalysisConfig struct {
	BaseURL string // default: "https://analysis.webscout.dev/v1"

	// Timeout bounds each analysis call.
	Timeout time.Duration // default: 60s
}

// RetryConfig tunes the transport retry policy.
type RetryConfig struct {
	// MaxAttempts is the total attempt budget per fetch.
	MaxAttempts int // default: 3

	// InitialBackoff is the first retry delay; it doubles per retry.
	InitialBackoff time.Duration // default: 2s
}

// RateLimitConfig throttles outbound backend calls.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained outbound rate.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Transport: envOr("WEBSCOUT_TRANSPORT", "stdio"),
			HTTPAddr:  envOr("WEBSCOUT_HTTP_ADDR", ":8090"),
		},
		Proxy: ProxyConfig{
			BaseURL: envOr("WEBSCOUT_PROXY_URL", "https://proxy.webscout.dev/v1"),
			APIKey:  os.Getenv("WEBSCOUT_API_KEY"),
			Timeout: envDurationOr("WEBSCOUT_PROXY_TIMEOUT", 120*time.Second),
		},
		Analysis: AnalysisConfig{
			BaseURL: envOr("WEBSCOUT_ANALYSIS_URL", "https://analysis.webscout.dev/v1"),
			Timeout: envDurationOr("WEBSCOUT_ANALYSIS_TIMEOUT", 60*time.Second),
		},
		Retry: RetryConfig{
			MaxAttempts:    envIntOr("WEBSCOUT_MAX_ATTEMPTS", 3),
			InitialBackoff: envDurationOr("WEBSCOUT_INITIAL_BACKOFF", 2*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("WEBSCOUT_RATE_RPS", 5.0),
			Burst:             envIntOr("WEBSCOUT_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("WEBSCOUT_LOG_LEVEL", "info"),
			Format: envOr("WEBSCOUT_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

