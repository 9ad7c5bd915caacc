// Command webscout-mcp serves the WebScout tool set to MCP clients over
// stdio (default) or streamable HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/webscout/config"
	"github.com/use-agent/webscout/proxy"
	"github.com/use-agent/webscout/tools"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	setupLogging(cfg.Log)

	if cfg.Proxy.APIKey == "" && cfg.Server.Transport == "stdio" {
		fmt.Fprintln(os.Stderr, "WEBSCOUT_API_KEY is required for the stdio transport")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"webscout",
		version,
		server.WithToolCapabilities(false),
	)
	tools.Register(s, proxy.NewClient(cfg))

	switch cfg.Server.Transport {
	case "stdio":
		if err := server.ServeStdio(s); err != nil {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	case "http":
		httpServer := server.NewStreamableHTTPServer(s,
			server.WithHTTPContextFunc(sessionKeyFromHeader),
		)
		slog.Info("listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.Start(cfg.Server.HTTPAddr); err != nil {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown transport %q (use stdio or http)\n", cfg.Server.Transport)
		os.Exit(1)
	}
}

// sessionKeyFromHeader lets each HTTP session bring its own backend API
// key; sessions without one share the configured fallback.
func sessionKeyFromHeader(ctx context.Context, r *http.Request) context.Context {
	return tools.WithSessionKey(ctx, r.Header.Get("X-API-Key"))
}

func setupLogging(cfg config.LogConfig) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
