package mcp

import (
	"context"
	"flag"
	"strings"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.GameAddr != "localhost:8080" {
		t.Fatalf("expected default addr, got %q", cfg.GameAddr)
	}
	if cfg.HTTPAddr != "localhost:8081" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.Transport != "stdio" {
		t.Fatalf("expected default transport stdio, got %q", cfg.Transport)
	}
	if cfg.DialTimeout != 10*time.Second {
		t.Fatalf("expected default dial timeout, got %v", cfg.DialTimeout)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("ARITHMETIC_GAME_ADDR", "env-game")
	t.Setenv("ARITHMETIC_MCP_HTTP_ADDR", "env-http")
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-http-addr", "flag-http", "-transport", "http"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.GameAddr != "env-game" {
		t.Fatalf("expected env addr, got %q", cfg.GameAddr)
	}
	if cfg.HTTPAddr != "flag-http" {
		t.Fatalf("expected flag http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.Transport != "http" {
		t.Fatalf("expected transport http, got %q", cfg.Transport)
	}
}

func TestRunRejectsUnknownTransport(t *testing.T) {
	t.Setenv("ARITHMETIC_OTEL_ENDPOINT", "")
	err := Run(context.Background(), Config{GameAddr: "localhost:1", Transport: "smoke"})
	if err == nil || !strings.Contains(err.Error(), `transport "smoke"`) {
		t.Fatalf("err = %v", err)
	}
}
