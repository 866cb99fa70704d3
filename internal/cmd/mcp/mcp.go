// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/louisbranch/arithmetic/internal/platform/cmd"
	"github.com/louisbranch/arithmetic/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	GameAddr    string        `env:"ARITHMETIC_GAME_ADDR"         envDefault:"localhost:8080"`
	HTTPAddr    string        `env:"ARITHMETIC_MCP_HTTP_ADDR"     envDefault:"localhost:8081"`
	Transport   string        `env:"ARITHMETIC_MCP_TRANSPORT"     envDefault:"stdio"`
	DialTimeout time.Duration `env:"ARITHMETIC_MCP_DIAL_TIMEOUT"  envDefault:"10s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.GameAddr, "addr", cfg.GameAddr, "game server address")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "wait for the game server to report SERVING")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return service.Run(ctx, service.Config{
			GameAddr:    cfg.GameAddr,
			Transport:   service.TransportKind(cfg.Transport),
			HTTPAddr:    cfg.HTTPAddr,
			DialTimeout: cfg.DialTimeout,
		})
	})
}
