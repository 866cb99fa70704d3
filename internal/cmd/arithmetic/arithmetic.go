// Package arithmetic parses game server flags and starts the gRPC API.
package arithmetic

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/arithmetic/internal/platform/cmd"
	server "github.com/louisbranch/arithmetic/internal/services/arithmetic/app"
)

// Config holds game server command configuration.
type Config struct {
	Port int    `env:"ARITHMETIC_PORT" envDefault:"8080"`
	Addr string `env:"ARITHMETIC_ADDR"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The game server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The game server listen address (overrides -port)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the game gRPC API.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceArithmetic, func(context.Context) error {
		if cfg.Addr != "" {
			return server.RunWithAddr(ctx, cfg.Addr)
		}
		return server.Run(ctx, cfg.Port)
	})
}
