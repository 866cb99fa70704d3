// Package scenario parses scenario command flags and replays a Lua script
// against a game server.
package scenario

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"time"

	entrypoint "github.com/louisbranch/arithmetic/internal/platform/cmd"
	"github.com/louisbranch/arithmetic/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	GameAddr   string        `env:"ARITHMETIC_GAME_ADDR"          envDefault:"localhost:8080"`
	Scenario   string        `env:"ARITHMETIC_SCENARIO_FILE"`
	Assertions bool          `env:"ARITHMETIC_SCENARIO_ASSERT"    envDefault:"true"`
	Verbose    bool          `env:"ARITHMETIC_SCENARIO_VERBOSE"`
	Timeout    time.Duration `env:"ARITHMETIC_SCENARIO_TIMEOUT"   envDefault:"10s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.GameAddr, "addr", cfg.GameAddr, "game server address")
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per step")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the scenario command, writing step logs to errOut.
func Run(ctx context.Context, cfg Config, errOut io.Writer) error {
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Scenario == "" {
		return errors.New("scenario path is required")
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}
	logger := log.New(errOut, "", 0)
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceScenario, func(ctx context.Context) error {
		return scenario.RunFile(ctx, scenario.Config{
			GameAddr:   cfg.GameAddr,
			Timeout:    cfg.Timeout,
			Assertions: mode,
			Verbose:    cfg.Verbose,
			Logger:     logger,
		}, cfg.Scenario)
	})
}
