// Package main provides a CLI for running Lua scenario scripts.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	scenariocmd "github.com/louisbranch/arithmetic/internal/cmd/scenario"
	entrypoint "github.com/louisbranch/arithmetic/internal/platform/cmd"
)

func main() {
	cfg, err := scenariocmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		entrypoint.Exitf(entrypoint.ServiceScenario, "%v", err)
	}
	log.SetPrefix("[SCENARIO] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := scenariocmd.Run(ctx, cfg, os.Stderr); err != nil {
		entrypoint.Exitf(entrypoint.ServiceScenario, "%v", err)
	}
}
