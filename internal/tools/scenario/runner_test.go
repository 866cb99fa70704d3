package scenario

import (
	"bytes"
	"context"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	server "github.com/louisbranch/arithmetic/internal/services/arithmetic/app"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/gameplay"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/storage/sqlite"
)

func newLocalRunner(t *testing.T, cfg Config) *Runner {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "arithmetic.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	runner, err := newRunnerWithPlayer(cfg, gameplay.NewService(store))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	return runner
}

func TestRunScenarioSolvesGolden(t *testing.T) {
	var logs bytes.Buffer
	runner := newLocalRunner(t, Config{Verbose: true, Logger: log.New(&logs, "", 0)})
	scn, err := LoadScenarioFromFile(filepath.Join("testdata", "solve_g.lua"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := runner.RunScenario(context.Background(), scn); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(logs.String(), "step 1/") || !strings.Contains(logs.String(), "scenario done: solve g") {
		t.Fatalf("verbose logs = %q", logs.String())
	}
}

func TestRunScenarioStrictFailure(t *testing.T) {
	runner := newLocalRunner(t, DefaultConfig())
	scn, err := LoadScenario(`
local scn = Scenario.new("wrong target")
scn:game({id = "g"})
scn:expect({target = 171})
return scn
`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	err = runner.RunScenario(context.Background(), scn)
	if err == nil || !strings.Contains(err.Error(), "step 2 (expect): target = 172, want 171") {
		t.Fatalf("err = %v", err)
	}
}

func TestRunScenarioLogOnly(t *testing.T) {
	var logs bytes.Buffer
	runner := newLocalRunner(t, Config{Assertions: AssertionLogOnly, Logger: log.New(&logs, "", 0)})
	scn, err := LoadScenario(`
local scn = Scenario.new()
scn:game({id = "g"})
scn:subtract({3, 3})
scn:expect({solved = true, operands = {1}})
return scn
`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := runner.RunScenario(context.Background(), scn); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"rejected", "solved = false, want true", "operands = [75 9 7 7 5 3], want [1]"} {
		if !strings.Contains(logs.String(), want) {
			t.Fatalf("logs missing %q: %q", want, logs.String())
		}
	}
}

func TestRunScenarioStepErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "game first",
			source: "local s = Scenario.new() s:undo() return s",
			want:   "game step must come first",
		},
		{
			name:   "bad operands",
			source: "local s = Scenario.new() s:game({id = 'g'}) s:add({'a', 1}) return s",
			want:   "operands",
		},
		{
			name:   "bad expectation",
			source: "local s = Scenario.new() s:game({id = 'g'}) s:expect({wins = 'many'}) return s",
			want:   "wins must be an integer",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			runner := newLocalRunner(t, DefaultConfig())
			scn, err := LoadScenario(tc.source)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			err = runner.RunScenario(context.Background(), scn)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want %q", err, tc.want)
			}
		})
	}

	runner := newLocalRunner(t, DefaultConfig())
	if err := runner.RunScenario(context.Background(), &Scenario{Steps: []Step{{Kind: StepGame}, {Kind: "jump"}}}); err == nil ||
		!strings.Contains(err.Error(), `unknown step kind "jump"`) {
		t.Fatalf("unknown kind err = %v", err)
	}
	if err := runner.RunScenario(context.Background(), nil); err == nil {
		t.Fatal("expected nil scenario error")
	}
}

func TestNewRunnerRequiresInputs(t *testing.T) {
	if _, err := NewRunner(context.Background(), Config{}); err == nil {
		t.Fatal("expected missing address error")
	}
	if _, err := newRunnerWithPlayer(Config{}, nil); err == nil {
		t.Fatal("expected missing player error")
	}
	var runner *Runner
	if err := runner.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}

func TestRunFileOverGRPC(t *testing.T) {
	srv, err := server.NewWithStorePath("127.0.0.1:0", filepath.Join(t.TempDir(), "arithmetic.db"))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("timeout waiting for server shutdown")
		}
	})

	cfg := DefaultConfig()
	cfg.GameAddr = srv.Addr()
	cfg.Timeout = 5 * time.Second
	if err := RunFile(context.Background(), cfg, filepath.Join("testdata", "solve_g.lua")); err != nil {
		t.Fatalf("run file: %v", err)
	}
}
