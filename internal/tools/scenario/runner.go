package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"time"

	platformgrpc "github.com/louisbranch/arithmetic/internal/platform/grpc"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/api/grpc/games"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/round"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/rules"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/gameplay"
	"google.golang.org/grpc"
)

const defaultTimeout = 10 * time.Second

// Config controls scenario execution.
type Config struct {
	GameAddr   string
	Timeout    time.Duration
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		GameAddr:   "localhost:8080",
		Timeout:    defaultTimeout,
		Assertions: AssertionStrict,
	}
}

// Runner executes scenarios against a game player.
type Runner struct {
	conn       *grpc.ClientConn
	player     gameplay.Player
	assertions Assertions
	logger     *log.Logger
	verbose    bool
	timeout    time.Duration
}

// runState is what a scenario has seen so far.
type runState struct {
	gameID string
	view   gameplay.View
	ready  bool
}

// NewRunner connects to the game server and prepares a runner.
func NewRunner(ctx context.Context, cfg Config) (*Runner, error) {
	if cfg.GameAddr == "" {
		return nil, errors.New("game address is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	conn, err := platformgrpc.Connect(ctx, cfg.GameAddr, games.ServiceName, timeout, nil)
	if err != nil {
		return nil, err
	}
	r, err := newRunnerWithPlayer(cfg, games.NewClient(conn))
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	r.conn = conn
	return r, nil
}

func newRunnerWithPlayer(cfg Config, player gameplay.Player) (*Runner, error) {
	if player == nil {
		return nil, errors.New("game player is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Runner{
		player:     player,
		assertions: Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
		timeout:    timeout,
	}, nil
}

// Close releases the gRPC connection.
func (r *Runner) Close() error {
	if r == nil || r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

// RunFile loads and runs the scenario at path.
func RunFile(ctx context.Context, cfg Config, path string) error {
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return err
	}
	runner, err := NewRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()
	return runner.RunScenario(ctx, scenario)
}

// RunScenario executes every step in order and stops at the first failure.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))
	state := &runState{}
	for index, step := range scenario.Steps {
		started := time.Now()
		r.logf("step %d/%d start: %s", index+1, len(scenario.Steps), step.Kind)
		stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.runStep(stepCtx, state, step)
		cancel()
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", index+1, step.Kind, err)
		}
		r.logf("step %d/%d done (%s)", index+1, len(scenario.Steps), time.Since(started))
	}
	r.logf("scenario done: %s", scenario.Name)
	return nil
}

func (r *Runner) runStep(ctx context.Context, state *runState, step Step) error {
	if step.Kind != StepGame && !state.ready {
		return errors.New("game step must come first")
	}
	switch step.Kind {
	case StepGame:
		view, err := r.player.Start(ctx, optionalString(step.Args, "id"))
		if err != nil {
			return err
		}
		state.gameID = view.GameID
		state.view = view
		state.ready = true
		return nil
	case StepMove:
		return r.runMove(ctx, state, step.Args)
	case StepUndo:
		result, err := r.player.Undo(ctx, state.gameID)
		if err != nil {
			return err
		}
		state.view = result.View
		return r.checkApplied(step.Args, result.Applied, "undo")
	case StepReset:
		view, err := r.player.Reset(ctx, state.gameID)
		if err != nil {
			return err
		}
		state.view = view
		return nil
	case StepNewRound:
		view, err := r.player.NewRound(ctx, state.gameID)
		if err != nil {
			return err
		}
		state.view = view
		return nil
	case StepExpect:
		return r.runExpect(state.view, step.Args)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runMove(ctx context.Context, state *runState, args map[string]any) error {
	op, err := rules.ParseOperator(optionalString(args, "op"))
	if err != nil {
		return err
	}
	operands, err := intList(args["operands"])
	if err != nil {
		return fmt.Errorf("operands: %w", err)
	}
	result, err := r.player.Apply(ctx, state.gameID, round.Move{Op: op, Operands: operands})
	if err != nil {
		return err
	}
	state.view = result.View
	return r.checkApplied(args, result.Applied, fmt.Sprintf("%s %v", op, operands))
}

func (r *Runner) checkApplied(args map[string]any, applied bool, label string) error {
	rejected, _ := args["rejected"].(bool)
	switch {
	case rejected && applied:
		return r.assertions.Failf("%s: expected rejection, was applied", label)
	case !rejected && !applied:
		return r.assertions.Failf("%s: rejected", label)
	}
	return nil
}

func (r *Runner) runExpect(view gameplay.View, args map[string]any) error {
	for _, key := range []string{"target", "wins", "round"} {
		raw, ok := args[key]
		if !ok {
			continue
		}
		want, ok := raw.(int)
		if !ok {
			return fmt.Errorf("%s must be an integer", key)
		}
		got := map[string]int{"target": view.Target, "wins": view.Wins, "round": view.Round}[key]
		if got != want {
			if err := r.assertions.Failf("%s = %d, want %d", key, got, want); err != nil {
				return err
			}
		}
	}
	for _, key := range []string{"solved", "can_undo"} {
		raw, ok := args[key]
		if !ok {
			continue
		}
		want, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("%s must be a boolean", key)
		}
		got := view.Solved
		if key == "can_undo" {
			got = view.CanUndo
		}
		if got != want {
			if err := r.assertions.Failf("%s = %t, want %t", key, got, want); err != nil {
				return err
			}
		}
	}
	if raw, ok := args["operands"]; ok {
		want, err := intList(raw)
		if err != nil {
			return fmt.Errorf("operands: %w", err)
		}
		if !slices.Equal(view.Operands, want) {
			if err := r.assertions.Failf("operands = %v, want %v", view.Operands, want); err != nil {
				return err
			}
		}
	}
	if raw, ok := args["operations"]; ok {
		want, err := stringList(raw)
		if err != nil {
			return fmt.Errorf("operations: %w", err)
		}
		if !slices.Equal(view.Operations, want) {
			if err := r.assertions.Failf("operations = %q, want %q", view.Operations, want); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) logf(format string, args ...any) {
	if r == nil || !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}

func optionalString(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}

func intList(raw any) ([]int, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, errors.New("expected a list of integers")
	}
	values := make([]int, 0, len(items))
	for _, item := range items {
		value, ok := item.(int)
		if !ok {
			return nil, fmt.Errorf("%v is not an integer", item)
		}
		values = append(values, value)
	}
	return values, nil
}

func stringList(raw any) ([]string, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, errors.New("expected a list of strings")
	}
	values := make([]string, 0, len(items))
	for _, item := range items {
		value, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%v is not a string", item)
		}
		values = append(values, value)
	}
	return values, nil
}
