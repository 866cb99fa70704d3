package domain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/louisbranch/arithmetic/internal/platform/timeouts"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/round"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/rules"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/gameplay"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GameClient is the game API used by the tools.
type GameClient interface {
	gameplay.Player
	Operators(ctx context.Context, selected []int) (rules.Availability, error)
}

// Context remembers the game the tools act on by default.
type Context struct {
	mu     sync.RWMutex
	gameID string
}

// GameID returns the current game id.
func (c *Context) GameID() string {
	if c == nil {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameID
}

func (c *Context) setGameID(id string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = id
}

// resolve picks the explicit id or falls back to the current game.
func (c *Context) resolve(id string) (string, error) {
	if id = strings.TrimSpace(id); id != "" {
		return id, nil
	}
	if id = c.GameID(); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("game_id is required; call arithmetic_start first")
}

// SlotResult is one tile position.
type SlotResult struct {
	Value  int  `json:"value" jsonschema:"tile value, zero when empty"`
	Filled bool `json:"filled" jsonschema:"whether the slot holds a tile"`
}

// GameResult is the tool output describing a game.
type GameResult struct {
	GameID     string       `json:"game_id" jsonschema:"game identifier"`
	Round      int          `json:"round" jsonschema:"1-based round number"`
	Wins       int          `json:"wins" jsonschema:"rounds solved so far"`
	Target     int          `json:"target" jsonschema:"number to reach"`
	Operands   []int        `json:"operands" jsonschema:"tiles still available, largest first"`
	Slots      []SlotResult `json:"slots" jsonschema:"six display slots"`
	Operations []string     `json:"operations" jsonschema:"moves played this round"`
	Solved     bool         `json:"solved" jsonschema:"whether a tile equals the target"`
	CanUndo    bool         `json:"can_undo" jsonschema:"whether a move can be undone"`
}

// MoveResult is the tool output for actions that may be refused.
type MoveResult struct {
	Applied bool       `json:"applied" jsonschema:"false when the action was refused and nothing changed"`
	Game    GameResult `json:"game" jsonschema:"game after the action"`
}

// GameInput names a game. An empty id means the current game.
type GameInput struct {
	GameID string `json:"game_id,omitempty" jsonschema:"game identifier, defaults to the current game"`
}

// StartInput names the game to start or resume.
type StartInput struct {
	GameID string `json:"game_id,omitempty" jsonschema:"game to resume or create; empty resumes the latest game"`
}

// MoveInput is one operation on selected tiles.
type MoveInput struct {
	GameID   string `json:"game_id,omitempty" jsonschema:"game identifier, defaults to the current game"`
	Op       string `json:"op" jsonschema:"add, subtract, multiply or divide (or + - * /)"`
	Operands []int  `json:"operands" jsonschema:"selected tile values"`
}

// OperatorsInput is a tile selection.
type OperatorsInput struct {
	Operands []int `json:"operands" jsonschema:"selected tile values"`
}

// OperatorsResult lists the operators a selection enables.
type OperatorsResult struct {
	Add      bool     `json:"add" jsonschema:"addition applies"`
	Subtract bool     `json:"subtract" jsonschema:"subtraction gives a positive result"`
	Multiply bool     `json:"multiply" jsonschema:"multiplication applies"`
	Divide   bool     `json:"divide" jsonschema:"division is exact"`
	Enabled  []string `json:"enabled" jsonschema:"enabled operators in display order"`
}

// StartTool defines the tool that starts or resumes a game.
func StartTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "arithmetic_start",
		Description: "Starts a new arithmetic game or resumes an existing one and makes it the current game",
	}
}

// StateTool defines the tool that reads a game.
func StateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "arithmetic_state",
		Description: "Returns the target, tiles and history of the current round",
	}
}

// NewRoundTool defines the tool that draws the next round.
func NewRoundTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "arithmetic_new_round",
		Description: "Finishes the current round and draws the next one",
	}
}

// MoveTool defines the tool that plays an operation.
func MoveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "arithmetic_move",
		Description: "Combines selected tiles with an operator; illegal moves are refused without changes",
	}
}

// UndoTool defines the tool that drops the latest move.
func UndoTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "arithmetic_undo",
		Description: "Undoes the latest move of the current round",
	}
}

// ResetTool defines the tool that restarts the round.
func ResetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "arithmetic_reset",
		Description: "Returns the current round to its initial tiles",
	}
}

// OperatorsTool defines the tool that checks a selection.
func OperatorsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "arithmetic_operators",
		Description: "Reports which operators apply to a selection of tiles",
	}
}

// StartHandler starts or resumes a game and makes it current.
func StartHandler(client GameClient, current *Context) mcp.ToolHandlerFor[StartInput, GameResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input StartInput) (*mcp.CallToolResult, GameResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCCall)
		defer cancel()

		view, err := client.Start(runCtx, strings.TrimSpace(input.GameID))
		if err != nil {
			return nil, GameResult{}, fmt.Errorf("start game failed: %w", err)
		}
		current.setGameID(view.GameID)
		return nil, gameResult(view), nil
	}
}

// StateHandler returns a game view.
func StateHandler(client GameClient, current *Context) mcp.ToolHandlerFor[GameInput, GameResult] {
	return viewHandler("read game", current, client.State)
}

// NewRoundHandler draws the next round.
func NewRoundHandler(client GameClient, current *Context) mcp.ToolHandlerFor[GameInput, GameResult] {
	return viewHandler("new round", current, client.NewRound)
}

// ResetHandler restarts the current round.
func ResetHandler(client GameClient, current *Context) mcp.ToolHandlerFor[GameInput, GameResult] {
	return viewHandler("reset", current, client.Reset)
}

// UndoHandler drops the latest move.
func UndoHandler(client GameClient, current *Context) mcp.ToolHandlerFor[GameInput, MoveResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GameInput) (*mcp.CallToolResult, MoveResult, error) {
		gameID, err := current.resolve(input.GameID)
		if err != nil {
			return nil, MoveResult{}, err
		}
		runCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCCall)
		defer cancel()

		result, err := client.Undo(runCtx, gameID)
		if err != nil {
			return nil, MoveResult{}, fmt.Errorf("undo failed: %w", err)
		}
		return nil, moveResult(result), nil
	}
}

// MoveHandler plays one operation.
func MoveHandler(client GameClient, current *Context) mcp.ToolHandlerFor[MoveInput, MoveResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MoveInput) (*mcp.CallToolResult, MoveResult, error) {
		gameID, err := current.resolve(input.GameID)
		if err != nil {
			return nil, MoveResult{}, err
		}
		op, err := rules.ParseOperator(input.Op)
		if err != nil {
			return nil, MoveResult{}, err
		}
		runCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCCall)
		defer cancel()

		result, err := client.Apply(runCtx, gameID, round.Move{Op: op, Operands: input.Operands})
		if err != nil {
			return nil, MoveResult{}, fmt.Errorf("move failed: %w", err)
		}
		return nil, moveResult(result), nil
	}
}

// OperatorsHandler reports the operators a selection enables.
func OperatorsHandler(client GameClient) mcp.ToolHandlerFor[OperatorsInput, OperatorsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input OperatorsInput) (*mcp.CallToolResult, OperatorsResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCCall)
		defer cancel()

		availability, err := client.Operators(runCtx, input.Operands)
		if err != nil {
			return nil, OperatorsResult{}, fmt.Errorf("operators failed: %w", err)
		}
		enabled := []string{}
		for _, op := range availability.Enabled() {
			enabled = append(enabled, string(op))
		}
		return nil, OperatorsResult{
			Add:      availability.Add,
			Subtract: availability.Subtract,
			Multiply: availability.Multiply,
			Divide:   availability.Divide,
			Enabled:  enabled,
		}, nil
	}
}

func viewHandler(action string, current *Context, call func(context.Context, string) (gameplay.View, error)) mcp.ToolHandlerFor[GameInput, GameResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GameInput) (*mcp.CallToolResult, GameResult, error) {
		gameID, err := current.resolve(input.GameID)
		if err != nil {
			return nil, GameResult{}, err
		}
		runCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCCall)
		defer cancel()

		view, err := call(runCtx, gameID)
		if err != nil {
			return nil, GameResult{}, fmt.Errorf("%s failed: %w", action, err)
		}
		return nil, gameResult(view), nil
	}
}

func gameResult(view gameplay.View) GameResult {
	slots := make([]SlotResult, len(view.Slots))
	for i, slot := range view.Slots {
		slots[i] = SlotResult{Value: slot.Value, Filled: slot.Filled}
	}
	operands := view.Operands
	if operands == nil {
		operands = []int{}
	}
	operations := view.Operations
	if operations == nil {
		operations = []string{}
	}
	return GameResult{
		GameID:     view.GameID,
		Round:      view.Round,
		Wins:       view.Wins,
		Target:     view.Target,
		Operands:   operands,
		Slots:      slots,
		Operations: operations,
		Solved:     view.Solved,
		CanUndo:    view.CanUndo,
	}
}

func moveResult(result gameplay.Result) MoveResult {
	return MoveResult{Applied: result.Applied, Game: gameResult(result.View)}
}
