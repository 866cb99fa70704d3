package games

import (
	"context"
	"fmt"

	apperrors "github.com/louisbranch/arithmetic/internal/platform/errors"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/round"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/rules"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/gameplay"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls arithmetic.v1.GameService. It implements gameplay.Player so
// remote and in-process games are interchangeable.
type Client struct {
	conn grpc.ClientConnInterface
}

var _ gameplay.Player = (*Client)(nil)

// NewClient creates a game service client.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Start resumes or creates a game.
func (c *Client) Start(ctx context.Context, gameID string) (gameplay.View, error) {
	return c.view(ctx, MethodStart, gameRequest(gameID))
}

// State returns the current game view.
func (c *Client) State(ctx context.Context, gameID string) (gameplay.View, error) {
	return c.view(ctx, MethodState, gameRequest(gameID))
}

// NewRound draws the next round.
func (c *Client) NewRound(ctx context.Context, gameID string) (gameplay.View, error) {
	return c.view(ctx, MethodNewRound, gameRequest(gameID))
}

// Apply plays one move.
func (c *Client) Apply(ctx context.Context, gameID string, move round.Move) (gameplay.Result, error) {
	return c.result(ctx, MethodMove, moveRequest(gameID, move))
}

// Undo drops the latest move.
func (c *Client) Undo(ctx context.Context, gameID string) (gameplay.Result, error) {
	return c.result(ctx, MethodUndo, gameRequest(gameID))
}

// Reset returns the current round to its initial draw.
func (c *Client) Reset(ctx context.Context, gameID string) (gameplay.View, error) {
	return c.view(ctx, MethodReset, gameRequest(gameID))
}

// Operators reports which operators apply to a selection.
func (c *Client) Operators(ctx context.Context, selected []int) (rules.Availability, error) {
	out, err := c.invoke(ctx, MethodOperators, operatorsRequest(selected))
	if err != nil {
		return rules.Availability{}, err
	}
	return availabilityFromStruct(out), nil
}

func (c *Client) view(ctx context.Context, method string, in *structpb.Struct) (gameplay.View, error) {
	out, err := c.invoke(ctx, method, in)
	if err != nil {
		return gameplay.View{}, err
	}
	view, err := viewFromStruct(out)
	if err != nil {
		return gameplay.View{}, fmt.Errorf("decode %s response: %w", method, err)
	}
	return view, nil
}

func (c *Client) result(ctx context.Context, method string, in *structpb.Struct) (gameplay.Result, error) {
	out, err := c.invoke(ctx, method, in)
	if err != nil {
		return gameplay.Result{}, err
	}
	result, err := resultFromStruct(out)
	if err != nil {
		return gameplay.Result{}, fmt.Errorf("decode %s response: %w", method, err)
	}
	return result, nil
}

// invoke calls one method and rebuilds domain errors from the status.
func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct) (*structpb.Struct, error) {
	if c == nil || c.conn == nil {
		return nil, fmt.Errorf("game client is not configured")
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FullMethod(method), in, out); err != nil {
		return nil, apperrors.FromGRPCStatus(err)
	}
	return out, nil
}
