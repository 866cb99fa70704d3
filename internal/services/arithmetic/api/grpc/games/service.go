// Package games exposes the arithmetic game over gRPC. Messages are
// google.protobuf.Struct values so the service needs no generated code.
package games

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/arithmetic/internal/platform/errors"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/round"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/rules"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/gameplay"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// LocaleHeader is the request metadata key selecting the error message
// locale.
const LocaleHeader = "accept-language"

// Service serves arithmetic.v1.GameService on top of a gameplay.Player.
type Service struct {
	player gameplay.Player
}

var _ GameServiceServer = (*Service)(nil)

// NewService creates a game service.
func NewService(player gameplay.Player) *Service {
	return &Service{player: player}
}

// Start resumes or creates a game.
func (s *Service) Start(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.check(in, "start"); err != nil {
		return nil, err
	}
	view, err := s.player.Start(ctx, stringField(in, fieldGameID))
	if err != nil {
		return nil, handleError(ctx, err)
	}
	return viewToStruct(view), nil
}

// State returns the current game view.
func (s *Service) State(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.check(in, "state"); err != nil {
		return nil, err
	}
	view, err := s.player.State(ctx, stringField(in, fieldGameID))
	if err != nil {
		return nil, handleError(ctx, err)
	}
	return viewToStruct(view), nil
}

// NewRound draws the next round.
func (s *Service) NewRound(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.check(in, "new round"); err != nil {
		return nil, err
	}
	view, err := s.player.NewRound(ctx, stringField(in, fieldGameID))
	if err != nil {
		return nil, handleError(ctx, err)
	}
	return viewToStruct(view), nil
}

// Move applies one operation to the selected tiles.
func (s *Service) Move(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.check(in, "move"); err != nil {
		return nil, err
	}
	op, err := rules.ParseOperator(in.GetFields()[fieldOp].GetStringValue())
	if err != nil {
		return nil, handleError(ctx, err)
	}
	operands, err := intsField(in, fieldOperands)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	result, err := s.player.Apply(ctx, stringField(in, fieldGameID), round.Move{Op: op, Operands: operands})
	if err != nil {
		return nil, handleError(ctx, err)
	}
	return resultToStruct(result), nil
}

// Undo drops the latest move.
func (s *Service) Undo(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.check(in, "undo"); err != nil {
		return nil, err
	}
	result, err := s.player.Undo(ctx, stringField(in, fieldGameID))
	if err != nil {
		return nil, handleError(ctx, err)
	}
	return resultToStruct(result), nil
}

// Reset returns the current round to its initial draw.
func (s *Service) Reset(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.check(in, "reset"); err != nil {
		return nil, err
	}
	view, err := s.player.Reset(ctx, stringField(in, fieldGameID))
	if err != nil {
		return nil, handleError(ctx, err)
	}
	return viewToStruct(view), nil
}

// Operators reports which operators apply to a selection. It does not touch
// any game.
func (s *Service) Operators(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "operators request is required")
	}
	selected, err := intsField(in, fieldOperands)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return availabilityToStruct(rules.Available(selected)), nil
}

func (s *Service) check(in *structpb.Struct, action string) error {
	if in == nil {
		return status.Error(codes.InvalidArgument, action+" request is required")
	}
	if s == nil || s.player == nil {
		return status.Error(codes.Internal, "game player is not configured")
	}
	return nil
}

func handleError(ctx context.Context, err error) error {
	return apperrors.HandleError(err, localeFromContext(ctx))
}

func localeFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return apperrors.DefaultLocale
	}
	values := md.Get(LocaleHeader)
	if len(values) == 0 {
		return apperrors.DefaultLocale
	}
	// Only the first language range is used; quality values are ignored.
	locale, _, _ := strings.Cut(values[0], ",")
	locale, _, _ = strings.Cut(locale, ";")
	if locale = strings.TrimSpace(locale); locale == "" {
		return apperrors.DefaultLocale
	}
	return locale
}
