package games

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"reflect"
	"testing"

	apperrors "github.com/louisbranch/arithmetic/internal/platform/errors"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/round"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/domain/rules"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/gameplay"
	"github.com/louisbranch/arithmetic/internal/services/arithmetic/storage/sqlite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func dialService(t *testing.T, player gameplay.Player) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	RegisterGameServiceServer(server, NewService(player))
	go func() {
		_ = server.Serve(lis)
	}()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sqlitePlayer(t *testing.T) gameplay.Player {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "arithmetic.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return gameplay.NewService(store)
}

func TestClientPlaysRound(t *testing.T) {
	client := NewClient(dialService(t, sqlitePlayer(t)))
	ctx := context.Background()

	view, err := client.Start(ctx, "g")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view.GameID != "g" || view.Round != 1 || view.Target != 172 {
		t.Fatalf("view = %+v", view)
	}
	if !reflect.DeepEqual(view.Operands, []int{75, 9, 7, 7, 5, 3}) || len(view.Slots) != round.SlotCount {
		t.Fatalf("tiles = %v slots = %v", view.Operands, view.Slots)
	}

	moved, err := client.Apply(ctx, "g", round.Move{Op: rules.OperatorAdd, Operands: []int{9, 75}})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !moved.Applied || !reflect.DeepEqual(moved.View.Operands, []int{84, 7, 7, 5, 3}) {
		t.Fatalf("move = %+v", moved)
	}
	if !reflect.DeepEqual(moved.View.Operations, []string{"75 + 9 = 84"}) || !moved.View.CanUndo {
		t.Fatalf("move view = %+v", moved.View)
	}
	if moved.View.Slots[5].Filled {
		t.Fatalf("slot 6 should be empty: %+v", moved.View.Slots)
	}

	refused, err := client.Apply(ctx, "g", round.Move{Op: rules.OperatorDivide, Operands: []int{84, 5}})
	if err != nil {
		t.Fatalf("refused move: %v", err)
	}
	if refused.Applied || !reflect.DeepEqual(refused.View, moved.View) {
		t.Fatalf("refused = %+v", refused)
	}

	undone, err := client.Undo(ctx, "g")
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !undone.Applied || !reflect.DeepEqual(undone.View, view) {
		t.Fatalf("undo = %+v, want %+v", undone.View, view)
	}

	reset, err := client.Reset(ctx, "g")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !reflect.DeepEqual(reset, view) {
		t.Fatalf("reset = %+v", reset)
	}

	next, err := client.NewRound(ctx, "g")
	if err != nil {
		t.Fatalf("new round: %v", err)
	}
	state, err := client.State(ctx, "g")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if next.Round != 2 || !reflect.DeepEqual(state, next) {
		t.Fatalf("state = %+v, next = %+v", state, next)
	}
}

func TestClientOperators(t *testing.T) {
	client := NewClient(dialService(t, sqlitePlayer(t)))
	ctx := context.Background()

	tests := []struct {
		selected []int
		want     rules.Availability
	}{
		{selected: []int{3, 9}, want: rules.Availability{Add: true, Subtract: true, Multiply: true, Divide: true}},
		{selected: []int{7, 7}, want: rules.Availability{Add: true, Multiply: true, Divide: true}},
		{selected: []int{5, 3, 2}, want: rules.Availability{Add: true, Multiply: true}},
		{selected: []int{3}, want: rules.Availability{}},
		{selected: nil, want: rules.Availability{}},
	}
	for _, tc := range tests {
		got, err := client.Operators(ctx, tc.selected)
		if err != nil {
			t.Fatalf("operators %v: %v", tc.selected, err)
		}
		if got != tc.want {
			t.Fatalf("operators %v = %+v, want %+v", tc.selected, got, tc.want)
		}
	}
}

func TestClientErrorsCarryCodes(t *testing.T) {
	client := NewClient(dialService(t, sqlitePlayer(t)))
	ctx := context.Background()

	_, err := client.State(ctx, "missing")
	if !apperrors.IsCode(err, apperrors.CodeGameNotFound) {
		t.Fatalf("expected game not found, got %v", err)
	}
	if got := apperrors.GetMetadata(err)["game_id"]; got != "missing" {
		t.Fatalf("game_id = %q", got)
	}

	if _, err := client.Undo(ctx, ""); !apperrors.IsCode(err, apperrors.CodeGameIDRequired) {
		t.Fatalf("expected game id required, got %v", err)
	}

	if _, err := client.Start(ctx, "g"); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err = client.Apply(ctx, "g", round.Move{Op: "power", Operands: []int{3, 5}})
	if !apperrors.IsCode(err, apperrors.CodeOperationUnknown) {
		t.Fatalf("expected operation unknown, got %v", err)
	}
	if got := apperrors.GetMetadata(err)["operation"]; got != "power" {
		t.Fatalf("operation = %q", got)
	}
}

func TestLocalizedMessages(t *testing.T) {
	conn := dialService(t, sqlitePlayer(t))

	tests := []struct {
		locale string
		want   string
	}{
		{locale: "", want: "Game missing was not found."},
		{locale: "de-DE,de;q=0.9", want: "Spiel missing wurde nicht gefunden."},
		{locale: "fr-FR", want: "Game missing was not found."},
	}
	for _, tc := range tests {
		ctx := context.Background()
		if tc.locale != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, LocaleHeader, tc.locale)
		}
		err := conn.Invoke(ctx, FullMethod(MethodState), gameRequest("missing"), new(structpb.Struct))
		if status.Code(err) != codes.NotFound {
			t.Fatalf("code = %v, want %v", status.Code(err), codes.NotFound)
		}
		if got := apperrors.LocalizedMessage(err); got != tc.want {
			t.Fatalf("locale %q message = %q, want %q", tc.locale, got, tc.want)
		}
	}
}

func TestMoveRejectsNonIntegerOperands(t *testing.T) {
	conn := dialService(t, sqlitePlayer(t))
	in := &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldGameID: structpb.NewStringValue("g"),
		fieldOp:     structpb.NewStringValue("add"),
		fieldOperands: structpb.NewListValue(&structpb.ListValue{Values: []*structpb.Value{
			structpb.NewNumberValue(1.5),
			structpb.NewNumberValue(2),
		}}),
	}}
	err := conn.Invoke(context.Background(), FullMethod(MethodMove), in, new(structpb.Struct))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %v, want %v", status.Code(err), codes.InvalidArgument)
	}
}

type failingPlayer struct {
	gameplay.Player
}

func (failingPlayer) State(context.Context, string) (gameplay.View, error) {
	return gameplay.View{}, errors.New("disk on fire")
}

func TestUnexpectedErrorsAreHidden(t *testing.T) {
	client := NewClient(dialService(t, failingPlayer{}))
	_, err := client.State(context.Background(), "g")
	if status.Code(err) != codes.Internal {
		t.Fatalf("code = %v, want %v", status.Code(err), codes.Internal)
	}
	if st, _ := status.FromError(err); st.Message() != "an unexpected error occurred" {
		t.Fatalf("message = %q", st.Message())
	}
}

func TestServiceGuards(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.Start(context.Background(), nil); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %v, want %v", status.Code(err), codes.InvalidArgument)
	}
	if _, err := svc.State(context.Background(), &structpb.Struct{}); status.Code(err) != codes.Internal {
		t.Fatalf("code = %v, want %v", status.Code(err), codes.Internal)
	}
	var nilClient *Client
	if _, err := nilClient.State(context.Background(), "g"); err == nil {
		t.Fatal("expected unconfigured client error")
	}
}

func TestCodecRoundTrip(t *testing.T) {
	view := gameplay.View{
		GameID:     "g",
		Round:      3,
		Wins:       2,
		Target:     819,
		Operands:   []int{100, 10},
		Slots:      []round.Slot{{Value: 100, Filled: true}, {Value: 10, Filled: true}, {}},
		Operations: []string{"7 × 3 = 21"},
		Solved:     false,
		CanUndo:    true,
	}
	got, err := viewFromStruct(viewToStruct(view))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, view) {
		t.Fatalf("view = %+v, want %+v", got, view)
	}
}
