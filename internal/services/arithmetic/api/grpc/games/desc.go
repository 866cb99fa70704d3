package games

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "arithmetic.v1.GameService"

// Method names of the game service.
const (
	MethodStart     = "Start"
	MethodState     = "State"
	MethodNewRound  = "NewRound"
	MethodMove      = "Move"
	MethodUndo      = "Undo"
	MethodReset     = "Reset"
	MethodOperators = "Operators"
)

// GameServiceServer is the server API of arithmetic.v1.GameService. Every
// request and response is a google.protobuf.Struct.
type GameServiceServer interface {
	Start(context.Context, *structpb.Struct) (*structpb.Struct, error)
	State(context.Context, *structpb.Struct) (*structpb.Struct, error)
	NewRound(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Move(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Undo(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Reset(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Operators(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes arithmetic.v1.GameService for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodStart, Handler: unaryHandler(MethodStart, GameServiceServer.Start)},
		{MethodName: MethodState, Handler: unaryHandler(MethodState, GameServiceServer.State)},
		{MethodName: MethodNewRound, Handler: unaryHandler(MethodNewRound, GameServiceServer.NewRound)},
		{MethodName: MethodMove, Handler: unaryHandler(MethodMove, GameServiceServer.Move)},
		{MethodName: MethodUndo, Handler: unaryHandler(MethodUndo, GameServiceServer.Undo)},
		{MethodName: MethodReset, Handler: unaryHandler(MethodReset, GameServiceServer.Reset)},
		{MethodName: MethodOperators, Handler: unaryHandler(MethodOperators, GameServiceServer.Operators)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "arithmetic/v1/game.proto",
}

// RegisterGameServiceServer registers srv on s.
func RegisterGameServiceServer(s grpc.ServiceRegistrar, srv GameServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// FullMethod returns the /service/method path of a method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type unaryMethod func(GameServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(GameServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(GameServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
