package control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "penguingram.v1.Control"

// ControlServer is the server API of the control service. Payloads are
// google.protobuf.Struct so no generated code is needed.
type ControlServer interface {
	Status(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListChats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SelectChannel(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Send(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

// unary builds a grpc method handler for a ControlServer method.
func unary[Req any, Resp any](name string, call func(ControlServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ControlServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ControlServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the control service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Status", ControlServer.Status),
		unary("ListChats", ControlServer.ListChats),
		unary("SelectChannel", ControlServer.SelectChannel),
		unary("Send", ControlServer.Send),
		unary("Logout", ControlServer.Logout),
	},
	Metadata: "penguingram/v1/control.proto",
}
