package server

import (
	"context"

	"google.golang.org/grpc"
)

// Unary adapts a typed method expression into a grpc.MethodDesc, doing the
// decode and interceptor plumbing protoc-gen-go-grpc would otherwise emit.
//
// Example:
//
//	server.Unary("matchmaking.v1.Matchmaking", "ProcessSwipe", (*Service).ProcessSwipe)
func Unary[S, Req, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	full := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
