package server

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oggyb/muzz-matchmaking/internal/logger"
)

// RequestIDHeader is read from incoming metadata and echoed back.
const RequestIDHeader = "x-request-id"

// LoggingInterceptor attaches a request-scoped logger to the context and
// logs one line per call.
func LoggingInterceptor(base *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		reqID := requestID(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, reqID))

		log := base.With("request_id", reqID, "method", info.FullMethod)
		ctx = logger.NewContext(ctx, log)

		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		attrs := []any{"code", code.String(), "duration", time.Since(start)}
		switch code {
		case codes.OK:
			log.Debug("rpc finished", attrs...)
		case codes.Internal, codes.Unknown, codes.Unavailable:
			log.Error("rpc failed", append(attrs, "err", err)...)
		default:
			log.Info("rpc rejected", append(attrs, "err", err)...)
		}
		return resp, err
	}
}

// RecoveryInterceptor turns handler panics into Internal errors.
func RecoveryInterceptor(base *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				base.Error("panic in handler", "method", info.FullMethod, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(RequestIDHeader); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return uuid.NewString()
}
