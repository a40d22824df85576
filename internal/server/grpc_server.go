package server

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server wraps a grpc.Server with the health service already wired.
type Server struct {
	GRPC   *grpc.Server
	Health *health.Server
	log    *slog.Logger
}

// New builds a gRPC server, installs interceptors in order (recovery first)
// and registers all provided services.
func New(log *slog.Logger, interceptors []grpc.UnaryServerInterceptor, registrars ...Registrar) *Server {
	chain := append([]grpc.UnaryServerInterceptor{
		RecoveryInterceptor(log),
		LoggingInterceptor(log),
	}, interceptors...)

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
		hs.SetServingStatus(r.ServiceName(), healthpb.HealthCheckResponse_SERVING)
	}

	// enable reflection for easier debugging with grpcurl
	reflection.Register(grpcServer)

	return &Server{GRPC: grpcServer, Health: hs, log: log}
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.log.Info("starting gRPC server", "addr", addr)
	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	return s.GRPC.Serve(lis)
}

// Stop flips health to NOT_SERVING and drains in-flight calls.
func (s *Server) Stop() {
	s.Health.Shutdown()
	s.GRPC.GracefulStop()
}
