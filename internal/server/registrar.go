package server

import "google.golang.org/grpc"

// Registrar is a common interface for all gRPC service registrars.
// ServiceName is reported to the health service once registered.
type Registrar interface {
	Register(s *grpc.Server)
	ServiceName() string
}
