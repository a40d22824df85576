package matchmaking

import (
	"google.golang.org/grpc"

	"github.com/oggyb/muzz-matchmaking/internal/app"
	"github.com/oggyb/muzz-matchmaking/internal/server"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "matchmaking.v1.Matchmaking"

// ServiceDesc describes the Matchmaking API. Payloads use the JSON codec
// registered by package server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		server.Unary(ServiceName, "BuildQueue", (*Service).BuildQueue),
		server.Unary(ServiceName, "PeekQueue", (*Service).PeekQueue),
		server.Unary(ServiceName, "ProcessSwipe", (*Service).ProcessSwipe),
		server.Unary(ServiceName, "UndoSwipe", (*Service).UndoSwipe),
		server.Unary(ServiceName, "Unmatch", (*Service).Unmatch),
		server.Unary(ServiceName, "PairState", (*Service).PairState),
		server.Unary(ServiceName, "Score", (*Service).Score),
		server.Unary(ServiceName, "GetQuota", (*Service).GetQuota),
		server.Unary(ServiceName, "SaveProfile", (*Service).SaveProfile),
		server.Unary(ServiceName, "SavePreference", (*Service).SavePreference),
		server.Unary(ServiceName, "ListLikedYou", (*Service).ListLikedYou),
		server.Unary(ServiceName, "CountLikedYou", (*Service).CountLikedYou),
		server.Unary(ServiceName, "ListMatches", (*Service).ListMatches),
	},
	Metadata: "matchmaking/v1/matchmaking.json",
}

// Registrar ties the Matchmaking service into the gRPC server
type Registrar struct {
	service *Service
}

// NewRegistrar creates a new Registrar for the Matchmaking service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{service: NewService(appCtx)}
}

// Service returns the implementation, shared with background jobs.
func (r *Registrar) Service() *Service { return r.service }

func (r *Registrar) ServiceName() string { return ServiceName }

// Register attaches the Matchmaking service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	s.RegisterService(&ServiceDesc, r.service)
}
