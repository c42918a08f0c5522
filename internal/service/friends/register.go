package friends

import (
	"google.golang.org/grpc"

	"github.com/oggyb/moodfriends/internal/app"
)

// Registrar ties the Friends service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Friends service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Friends service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	RegisterFriendsServer(s, NewFriendsService(r.appCtx))
}
