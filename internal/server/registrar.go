package server

import "google.golang.org/grpc"

// Registrar attaches one gRPC service implementation to a server.
type Registrar interface {
	Register(s *grpc.Server)
}
