// Package health exposes the standard gRPC health service so orchestrators
// can probe the process independently of the HTTP API.
package health

import (
	"net"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is reported alongside the overall ("") status.
const ServiceName = "filevault"

type Server struct {
	grpcServer *grpc.Server
	health     *grpchealth.Server
}

// New starts in NOT_SERVING; call SetServing once dependencies are up.
func New() *Server {
	s := &Server{
		grpcServer: grpc.NewServer(),
		health:     grpchealth.NewServer(),
	}
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.SetServing(false)
	return s
}

func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// Stop flips every service to NOT_SERVING and drains open streams.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
