// Package grpc serves the standard gRPC health service. Its status follows
// the reachability of the database.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/apparel/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type GRPCServer struct {
	address string
	health  *health.Server
	prober  *Prober
	logger  logging.Logger
}

// NewGRPCServer builds a server on address. When prober is nil the health
// status is set to SERVING once and never changes.
func NewGRPCServer(address string, l logging.Logger, prober *Prober) *GRPCServer {
	return &GRPCServer{
		address: address,
		health:  health.NewServer(),
		prober:  prober,
		logger:  l.With("module", "grpc_server"),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.recoverInterceptor, s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)
	return srv
}

// Run serves until ctx is done, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	if s.prober != nil {
		go s.prober.Run(ctx, s.health)
	} else {
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gPRC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
