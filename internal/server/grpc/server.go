// Package grpc exposes the object service over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/fragkeeper/internal/logging"
	pb "github.com/dmitrijs2005/fragkeeper/internal/proto"
	"github.com/dmitrijs2005/fragkeeper/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// DefaultMaxMessageSize bounds request and response messages (64 MiB).
const DefaultMaxMessageSize = 64 << 20

// objectSvc is the part of services.ObjectService the handlers use.
type objectSvc interface {
	Upload(ctx context.Context, ownerID string, plaintext []byte) (*services.ObjectInfo, error)
	Download(ctx context.Context, requesterID, objectID string) ([]byte, error)
	Stat(ctx context.Context, requesterID, objectID string) (*services.ObjectInfo, error)
}

type GRPCServer struct {
	address    string
	objects    objectSvc
	logger     logging.Logger
	jwtSecret  []byte
	maxMsgSize int
	health     *health.Server
}

// NewGRPCServer builds the server. maxMsgSize <= 0 selects
// DefaultMaxMessageSize.
func NewGRPCServer(address string, l logging.Logger, objects objectSvc, secretKey string, maxMsgSize int) *GRPCServer {
	if maxMsgSize <= 0 {
		maxMsgSize = DefaultMaxMessageSize
	}
	return &GRPCServer{
		address:    address,
		logger:     l.With("module", "grpc_server"),
		objects:    objects,
		jwtSecret:  []byte(secretKey),
		maxMsgSize: maxMsgSize,
		health:     health.NewServer(),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor),
		grpc.MaxRecvMsgSize(s.maxMsgSize),
		grpc.MaxSendMsgSize(s.maxMsgSize),
	)
	pb.RegisterObjectServiceServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then drains in-flight calls.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
