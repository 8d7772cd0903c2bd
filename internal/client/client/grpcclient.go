package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
	pb "github.com/dmitrijs2005/fragkeeper/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ObjectInfo is the server's description of a stored object.
type ObjectInfo struct {
	ObjectID      string
	CreatedAt     time.Time
	FragmentCount int
	Size          int64
	KeyMode       string
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.ObjectServiceClient
	health      healthpb.HealthClient
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewObjectClient connects to endpointURL and authenticates every call with
// accessToken. Extra dial options are appended after the defaults.
func NewObjectClient(endpointURL, accessToken string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, dialOpts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewObjectServiceClient(conn)
	s.health = healthpb.NewHealthClient(conn)
	return nil
}

// Ping reports ErrUnavailable unless the object service is SERVING.
func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: pb.ServiceName})
	if err != nil {
		return s.mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Upload(ctx context.Context, data []byte) (*ObjectInfo, error) {
	resp, err := s.client.Upload(ctx, wrapperspb.Bytes(data))
	if err != nil {
		return nil, s.mapError(err)
	}
	return infoFromStruct(resp)
}

func (s *GRPCClient) Download(ctx context.Context, objectID string) ([]byte, error) {
	resp, err := s.client.Download(ctx, wrapperspb.String(objectID))
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.GetValue(), nil
}

func (s *GRPCClient) Stat(ctx context.Context, objectID string) (*ObjectInfo, error) {
	resp, err := s.client.Stat(ctx, wrapperspb.String(objectID))
	if err != nil {
		return nil, s.mapError(err)
	}
	return infoFromStruct(resp)
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func infoFromStruct(st *structpb.Struct) (*ObjectInfo, error) {
	f := st.GetFields()

	id := f[pb.FieldObjectID].GetStringValue()
	if id == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrBadResponse, pb.FieldObjectID)
	}

	createdAt, err := time.Parse(time.RFC3339, f[pb.FieldCreatedAt].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadResponse, pb.FieldCreatedAt, err)
	}

	return &ObjectInfo{
		ObjectID:      id,
		CreatedAt:     createdAt,
		FragmentCount: int(f[pb.FieldFragmentCount].GetNumberValue()),
		Size:          int64(f[pb.FieldSize].GetNumberValue()),
		KeyMode:       f[pb.FieldKeyMode].GetStringValue(),
	}, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return ErrNotFound
	case codes.DataLoss, codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", ErrCorrupted, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
