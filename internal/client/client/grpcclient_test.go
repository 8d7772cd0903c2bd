package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
	pb "github.com/dmitrijs2005/fragkeeper/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

/*************
 * Fake pb clients
 *************/

type fakePB struct {
	lastUpload   *wrapperspb.BytesValue
	lastDownload *wrapperspb.StringValue
	lastStat     *wrapperspb.StringValue

	uploadResp   *structpb.Struct
	uploadErr    error
	downloadResp *wrapperspb.BytesValue
	downloadErr  error
	statResp     *structpb.Struct
	statErr      error
}

func (f *fakePB) Upload(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastUpload = in
	return f.uploadResp, f.uploadErr
}

func (f *fakePB) Download(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	f.lastDownload = in
	return f.downloadResp, f.downloadErr
}

func (f *fakePB) Stat(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastStat = in
	return f.statResp, f.statErr
}

type fakeHealth struct {
	healthpb.HealthClient

	resp *healthpb.HealthCheckResponse
	err  error
	last *healthpb.HealthCheckRequest
}

func (f *fakeHealth) Check(ctx context.Context, in *healthpb.HealthCheckRequest, opts ...grpc.CallOption) (*healthpb.HealthCheckResponse, error) {
	f.last = in
	return f.resp, f.err
}

func infoStruct(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

/*************
 * accessTokenInterceptor tests
 *************/

func TestInterceptor_AttachesToken(t *testing.T) {
	c := &GRPCClient{accessToken: "A1"}

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		toks := md.Get(common.AccessTokenHeaderName)
		require.Len(t, toks, 1)
		require.Equal(t, "A1", toks[0])
		return nil
	}

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "stale")
	require.NoError(t, c.accessTokenInterceptor(ctx, "/svc/Method", nil, nil, nil, invoker))
}

func TestInterceptor_NoTokenConfigured(t *testing.T) {
	c := &GRPCClient{}

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Empty(t, md.Get(common.AccessTokenHeaderName))
		return status.Error(codes.Unauthenticated, "missing token")
	}

	err := c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.Error(t, err)
}

/*************
 * mapError tests
 *************/

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	require.Nil(t, c.mapError(nil))
	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.Unauthenticated, "x")))
	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.PermissionDenied, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.Unavailable, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.DeadlineExceeded, "x")))
	require.Equal(t, ErrNotFound, c.mapError(status.Error(codes.NotFound, "x")))
	require.ErrorIs(t, c.mapError(status.Error(codes.DataLoss, "integrity check failed")), ErrCorrupted)
	require.ErrorIs(t, c.mapError(status.Error(codes.FailedPrecondition, "object token expired")), ErrCorrupted)
	e := errors.New("plain")
	require.ErrorContains(t, c.mapError(e), "rpc error:")
}

/*************
 * Ping tests
 *************/

func TestPing_OK(t *testing.T) {
	h := &fakeHealth{resp: &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}}
	c := &GRPCClient{health: h}
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, pb.ServiceName, h.last.GetService())
}

func TestPing_NotServing_ReturnsUnavailable(t *testing.T) {
	h := &fakeHealth{resp: &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}}
	c := &GRPCClient{health: h}
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestPing_MapsRPCError(t *testing.T) {
	c := &GRPCClient{health: &fakeHealth{err: status.Error(codes.Unavailable, "down")}}
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

/*************
 * Object calls
 *************/

func TestUpload_ParsesInfo(t *testing.T) {
	f := &fakePB{uploadResp: infoStruct(t, map[string]any{
		pb.FieldObjectID:      "obj-1",
		pb.FieldCreatedAt:     "2024-03-01T12:00:00Z",
		pb.FieldFragmentCount: 3,
		pb.FieldSize:          2621486,
		pb.FieldKeyMode:       "per-object",
	})}
	c := &GRPCClient{client: f}

	info, err := c.Upload(context.Background(), []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), f.lastUpload.GetValue())
	assert.Equal(t, &ObjectInfo{
		ObjectID:      "obj-1",
		CreatedAt:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		FragmentCount: 3,
		Size:          2621486,
		KeyMode:       "per-object",
	}, info)
}

func TestUpload_MapsError(t *testing.T) {
	c := &GRPCClient{client: &fakePB{uploadErr: status.Error(codes.Unauthenticated, "invalid token")}}
	_, err := c.Upload(context.Background(), nil)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestStat_MalformedResponse(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
	}{
		{"no id", map[string]any{pb.FieldCreatedAt: "2024-03-01T12:00:00Z"}},
		{"bad time", map[string]any{pb.FieldObjectID: "x", pb.FieldCreatedAt: "yesterday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &GRPCClient{client: &fakePB{statResp: infoStruct(t, tt.fields)}}
			_, err := c.Stat(context.Background(), "x")
			require.ErrorIs(t, err, ErrBadResponse)
		})
	}
}

func TestDownload(t *testing.T) {
	f := &fakePB{downloadResp: wrapperspb.Bytes([]byte("plain"))}
	c := &GRPCClient{client: f}

	data, err := c.Download(context.Background(), "obj-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), data)
	assert.Equal(t, "obj-1", f.lastDownload.GetValue())

	f.downloadErr = status.Error(codes.NotFound, "object not found")
	_, err = c.Download(context.Background(), "obj-2")
	require.ErrorIs(t, err, ErrNotFound)
}
