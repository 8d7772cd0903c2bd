package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
	"github.com/dmitrijs2005/fragkeeper/internal/cryptox"
	"github.com/dmitrijs2005/fragkeeper/internal/logging"
	"github.com/dmitrijs2005/fragkeeper/internal/object"
	pb "github.com/dmitrijs2005/fragkeeper/internal/proto"
	"github.com/dmitrijs2005/fragkeeper/internal/server/auth"
	"github.com/dmitrijs2005/fragkeeper/internal/server/keys"
	"github.com/dmitrijs2005/fragkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/fragkeeper/internal/server/models"
	"github.com/dmitrijs2005/fragkeeper/internal/server/repositories/fragments"
	"github.com/dmitrijs2005/fragkeeper/internal/server/repositories/objects"
	"github.com/dmitrijs2005/fragkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fragkeeper/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const testSecret = "test-secret"

type testEnv struct {
	client pb.ObjectServiceClient
	health healthpb.HealthClient
	frags  *fragments.MemoryRepository
}

func startTestServer(t *testing.T, maxMsgSize int) *testEnv {
	t.Helper()

	frags := fragments.NewMemoryRepository()
	store := repomanager.NewStore(objects.NewMemoryRepository(), frags)

	policy, err := keys.New(models.KeyModePerObject, cryptox.GenerateKey())
	require.NoError(t, err)

	p, err := object.NewPipeline(object.WithFragmentSize(64))
	require.NoError(t, err)

	svc := services.NewObjectService(store, p, policy,
		metrics.NewMetrics(prometheus.NewRegistry()), logging.Discard(), 2)

	srv := NewGRPCServer("bufnet", logging.Discard(), svc, testSecret, maxMsgSize)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	return &testEnv{
		client: pb.NewObjectServiceClient(conn),
		health: healthpb.NewHealthClient(conn),
		frags:  frags,
	}
}

func authCtx(t *testing.T, userID string) context.Context {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte(testSecret), time.Minute)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, token)
}

func TestServer_UploadStatDownload(t *testing.T) {
	env := startTestServer(t, 0)
	ctx := authCtx(t, "alice")
	payload := []byte("the quick brown fox jumps over the lazy dog, several times over and over")

	up, err := env.client.Upload(ctx, wrapperspb.Bytes(payload))
	require.NoError(t, err)

	id := up.GetFields()[pb.FieldObjectID].GetStringValue()
	require.NotEmpty(t, id)
	assert.Equal(t, models.KeyModePerObject, up.GetFields()[pb.FieldKeyMode].GetStringValue())
	assert.Greater(t, up.GetFields()[pb.FieldFragmentCount].GetNumberValue(), float64(1))

	createdAt, err := time.Parse(time.RFC3339, up.GetFields()[pb.FieldCreatedAt].GetStringValue())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), createdAt, time.Minute)

	st, err := env.client.Stat(ctx, wrapperspb.String(id))
	require.NoError(t, err)
	assert.Equal(t, up.GetFields()[pb.FieldSize].GetNumberValue(), st.GetFields()[pb.FieldSize].GetNumberValue())

	got, err := env.client.Download(ctx, wrapperspb.String(id))
	require.NoError(t, err)
	assert.Equal(t, payload, got.GetValue())
}

func TestServer_ForeignAndUnknownLookTheSame(t *testing.T) {
	env := startTestServer(t, 0)

	up, err := env.client.Upload(authCtx(t, "alice"), wrapperspb.Bytes([]byte("secret")))
	require.NoError(t, err)
	id := up.GetFields()[pb.FieldObjectID].GetStringValue()

	bob := authCtx(t, "bob")

	_, foreignErr := env.client.Download(bob, wrapperspb.String(id))
	_, unknownErr := env.client.Download(bob, wrapperspb.String("no-such-object"))

	assert.Equal(t, codes.NotFound, status.Code(foreignErr))
	assert.Equal(t, codes.NotFound, status.Code(unknownErr))
	assert.Equal(t, status.Convert(unknownErr).Message(), status.Convert(foreignErr).Message())

	_, err = env.client.Stat(bob, wrapperspb.String(id))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_TamperedFragmentIsDataLoss(t *testing.T) {
	env := startTestServer(t, 0)
	ctx := authCtx(t, "alice")

	up, err := env.client.Upload(ctx, wrapperspb.Bytes(make([]byte, 300)))
	require.NoError(t, err)
	id := up.GetFields()[pb.FieldObjectID].GetStringValue()

	data, err := env.frags.Get(context.Background(), id, 1)
	require.NoError(t, err)
	data[0] ^= 0x01
	require.NoError(t, env.frags.Put(context.Background(), id, 1, data))

	_, err = env.client.Download(ctx, wrapperspb.String(id))
	assert.Equal(t, codes.DataLoss, status.Code(err))
}

func TestServer_EmptyObjectID(t *testing.T) {
	env := startTestServer(t, 0)

	_, err := env.client.Download(authCtx(t, "alice"), wrapperspb.String(""))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_HealthServing(t *testing.T) {
	env := startTestServer(t, 0)

	for _, svc := range []string{"", pb.ServiceName} {
		resp, err := env.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: svc})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	}
}

func TestServer_OversizedMessageRejected(t *testing.T) {
	env := startTestServer(t, 1024)

	_, err := env.client.Upload(authCtx(t, "alice"), wrapperspb.Bytes(make([]byte, 4096)))
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	srv := NewGRPCServer("127.0.0.1:0", logging.Discard(), &fakeObjects{}, testSecret, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	srv := NewGRPCServer("127.0.0.1:99999", logging.Discard(), &fakeObjects{}, testSecret, 0)

	err := srv.Run(context.Background())
	assert.Error(t, err)
}
