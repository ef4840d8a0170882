package grpcserver_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"legallyai/jobboard-service/internal/grpcserver"
	"legallyai/jobboard-service/internal/jobboard"
	"legallyai/jobboard-service/internal/model"
	"legallyai/jobboard-service/internal/store"
)

type fakeService struct {
	lastParams model.SearchParams
	lastUser   string
	recentErr  error
}

func (f *fakeService) Search(_ context.Context, p model.SearchParams, userID string) model.Response {
	f.lastParams, f.lastUser = p, userID
	return model.Response{
		Jobs:      []model.Job{{ID: "adzuna-1", Title: "Associate", Company: "Firm", Source: "Adzuna"}},
		Total:     1,
		Sources:   []string{"Adzuna"},
		Providers: map[string]model.SourceStatus{"Adzuna": model.StatusOK},
	}
}

func (f *fakeService) RecentSearches(context.Context, int) ([]store.SearchRecord, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	return []store.SearchRecord{{Query: "tax", Total: 4, Sources: []string{"Jooble"}}}, nil
}

func dial(t *testing.T, svc grpcserver.Service, opts ...grpc.ServerOption) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(opts...)
	grpcserver.Register(gs, grpcserver.NewServer(svc, nil))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func ctxWithTimeout(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSearchJobs(t *testing.T) {
	svc := &fakeService{}
	conn := dial(t, svc)

	req, err := structpb.NewStruct(map[string]any{"query": "associate", "page": 2, "jobType": "full-time"})
	require.NoError(t, err)
	ctx := metadata.AppendToOutgoingContext(ctxWithTimeout(t), "x-user-id", "user-7")

	resp := &structpb.Struct{}
	require.NoError(t, conn.Invoke(ctx, grpcserver.SearchJobsMethod, req, resp))

	assert.Equal(t, "associate", svc.lastParams.Query)
	assert.Equal(t, 2, svc.lastParams.Page)
	assert.Equal(t, "user-7", svc.lastUser)

	out := resp.AsMap()
	assert.EqualValues(t, 1, out["total"])
	assert.Equal(t, []any{"Adzuna"}, out["sources"])
	jobs := out["jobs"].([]any)
	require.Len(t, jobs, 1)
	assert.Equal(t, "adzuna-1", jobs[0].(map[string]any)["id"])
}

func TestSearchJobs_InvalidArgument(t *testing.T) {
	conn := dial(t, &fakeService{})

	req, err := structpb.NewStruct(map[string]any{"query": 42})
	require.NoError(t, err)

	err = conn.Invoke(ctxWithTimeout(t), grpcserver.SearchJobsMethod, req, &structpb.Struct{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRecentSearches(t *testing.T) {
	conn := dial(t, &fakeService{})

	req, err := structpb.NewStruct(map[string]any{"limit": 5})
	require.NoError(t, err)

	resp := &structpb.Struct{}
	require.NoError(t, conn.Invoke(ctxWithTimeout(t), grpcserver.RecentSearchesMethod, req, resp))

	searches := resp.AsMap()["searches"].([]any)
	require.Len(t, searches, 1)
	assert.Equal(t, "tax", searches[0].(map[string]any)["query"])
}

func TestRecentSearches_StoreDisabled(t *testing.T) {
	conn := dial(t, &fakeService{recentErr: jobboard.ErrStoreDisabled})

	err := conn.Invoke(ctxWithTimeout(t), grpcserver.RecentSearchesMethod, &structpb.Struct{}, &structpb.Struct{})
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestHealth(t *testing.T) {
	conn := dial(t, &fakeService{})

	resp, err := healthpb.NewHealthClient(conn).Check(ctxWithTimeout(t),
		&healthpb.HealthCheckRequest{Service: grpcserver.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func signedToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuth_RejectsCallsWithoutToken(t *testing.T) {
	svc := &fakeService{}
	conn := dial(t, svc, grpc.ChainUnaryInterceptor(grpcserver.UnaryAuth("s3cret", nil)))

	err := conn.Invoke(ctxWithTimeout(t), grpcserver.RecentSearchesMethod, &structpb.Struct{}, &structpb.Struct{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := metadata.AppendToOutgoingContext(ctxWithTimeout(t), "authorization", "Bearer "+signedToken(t, "wrong", "user-1"))
	err = conn.Invoke(ctx, grpcserver.SearchJobsMethod, &structpb.Struct{}, &structpb.Struct{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Empty(t, svc.lastUser)
}

func TestAuth_TokenSubjectIsUserID(t *testing.T) {
	svc := &fakeService{}
	conn := dial(t, svc, grpc.ChainUnaryInterceptor(grpcserver.UnaryAuth("s3cret", nil)))

	ctx := metadata.AppendToOutgoingContext(ctxWithTimeout(t),
		"authorization", "Bearer "+signedToken(t, "s3cret", "user-42"),
		"x-user-id", "spoofed")
	require.NoError(t, conn.Invoke(ctx, grpcserver.SearchJobsMethod, &structpb.Struct{}, &structpb.Struct{}))
	assert.Equal(t, "user-42", svc.lastUser)
}

func TestAuth_HealthStaysOpen(t *testing.T) {
	conn := dial(t, &fakeService{}, grpc.ChainUnaryInterceptor(grpcserver.UnaryAuth("s3cret", nil)))

	resp, err := healthpb.NewHealthClient(conn).Check(ctxWithTimeout(t), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestAuth_NoSecretTrustsGatewayHeader(t *testing.T) {
	svc := &fakeService{}
	conn := dial(t, svc, grpc.ChainUnaryInterceptor(grpcserver.UnaryAuth("", nil)))

	ctx := metadata.AppendToOutgoingContext(ctxWithTimeout(t), "x-user-id", "user-9")
	require.NoError(t, conn.Invoke(ctx, grpcserver.SearchJobsMethod, &structpb.Struct{}, &structpb.Struct{}))
	assert.Equal(t, "user-9", svc.lastUser)
}
