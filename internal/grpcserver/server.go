// Package grpcserver exposes the jobboard search over gRPC.
//
// It delegates all business logic to jobboard.Service and handles only the
// transport concerns: metadata extraction, error mapping, and conversion
// between the domain model and google.protobuf.Struct messages. Messages
// carry the same JSON shape as the HTTP API, so no generated code is
// needed.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"legallyai/jobboard-service/internal/jobboard"
	"legallyai/jobboard-service/internal/model"
	"legallyai/jobboard-service/internal/store"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "legallyai.jobboard.v1.JobBoard"

// Full method names, for clients calling conn.Invoke.
const (
	SearchJobsMethod     = "/" + ServiceName + "/SearchJobs"
	RecentSearchesMethod = "/" + ServiceName + "/RecentSearches"
)

// Service is the use case behind the RPCs. *jobboard.Service implements it.
type Service interface {
	Search(ctx context.Context, p model.SearchParams, userID string) model.Response
	RecentSearches(ctx context.Context, limit int) ([]store.SearchRecord, error)
}

// Server implements the JobBoard service.
type Server struct {
	svc Service
	log *zap.Logger
}

// NewServer constructs a gRPC Server backed by svc.
func NewServer(svc Service, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, log: log.Named("grpc")}
}

// Register adds the JobBoard and health services to gs.
func Register(gs *grpc.Server, srv *Server) {
	gs.RegisterService(&serviceDesc, srv)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
}

// jobBoardServer is the handler type checked by RegisterService.
type jobBoardServer interface {
	SearchJobs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecentSearches(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*jobBoardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SearchJobs", Handler: unaryHandler(SearchJobsMethod, jobBoardServer.SearchJobs)},
		{MethodName: "RecentSearches", Handler: unaryHandler(RecentSearchesMethod, jobBoardServer.RecentSearches)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "legallyai/jobboard/v1/jobboard.proto",
}

func unaryHandler(
	fullMethod string,
	call func(jobBoardServer, context.Context, *structpb.Struct) (*structpb.Struct, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(jobBoardServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(jobBoardServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// SearchJobs runs one aggregated search. The request fields are those of
// the HTTP body; the response is the HTTP envelope.
func (s *Server) SearchJobs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var params model.SearchParams
	if err := fromStruct(req, &params); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	resp := s.svc.Search(ctx, params, userIDFromCtx(ctx))
	out, err := toStruct(resp)
	if err != nil {
		s.log.Error("encode search response", zap.Error(err))
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}

// RecentSearches returns the newest logged searches as {"searches": [...]}.
// The request may carry a numeric "limit".
func (s *Server) RecentSearches(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		Limit int `json:"limit"`
	}
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	records, err := s.svc.RecentSearches(ctx, in.Limit)
	if err != nil {
		return nil, s.toGRPCError(err)
	}

	out, err := toStruct(map[string]any{"searches": records})
	if err != nil {
		s.log.Error("encode recent searches", zap.Error(err))
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// toGRPCError maps domain errors to gRPC status errors.
func (s *Server) toGRPCError(err error) error {
	if errors.Is(err, jobboard.ErrStoreDisabled) {
		return status.Error(codes.Unavailable, err.Error())
	}
	s.log.Error("rpc failed", zap.Error(err))
	return status.Error(codes.Internal, "internal server error")
}

// fromStruct decodes a Struct into dst through its JSON form.
func fromStruct(in *structpb.Struct, dst any) error {
	if in == nil {
		return nil
	}
	raw, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// toStruct encodes v as a Struct through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}
