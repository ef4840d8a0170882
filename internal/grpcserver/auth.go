package grpcserver

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"legallyai/jobboard-service/internal/auth"
)

type userIDKey struct{}

// UnaryAuth authenticates JobBoard calls. With a secret, every call must
// carry "authorization: Bearer <HS256 token>" metadata and the token subject
// becomes the user id. Without one, the gateway's x-user-id metadata is
// trusted. Other services (health) pass through untouched.
func UnaryAuth(secret string, log *zap.Logger) grpc.UnaryServerInterceptor {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("grpc")
	key := []byte(secret)
	prefix := "/" + ServiceName + "/"

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !strings.HasPrefix(info.FullMethod, prefix) {
			return handler(ctx, req)
		}
		if len(key) == 0 {
			return handler(context.WithValue(ctx, userIDKey{}, metadataValue(ctx, "x-user-id")), req)
		}

		raw, err := auth.BearerToken(metadataValue(ctx, "authorization"))
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		subject, err := auth.Verify(key, raw)
		if err != nil {
			log.Debug("token rejected", zap.String("method", info.FullMethod), zap.Error(err))
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		return handler(context.WithValue(ctx, userIDKey{}, subject), req)
	}
}

// userIDFromCtx returns the caller's user id. Without the UnaryAuth
// interceptor it falls back to the x-user-id metadata.
func userIDFromCtx(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok {
		return id
	}
	return metadataValue(ctx, "x-user-id")
}

func metadataValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get(key); len(vals) > 0 {
		return vals[0]
	}
	return ""
}
