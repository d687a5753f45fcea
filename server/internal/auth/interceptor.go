package auth

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/firewatch/firewatch/server/internal/config"
)

// Interceptor returns the API key interceptor described by cfg, resolving the
// key from its environment variable once.
func Interceptor(cfg config.AuthConfig) grpc.UnaryServerInterceptor {
	key := cfg.Key()
	if cfg.Mode == "apikey" && key == "" {
		slog.Warn("auth: apikey mode without a key, accepting unauthenticated sweeps",
			"key_env", cfg.KeyEnv)
	}
	return APIKeyInterceptor(cfg.Mode, cfg.EffectiveHeader(), key)
}

// APIKeyInterceptor enforces key on the metadata entry named header when mode
// is "apikey". Keys are compared in constant time.
func APIKeyInterceptor(mode, header, key string) grpc.UnaryServerInterceptor {
	header = strings.ToLower(header)
	want := []byte(key)

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if mode != "apikey" || key == "" {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}
		vals := md.Get(header)
		if len(vals) == 0 || subtle.ConstantTimeCompare([]byte(vals[0]), want) != 1 {
			slog.Warn("auth: rejected call", "method", info.FullMethod, "header", header)
			return nil, status.Error(codes.Unauthenticated, "invalid api key")
		}
		return handler(ctx, req)
	}
}
