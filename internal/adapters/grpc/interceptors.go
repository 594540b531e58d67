package grpc

import (
	"context"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/andrescamacho/craftplan-go/internal/application/common"
)

// rateLimitInterceptor rejects calls above the limiter's rate with ResourceExhausted
func rateLimitInterceptor(limiter *rate.Limiter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !limiter.Allow() {
			return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded for %s", info.FullMethod)
		}
		return handler(ctx, req)
	}
}

// loggingInterceptor attaches logger to the request context and logs each call
func loggingInterceptor(logger common.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		ctx = common.WithLogger(ctx, logger)
		start := time.Now()

		resp, err := handler(ctx, req)

		metadata := map[string]interface{}{
			"method":      info.FullMethod,
			"duration_ms": time.Since(start).Milliseconds(),
			"code":        status.Code(err).String(),
		}
		if err != nil {
			metadata["error"] = err.Error()
			logger.Log("WARNING", "gRPC call failed", metadata)
		} else {
			logger.Log("DEBUG", "gRPC call served", metadata)
		}
		return resp, err
	}
}
