// Package interceptor holds the unary server interceptors of the gRPC API.
package interceptor

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/userapp/internal/logger"
)

type requestIDKey struct{}

// requestIDMetadata is the HTTP request id header in gRPC metadata form.
var requestIDMetadata = strings.ToLower(logger.RequestIDHeader)

// RequestIDFromContext returns the id set by UnaryRequestIDInterceptor.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)

	return id
}

// UnaryRequestIDInterceptor reuses the caller's x-request-id or generates one,
// and returns it in the response header.
func UnaryRequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		var requestID string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(requestIDMetadata); len(values) > 0 {
				requestID = values[0]
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		if err := grpc.SetHeader(ctx, metadata.Pairs(requestIDMetadata, requestID)); err != nil {
			logger.Log.Debugw("cannot set gRPC header", "error", err)
		}

		return handler(context.WithValue(ctx, requestIDKey{}, requestID), req)
	}
}

// UnaryLoggingInterceptor logs each incoming unary gRPC request with method and duration.
func UnaryLoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		start := time.Now()

		resp, err = handler(ctx, req)

		st, _ := status.FromError(err)

		logger.Log.Infow(
			"gRPC request",
			"request_id", RequestIDFromContext(ctx),
			"method", info.FullMethod,
			"duration", time.Since(start),
			"code", st.Code().String(),
			"message", st.Message(),
		)

		return resp, err
	}
}
