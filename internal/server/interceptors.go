package server

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/ribbon-tracker/internal/common"
)

// RequestIDHeader is read from incoming metadata; a new id is generated when absent.
const RequestIDHeader = "x-request-id"

// UnaryLogging tags the context with a request id, recovers handler panics
// and logs one line per call.
func UnaryLogging(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		start := time.Now()
		reqID := ""
		if vals := metadata.ValueFromIncomingContext(ctx, RequestIDHeader); len(vals) > 0 {
			reqID = vals[0]
		}
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx = common.WithRequestID(ctx, reqID)

		defer func() {
			if r := recover(); r != nil {
				logger.Error("rpc.panic", "method", info.FullMethod, "request_id", reqID, "panic", r, "stack", string(debug.Stack()))
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
			code := status.Code(err)
			attrs := []any{
				"method", info.FullMethod,
				"request_id", reqID,
				"code", code.String(),
				"elapsed_ms", time.Since(start).Milliseconds(),
			}
			if err != nil && code != codes.InvalidArgument && code != codes.NotFound {
				logger.Error("rpc.done", append(attrs, "error", err)...)
				return
			}
			logger.Info("rpc.done", attrs...)
		}()
		return handler(ctx, req)
	}
}
