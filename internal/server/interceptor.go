package server

import (
	"context"
	"log/slog"
	"path"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oggyb/moodfriends/internal/metrics"
)

// UnaryInterceptor logs each call and records its code and latency.
// Internal errors are logged at error level, client errors at debug.
func UnaryInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		method := path.Base(info.FullMethod)
		code := status.Code(err)
		metrics.ObserveRPC(method, code.String(), start)

		attrs := []any{"method", method, "code", code.String(), "duration", time.Since(start)}
		switch code {
		case codes.OK:
			log.Debug("rpc done", attrs...)
		case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
			log.Error("rpc failed", append(attrs, "err", err)...)
		default:
			log.Debug("rpc rejected", append(attrs, "err", err)...)
		}
		return resp, err
	}
}
