package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitt/internal/metrics"
)

// LoggingInterceptor logs every RPC with its procedure, duration and result,
// and records the duration in m. Client errors (a *connect.Error) are logged at
// WARN, anything else at ERROR. Install it ahead of BillAuth so that rejected
// tokens are logged and counted too.
func LoggingInterceptor(m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			elapsed := time.Since(start)

			procedure := req.Spec().Procedure
			m.ObserveRPC(procedure, err, elapsed)

			attrs := []any{"procedure", procedure, "duration_ms", elapsed.Milliseconds()}
			var connectErr *connect.Error
			switch {
			case err == nil:
				slog.InfoContext(ctx, "RPC ok", attrs...)
			case errors.As(err, &connectErr):
				attrs = append(attrs, "code", connectErr.Code(), "error", connectErr.Message())
				slog.WarnContext(ctx, "RPC error", attrs...)
			default:
				attrs = append(attrs, "error", err)
				slog.ErrorContext(ctx, "RPC error", attrs...)
			}
			return resp, err
		}
	}
}
