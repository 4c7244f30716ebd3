package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mfeller/metagen-api/internal/api/shared"
)

// CorrelationHeader is the header carrying the caller's correlation ID.
// The same ID is echoed on the response and forwarded to callbacks.
const CorrelationHeader = "X-Correlation-ID"

// TraceMiddleware attaches a correlation ID to every request. A caller-
// provided X-Correlation-ID is honored so clients can stitch their own
// logs to ours; otherwise a fresh ID is generated. Apply early in the
// chain so all handlers see the ID.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.WithTraceID(r.Context(), r.Header.Get(CorrelationHeader))
		traceID := shared.GetTraceID(ctx)

		w.Header().Set(CorrelationHeader, traceID)

		slog.Debug("request started",
			slog.String("trace_id", traceID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
