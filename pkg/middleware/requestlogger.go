package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/pkg/logger"
)

// RequestLogger stores a request-scoped logger enriched with correlation_id,
// client_id, trace_id and span_id in the context. Mount it after
// RequestLogging and Tracing; downstream code reads it with logger.FromContext.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Public routes run without RequireClientID; still tag the line
			// when the browser sent its id.
			if logger.ClientIDFromContext(ctx) == "" {
				if id := r.Header.Get(ClientIDHeader); ValidClientID(id) {
					ctx = logger.WithClientID(ctx, id)
				}
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
