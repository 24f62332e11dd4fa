package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/madhava-poojari/jobs-admin-console/internal/auth"
	"github.com/madhava-poojari/jobs-admin-console/internal/logger"
)

type operatorHolder struct{ id string }

type holderKey struct{}

// RequestLogger logs one line per request: method, path, status, bytes,
// duration and, once authenticated, the operator.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			// filled in by trackOperator deeper in the chain
			holder := &operatorHolder{}
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), holderKey{}, holder)))

			zl := log.Zerolog()
			ev := zl.Info()
			switch {
			case ww.Status() >= 500:
				ev = zl.Error()
			case ww.Status() >= 400:
				ev = zl.Warn()
			}
			ev = ev.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context()))
			if holder.id != "" {
				ev = ev.Str("operator", holder.id)
			}
			ev.Msg("request")
		})
	}
}

// trackOperator hands the authenticated operator back to RequestLogger.
func trackOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := r.Context().Value(holderKey{}).(*operatorHolder); ok {
			if op := auth.GetOperatorFromCtx(r.Context()); op != nil {
				h.id = op.ID
			}
		}
		next.ServeHTTP(w, r)
	})
}
