package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"go.opentelemetry.io/otel/trace"
)

// HealthPath is probed by orchestrators; its access lines are logged at debug.
const HealthPath = "/v1/ops/health"

// Logger stores a per-request copy of log in the request context, tagged with
// the request and trace IDs, and writes one access line per request. Handlers
// reach the tagged logger through hlog.FromRequest. Must run after RequestID
// and Tracing.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	attach := hlog.NewHandler(log)
	access := hlog.AccessHandler(accessLine)

	return func(next http.Handler) http.Handler {
		return attach(tagRequest(access(next)))
	}
}

func tagRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
			c = c.Str("request_id", GetRequestID(ctx))
			if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
				c = c.Str("trace_id", sc.TraceID().String()).
					Str("span_id", sc.SpanID().String())
			}
			return c
		})
		next.ServeHTTP(w, r)
	})
}

func accessLine(r *http.Request, status, size int, duration time.Duration) {
	if status == 0 {
		status = http.StatusOK
	}

	log := hlog.FromRequest(r)
	event := log.Info()
	switch {
	case status >= http.StatusInternalServerError:
		event = log.Error()
	case r.URL.Path == HealthPath:
		event = log.Debug()
	}

	event.
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("route", routePattern(r)).
		Int("status", status).
		Int("bytes", size).
		Dur("duration", duration).
		Str("remote_addr", r.RemoteAddr).
		Str("user_agent", r.UserAgent()).
		Msg("request completed")
}
