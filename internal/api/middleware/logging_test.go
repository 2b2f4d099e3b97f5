package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airglance/airglance/internal/api/middleware"
)

func TestLogger_AccessLine(t *testing.T) {
	var buf bytes.Buffer

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Logger(zerolog.New(&buf)))
	r.Get("/v1/locations/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/locations/search?q=li", http.NoBody)
	req.Header.Set("User-Agent", "airglance-web/1.0")
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	serve(r, req)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	line := lines[0]

	assert.Equal(t, "request completed", line["message"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "/v1/locations/search", line["path"])
	assert.Equal(t, "/v1/locations/search", line["route"])
	assert.Equal(t, float64(200), line["status"])
	assert.Equal(t, float64(12), line["bytes"])
	assert.Equal(t, "abc-123", line["request_id"])
	assert.Equal(t, "airglance-web/1.0", line["user_agent"])
	assert.Contains(t, line, "duration")
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
	}{
		{"success", "/v1/classify", http.StatusOK, "info"},
		{"client error", "/v1/classify", http.StatusBadRequest, "info"},
		{"server error", "/v1/dashboard", http.StatusBadGateway, "error"},
		{"health probe", middleware.HealthPath, http.StatusOK, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := middleware.Logger(zerolog.New(&buf))(statusHandler(tt.status))

			serve(h, httptest.NewRequest(http.MethodGet, tt.path, http.NoBody))

			lines := logLines(t, &buf)
			require.Len(t, lines, 1)
			assert.Equal(t, tt.wantLevel, lines[0]["level"])
		})
	}
}

func TestLogger_HealthProbesQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	h := middleware.Logger(zerolog.New(&buf).Level(zerolog.InfoLevel))(okHandler())

	serve(h, httptest.NewRequest(http.MethodGet, middleware.HealthPath, http.NoBody))

	assert.Empty(t, buf.String())
}

func TestLogger_RequestLoggerCarriesIDs(t *testing.T) {
	sr := recordSpans(t)
	var buf bytes.Buffer

	h := middleware.RequestID(middleware.Tracing(middleware.Logger(zerolog.New(&buf))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hlog.FromRequest(r).Warn().Msg("upstream slow")
			w.WriteHeader(http.StatusOK)
		}),
	)))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/v1/dashboard", http.NoBody))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	traceID := spans[0].SpanContext().TraceID().String()

	lines := logLines(t, &buf)
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, rec.Header().Get(middleware.RequestIDHeader), line["request_id"])
		assert.Equal(t, traceID, line["trace_id"])
		assert.NotEmpty(t, line["span_id"])
	}
	assert.Equal(t, "upstream slow", lines[0]["message"])
}

func TestLogger_SilentHandlerIsOK(t *testing.T) {
	var buf bytes.Buffer
	h := middleware.Logger(zerolog.New(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	serve(h, httptest.NewRequest(http.MethodGet, "/v1/classify", http.NoBody))

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, float64(200), lines[0]["status"])
}
