package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/airglance/airglance/internal/api/middleware"

// Metrics records RED metrics for the HTTP API.
type Metrics struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	inFlight metric.Int64UpDownCounter
	size     metric.Int64Histogram
}

// NewMetrics creates the HTTP instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	var m Metrics
	var err, e error

	m.duration, e = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests"), metric.WithUnit("s"))
	err = errors.Join(err, e)
	m.requests, e = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("HTTP server requests served"), metric.WithUnit("{request}"))
	err = errors.Join(err, e)
	m.inFlight, e = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("HTTP requests currently being served"), metric.WithUnit("{request}"))
	err = errors.Join(err, e)
	m.size, e = meter.Int64Histogram("http.server.response.body.size",
		metric.WithDescription("Size of HTTP response bodies"), metric.WithUnit("By"))
	err = errors.Join(err, e)

	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Middleware records one observation per request, labelled by method, chi
// route and status class.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()

			// The route is unknown until chi has run, so in-flight is per method.
			method := metric.WithAttributes(attribute.String("http.request.method", r.Method))
			m.inFlight.Add(ctx, 1, method)
			defer m.inFlight.Add(ctx, -1, method)

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			attrs := metric.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", routePattern(r)),
				attribute.Int("http.response.status_code", rec.status),
			)
			m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
			m.requests.Add(ctx, 1, attrs)
			m.size.Record(ctx, rec.written, attrs)
		})
	}
}

// ProviderMetrics records upstream provider calls and cache lookups. It
// satisfies the cache recorder hooks of the weather and air quality services.
type ProviderMetrics struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	lookups  metric.Int64Counter
}

// NewProviderMetrics creates the provider instruments on the global meter provider.
func NewProviderMetrics() (*ProviderMetrics, error) {
	meter := otel.Meter(meterName)
	var m ProviderMetrics
	var err, e error

	m.duration, e = meter.Float64Histogram("provider.request.duration",
		metric.WithDescription("Duration of upstream provider calls, retries included"), metric.WithUnit("s"))
	err = errors.Join(err, e)
	m.requests, e = meter.Int64Counter("provider.request.total",
		metric.WithDescription("Upstream provider calls"), metric.WithUnit("{request}"))
	err = errors.Join(err, e)
	m.lookups, e = meter.Int64Counter("provider.cache.lookups",
		metric.WithDescription("Provider cache lookups by result"), metric.WithUnit("{lookup}"))
	err = errors.Join(err, e)

	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Observe records one upstream call. It matches resilience.Observer.
func (m *ProviderMetrics) Observe(provider string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("provider.name", provider),
		attribute.Bool("error", err != nil),
	)
	// Recorded after the request context may be gone.
	ctx := context.Background()
	m.duration.Record(ctx, duration.Seconds(), attrs)
	m.requests.Add(ctx, 1, attrs)
}

// RecordCacheHit counts a cache hit.
func (m *ProviderMetrics) RecordCacheHit(provider, operation string) {
	m.lookup(provider, operation, "hit")
}

// RecordCacheMiss counts a cache miss.
func (m *ProviderMetrics) RecordCacheMiss(provider, operation string) {
	m.lookup(provider, operation, "miss")
}

func (m *ProviderMetrics) lookup(provider, operation, result string) {
	m.lookups.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("provider.name", provider),
		attribute.String("provider.operation", operation),
		attribute.String("cache.result", result),
	))
}
