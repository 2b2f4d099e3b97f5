package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	p, err := Init(ctx, Config{
		ServiceName:  "airglance-test",
		OTLPEndpoint: "localhost:4317",
	})
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(ctx))
}

func TestProvider_ShutdownRunsEveryStep(t *testing.T) {
	var order []string
	first := errors.New("first failed")
	p := &Provider{shutdown: []func(context.Context) error{
		func(context.Context) error {
			order = append(order, "traces")
			return first
		},
		func(context.Context) error {
			order = append(order, "metrics")
			return nil
		},
	}}
	require.True(t, p.Enabled())

	err := p.Shutdown(context.Background())

	assert.ErrorIs(t, err, first)
	assert.Equal(t, []string{"metrics", "traces"}, order)
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestProvider_ShutdownSDK(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	p := &Provider{shutdown: []func(context.Context) error{tp.Shutdown}}
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestConfig_Sampler(t *testing.T) {
	for _, ratio := range []float64{0, 1, 2.5, -1} {
		s := Config{SampleRatio: ratio}.sampler()
		assert.Contains(t, s.Description(), "ParentBased")
		assert.NotContains(t, s.Description(), "TraceIDRatioBased", "ratio %v", ratio)
	}

	s := Config{SampleRatio: 0.25}.sampler()
	assert.Contains(t, s.Description(), "TraceIDRatioBased{0.25}")
}

func TestConfig_ExportInterval(t *testing.T) {
	assert.Equal(t, DefaultExportInterval, Config{}.exportInterval())
	assert.Equal(t, time.Minute, Config{ExportInterval: time.Minute}.exportInterval())
}

func TestTracer(t *testing.T) {
	assert.NotNil(t, Tracer("airglance-test"))
}
