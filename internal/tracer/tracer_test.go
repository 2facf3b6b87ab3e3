package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	tr, shutdown, err := Init(context.Background(), Config{})
	require.NoError(t, err)
	require.NotNil(t, tr)
	require.NoError(t, shutdown(context.Background()))

	ctx, span := tr.Start(context.Background(), "noop")
	defer span.End()
	assert.Empty(t, TraceID(ctx))
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1.5).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestTraceIDFromRecordingSpan(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("t").Start(context.Background(), "op")
	defer span.End()
	assert.Len(t, TraceID(ctx), 32)
}
