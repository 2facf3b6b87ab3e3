package llm

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"contentflow/internal/action"
	"contentflow/internal/checklist"
	"contentflow/internal/metrics"
)

// orderGenerator appends its tag to a shared log so wrap order is observable.
type orderGenerator struct {
	tag  string
	next Generator
	log  *[]string
}

func (o *orderGenerator) Name() string { return o.next.Name() }
func (o *orderGenerator) Close() error { return o.next.Close() }
func (o *orderGenerator) GenerateText(ctx context.Context, si, p string) (string, error) {
	*o.log = append(*o.log, o.tag)
	return o.next.GenerateText(ctx, si, p)
}
func (o *orderGenerator) GenerateImage(ctx context.Context, p string) (checklist.ImageHandle, error) {
	*o.log = append(*o.log, o.tag)
	return o.next.GenerateImage(ctx, p)
}

func tagMW(tag string, log *[]string) Middleware {
	return func(next Generator) Generator { return &orderGenerator{tag: tag, next: next, log: log} }
}

func TestWrapAppliesLeftToRight(t *testing.T) {
	var log []string
	g := Wrap(NewFakeClient(), tagMW("A", &log), tagMW("B", &log))
	_, err := g.GenerateText(context.Background(), "", "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, log)
}

func TestWithLoggingRecordsOutcome(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	fake := NewFakeClient().OnText(func(_, _ string) (string, error) {
		return "", errors.New("upstream 500")
	})
	g := Wrap(fake, WithLogging(logger))

	ctx := WithAction(context.Background(), action.PolishContent)
	_, err := g.GenerateText(ctx, "si", "draft")
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"action":"POLISH_CONTENT"`)
	assert.Contains(t, out, "upstream 500")
	assert.NotContains(t, out, "draft", "prompt text must not be logged")
}

func TestWithMetricsCountsOutcomes(t *testing.T) {
	fake := NewFakeClient().OnImage(func(string) (checklist.ImageHandle, error) { return "", nil })
	g := Wrap(fake, WithMetrics())
	ctx := WithAction(context.Background(), action.GenerateImage)

	c := metrics.GenerationRequestsTotal.WithLabelValues("GENERATE_IMAGE", "image", "empty")
	before := testutil.ToFloat64(c)
	_, err := g.GenerateImage(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestWithTracingRecordsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	fake := NewFakeClient().OnText(func(_, _ string) (string, error) { return "", errors.New("nope") })
	g := Wrap(fake, WithTracing(tp.Tracer("test")))

	_, _ = g.GenerateText(WithAction(context.Background(), action.GenerateIdeas), "", "x")
	_, _ = g.GenerateImage(context.Background(), "y")

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "llm.GenerateText", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "llm.GenerateImage", spans[1].Name())
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
}

func TestFakeClientHoldAndRelease(t *testing.T) {
	fake := NewFakeClient()
	release := fake.Hold()

	done := make(chan string, 1)
	go func() {
		out, _ := fake.GenerateText(context.Background(), "", "held")
		done <- out
	}()

	call := <-fake.Started()
	assert.Equal(t, "held", call.Prompt)
	select {
	case <-done:
		t.Fatal("call returned before release")
	default:
	}
	release()
	assert.Equal(t, "[offline] held", <-done)
	release()
}

func TestFakeClientHoldRespectsContext(t *testing.T) {
	fake := NewFakeClient()
	defer fake.Hold()()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fake.GenerateImage(ctx, "p")
	require.ErrorIs(t, err, context.Canceled)
	ge, ok := AsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, ImageFailure, ge.Kind)
}

func TestFakeClientDefaults(t *testing.T) {
	fake := NewFakeClient()
	h, err := fake.GenerateImage(context.Background(), "p")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(h), checklist.ImageDataURIPrefix))

	txt, err := fake.OnText(func(_, _ string) (string, error) { return "", nil }).
		GenerateText(context.Background(), "", "p")
	require.NoError(t, err)
	assert.Equal(t, EmptyTextFallback, txt)
	assert.Len(t, fake.Calls(), 2)
}

func TestEncodeJPEGEmpty(t *testing.T) {
	assert.Equal(t, checklist.ImageHandle(""), EncodeJPEG(nil))
}
