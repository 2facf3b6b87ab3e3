package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"contentflow/internal/checklist"
	"contentflow/internal/metrics"
)

// Middleware decorates a Generator with a cross-cutting concern.
type Middleware func(Generator) Generator

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Generator, mws ...Middleware) Generator {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Rate limiting --------

// RateLimit throttles outgoing calls. It never retries; a call that cannot get
// a token before ctx ends fails with the matching GenerationError.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Generator) Generator {
		return &rateLimited{next: next, rl: newRPSLimiter(rps, burst)}
	}
}

type rateLimited struct {
	next Generator
	rl   *rpsLimiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error {
	c.rl.Stop()
	return c.next.Close()
}

func (c *rateLimited) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if err := c.rl.Acquire(ctx); err != nil {
		return "", providerFailure(err)
	}
	return c.next.GenerateText(ctx, systemInstruction, prompt)
}

func (c *rateLimited) GenerateImage(ctx context.Context, prompt string) (checklist.ImageHandle, error) {
	if err := c.rl.Acquire(ctx); err != nil {
		return "", imageFailure(err)
	}
	return c.next.GenerateImage(ctx, prompt)
}

// -------- Logging --------

// WithLogging logs request size, duration and errors. Prompts and image
// payloads are logged by size only.
func WithLogging(logger zerolog.Logger) Middleware {
	return func(next Generator) Generator {
		return &logging{next: next, log: logger.With().Str("component", "llm").Str("provider", next.Name()).Logger()}
	}
}

type logging struct {
	next Generator
	log  zerolog.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) event(err error) *zerolog.Event {
	if err != nil {
		return l.log.Error().Err(err)
	}
	return l.log.Info()
}

func (l *logging) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	start := time.Now()
	l.log.Debug().Str("action", actionLabel(ctx)).Int("prompt_bytes", len(prompt)).Msg("text request")
	out, err := l.next.GenerateText(ctx, systemInstruction, prompt)
	ev := l.event(err)
	ev.Str("action", actionLabel(ctx)).
		Dur("took", time.Since(start)).
		Int("response_bytes", len(out)).
		Msg("text response")
	return out, err
}

func (l *logging) GenerateImage(ctx context.Context, prompt string) (checklist.ImageHandle, error) {
	start := time.Now()
	l.log.Debug().Str("action", actionLabel(ctx)).Int("prompt_bytes", len(prompt)).Msg("image request")
	out, err := l.next.GenerateImage(ctx, prompt)
	ev := l.event(err)
	ev.Str("action", actionLabel(ctx)).
		Dur("took", time.Since(start)).
		Int("handle_bytes", len(out)).
		Bool("empty", out == "").
		Msg("image response")
	return out, err
}

// -------- Metrics --------

func WithMetrics() Middleware {
	return func(next Generator) Generator {
		return &metered{next: next}
	}
}

type metered struct {
	next Generator
}

func (m *metered) Name() string { return m.next.Name() }
func (m *metered) Close() error { return m.next.Close() }

func (m *metered) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	start := time.Now()
	out, err := m.next.GenerateText(ctx, systemInstruction, prompt)
	observe(ctx, "text", start, err, false)
	return out, err
}

func (m *metered) GenerateImage(ctx context.Context, prompt string) (checklist.ImageHandle, error) {
	start := time.Now()
	out, err := m.next.GenerateImage(ctx, prompt)
	observe(ctx, "image", start, err, err == nil && out == "")
	return out, err
}

func observe(ctx context.Context, kind string, start time.Time, err error, empty bool) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case empty:
		outcome = "empty"
	}
	metrics.GenerationRequestsTotal.WithLabelValues(actionLabel(ctx), kind, outcome).Inc()
	metrics.GenerationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// -------- Tracing --------

// WithTracing opens a span per provider call. A nil tracer uses the global
// provider, which is a no-op unless tracing was initialised.
func WithTracing(tracer trace.Tracer) Middleware {
	if tracer == nil {
		tracer = otel.Tracer("contentflow/llm")
	}
	return func(next Generator) Generator {
		return &traced{next: next, tracer: tracer}
	}
}

type traced struct {
	next   Generator
	tracer trace.Tracer
}

func (t *traced) Name() string { return t.next.Name() }
func (t *traced) Close() error { return t.next.Close() }

func (t *traced) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	ctx, span := t.tracer.Start(ctx, "llm.GenerateText", trace.WithAttributes(
		attribute.String("llm.provider", t.next.Name()),
		attribute.String("llm.action", actionLabel(ctx)),
		attribute.Int("llm.prompt_bytes", len(prompt)),
	))
	defer span.End()
	out, err := t.next.GenerateText(ctx, systemInstruction, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}

func (t *traced) GenerateImage(ctx context.Context, prompt string) (checklist.ImageHandle, error) {
	ctx, span := t.tracer.Start(ctx, "llm.GenerateImage", trace.WithAttributes(
		attribute.String("llm.provider", t.next.Name()),
		attribute.String("llm.action", actionLabel(ctx)),
		attribute.Int("llm.prompt_bytes", len(prompt)),
	))
	defer span.End()
	out, err := t.next.GenerateImage(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Bool("llm.image_empty", out == ""))
	return out, err
}
