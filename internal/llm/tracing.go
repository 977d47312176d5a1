package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ashita-ai/kansa/internal/telemetry"
)

// TracingGenerator wraps a Generator with an OTEL span and a latency
// histogram per call. With telemetry disabled both are no-ops.
type TracingGenerator struct {
	next     Generator
	provider string
	tracer   trace.Tracer
	duration metric.Float64Histogram
}

// WithTracing wraps g. provider names the backend in span attributes.
func WithTracing(g Generator, provider string) *TracingGenerator {
	meter := telemetry.Meter("kansa/llm")
	dur, _ := meter.Float64Histogram("kansa.llm.duration",
		metric.WithDescription("Time spent waiting on text generation (ms)"),
		metric.WithUnit("ms"),
	)
	return &TracingGenerator{
		next:     g,
		provider: provider,
		tracer:   otel.Tracer("kansa/llm"),
		duration: dur,
	}
}

// Generate forwards to the wrapped generator.
func (t *TracingGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	ctx, span := t.tracer.Start(ctx, "llm.generate", trace.WithAttributes(
		attribute.String("kansa.llm.provider", t.provider),
		attribute.Int("kansa.llm.system_chars", len(system)),
		attribute.Int("kansa.llm.user_chars", len(user)),
	))
	defer span.End()

	start := time.Now()
	out, err := t.next.Generate(ctx, system, user)
	t.duration.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(attribute.String("provider", t.provider), attribute.Bool("error", err != nil)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("kansa.llm.response_chars", len(out)))
	return out, nil
}
