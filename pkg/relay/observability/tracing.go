package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// instrumentation names the tracer and meter used by relay.
const instrumentation = "github.com/randalmurphal/relay"

// Span names.
const (
	SpanEmit   = "relay.emit"
	SpanReemit = "relay.reemit"
)

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartDispatchSpan starts a span covering one dispatch, from snapshot
	// to settlement of the returned future.
	StartDispatchSpan(ctx context.Context, info DispatchInfo) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the span carried by ctx.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// DispatchInfo describes a dispatch for span attributes.
type DispatchInfo struct {
	ID         string
	Event      string
	Runner     string
	Epoch      uint64
	Candidates int
	Replay     bool
}

func (i DispatchInfo) spanName() string {
	if i.Replay {
		return SpanReemit
	}
	return SpanEmit
}

func (i DispatchInfo) attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("dispatch.id", i.ID),
		attribute.String("event.name", i.Event),
		attribute.String("event.runner", i.Runner),
		attribute.Int64("event.epoch", int64(i.Epoch)),
		attribute.Int("event.candidates", i.Candidates),
	}
}

type otelSpans struct {
	tracer trace.Tracer
}

// NewSpanManager returns a SpanManager backed by the global OTel tracer
// provider. Spans started before otel.SetTracerProvider is called are
// forwarded to the provider once it is set.
func NewSpanManager() SpanManager {
	return NewSpanManagerWith(otel.GetTracerProvider())
}

// NewSpanManagerWith returns a SpanManager backed by tp.
func NewSpanManagerWith(tp trace.TracerProvider) SpanManager {
	return &otelSpans{tracer: tp.Tracer(instrumentation)}
}

// StartDispatchSpan starts an internal span named after the dispatch kind.
func (s *otelSpans) StartDispatchSpan(ctx context.Context, info DispatchInfo) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, info.spanName(),
		trace.WithAttributes(info.attributes()...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError sets the span status from err and ends it.
func (s *otelSpans) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the recording span in ctx, if any.
func (s *otelSpans) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
