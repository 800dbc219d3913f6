package observability

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricDispatches       = "relay.dispatch.count"
	MetricDispatchLatency  = "relay.dispatch.latency_ms"
	MetricDispatchErrors   = "relay.dispatch.errors"
	MetricHandlerCalls     = "relay.handler.invocations"
	MetricHandlerErrors    = "relay.handler.errors"
	MetricHandlersDeferred = "relay.handler.deferred"
	MetricDeadLetters      = "relay.dead_letters"
)

// MetricsRecorder records relay metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDispatch records a completed or rejected dispatch.
	RecordDispatch(ctx context.Context, event, runner string, duration time.Duration, err error)

	// RecordHandler records one handler invocation.
	RecordHandler(ctx context.Context, event string, err error)

	// RecordDeferred records a handler skipped by phase-aware filtering.
	RecordDeferred(ctx context.Context, event string)

	// RecordDeadLetter records a failed dispatch handed to a dead letter store.
	RecordDeadLetter(ctx context.Context, event string)
}

type otelMetrics struct {
	dispatches      metric.Int64Counter
	dispatchLatency metric.Float64Histogram
	dispatchErrors  metric.Int64Counter
	handlerCalls    metric.Int64Counter
	handlerErrors   metric.Int64Counter
	deferred        metric.Int64Counter
	deadLetters     metric.Int64Counter
}

var (
	globalMetrics     MetricsRecorder
	globalMetricsOnce sync.Once
)

// NewMetricsRecorder returns a MetricsRecorder backed by the global OTel
// meter provider. The instruments are created once per process and shared.
// If they cannot be created a no-op recorder is returned.
func NewMetricsRecorder() MetricsRecorder {
	globalMetricsOnce.Do(func() {
		m, err := NewMetricsRecorderWith(otel.GetMeterProvider())
		if err != nil {
			slog.Warn("metrics initialization failed, using no-op recorder",
				slog.String("error", err.Error()))
			m = NoopMetrics{}
		}
		globalMetrics = m
	})
	return globalMetrics
}

// NewMetricsRecorderWith creates relay instruments on mp.
func NewMetricsRecorderWith(mp metric.MeterProvider) (MetricsRecorder, error) {
	meter := mp.Meter(instrumentation)
	var errs []error

	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}

	latency, err := meter.Float64Histogram(MetricDispatchLatency,
		metric.WithDescription("Dispatch latency from snapshot to settlement"),
		metric.WithUnit("ms"),
	)
	errs = append(errs, err)

	m := &otelMetrics{
		dispatches:      counter(MetricDispatches, "Number of dispatches"),
		dispatchLatency: latency,
		dispatchErrors:  counter(MetricDispatchErrors, "Number of rejected dispatches"),
		handlerCalls:    counter(MetricHandlerCalls, "Number of handler invocations"),
		handlerErrors:   counter(MetricHandlerErrors, "Number of failed handler invocations"),
		deferred:        counter(MetricHandlersDeferred, "Number of handlers deferred by lifecycle phase"),
		deadLetters:     counter(MetricDeadLetters, "Number of failed dispatches sent to the dead letter store"),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

func eventAttr(event string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("event", event))
}

// RecordDispatch records a dispatch.
func (m *otelMetrics) RecordDispatch(ctx context.Context, event, runner string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("runner", runner),
	)

	m.dispatches.Add(ctx, 1, attrs)
	m.dispatchLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		m.dispatchErrors.Add(ctx, 1, attrs)
	}
}

// RecordHandler records a handler invocation.
func (m *otelMetrics) RecordHandler(ctx context.Context, event string, err error) {
	m.handlerCalls.Add(ctx, 1, eventAttr(event))
	if err != nil {
		m.handlerErrors.Add(ctx, 1, eventAttr(event))
	}
}

// RecordDeferred records a deferred handler.
func (m *otelMetrics) RecordDeferred(ctx context.Context, event string) {
	m.deferred.Add(ctx, 1, eventAttr(event))
}

// RecordDeadLetter records a dead-lettered dispatch.
func (m *otelMetrics) RecordDeadLetter(ctx context.Context, event string) {
	m.deadLetters.Add(ctx, 1, eventAttr(event))
}
