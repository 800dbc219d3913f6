package relay

import (
	"log/slog"

	"github.com/randalmurphal/relay/pkg/relay/deadletter"
	"github.com/randalmurphal/relay/pkg/relay/observability"
)

// options holds emitter configuration.
type options struct {
	logger        *slog.Logger
	metrics       observability.MetricsRecorder
	spans         observability.SpanManager
	deadLetters   deadletter.Store
	runners       map[string]Runner
	defaultRunner string
}

func defaultOptions() options {
	return options{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
		runners: map[string]Runner{},
	}
}

// Option configures an Emitter.
type Option func(*options)

// WithLogger enables structured logging of dispatches.
// Default: nil (no logging)
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
// Default: observability.NoopMetrics{}
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithSpanManager sets the span manager.
// Default: observability.NoopSpanManager{}
func WithSpanManager(s observability.SpanManager) Option {
	return func(o *options) {
		if s != nil {
			o.spans = s
		}
	}
}

// WithDeadLetters records every rejected dispatch in store.
// The dispatch future still rejects.
func WithDeadLetters(store deadletter.Store) Option {
	return func(o *options) {
		o.deadLetters = store
	}
}

// WithRunner registers r under name, replacing any runner of that name.
//
// Example:
//
//	e := relay.New(relay.WithRunner("audit", auditRunner))
//	e.Emit(ctx, "user.saved:audit", user)
func WithRunner(name string, r Runner) Option {
	return func(o *options) {
		if r != nil {
			o.runners[name] = r
		}
	}
}

// WithRunners registers several runners at once.
func WithRunners(runners map[string]Runner) Option {
	return func(o *options) {
		for name, r := range runners {
			if r != nil {
				o.runners[name] = r
			}
		}
	}
}

// WithDefaultRunner selects the runner used by events without a ":runner"
// suffix. An unregistered name makes those dispatches fail with
// ErrUnknownRunner.
func WithDefaultRunner(name string) Option {
	return func(o *options) {
		o.defaultRunner = name
	}
}
