// Package observability provides structured logging, metrics, and tracing
// for relay dispatches.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds a slog logger writing to w.
// level is one of debug, info, warn, error; format is text or json.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

// EnrichLogger adds dispatch context to a logger.
// Returns a new logger with event, runner, and dispatch_id fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "user.saved", "pipeline", id)
//	enriched.Debug("dispatching") // includes event, runner, dispatch_id
func EnrichLogger(logger *slog.Logger, event, runner, dispatchID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event", event),
		slog.String("runner", runner),
		slog.String("dispatch_id", dispatchID),
	)
}

// LogDispatchStart logs the start of a dispatch.
func LogDispatchStart(logger *slog.Logger, epoch uint64, candidates int, replay bool) {
	if logger == nil {
		return
	}
	logger.Debug("dispatch starting",
		slog.Uint64("epoch", epoch),
		slog.Int("candidates", candidates),
		slog.Bool("replay", replay),
	)
}

// LogDispatchComplete logs successful dispatch completion.
func LogDispatchComplete(logger *slog.Logger, durationMs float64, results int) {
	if logger == nil {
		return
	}
	logger.Debug("dispatch completed",
		slog.Float64("duration_ms", durationMs),
		slog.Int("results", results),
	)
}

// LogDispatchError logs a rejected dispatch.
func LogDispatchError(logger *slog.Logger, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("dispatch failed",
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogHandlerDeferred logs a handler skipped because its scope is mid-lifecycle.
func LogHandlerDeferred(logger *slog.Logger, scope, phase string) {
	if logger == nil {
		return
	}
	logger.Debug("handler deferred",
		slog.String("scope", scope),
		slog.String("phase", phase),
	)
}

// LogDeadLetterError logs a failure to record a failed dispatch (non-fatal).
func LogDeadLetterError(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Warn("dead letter enqueue failed",
		slog.String("error", err.Error()),
	)
}
