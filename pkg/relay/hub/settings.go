package hub

import (
	"fmt"
	"io"
	"os"

	"github.com/randalmurphal/relay/pkg/relay"
	"github.com/randalmurphal/relay/pkg/relay/config"
	"github.com/randalmurphal/relay/pkg/relay/deadletter"
	"github.com/randalmurphal/relay/pkg/relay/observability"
)

// logOutput receives hub logs when settings enable logging.
var logOutput io.Writer = os.Stderr

// FromSettings builds a private hub from settings. opts are applied last.
// The caller owns the hub and should Close it to release its dead letter
// store.
func FromSettings(s config.Settings, opts ...relay.Option) (*Hub, error) {
	base, store, err := Options(s)
	if err != nil {
		return nil, err
	}
	h := New(append(base, opts...)...)
	if store != nil {
		h.deadLetters = store
		h.closers = append(h.closers, store)
	}
	return h, nil
}

// Options translates settings into emitter options. store is the dead
// letter store opened for the settings, or nil; the caller closes it.
func Options(s config.Settings) (opts []relay.Option, store deadletter.Store, err error) {
	if err := s.Validate(); err != nil {
		return nil, nil, fmt.Errorf("hub settings: %w", err)
	}

	if s.LogLevel != "" {
		logger, err := observability.NewLogger(logOutput, s.LogLevel, s.LogFormat)
		if err != nil {
			return nil, nil, fmt.Errorf("hub logger: %w", err)
		}
		opts = append(opts, relay.WithLogger(logger))
	}
	if s.Metrics {
		opts = append(opts, relay.WithMetrics(observability.NewMetricsRecorder()))
	}
	if s.Tracing {
		opts = append(opts, relay.WithSpanManager(observability.NewSpanManager()))
	}
	if s.DefaultRunner != "" {
		opts = append(opts, relay.WithDefaultRunner(s.DefaultRunner))
	}

	switch s.DeadLetter.Driver {
	case config.DriverMemory:
		store = deadletter.NewMemoryStore(s.DeadLetter.Max)
	case config.DriverSQLite:
		sqlite, err := deadletter.NewSQLiteStore(s.DeadLetter.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("hub dead letters: %w", err)
		}
		store = sqlite
	}
	if store != nil {
		opts = append(opts, relay.WithDeadLetters(store))
	}

	return opts, store, nil
}
