package config

import (
	"errors"
	"fmt"
)

// Dead letter drivers.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Settings is the typed configuration of a hub.
type Settings struct {
	// DefaultRunner overrides the runner used when an event name has no
	// ":runner" suffix. Empty keeps the hub default (pipeline).
	DefaultRunner string `env:"RELAY_DEFAULT_RUNNER"`

	// LogLevel is debug, info, warn or error. Empty disables logging.
	LogLevel string `env:"RELAY_LOG_LEVEL"`

	// LogFormat is text or json.
	LogFormat string `env:"RELAY_LOG_FORMAT"`

	// Metrics enables OpenTelemetry metrics via the global meter provider.
	Metrics bool `env:"RELAY_METRICS"`

	// Tracing enables OpenTelemetry spans via the global tracer provider.
	Tracing bool `env:"RELAY_TRACING"`

	DeadLetter DeadLetterSettings
}

// DeadLetterSettings selects where failed dispatches are recorded.
type DeadLetterSettings struct {
	Driver string `env:"RELAY_DEAD_LETTER_DRIVER"`
	Path   string `env:"RELAY_DEAD_LETTER_PATH"`
	Max    int    `env:"RELAY_DEAD_LETTER_MAX"`
}

// DefaultSettings returns settings with logging, metrics, tracing and dead
// letters all disabled.
func DefaultSettings() Settings {
	return Settings{
		LogFormat:  "text",
		DeadLetter: DeadLetterSettings{Driver: DriverNone},
	}
}

// SettingsFrom reads settings from a Config, falling back to defaults.
//
//	default_runner: pipeline
//	log_level: debug
//	log_format: json
//	metrics: true
//	tracing: true
//	dead_letter:
//	  driver: sqlite
//	  path: ./dead_letters.db
func SettingsFrom(c Config) Settings {
	d := DefaultSettings()
	return Settings{
		DefaultRunner: c.String("default_runner", d.DefaultRunner),
		LogLevel:      c.String("log_level", d.LogLevel),
		LogFormat:     c.String("log_format", d.LogFormat),
		Metrics:       c.Bool("metrics", d.Metrics),
		Tracing:       c.Bool("tracing", d.Tracing),
		DeadLetter: DeadLetterSettings{
			Driver: c.String("dead_letter.driver", d.DeadLetter.Driver),
			Path:   c.String("dead_letter.path", d.DeadLetter.Path),
			Max:    c.Int("dead_letter.max", d.DeadLetter.Max),
		},
	}
}

// Load reads settings from path (skipped when empty) and then applies
// RELAY_* environment overrides.
func Load(path string) (Settings, error) {
	s := DefaultSettings()
	if path != "" {
		c, err := FromFile(path)
		if err != nil {
			return Settings{}, err
		}
		s = SettingsFrom(c)
	}

	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks settings for contradictions.
func (s Settings) Validate() error {
	switch s.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", s.LogFormat)
	}

	switch s.DeadLetter.Driver {
	case "", DriverNone, DriverMemory:
	case DriverSQLite:
		if s.DeadLetter.Path == "" {
			return errors.New("dead_letter.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported dead letter driver: %s", s.DeadLetter.Driver)
	}

	if s.DeadLetter.Max < 0 {
		return errors.New("dead_letter.max must not be negative")
	}
	return nil
}
