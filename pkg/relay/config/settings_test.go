package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsFrom(t *testing.T) {
	c, err := FromYAML([]byte(`
default_runner: sequence
log_level: debug
log_format: json
metrics: true
tracing: true
dead_letter:
  driver: sqlite
  path: /tmp/dl.db
  max: 50
`))
	require.NoError(t, err)

	s := SettingsFrom(c)
	assert.Equal(t, Settings{
		DefaultRunner: "sequence",
		LogLevel:      "debug",
		LogFormat:     "json",
		Metrics:       true,
		Tracing:       true,
		DeadLetter:    DeadLetterSettings{Driver: DriverSQLite, Path: "/tmp/dl.db", Max: 50},
	}, s)
}

func TestSettingsFromEmpty(t *testing.T) {
	assert.Equal(t, DefaultSettings(), SettingsFrom(New(nil)))
}

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\nmetrics: false\n"), 0o600))

	t.Setenv("RELAY_LOG_LEVEL", "debug")
	t.Setenv("RELAY_METRICS", "true")
	t.Setenv("RELAY_DEAD_LETTER_DRIVER", "memory")
	t.Setenv("RELAY_DEAD_LETTER_MAX", "5")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.True(t, s.Metrics)
	assert.Equal(t, DriverMemory, s.DeadLetter.Driver)
	assert.Equal(t, 5, s.DeadLetter.Max)
	// untouched by env
	assert.Equal(t, "text", s.LogFormat)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("RELAY_METRICS", "maybe")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("invalid settings", func(t *testing.T) {
		t.Setenv("RELAY_DEAD_LETTER_DRIVER", "sqlite")
		_, err := Load("")
		assert.ErrorContains(t, err, "dead_letter.path")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(*Settings) {}, false},
		{"json format", func(s *Settings) { s.LogFormat = "json" }, false},
		{"bad format", func(s *Settings) { s.LogFormat = "xml" }, true},
		{"memory driver", func(s *Settings) { s.DeadLetter.Driver = DriverMemory }, false},
		{"sqlite with path", func(s *Settings) {
			s.DeadLetter.Driver = DriverSQLite
			s.DeadLetter.Path = "x.db"
		}, false},
		{"sqlite without path", func(s *Settings) { s.DeadLetter.Driver = DriverSQLite }, true},
		{"unknown driver", func(s *Settings) { s.DeadLetter.Driver = "redis" }, true},
		{"negative max", func(s *Settings) { s.DeadLetter.Max = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
