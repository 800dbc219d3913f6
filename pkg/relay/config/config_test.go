package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessors(t *testing.T) {
	c := New(map[string]any{
		"name":    "hub",
		"enabled": true,
		"count":   3,
		"wide":    int64(4),
		"float":   float64(5),
		"frac":    5.5,
		"section": map[string]any{"key": "value"},
		"legacy":  map[any]any{"key": "old", 1: "dropped"},
	})

	assert.Equal(t, "hub", c.String("name", "x"))
	assert.Equal(t, "x", c.String("missing", "x"))
	assert.Equal(t, "x", c.String("count", "x"))

	assert.True(t, c.Bool("enabled", false))
	assert.True(t, c.Bool("name", true))

	assert.Equal(t, 3, c.Int("count", 0))
	assert.Equal(t, 4, c.Int("wide", 0))
	assert.Equal(t, 5, c.Int("float", 0))
	assert.Equal(t, 9, c.Int("frac", 9))

	assert.Equal(t, "value", c.Section("section").String("key", ""))
	assert.Equal(t, "value", c.String("section.key", ""))
	assert.Equal(t, "old", c.String("legacy.key", ""))
	assert.Equal(t, "x", c.String("name.key", "x"), "scalar has no children")
	assert.Equal(t, 0, c.Section("name").Len())
	assert.Equal(t, 0, c.Section("missing").Len())
	assert.Equal(t, 1, c.Section("legacy").Len(), "non-string keys are dropped")

	assert.True(t, c.Has("name"))
	assert.True(t, c.Has("section.key"))
	assert.False(t, c.Has("missing"))
	assert.False(t, c.Has("section.missing"))
}

func TestNewNil(t *testing.T) {
	c := New(nil)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, "x", c.String("a.b", "x"))
}

func TestFromYAML(t *testing.T) {
	c, err := FromYAML([]byte("default_runner: sequence\ndead_letter:\n  driver: memory\n  max: 10\n"))
	require.NoError(t, err)

	assert.Equal(t, "sequence", c.String("default_runner", ""))
	assert.Equal(t, "memory", c.String("dead_letter.driver", ""))
	assert.Equal(t, 10, c.Int("dead_letter.max", 0))

	_, err = FromYAML([]byte("key: [unclosed"))
	assert.Error(t, err)
}

func TestFromJSON(t *testing.T) {
	c, err := FromJSON([]byte(`{"metrics": true, "dead_letter": {"max": 3}}`))
	require.NoError(t, err)
	assert.True(t, c.Bool("metrics", false))
	assert.Equal(t, 3, c.Int("dead_letter.max", 0))

	_, err = FromJSON([]byte(`{`))
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "relay.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("log_level: debug\n"), 0o600))
	c, err := FromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.String("log_level", ""))

	jsonPath := filepath.Join(dir, "relay.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"log_level":"warn"}`), 0o600))
	c, err = FromFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "warn", c.String("log_level", ""))

	txtPath := filepath.Join(dir, "relay.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte(""), 0o600))
	_, err = FromFile(txtPath)
	assert.Error(t, err)

	_, err = FromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
