package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// decoders maps a settings file extension to its decoder.
var decoders = map[string]func([]byte, any) error{
	".yaml": yaml.Unmarshal,
	".yml":  yaml.Unmarshal,
	".json": json.Unmarshal,
}

// FromFile reads a settings document, choosing the format by extension
// (.yaml, .yml or .json).
func FromFile(path string) (Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return Config{}, fmt.Errorf("unsupported config file extension: %q", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return parse(data, decode, strings.TrimPrefix(ext, "."))
}

// FromYAML parses a YAML settings document.
func FromYAML(data []byte) (Config, error) {
	return parse(data, yaml.Unmarshal, "yaml")
}

// FromJSON parses a JSON settings document.
func FromJSON(data []byte) (Config, error) {
	return parse(data, json.Unmarshal, "json")
}

func parse(data []byte, decode func([]byte, any) error, format string) (Config, error) {
	var m map[string]any
	if err := decode(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", format, err)
	}
	return New(m), nil
}

// ParseEnv overlays RELAY_* environment variables onto target, which must
// be a pointer to a struct with env tags. Unset variables leave fields as
// they are.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
