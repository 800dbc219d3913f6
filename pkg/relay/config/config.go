package config

import "strings"

// Config is the untyped view of a settings document. Keys may be dotted
// paths into nested sections ("dead_letter.driver"). Accessors return the
// supplied fallback when a key is missing or holds the wrong type.
type Config struct {
	data map[string]any
}

// New wraps a decoded settings document. A nil map yields an empty Config.
func New(data map[string]any) Config {
	if data == nil {
		data = map[string]any{}
	}
	return Config{data: data}
}

// lookup resolves a dotted path.
func (c Config) lookup(path string) (any, bool) {
	var cur any = c.data
	for _, part := range strings.Split(path, ".") {
		section, ok := asSection(cur)
		if !ok {
			return nil, false
		}
		if cur, ok = section[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// asSection accepts both map shapes produced by YAML and JSON decoders.
func asSection(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if s, ok := k.(string); ok {
				out[s] = val
			}
		}
		return out, true
	}
	return nil, false
}

// String returns the string at path, or fallback.
func (c Config) String(path, fallback string) string {
	if s, ok := get[string](c, path); ok {
		return s
	}
	return fallback
}

// Bool returns the boolean at path, or fallback.
func (c Config) Bool(path string, fallback bool) bool {
	if b, ok := get[bool](c, path); ok {
		return b
	}
	return fallback
}

// Int returns the integer at path, or fallback. JSON numbers are accepted
// when they have no fractional part.
func (c Config) Int(path string, fallback int) int {
	v, ok := c.lookup(path)
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	}
	return fallback
}

// Section returns the nested section at path. A missing or scalar value
// yields an empty Config.
func (c Config) Section(path string) Config {
	v, ok := c.lookup(path)
	if !ok {
		return New(nil)
	}
	m, _ := asSection(v)
	return New(m)
}

// Has reports whether path resolves to a value.
func (c Config) Has(path string) bool {
	_, ok := c.lookup(path)
	return ok
}

// Len returns the number of top-level keys.
func (c Config) Len() int {
	return len(c.data)
}

func get[T any](c Config, path string) (T, bool) {
	var zero T
	v, ok := c.lookup(path)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
