package config

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"
)

// Config is an immutable view over a map[string]any tree.
type Config struct {
	data map[string]any
}

// New creates a Config from the given map. A nil map gives an empty Config.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// lookup resolves a key, trying the literal key first and then a dotted
// path through nested maps.
func (c Config) lookup(key string) (any, bool) {
	if v, ok := c.data[key]; ok {
		return v, true
	}

	parts := strings.Split(key, ".")
	if len(parts) == 1 {
		return nil, false
	}

	var cur any = c.data
	for _, part := range parts {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = val
		}
		return out, true
	}
	return nil, false
}

// String also accepts scalars, so `model: 1106` in YAML reads as "1106".
func (c Config) String(key, defaultVal string) string {
	switch val := c.get(key).(type) {
	case string:
		return val
	case int, int64, float64, bool:
		return fmt.Sprint(val)
	}
	return defaultVal
}

// Duration accepts a duration string, a time.Duration, or a number of seconds.
func (c Config) Duration(key string, defaultVal time.Duration) time.Duration {
	switch val := c.get(key).(type) {
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if secs, err := strconv.ParseFloat(val, 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	case time.Duration:
		return val
	case int:
		return time.Duration(val) * time.Second
	case int64:
		return time.Duration(val) * time.Second
	case float64:
		return time.Duration(val * float64(time.Second))
	}
	return defaultVal
}

// Bool accepts bools and the strings strconv.ParseBool understands.
func (c Config) Bool(key string, defaultVal bool) bool {
	switch val := c.get(key).(type) {
	case bool:
		return val
	case string:
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// Int accepts int, int64, floats without a fractional part and decimal
// strings.
func (c Config) Int(key string, defaultVal int) int {
	switch val := c.get(key).(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
	case string:
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func (c Config) Float(key string, defaultVal float64) float64 {
	switch val := c.get(key).(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// StringSlice returns defaultVal if any element is not a string.
func (c Config) StringSlice(key string, defaultVal []string) []string {
	switch val := c.get(key).(type) {
	case []string:
		return val
	case []any:
		result := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return defaultVal
			}
			result = append(result, s)
		}
		return result
	}
	return defaultVal
}

func (c Config) Any(key string, defaultVal any) any {
	if v, ok := c.lookup(key); ok {
		return v
	}
	return defaultVal
}

func (c Config) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

// Sub returns the nested section at key, or an empty Config.
func (c Config) Sub(key string) Config {
	v, _ := c.lookup(key)
	m, _ := asMap(v)
	return New(m)
}

// Raw returns the underlying map. Do not modify it.
func (c Config) Raw() map[string]any {
	return c.data
}

// With returns a copy of c with key set to value. Dotted keys create or
// extend nested sections.
func (c Config) With(key string, value any) Config {
	out := cloneTree(c.data)
	parts := strings.Split(key, ".")

	cur := out
	for _, part := range parts[:len(parts)-1] {
		next, ok := asMap(cur[part])
		if !ok {
			next = make(map[string]any)
		}
		cur[part] = next
		cur = next
	}
	cur[parts[len(parts)-1]] = value
	return Config{data: out}
}

func (c Config) get(key string) any {
	v, _ := c.lookup(key)
	return v
}

func cloneTree(m map[string]any) map[string]any {
	out := maps.Clone(m)
	if out == nil {
		out = make(map[string]any)
	}
	for k, v := range out {
		if nested, ok := asMap(v); ok {
			out[k] = cloneTree(nested)
		}
	}
	return out
}
