package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "TABLEGRAPH_"

// FromFile loads configuration, picking the format from the extension:
// .yaml, .yml or .json.
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

func FromYAML(data []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return New(m), nil
}

func FromJSON(data []byte) (Config, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return New(m), nil
}

// WithEnv overlays environment variables onto c for the given keys.
// The variable name is EnvPrefix plus the key upper-cased with dots
// replaced by underscores. Values are stored as raw strings; the typed
// getters parse them.
func (c Config) WithEnv(lookup func(string) (string, bool), keys ...string) Config {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	out := c
	for _, key := range keys {
		name := EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		raw, ok := lookup(name)
		if !ok {
			continue
		}
		out = out.With(key, raw)
	}
	return out
}
