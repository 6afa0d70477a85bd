package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/tablegraph/pkg/flowgraph/config"
)

func TestAccessors(t *testing.T) {
	cfg := config.New(map[string]any{
		"name":     "tablegraph",
		"timeout":  "90s",
		"seconds":  5,
		"float":    1.5,
		"whole":    float64(3),
		"fraction": 2.5,
		"enabled":  true,
		"tags":     []any{"a", "b"},
		"mixed":    []any{"a", 1},
	})

	assert.Equal(t, "tablegraph", cfg.String("name", ""))
	assert.Equal(t, "5", cfg.String("seconds", ""), "scalars read as strings")
	assert.Equal(t, "fallback", cfg.String("tags", "fallback"), "wrong type yields default")

	assert.Equal(t, 90*time.Second, cfg.Duration("timeout", 0))
	assert.Equal(t, 5*time.Second, cfg.Duration("seconds", 0))
	assert.Equal(t, 1500*time.Millisecond, cfg.Duration("float", 0))
	assert.Equal(t, time.Minute, cfg.Duration("name", time.Minute), "unparseable string")

	assert.Equal(t, 3, cfg.Int("whole", 0))
	assert.Equal(t, 7, cfg.Int("fraction", 7), "fractional float is not an int")
	assert.Equal(t, 5.0, cfg.Float("seconds", 0))

	assert.True(t, cfg.Bool("enabled", false))
	assert.True(t, cfg.Bool("missing", true))

	assert.Equal(t, []string{"a", "b"}, cfg.StringSlice("tags", nil))
	assert.Equal(t, []string{"x"}, cfg.StringSlice("mixed", []string{"x"}))

	assert.True(t, cfg.Has("name"))
	assert.False(t, cfg.Has("nope"))
	assert.Nil(t, cfg.Any("nope", nil))
}

func TestNew_NilMap(t *testing.T) {
	cfg := config.New(nil)
	assert.NotNil(t, cfg.Raw())
	assert.False(t, cfg.Has("x"))
}

func TestDottedKeys(t *testing.T) {
	cfg, err := config.FromYAML([]byte(`
vlm:
  endpoint: http://localhost:8000/v1
  timeout: 2m
  retry:
    max: 4
image:
  grayscale: true
`))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/v1", cfg.String("vlm.endpoint", ""))
	assert.Equal(t, 2*time.Minute, cfg.Duration("vlm.timeout", 0))
	assert.Equal(t, 4, cfg.Int("vlm.retry.max", 0))
	assert.True(t, cfg.Bool("image.grayscale", false))
	assert.False(t, cfg.Has("vlm.missing"))
	assert.False(t, cfg.Has("vlm.endpoint.deeper"))

	sub := cfg.Sub("vlm")
	assert.Equal(t, "http://localhost:8000/v1", sub.String("endpoint", ""))
	assert.False(t, cfg.Sub("nothing").Has("endpoint"))
}

func TestWith_DoesNotMutateOriginal(t *testing.T) {
	base := config.New(map[string]any{"vlm": map[string]any{"model": "a"}})

	changed := base.With("vlm.model", "b").With("store.path", "t.db")

	assert.Equal(t, "a", base.String("vlm.model", ""))
	assert.Equal(t, "b", changed.String("vlm.model", ""))
	assert.Equal(t, "t.db", changed.String("store.path", ""))
}

func TestWithEnv(t *testing.T) {
	env := map[string]string{
		"TABLEGRAPH_VLM_ENDPOINT":    "http://vlm:9000/v1",
		"TABLEGRAPH_MAX_RETRIES":     "5",
		"TABLEGRAPH_IMAGE_GRAYSCALE": "false",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := config.New(map[string]any{"max_retries": 3}).
		WithEnv(lookup, "vlm.endpoint", "max_retries", "image.grayscale", "vlm.model")

	assert.Equal(t, "http://vlm:9000/v1", cfg.String("vlm.endpoint", ""))
	assert.Equal(t, 5, cfg.Int("max_retries", 0))
	assert.False(t, cfg.Bool("image.grayscale", true))
	assert.False(t, cfg.Has("vlm.model"))
}

func TestWithEnv_TypedGettersParseStrings(t *testing.T) {
	env := map[string]string{
		"TABLEGRAPH_VLM_MODEL":       "1106",
		"TABLEGRAPH_IMAGE_GRAYSCALE": "1",
		"TABLEGRAPH_IMAGE_UPSCALE":   "2",
		"TABLEGRAPH_VLM_TIMEOUT":     "30",
		"TABLEGRAPH_WORKERS":         "two",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := config.New(nil).WithEnv(lookup,
		"vlm.model", "image.grayscale", "image.upscale", "vlm.timeout", "workers")

	assert.Equal(t, "1106", cfg.String("vlm.model", "llava"))
	assert.True(t, cfg.Bool("image.grayscale", false))
	assert.Equal(t, 2.0, cfg.Float("image.upscale", 1.5))
	assert.Equal(t, 30*time.Second, cfg.Duration("vlm.timeout", 0))
	assert.Equal(t, 4, cfg.Int("workers", 4), "unparseable string yields default")
}

func TestFromJSON(t *testing.T) {
	cfg, err := config.FromJSON([]byte(`{"workers": 4, "store": {"path": "tables.db"}}`))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Int("workers", 0))
	assert.Equal(t, "tables.db", cfg.String("store.path", ""))

	_, err = config.FromJSON([]byte(`{broken`))
	assert.Error(t, err)
}

func TestFromYAML_Invalid(t *testing.T) {
	_, err := config.FromYAML([]byte("invalid: yaml: content:"))
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "cfg.YML")
	require.NoError(t, os.WriteFile(yamlPath, []byte("workers: 2\n"), 0o600))
	cfg, err := config.FromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Int("workers", 0))

	jsonPath := filepath.Join(dir, "cfg.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"workers": 3}`), 0o600))
	cfg, err = config.FromFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Int("workers", 0))

	txtPath := filepath.Join(dir, "cfg.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o600))
	_, err = config.FromFile(txtPath)
	assert.ErrorContains(t, err, "unsupported config file extension")

	_, err = config.FromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
