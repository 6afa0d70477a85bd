package tablegraph_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/tablegraph/pkg/flowgraph/config"
	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := tablegraph.LoadSettings(config.New(nil))

	require.NoError(t, err)
	assert.Equal(t, tablegraph.DefaultSettings(), s)
}

func TestLoadSettings_FromYAML(t *testing.T) {
	cfg, err := config.FromYAML([]byte(`
max_retries: 5
workers: 8
vlm:
  endpoint: http://vlm.internal/v1/chat/completions
  model: qwen2-vl
  timeout: 30s
image:
  max_width: 1600
  grayscale: true
validate:
  min_rows: 2
store:
  path: /var/lib/tablegraph/tables.db
log:
  format: json
`))
	require.NoError(t, err)

	s, err := tablegraph.LoadSettings(cfg)

	require.NoError(t, err)
	assert.Equal(t, 5, s.MaxRetries)
	assert.Equal(t, 8, s.Workers)
	assert.Equal(t, "http://vlm.internal/v1/chat/completions", s.VLMEndpoint)
	assert.Equal(t, "qwen2-vl", s.VLMModel)
	assert.Equal(t, 30*time.Second, s.VLMTimeout)
	assert.Equal(t, 1600, s.ImageMaxWidth)
	assert.True(t, s.ImageGrayscale)
	assert.Equal(t, 2, s.MinRows)
	assert.Equal(t, 2, s.MinColumns)
	assert.Equal(t, "/var/lib/tablegraph/tables.db", s.StorePath)
	assert.Equal(t, "json", s.LogFormat)
}

func TestLoadSettings_EnvOverride(t *testing.T) {
	env := map[string]string{"TABLEGRAPH_MAX_RETRIES": "0", "TABLEGRAPH_VLM_MODEL": "llava:13b"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := config.New(map[string]any{"max_retries": 4}).WithEnv(lookup, tablegraph.SettingsKeys...)
	s, err := tablegraph.LoadSettings(cfg)

	require.NoError(t, err)
	assert.Equal(t, 0, s.MaxRetries)
	assert.Equal(t, "llava:13b", s.VLMModel)
}

func TestLoadSettings_EnvNumericLookingStrings(t *testing.T) {
	env := map[string]string{"TABLEGRAPH_VLM_MODEL": "1106", "TABLEGRAPH_IMAGE_GRAYSCALE": "1"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	s, err := tablegraph.LoadSettings(config.New(nil).WithEnv(lookup, tablegraph.SettingsKeys...))

	require.NoError(t, err)
	assert.Equal(t, "1106", s.VLMModel)
	assert.True(t, s.ImageGrayscale)
}

func TestLoadSettings_Invalid(t *testing.T) {
	cfg := config.New(map[string]any{
		"max_retries": -1,
		"workers":     0,
		"vlm":         map[string]any{"endpoint": ""},
		"log":         map[string]any{"format": "xml"},
	})

	_, err := tablegraph.LoadSettings(cfg)

	require.Error(t, err)
	assert.ErrorContains(t, err, "max_retries")
	assert.ErrorContains(t, err, "workers")
	assert.ErrorContains(t, err, "vlm.endpoint")
	assert.ErrorContains(t, err, "log.format")
}
