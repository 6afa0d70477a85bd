package tablegraph

import (
	"errors"
	"fmt"
	"time"

	"github.com/randalmurphal/tablegraph/pkg/flowgraph"
	"github.com/randalmurphal/tablegraph/pkg/flowgraph/config"
)

// Settings is the flat view of a tablegraph configuration file.
type Settings struct {
	MaxRetries    int
	MaxIterations int
	Workers       int

	VLMEndpoint  string
	VLMModel     string
	VLMAPIKeyEnv string
	VLMTimeout   time.Duration
	VLMRetryMax  int

	ImageMaxWidth   int
	ImageGrayscale  bool
	UpscaleFactor   float64
	UpscaleMaxWidth int

	MinRows    int
	MinColumns int

	StorePath      string
	CheckpointPath string

	LogLevel  string
	LogFormat string
}

// SettingsKeys lists every key LoadSettings reads. Pass it to
// config.Config.WithEnv to allow environment overrides.
var SettingsKeys = []string{
	"max_retries", "max_iterations", "workers",
	"vlm.endpoint", "vlm.model", "vlm.api_key_env", "vlm.timeout", "vlm.retry_max",
	"image.max_width", "image.grayscale", "image.upscale", "image.upscale_max_width",
	"validate.min_rows", "validate.min_columns",
	"store.path", "checkpoint.path",
	"log.level", "log.format",
}

// DefaultSettings returns the settings used for keys absent from the config.
func DefaultSettings() Settings {
	return Settings{
		MaxRetries:      3,
		MaxIterations:   flowgraph.DefaultMaxIterations,
		Workers:         4,
		VLMEndpoint:     "http://localhost:11434/v1/chat/completions",
		VLMModel:        "llava",
		VLMAPIKeyEnv:    "TABLEGRAPH_VLM_API_KEY",
		VLMTimeout:      2 * time.Minute,
		VLMRetryMax:     3,
		ImageMaxWidth:   2000,
		UpscaleFactor:   1.5,
		UpscaleMaxWidth: 4000,
		MinRows:         1,
		MinColumns:      2,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// LoadSettings reads Settings from cfg, falling back to DefaultSettings.
func LoadSettings(cfg config.Config) (Settings, error) {
	d := DefaultSettings()
	s := Settings{
		MaxRetries:      cfg.Int("max_retries", d.MaxRetries),
		MaxIterations:   cfg.Int("max_iterations", d.MaxIterations),
		Workers:         cfg.Int("workers", d.Workers),
		VLMEndpoint:     cfg.String("vlm.endpoint", d.VLMEndpoint),
		VLMModel:        cfg.String("vlm.model", d.VLMModel),
		VLMAPIKeyEnv:    cfg.String("vlm.api_key_env", d.VLMAPIKeyEnv),
		VLMTimeout:      cfg.Duration("vlm.timeout", d.VLMTimeout),
		VLMRetryMax:     cfg.Int("vlm.retry_max", d.VLMRetryMax),
		ImageMaxWidth:   cfg.Int("image.max_width", d.ImageMaxWidth),
		ImageGrayscale:  cfg.Bool("image.grayscale", d.ImageGrayscale),
		UpscaleFactor:   cfg.Float("image.upscale", d.UpscaleFactor),
		UpscaleMaxWidth: cfg.Int("image.upscale_max_width", d.UpscaleMaxWidth),
		MinRows:         cfg.Int("validate.min_rows", d.MinRows),
		MinColumns:      cfg.Int("validate.min_columns", d.MinColumns),
		StorePath:       cfg.String("store.path", d.StorePath),
		CheckpointPath:  cfg.String("checkpoint.path", d.CheckpointPath),
		LogLevel:        cfg.String("log.level", d.LogLevel),
		LogFormat:       cfg.String("log.format", d.LogFormat),
	}
	return s, s.validate()
}

func (s Settings) validate() error {
	var errs []error
	if s.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max_retries must be >= 0, got %d", s.MaxRetries))
	}
	if s.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("max_iterations must be > 0, got %d", s.MaxIterations))
	}
	if s.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be > 0, got %d", s.Workers))
	}
	if s.VLMEndpoint == "" {
		errs = append(errs, errors.New("vlm.endpoint is required"))
	}
	if s.UpscaleFactor < 1 {
		errs = append(errs, fmt.Errorf("image.upscale must be >= 1, got %g", s.UpscaleFactor))
	}
	if s.UpscaleMaxWidth <= 0 {
		errs = append(errs, fmt.Errorf("image.upscale_max_width must be > 0, got %d", s.UpscaleMaxWidth))
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", s.LogFormat))
	}
	return errors.Join(errs...)
}
