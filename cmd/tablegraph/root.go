package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/tablegraph/pkg/flowgraph/config"
	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
)

const configFlag = "config"

// NewRootCommand returns the tablegraph command. Subcommands read settings
// from --config, overridden by TABLEGRAPH_* environment variables.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tablegraph",
		Short: "Extract tables from document images with a vision-language model",
		Long: `Extract tables from document images with a vision-language model.

Each image is preprocessed, sent to the model and validated. Invalid tables
are retried on an enhanced image; valid ones are stored and quality-checked.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String(configFlag, "", "path to a YAML or JSON config file")
	return cmd
}

// loadSettings reads the config file named by --config, if any, and
// applies environment overrides.
func loadSettings(cmd *cobra.Command) (tablegraph.Settings, error) {
	path, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return tablegraph.Settings{}, err
	}

	cfg := config.New(nil)
	if path != "" {
		if cfg, err = config.FromFile(path); err != nil {
			return tablegraph.Settings{}, err
		}
	}

	s, err := tablegraph.LoadSettings(cfg.WithEnv(os.LookupEnv, tablegraph.SettingsKeys...))
	if err != nil {
		return tablegraph.Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

func newLogger(w io.Writer, s tablegraph.Settings) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if s.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
