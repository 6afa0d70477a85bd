package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/randalmurphal/tablegraph/pkg/flowgraph/checkpoint"
	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
	"github.com/randalmurphal/tablegraph/pkg/tablegraph/imaging"
	"github.com/randalmurphal/tablegraph/pkg/tablegraph/qc"
	"github.com/randalmurphal/tablegraph/pkg/tablegraph/tablestore"
	"github.com/randalmurphal/tablegraph/pkg/tablegraph/validate"
	"github.com/randalmurphal/tablegraph/pkg/tablegraph/vlm"
)

// agentsFor builds the production agents described by s.
func agentsFor(s tablegraph.Settings, logger *slog.Logger) tablegraph.Agents {
	return tablegraph.Agents{
		Image: imaging.NewPreprocessor(imaging.Options{
			MaxWidth:  s.ImageMaxWidth,
			Grayscale: s.ImageGrayscale,
		}),
		VLM: vlm.New(vlm.Config{
			Endpoint: s.VLMEndpoint,
			Model:    s.VLMModel,
			APIKey:   os.Getenv(s.VLMAPIKeyEnv),
			Timeout:  s.VLMTimeout,
			RetryMax: s.VLMRetryMax,
			Logger:   logger,
		}),
		Validator: validate.Rules{MinRows: s.MinRows, MinColumns: s.MinColumns, Logger: logger},
		Retry:     imaging.NewEnhancer(s.UpscaleFactor, s.UpscaleMaxWidth),
		QC:        qc.NewAuditor(logger),
	}
}

// stores opens the table and checkpoint stores configured in s. Either is
// nil when its path is unset. The returned close function releases both.
func stores(ctx context.Context, s tablegraph.Settings) (tablestore.Store, checkpoint.Store, func(), error) {
	var (
		tables tablestore.Store
		cps    checkpoint.Store
		err    error
	)

	if s.StorePath != "" {
		if tables, err = tablestore.NewSQLite(ctx, s.StorePath); err != nil {
			return nil, nil, nil, err
		}
	}
	if s.CheckpointPath != "" {
		if cps, err = checkpoint.NewSQLiteStore(ctx, s.CheckpointPath); err != nil {
			if tables != nil {
				_ = tables.Close()
			}
			return nil, nil, nil, err
		}
	}

	closeAll := func() {
		if tables != nil {
			_ = tables.Close()
		}
		if cps != nil {
			_ = cps.Close()
		}
	}
	return tables, cps, closeAll, nil
}

func buildPipeline(s tablegraph.Settings, logger *slog.Logger, tables tablestore.Store, cps checkpoint.Store) (*tablegraph.Pipeline, error) {
	opts := []tablegraph.Option{
		tablegraph.WithLogger(logger),
		tablegraph.WithMaxRetries(s.MaxRetries),
		tablegraph.WithMaxIterations(s.MaxIterations),
	}
	if tables != nil {
		opts = append(opts, tablegraph.WithTableStore(tables))
	}
	if cps != nil {
		opts = append(opts, tablegraph.WithCheckpointing(cps))
	}

	p, err := tablegraph.Build(agentsFor(s, logger), opts...)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	return p, nil
}
