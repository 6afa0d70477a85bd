package tablegraph

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/tablegraph/pkg/flowgraph"
)

// stages binds each pipeline stage to its agent. Every method invokes
// exactly one agent and never branches on its output; routing is left to
// RouteValidation.
type stages struct {
	agents     Agents
	tables     TableStore
	maxRetries int
	metrics    *pipelineMetrics
}

func (st *stages) preprocess(ctx flowgraph.Context, s State) (State, error) {
	img, err := st.agents.Image.Run(ctx, s.Image)
	if err != nil {
		return s, err
	}
	s.Image = img
	return s, nil
}

func (st *stages) vlm(ctx flowgraph.Context, s State) (State, error) {
	ext, err := st.agents.VLM.Run(ctx, s.Image)
	if err != nil {
		return s, err
	}
	s.Table = ext.Table
	ctx.Logger().DebugContext(ctx, "table extracted",
		slog.Int("rows", s.Table.NumRows()),
		slog.Int("columns", s.Table.NumColumns()),
	)
	return s, nil
}

func (st *stages) validate(ctx flowgraph.Context, s State) (State, error) {
	ok, err := st.agents.Validator.Run(ctx, s.Table)
	if err != nil {
		return s, err
	}
	s.Valid = ok
	return s, nil
}

func (st *stages) retry(ctx flowgraph.Context, s State) (State, error) {
	if st.maxRetries > 0 && s.Attempts >= st.maxRetries {
		return s, &RetriesExhaustedError{Attempts: s.Attempts, Source: s.Source}
	}

	img, err := st.agents.Retry.Run(ctx, s.Image)
	if err != nil {
		return s, err
	}
	s.Image = img
	s.Attempts++

	st.metrics.recordRetry(ctx)
	ctx.Logger().InfoContext(ctx, "table invalid, retrying",
		slog.Int("attempt", s.Attempts),
		slog.String("source", s.Source),
	)
	return s, nil
}

// store persists the validated table when a TableStore is configured.
// Image, Table and Valid pass through untouched.
func (st *stages) store(ctx flowgraph.Context, s State) (State, error) {
	if st.tables == nil {
		return s, nil
	}

	err := st.tables.Save(ctx, Record{
		RunID:     s.RunID,
		Source:    s.Source,
		Table:     s.Table,
		Attempts:  s.Attempts,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return s, err
	}
	s.Stored = true

	st.metrics.recordStored(ctx)
	return s, nil
}

// qc audits the table. The report goes to logs, metrics and the table
// store, never into the state.
func (st *stages) qc(ctx flowgraph.Context, s State) (State, error) {
	report, err := st.agents.QC.Run(ctx, s.Table)
	if err != nil {
		return s, err
	}

	st.metrics.recordReport(ctx, report)
	ctx.Logger().InfoContext(ctx, "quality check",
		slog.Float64("score", report.Score),
		slog.Float64("fill_ratio", report.FillRatio),
		slog.Int("empty_cells", report.EmptyCells),
		slog.Any("issues", report.Issues),
	)

	if st.tables != nil {
		if err := st.tables.SaveReport(ctx, s.RunID, report); err != nil {
			return s, err
		}
	}
	return s, nil
}
