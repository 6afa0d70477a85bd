// Package tablegraph extracts tables from document images.
//
// A run moves one image through six stages on a flowgraph state machine:
//
//	preprocess -> vlm -> validate -> store -> qc -> END
//	                ^        |
//	                |        v (invalid)
//	                +---- retry
//
// Each stage delegates its work to an injected agent. The pipeline only
// moves data between agents and decides, after validation, whether to
// store the table or to enhance the image and ask the model again.
//
// # Basic Usage
//
//	p, err := tablegraph.Build(tablegraph.Agents{
//	    Image:     imaging.NewPreprocessor(imaging.Options{MaxWidth: 2000}),
//	    VLM:       vlm.New(vlm.Config{Endpoint: endpoint, Model: model}),
//	    Validator: validate.Rules{MinRows: 1, MinColumns: 2},
//	    Retry:     imaging.NewEnhancer(2, 4000),
//	    QC:        qc.NewAuditor(logger),
//	}, tablegraph.WithMaxRetries(3))
//	if err != nil {
//	    return err
//	}
//	result, err := p.Run(ctx, tablegraph.State{Image: img, Source: "invoice.png"})
//
// # Retries
//
// By default a run retries until the table validates, bounded only by the
// engine's iteration limit. WithMaxRetries turns the retry stage into a hard
// stop that fails with ErrRetriesExhausted.
//
// # Many Images
//
// RunBatch runs independent pipelines concurrently. Each input gets its own
// state and run ID; there is no fan-out inside a single run.
package tablegraph
