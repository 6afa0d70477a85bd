package tablegraph

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/randalmurphal/tablegraph/pkg/flowgraph"
	"github.com/randalmurphal/tablegraph/pkg/flowgraph/observability"
)

// Stage names, in the order a successful run visits them.
const (
	StagePreprocess = "preprocess"
	StageVLM        = "vlm"
	StageValidate   = "validate"
	StageRetry      = "retry"
	StageStore      = "store"
	StageQC         = "qc"
)

// GraphName names the pipeline graph in traces.
const GraphName = "tablegraph"

// RouteValidation picks the stage after validate: store for a valid
// table, retry otherwise.
func RouteValidation(s State) string {
	if s.Valid {
		return StageStore
	}
	return StageRetry
}

func routeValidation(_ flowgraph.Context, s State) string {
	return RouteValidation(s)
}

// Pipeline is a compiled extraction pipeline. It is safe for concurrent
// use; each Run works on its own state.
type Pipeline struct {
	graph   *flowgraph.CompiledGraph[State]
	opts    options
	metrics *pipelineMetrics
	engine  observability.MetricsRecorder
	spans   observability.SpanManager
}

// Build wires agents into the pipeline graph and compiles it.
// Every agent is required; missing ones are reported with ErrMissingAgent.
func Build(agents Agents, opts ...Option) (*Pipeline, error) {
	if err := agents.check(); err != nil {
		return nil, err
	}

	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	pm, err := newPipelineMetrics(o.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("pipeline metrics: %w", err)
	}

	st := &stages{
		agents:     agents,
		tables:     o.store,
		maxRetries: o.maxRetries,
		metrics:    pm,
	}

	compiled, err := flowgraph.NewGraph[State]().
		Named(GraphName).
		AddNode(StagePreprocess, st.preprocess).
		AddNode(StageVLM, st.vlm).
		AddNode(StageValidate, st.validate).
		AddNode(StageRetry, st.retry).
		AddNode(StageStore, st.store).
		AddNode(StageQC, st.qc).
		AddEdge(StagePreprocess, StageVLM).
		AddEdge(StageVLM, StageValidate).
		AddConditionalEdge(StageValidate, routeValidation, StageStore, StageRetry).
		AddEdge(StageRetry, StageVLM).
		AddEdge(StageStore, StageQC).
		AddEdge(StageQC, flowgraph.END).
		SetEntry(StagePreprocess).
		Compile()
	if err != nil {
		return nil, fmt.Errorf("compile pipeline: %w", err)
	}

	p := &Pipeline{graph: compiled, opts: o, metrics: pm}

	if o.meterProvider != nil {
		p.engine, err = observability.NewMetricsRecorderFrom(o.meterProvider.Meter(observability.MeterName))
		if err != nil {
			return nil, fmt.Errorf("engine metrics: %w", err)
		}
	}
	if o.tracerProvider != nil {
		p.spans = observability.NewSpanManagerFrom(o.tracerProvider)
	}

	return p, nil
}

// Graph returns the compiled graph, e.g. for introspection.
func (p *Pipeline) Graph() *flowgraph.CompiledGraph[State] {
	return p.graph
}

// DOT writes the pipeline topology in Graphviz DOT format.
func (p *Pipeline) DOT(w io.Writer) error {
	return p.graph.DOT(w)
}

// Run executes the pipeline on s and returns the final state.
// A run ID is generated when s.RunID is empty.
//
// On failure the returned state is the state at the failing stage and the
// error is one of the flowgraph execution errors; agent errors are wrapped
// in a *flowgraph.NodeError naming the stage.
func (p *Pipeline) Run(ctx context.Context, s State) (State, error) {
	if s.RunID == "" {
		s.RunID = uuid.New().String()
	}

	fctx := flowgraph.NewContext(ctx,
		flowgraph.WithLogger(p.opts.logger),
		flowgraph.WithContextRunID(s.RunID),
		flowgraph.WithCheckpointer(p.opts.checkpoints),
	)

	runOpts := p.runOptions()
	if p.opts.checkpoints != nil {
		runOpts = append(runOpts,
			flowgraph.WithCheckpointing(p.opts.checkpoints),
			flowgraph.WithRunID(s.RunID),
		)
	}

	return p.graph.Run(fctx, s, runOpts...)
}

// Resume continues an interrupted run from its latest checkpoint.
func (p *Pipeline) Resume(ctx context.Context, runID string) (State, error) {
	if p.opts.checkpoints == nil {
		return State{}, ErrCheckpointingDisabled
	}

	fctx := flowgraph.NewContext(ctx,
		flowgraph.WithLogger(p.opts.logger),
		flowgraph.WithContextRunID(runID),
		flowgraph.WithCheckpointer(p.opts.checkpoints),
		flowgraph.WithAttempt(2),
	)

	return p.graph.Resume(fctx, p.opts.checkpoints, runID,
		flowgraph.WithResumeRunOptions(p.runOptions()...))
}

func (p *Pipeline) runOptions() []flowgraph.RunOption {
	opts := []flowgraph.RunOption{
		flowgraph.WithObservabilityLogger(p.opts.logger),
	}
	if p.opts.maxIterations > 0 {
		opts = append(opts, flowgraph.WithMaxIterations(p.opts.maxIterations))
	}
	if p.engine != nil {
		opts = append(opts, flowgraph.WithMetricsRecorder(p.engine))
	}
	if p.spans != nil {
		opts = append(opts, flowgraph.WithSpanManager(p.spans))
	}
	for _, fn := range p.opts.observers {
		opts = append(opts, flowgraph.WithObserver(fn))
	}
	return opts
}
