package tablegraph

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/tablegraph/pkg/flowgraph"
	"github.com/randalmurphal/tablegraph/pkg/flowgraph/checkpoint"
)

type options struct {
	maxRetries    int
	maxIterations int

	store       TableStore
	checkpoints checkpoint.Store

	logger         *slog.Logger
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	observers      []flowgraph.Observer[State]
}

// Option configures a Pipeline.
type Option func(*options)

// WithMaxRetries fails a run with ErrRetriesExhausted once the retry stage
// has run n times and the table is still invalid. Zero, the default,
// retries until the engine's iteration limit.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithMaxIterations bounds the number of stage executions per run.
// Default: flowgraph.DefaultMaxIterations.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithTableStore persists validated tables in the store stage and QC
// reports in the qc stage.
func WithTableStore(s TableStore) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithCheckpointing saves the state after every stage so an interrupted
// run can be continued with Pipeline.Resume.
func WithCheckpointing(s checkpoint.Store) Option {
	return func(o *options) {
		o.checkpoints = s
	}
}

// WithLogger sets the logger for stage and lifecycle logs.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMeterProvider records engine and pipeline metrics on mp.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithTracerProvider emits a span per run and per stage on tp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithObserver is called after every stage with the stage's output state.
func WithObserver(fn flowgraph.Observer[State]) Option {
	return func(o *options) {
		if fn != nil {
			o.observers = append(o.observers, fn)
		}
	}
}
