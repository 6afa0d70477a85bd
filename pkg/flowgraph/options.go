package flowgraph

import (
	"log/slog"

	"github.com/randalmurphal/tablegraph/pkg/flowgraph/checkpoint"
	"github.com/randalmurphal/tablegraph/pkg/flowgraph/observability"
)

// DefaultMaxIterations bounds the number of node executions per run.
const DefaultMaxIterations = 1000

// runConfig holds configuration for graph execution.
type runConfig struct {
	maxIterations int

	// Checkpointing
	checkpointStore        checkpoint.Store
	runID                  string
	sequence               int
	checkpointFailureFatal bool

	// Observability
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool

	observers []func(Step, any)
}

// defaultRunConfig returns the default execution configuration.
func defaultRunConfig() runConfig {
	return runConfig{
		maxIterations: DefaultMaxIterations,
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
	}
}

// RunOption configures execution behavior.
type RunOption func(*runConfig)

// WithMaxIterations sets the maximum number of node executions.
// Default: DefaultMaxIterations. Non-positive values are ignored.
//
// A run that exceeds the limit returns a MaxIterationsError, so a cycle
// whose exit condition is never met cannot hang forever.
func WithMaxIterations(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithCheckpointing saves a checkpoint after every successful node.
// Requires WithRunID.
func WithCheckpointing(store checkpoint.Store) RunOption {
	return func(c *runConfig) {
		c.checkpointStore = store
	}
}

// WithRunID sets the run identifier used for checkpoints and logs.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		c.runID = id
	}
}

// WithCheckpointFailureFatal makes checkpoint failures stop the run.
// By default they are logged and execution continues.
func WithCheckpointFailureFatal(fatal bool) RunOption {
	return func(c *runConfig) {
		c.checkpointFailureFatal = fatal
	}
}

// WithObservabilityLogger enables run and node lifecycle logging.
func WithObservabilityLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics toggles OpenTelemetry metrics for the run.
// Uses the global meter provider.
func WithMetrics(enabled bool) RunOption {
	return func(c *runConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing toggles OpenTelemetry spans for the run and each node.
// Uses the global tracer provider.
func WithTracing(enabled bool) RunOption {
	return func(c *runConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithObserver registers a callback invoked after every node execution.
// The state passed to the observer is the node's output.
func WithObserver[S any](fn Observer[S]) RunOption {
	return func(c *runConfig) {
		if fn == nil {
			return
		}
		c.observers = append(c.observers, func(step Step, state any) {
			if typed, ok := state.(S); ok {
				fn(step, typed)
			}
		})
	}
}

func (c *runConfig) notify(step Step, state any) {
	for _, fn := range c.observers {
		fn(step, state)
	}
}

// WithMetricsRecorder records run metrics with an explicit recorder, e.g. one
// built by observability.NewMetricsRecorderFrom.
func WithMetricsRecorder(r observability.MetricsRecorder) RunOption {
	return func(c *runConfig) {
		if r != nil {
			c.metrics = r
		}
	}
}

// WithSpanManager enables tracing through an explicit span manager.
func WithSpanManager(m observability.SpanManager) RunOption {
	return func(c *runConfig) {
		if m != nil {
			c.spans = m
			c.tracingEnabled = true
		}
	}
}
