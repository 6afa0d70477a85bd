package flowgraph

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/randalmurphal/tablegraph/pkg/flowgraph/checkpoint"
)

// Context is the execution context handed to nodes and routers.
// It extends context.Context with run metadata and shared services.
//
// A Context is immutable. The executor derives a per-node Context with the
// node ID set and the logger enriched.
type Context interface {
	context.Context

	// Logger returns the logger enriched with run_id, node_id and attempt.
	// Never nil; defaults to slog.Default().
	Logger() *slog.Logger

	// Checkpointer returns the checkpoint store, or nil if not configured.
	Checkpointer() checkpoint.Store

	// RunID returns the unique identifier for this run.
	// Generated when not configured.
	RunID() string

	// NodeID returns the node being executed.
	// Empty outside of node execution.
	NodeID() string

	// Attempt returns the attempt number of this run (1 = first attempt).
	Attempt() int
}

type executionContext struct {
	context.Context

	logger       *slog.Logger
	checkpointer checkpoint.Store
	runID        string
	nodeID       string
	attempt      int
}

func (c *executionContext) Logger() *slog.Logger {
	return c.logger
}

func (c *executionContext) Checkpointer() checkpoint.Store {
	return c.checkpointer
}

func (c *executionContext) RunID() string {
	return c.runID
}

func (c *executionContext) NodeID() string {
	return c.nodeID
}

func (c *executionContext) Attempt() int {
	return c.attempt
}

// ContextOption configures a Context.
type ContextOption func(*executionContext)

// WithLogger sets the base logger for the context.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *executionContext) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCheckpointer exposes a checkpoint store to nodes.
func WithCheckpointer(store checkpoint.Store) ContextOption {
	return func(c *executionContext) {
		c.checkpointer = store
	}
}

// WithContextRunID sets the run identifier for logging and tracing.
// For checkpointing use the WithRunID RunOption.
func WithContextRunID(id string) ContextOption {
	return func(c *executionContext) {
		c.runID = id
	}
}

// WithAttempt sets the attempt number, e.g. when a caller resubmits a run.
func WithAttempt(n int) ContextOption {
	return func(c *executionContext) {
		if n > 0 {
			c.attempt = n
		}
	}
}

// NewContext wraps a standard context with flowgraph services.
//
// Example:
//
//	ctx := flowgraph.NewContext(context.Background(),
//	    flowgraph.WithLogger(logger),
//	    flowgraph.WithContextRunID("run-123"))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	ec := &executionContext{
		Context: ctx,
		logger:  slog.Default(),
		runID:   uuid.New().String(),
		attempt: 1,
	}

	for _, opt := range opts {
		opt(ec)
	}

	return ec
}

func (c *executionContext) withNodeID(nodeID string) *executionContext {
	return &executionContext{
		Context:      c.Context,
		logger:       c.logger.With("run_id", c.runID, "node_id", nodeID, "attempt", c.attempt),
		checkpointer: c.checkpointer,
		runID:        c.runID,
		nodeID:       nodeID,
		attempt:      c.attempt,
	}
}

// withTracing swaps the embedded context for one that carries span data.
func (c *executionContext) withTracing(ctx context.Context) *executionContext {
	derived := *c
	derived.Context = ctx
	return &derived
}
