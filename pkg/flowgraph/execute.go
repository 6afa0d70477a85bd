package flowgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/tablegraph/pkg/flowgraph/checkpoint"
	"github.com/randalmurphal/tablegraph/pkg/flowgraph/observability"
)

// Run executes the graph from its entry point with the given initial state.
//
// On success it returns the state produced by the last node before END. On
// failure it returns the state at the point of failure together with the
// error, so callers can inspect how far the run got.
//
// Execution loop:
//  1. Stop with MaxIterationsError once the iteration limit is exceeded
//  2. Stop with CancellationError if ctx is done
//  3. Execute the current node (panics are recovered as PanicError)
//  4. Pick the next node from the conditional or simple edge
//  5. Checkpoint, if enabled, and continue until END
//
// Example:
//
//	ctx := flowgraph.NewContext(context.Background())
//	result, err := compiled.Run(ctx, initial, flowgraph.WithMaxIterations(50))
func (cg *CompiledGraph[S]) Run(ctx Context, state S, opts ...RunOption) (result S, runErr error) {
	if ctx == nil {
		return state, ErrNilContext
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.checkpointStore != nil && cfg.runID == "" {
		return state, ErrRunIDRequired
	}

	return cg.runWithObservability(ctx, state, cg.entryPoint, &cfg)
}

// runWithObservability wraps runFrom with the run-level span, metric and logs.
func (cg *CompiledGraph[S]) runWithObservability(ctx Context, state S, startNode string, cfg *runConfig) (result S, runErr error) {
	runID := cfg.runID
	if runID == "" {
		runID = ctx.RunID()
	}

	startTime := time.Now()
	observability.LogRunStart(cfg.logger, runID)

	execCtx := ctx
	if cfg.tracingEnabled {
		spanCtx, runSpan := cfg.spans.StartRunSpan(ctx, cg.name, runID)
		defer func() {
			cfg.spans.EndSpanWithError(runSpan, runErr)
		}()
		if ec, ok := ctx.(*executionContext); ok {
			execCtx = ec.withTracing(spanCtx)
		}
	}

	var nodeCount int
	result, nodeCount, runErr = cg.runFrom(execCtx, state, startNode, cfg)

	duration := time.Since(startTime)
	cfg.metrics.RecordGraphRun(execCtx, runErr == nil, duration)

	if runErr != nil {
		observability.LogRunError(cfg.logger, runID, runErr, float64(duration.Milliseconds()), lastNodeOf(runErr))
	} else {
		observability.LogRunComplete(cfg.logger, runID, float64(duration.Milliseconds()), nodeCount)
	}

	return result, runErr
}

// runFrom is the executor loop. It returns the final state and the number of
// nodes that completed successfully.
func (cg *CompiledGraph[S]) runFrom(ctx Context, state S, startNode string, cfg *runConfig) (S, int, error) {
	current := startNode
	prevNode := ""
	iterations := 0
	nodeCount := 0

	for current != END {
		iterations++
		if iterations > cfg.maxIterations {
			return state, nodeCount, &MaxIterationsError{
				Max:        cfg.maxIterations,
				LastNodeID: current,
				State:      state,
			}
		}

		select {
		case <-ctx.Done():
			return state, nodeCount, &CancellationError{
				NodeID: current,
				State:  state,
				Cause:  ctx.Err(),
			}
		default:
		}

		observability.LogNodeStart(cfg.logger, current)

		nodeCtx := ctx
		var nodeSpan trace.Span
		if cfg.tracingEnabled {
			var spanCtx context.Context
			spanCtx, nodeSpan = cfg.spans.StartNodeSpan(ctx, current)
			if ec, ok := ctx.(*executionContext); ok {
				nodeCtx = ec.withTracing(spanCtx)
			}
		}

		nodeStart := time.Now()
		var nodeErr error
		state, nodeErr = cg.executeNode(nodeCtx, current, state)
		nodeDuration := time.Since(nodeStart)

		cfg.metrics.RecordNodeExecution(nodeCtx, current, nodeDuration, nodeErr)
		if cfg.tracingEnabled {
			cfg.spans.EndSpanWithError(nodeSpan, nodeErr)
		}

		if nodeErr != nil {
			observability.LogNodeError(cfg.logger, current, nodeErr)
			cfg.notifyStep(Step{NodeID: current, Iteration: iterations, Err: nodeErr}, state)
			return state, nodeCount, nodeErr
		}
		observability.LogNodeComplete(cfg.logger, current, float64(nodeDuration.Milliseconds()))
		nodeCount++

		next, err := cg.nextNode(ctx, state, current)
		cfg.notifyStep(Step{NodeID: current, Next: next, Iteration: iterations, Err: err}, state)
		if err != nil {
			return state, nodeCount, err
		}

		if cfg.checkpointStore != nil {
			if err := cg.saveCheckpoint(ctx, cfg, current, prevNode, state, next); err != nil {
				return state, nodeCount, err
			}
		}

		prevNode = current
		current = next
	}

	return state, nodeCount, nil
}

func (c *runConfig) notifyStep(step Step, state any) {
	if len(c.observers) == 0 {
		return
	}
	c.notify(step, state)
}

// saveCheckpoint persists the state produced by nodeID.
// Failures are logged and ignored unless checkpointFailureFatal is set.
func (cg *CompiledGraph[S]) saveCheckpoint(ctx Context, cfg *runConfig, nodeID, prevNodeID string, state S, nextNode string) error {
	fail := func(op string, err error) error {
		if cfg.checkpointFailureFatal {
			return &CheckpointError{NodeID: nodeID, Op: op, Err: err}
		}
		observability.LogCheckpointError(cfg.logger, nodeID, op, err)
		return nil
	}

	stateBytes, err := json.Marshal(state)
	if err != nil {
		return fail("serialize", err)
	}

	cfg.sequence++
	cp := checkpoint.New(cfg.runID, nodeID, cfg.sequence, stateBytes, nextNode).
		WithPrevNode(prevNodeID).
		WithAttempt(ctx.Attempt())

	data, err := cp.Marshal()
	if err != nil {
		return fail("marshal", err)
	}

	if err := cfg.checkpointStore.Save(ctx, cfg.runID, nodeID, data); err != nil {
		return fail("save", err)
	}

	observability.LogCheckpoint(cfg.logger, nodeID, len(data))
	cfg.metrics.RecordCheckpoint(ctx, nodeID, int64(len(data)))
	return nil
}

// executeNode runs a single node with panic recovery.
func (cg *CompiledGraph[S]) executeNode(ctx Context, nodeID string, state S) (result S, err error) {
	fn, exists := cg.getNode(nodeID)
	if !exists {
		return state, &NodeError{
			NodeID: nodeID,
			Op:     "lookup",
			Err:    fmt.Errorf("node not found: %s", nodeID),
		}
	}

	nodeCtx := ctx
	if ec, ok := ctx.(*executionContext); ok {
		nodeCtx = ec.withNodeID(nodeID)
	}

	defer func() {
		if r := recover(); r != nil {
			result = state
			err = &PanicError{
				NodeID: nodeID,
				Value:  r,
				Stack:  string(debug.Stack()),
			}
		}
	}()

	result, err = fn(nodeCtx, state)
	if err != nil {
		return result, &NodeError{
			NodeID: nodeID,
			Op:     "execute",
			Err:    err,
		}
	}

	return result, nil
}

// nextNode picks the successor of current. Conditional edges win over
// simple edges; with several simple edges the first one is taken.
func (cg *CompiledGraph[S]) nextNode(ctx Context, state S, current string) (string, error) {
	if router, exists := cg.getRouter(current); exists {
		routerCtx := ctx
		if ec, ok := ctx.(*executionContext); ok {
			routerCtx = ec.withNodeID(current)
		}

		next := router(routerCtx, state)

		switch {
		case next == "":
			return "", &RouterError{FromNode: current, Returned: next, Err: ErrInvalidRouterResult}
		case next != END && !cg.HasNode(next):
			return "", &RouterError{FromNode: current, Returned: next, Err: ErrRouterTargetNotFound}
		case !cg.allowsRoute(current, next):
			return "", &RouterError{FromNode: current, Returned: next, Err: ErrUndeclaredRoute}
		}

		return next, nil
	}

	edges := cg.getEdges(current)
	if len(edges) == 0 {
		return "", &NodeError{
			NodeID: current,
			Op:     "routing",
			Err:    fmt.Errorf("no outgoing edge from node %s", current),
		}
	}

	return edges[0], nil
}
