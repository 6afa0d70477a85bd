package flowgraph

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/randalmurphal/tablegraph/pkg/flowgraph/checkpoint"
)

// ResumeOption configures Resume.
type ResumeOption func(*resumeConfig)

type resumeConfig struct {
	replayNode    bool
	validateState func(any) error
	runOpts       []RunOption
}

// WithReplayNode re-executes the checkpointed node instead of continuing
// with its recorded successor.
func WithReplayNode() ResumeOption {
	return func(c *resumeConfig) {
		c.replayNode = true
	}
}

// WithStateValidation checks the restored state before execution continues.
func WithStateValidation(fn func(any) error) ResumeOption {
	return func(c *resumeConfig) {
		c.validateState = fn
	}
}

// WithResumeRunOptions applies run options (logging, limits) to the resumed run.
// Checkpointing and run ID are always set from the resumed run.
func WithResumeRunOptions(opts ...RunOption) ResumeOption {
	return func(c *resumeConfig) {
		c.runOpts = append(c.runOpts, opts...)
	}
}

// Resume continues a run from its most recent checkpoint.
// Execution starts at the node recorded as next in that checkpoint and keeps
// checkpointing into the same store.
//
// Example:
//
//	// The process died after "vlm"; continue at "validate".
//	result, err := compiled.Resume(ctx, store, "run-123")
func (cg *CompiledGraph[S]) Resume(ctx Context, store checkpoint.Store, runID string, opts ...ResumeOption) (S, error) {
	var zero S

	if ctx == nil {
		return zero, ErrNilContext
	}

	infos, err := store.List(ctx, runID)
	if err != nil {
		return zero, fmt.Errorf("list checkpoints: %w", err)
	}
	if len(infos) == 0 {
		return zero, fmt.Errorf("%w: %s", ErrNoCheckpoints, runID)
	}

	latest := infos[len(infos)-1]
	return cg.resumeAt(ctx, store, runID, latest.NodeID, opts)
}

// ResumeFrom continues a run from the checkpoint saved after nodeID.
func (cg *CompiledGraph[S]) ResumeFrom(ctx Context, store checkpoint.Store, runID, nodeID string, opts ...ResumeOption) (S, error) {
	var zero S

	if ctx == nil {
		return zero, ErrNilContext
	}

	return cg.resumeAt(ctx, store, runID, nodeID, opts)
}

func (cg *CompiledGraph[S]) resumeAt(ctx Context, store checkpoint.Store, runID, nodeID string, opts []ResumeOption) (S, error) {
	var zero S

	cfg := resumeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	data, err := store.Load(ctx, runID, nodeID)
	if err != nil {
		if errors.Is(err, checkpoint.ErrNotFound) {
			return zero, fmt.Errorf("%w: %s at node %s", ErrNoCheckpoints, runID, nodeID)
		}
		return zero, fmt.Errorf("load checkpoint: %w", err)
	}

	cp, err := checkpoint.Unmarshal(data)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}

	if cp.Version != checkpoint.Version {
		return zero, fmt.Errorf("%w: got %d, expected %d",
			ErrCheckpointVersionMismatch, cp.Version, checkpoint.Version)
	}

	var state S
	if err := json.Unmarshal(cp.State, &state); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}

	if cfg.validateState != nil {
		if err := cfg.validateState(state); err != nil {
			return state, fmt.Errorf("state validation failed: %w", err)
		}
	}

	startNode := cp.NextNode
	if cfg.replayNode {
		startNode = cp.NodeID
	}

	if startNode != END && !cg.HasNode(startNode) {
		return zero, fmt.Errorf("%w: %s", ErrInvalidResumeNode, startNode)
	}

	runCfg := defaultRunConfig()
	for _, opt := range cfg.runOpts {
		opt(&runCfg)
	}
	runCfg.checkpointStore = store
	runCfg.runID = runID
	runCfg.sequence = cp.Sequence

	return cg.runWithObservability(ctx, state, startNode, &runCfg)
}
