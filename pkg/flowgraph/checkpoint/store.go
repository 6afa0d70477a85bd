// Package checkpoint persists per-node snapshots of a run so it can be
// resumed after a crash.
package checkpoint

import (
	"context"
	"errors"
	"time"
)

// Store persists checkpoints. Implementations must be safe for concurrent use.
//
// A run keeps one checkpoint per node. Saving the same (runID, nodeID) again,
// as happens when a cycle revisits a node, replaces the data and moves the
// checkpoint to the end of the run's sequence.
type Store interface {
	// Save stores data for (runID, nodeID), replacing any previous value.
	Save(ctx context.Context, runID, nodeID string, data []byte) error

	// Load returns ErrNotFound if the checkpoint doesn't exist.
	Load(ctx context.Context, runID, nodeID string) ([]byte, error)

	// List returns the run's checkpoints ordered by sequence.
	// A run without checkpoints yields an empty slice, not an error.
	List(ctx context.Context, runID string) ([]Info, error)

	// Delete removes one checkpoint. Missing checkpoints are not an error.
	Delete(ctx context.Context, runID, nodeID string) error

	// DeleteRun removes every checkpoint of a run.
	DeleteRun(ctx context.Context, runID string) error

	Close() error
}

// Info describes a stored checkpoint without its payload.
type Info struct {
	RunID     string
	NodeID    string
	Sequence  int
	Timestamp time.Time
	Size      int64
}

var (
	ErrNotFound    = errors.New("checkpoint not found")
	ErrStoreClosed = errors.New("checkpoint store closed")
)
