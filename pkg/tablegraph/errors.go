package tablegraph

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAgent indicates Build was called without a required agent.
	ErrMissingAgent = errors.New("missing agent")

	// ErrRetriesExhausted indicates the retry limit set by WithMaxRetries was reached.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrCheckpointingDisabled indicates Resume on a pipeline built without WithCheckpointing.
	ErrCheckpointingDisabled = errors.New("checkpointing not configured")
)

// RetriesExhaustedError reports a run whose table never validated within
// the configured number of retries.
type RetriesExhaustedError struct {
	Attempts int
	Source   string
}

func (e *RetriesExhaustedError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("table still invalid after %d retries", e.Attempts)
	}
	return fmt.Sprintf("table in %s still invalid after %d retries", e.Source, e.Attempts)
}

// Unwrap returns ErrRetriesExhausted for errors.Is support.
func (e *RetriesExhaustedError) Unwrap() error {
	return ErrRetriesExhausted
}
