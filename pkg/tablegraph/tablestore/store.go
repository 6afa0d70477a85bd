// Package tablestore persists extracted tables and their quality reports.
package tablestore

import (
	"context"
	"errors"

	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
)

// Store is a tablegraph.TableStore that can also read back what it stored.
//
// A run stores at most one table and one report. Saving again for the same
// run ID replaces the earlier value.
type Store interface {
	tablegraph.TableStore

	// Get returns ErrNotFound if no table was stored for runID.
	Get(ctx context.Context, runID string) (tablegraph.Record, error)

	// Report returns ErrNotFound if no report was stored for runID.
	Report(ctx context.Context, runID string) (tablegraph.Report, error)

	// List returns every stored record, oldest first.
	List(ctx context.Context) ([]tablegraph.Record, error)

	Close() error
}

var (
	ErrNotFound    = errors.New("table not found")
	ErrStoreClosed = errors.New("table store closed")
)
