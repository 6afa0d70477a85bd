package tablegraph

import (
	"context"
	"time"
)

// Record is a persisted extraction.
type Record struct {
	RunID     string    `json:"run_id"`
	Source    string    `json:"source,omitempty"`
	Table     *Table    `json:"table"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

// TableStore persists validated tables and their quality reports.
// Implementations must be safe for concurrent use.
type TableStore interface {
	Save(ctx context.Context, rec Record) error
	SaveReport(ctx context.Context, runID string, report Report) error
}
