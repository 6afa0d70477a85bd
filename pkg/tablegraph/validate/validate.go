// Package validate checks the structure of extracted tables.
package validate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
)

// Sentinel errors describing why a table was rejected.
var (
	ErrNoTable         = errors.New("no table")
	ErrTooFewRows      = errors.New("too few rows")
	ErrTooFewColumns   = errors.New("too few columns")
	ErrRaggedRow       = errors.New("row width differs from header")
	ErrEmptyHeader     = errors.New("empty header cell")
	ErrDuplicateHeader = errors.New("duplicate header cell")
)

// Rules is a structural Validator. The zero value accepts any non-nil
// table with a well-formed header and rectangular rows.
type Rules struct {
	MinRows    int
	MinColumns int
	Logger     *slog.Logger
}

var _ tablegraph.Validator = Rules{}

// Run reports whether t satisfies every rule. Rule violations are not
// errors; they are logged at debug level and reported as false.
func (r Rules) Run(ctx context.Context, t *tablegraph.Table) (bool, error) {
	problems := r.Check(t)
	if len(problems) == 0 {
		return true, nil
	}

	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.DebugContext(ctx, "table rejected", slog.String("reason", errors.Join(problems...).Error()))
	return false, nil
}

// Check returns every rule t violates.
func (r Rules) Check(t *tablegraph.Table) []error {
	if t == nil {
		return []error{ErrNoTable}
	}

	var problems []error
	if t.NumRows() < r.MinRows {
		problems = append(problems, fmt.Errorf("%w: %d < %d", ErrTooFewRows, t.NumRows(), r.MinRows))
	}
	if t.NumColumns() < max(r.MinColumns, 1) {
		problems = append(problems, fmt.Errorf("%w: %d < %d", ErrTooFewColumns, t.NumColumns(), max(r.MinColumns, 1)))
	}

	seen := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			problems = append(problems, fmt.Errorf("%w: column %d", ErrEmptyHeader, i))
			continue
		}
		if prev, dup := seen[key]; dup {
			problems = append(problems, fmt.Errorf("%w: %q in columns %d and %d", ErrDuplicateHeader, h, prev, i))
			continue
		}
		seen[key] = i
	}

	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			problems = append(problems, fmt.Errorf("%w: row %d has %d cells, header has %d",
				ErrRaggedRow, i, len(row), len(t.Header)))
		}
	}

	return problems
}
