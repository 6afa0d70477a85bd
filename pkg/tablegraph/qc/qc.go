// Package qc scores extracted tables after they have been stored.
package qc

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
)

// Issue labels reported by the Auditor.
const (
	IssueSparse      = "sparse"
	IssueNoRows      = "no_rows"
	IssueMixedColumn = "mixed_column"
)

// Auditor is a QCAgent computing fill and type consistency of a table.
type Auditor struct {
	logger *slog.Logger

	// SparseBelow flags tables whose fill ratio is lower. Default 0.5.
	SparseBelow float64
}

var _ tablegraph.QCAgent = (*Auditor)(nil)

// NewAuditor creates an Auditor logging to logger, or slog.Default() when nil.
func NewAuditor(logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{logger: logger, SparseBelow: 0.5}
}

// Run computes a Report for t. It never fails on table content.
func (a *Auditor) Run(ctx context.Context, t *tablegraph.Table) (tablegraph.Report, error) {
	r := Score(t, a.SparseBelow)
	a.logger.InfoContext(ctx, "table audited",
		slog.Int("rows", r.Rows),
		slog.Int("columns", r.Columns),
		slog.Float64("score", r.Score),
	)
	return r, nil
}

// Score builds the report for t.
//
// Score is the fill ratio, halved for every column that mixes numeric and
// text cells.
func Score(t *tablegraph.Table, sparseBelow float64) tablegraph.Report {
	r := tablegraph.Report{Rows: t.NumRows(), Columns: t.NumColumns()}
	if r.Rows == 0 || r.Columns == 0 {
		r.Issues = []string{IssueNoRows}
		return r
	}

	total := 0
	for _, row := range t.Rows {
		for c := range r.Columns {
			total++
			if c >= len(row) || strings.TrimSpace(row[c]) == "" {
				r.EmptyCells++
			}
		}
	}
	r.FillRatio = float64(total-r.EmptyCells) / float64(total)

	numeric, mixed := 0, 0
	for c := range r.Columns {
		switch columnKind(t.Rows, c) {
		case kindNumeric:
			numeric++
		case kindMixed:
			mixed++
		}
	}
	r.NumericRatio = float64(numeric) / float64(r.Columns)

	r.Score = r.FillRatio
	for range mixed {
		r.Score /= 2
	}

	if r.FillRatio < sparseBelow {
		r.Issues = append(r.Issues, IssueSparse)
	}
	if mixed > 0 {
		r.Issues = append(r.Issues, IssueMixedColumn)
	}
	return r
}

type kind int

const (
	kindEmpty kind = iota
	kindNumeric
	kindText
	kindMixed
)

func columnKind(rows [][]string, c int) kind {
	k := kindEmpty
	for _, row := range rows {
		if c >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[c])
		if cell == "" {
			continue
		}
		cellKind := kindText
		if isNumber(cell) {
			cellKind = kindNumeric
		}
		switch k {
		case kindEmpty:
			k = cellKind
		case cellKind:
		default:
			return kindMixed
		}
	}
	return k
}

// isNumber accepts plain numbers plus common currency and grouping marks.
func isNumber(s string) bool {
	s = strings.NewReplacer(",", "", "$", "", "€", "", "%", "").Replace(s)
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
