package qc

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		table *tablegraph.Table
		want  tablegraph.Report
	}{
		{
			name:  "nil table",
			table: nil,
			want:  tablegraph.Report{Issues: []string{IssueNoRows}},
		},
		{
			name: "complete",
			table: &tablegraph.Table{
				Header: []string{"item", "price"},
				Rows:   [][]string{{"bolt", "$1.20"}, {"nut", "0.40"}},
			},
			want: tablegraph.Report{Rows: 2, Columns: 2, FillRatio: 1, NumericRatio: 0.5, Score: 1},
		},
		{
			name: "sparse",
			table: &tablegraph.Table{
				Header: []string{"a", "b"},
				Rows:   [][]string{{"1", ""}, {"", ""}},
			},
			want: tablegraph.Report{
				Rows: 2, Columns: 2, EmptyCells: 3, FillRatio: 0.25, NumericRatio: 0.5, Score: 0.25,
				Issues: []string{IssueSparse},
			},
		},
		{
			name: "mixed column",
			table: &tablegraph.Table{
				Header: []string{"qty"},
				Rows:   [][]string{{"1,000"}, {"n/a"}},
			},
			want: tablegraph.Report{
				Rows: 2, Columns: 1, FillRatio: 1, Score: 0.5,
				Issues: []string{IssueMixedColumn},
			},
		},
		{
			name: "short row counts as empty",
			table: &tablegraph.Table{
				Header: []string{"a", "b"},
				Rows:   [][]string{{"x"}, {"y", "z"}},
			},
			want: tablegraph.Report{Rows: 2, Columns: 2, EmptyCells: 1, FillRatio: 0.75, Score: 0.75},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.table, 0.5))
		})
	}
}

func TestAuditor_Run(t *testing.T) {
	var buf bytes.Buffer
	a := NewAuditor(slog.New(slog.NewJSONHandler(&buf, nil)))

	r, err := a.Run(context.Background(), &tablegraph.Table{
		Header: []string{"a"},
		Rows:   [][]string{{"1"}},
	})

	require.NoError(t, err)
	assert.Equal(t, 1.0, r.Score)
	assert.Contains(t, buf.String(), `"msg":"table audited"`)
	assert.Contains(t, buf.String(), `"score":1`)
}
