package tablegraph_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/tablegraph/pkg/flowgraph"
	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeAgents builds agents whose validator rejects the first failures
// tables and whose VLM tags each table with its call number.
type fakeAgents struct {
	mu        sync.Mutex
	failures  int
	vlmCalls  int
	validated int
	qcTables  []*tablegraph.Table
}

func (f *fakeAgents) agents() tablegraph.Agents {
	return tablegraph.Agents{
		Image: tablegraph.ImageAgentFunc(func(_ context.Context, img tablegraph.Image) (tablegraph.Image, error) {
			img.Data = append([]byte("pre:"), img.Data...)
			return img, nil
		}),
		VLM: tablegraph.VLMAgentFunc(func(_ context.Context, img tablegraph.Image) (tablegraph.Extraction, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.vlmCalls++
			return tablegraph.Extraction{Table: &tablegraph.Table{
				Header: []string{"call", "image"},
				Rows:   [][]string{{string(rune('0' + f.vlmCalls)), string(img.Data)}},
			}}, nil
		}),
		Validator: tablegraph.ValidatorFunc(func(_ context.Context, t *tablegraph.Table) (bool, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.validated++
			return f.validated > f.failures, nil
		}),
		Retry: tablegraph.RetryAgentFunc(func(_ context.Context, img tablegraph.Image) (tablegraph.Image, error) {
			img.Data = append(img.Data, '+')
			return img, nil
		}),
		QC: tablegraph.QCAgentFunc(func(_ context.Context, t *tablegraph.Table) (tablegraph.Report, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.qcTables = append(f.qcTables, t)
			return tablegraph.Report{Rows: t.NumRows(), Columns: t.NumColumns(), Score: 1}, nil
		}),
	}
}

func (f *fakeAgents) neverValid() *fakeAgents {
	f.failures = 1 << 30
	return f
}

// trace builds a pipeline that records visited stages.
func trace(t *testing.T, agents tablegraph.Agents, opts ...tablegraph.Option) (*tablegraph.Pipeline, *[]string) {
	t.Helper()
	var visited []string
	var mu sync.Mutex
	opts = append([]tablegraph.Option{
		tablegraph.WithLogger(quiet),
		tablegraph.WithObserver(func(step flowgraph.Step, _ tablegraph.State) {
			mu.Lock()
			visited = append(visited, step.NodeID)
			mu.Unlock()
		}),
	}, opts...)

	p, err := tablegraph.Build(agents, opts...)
	require.NoError(t, err)
	return p, &visited
}

func count(stages []string, name string) int {
	n := 0
	for _, s := range stages {
		if s == name {
			n++
		}
	}
	return n
}
