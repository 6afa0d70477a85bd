package benchmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/randalmurphal/tablegraph/internal/sqlitedb"
	"github.com/randalmurphal/tablegraph/pkg/flowgraph/checkpoint"
	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
	"github.com/randalmurphal/tablegraph/pkg/tablegraph/qc"
	"github.com/randalmurphal/tablegraph/pkg/tablegraph/tablestore"
	"github.com/randalmurphal/tablegraph/pkg/tablegraph/validate"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// largeTable builds a rows x cols table of numeric cells.
func largeTable(rows, cols int) *tablegraph.Table {
	t := &tablegraph.Table{Header: make([]string, cols), Rows: make([][]string, rows)}
	for c := range cols {
		t.Header[c] = fmt.Sprintf("col%d", c)
	}
	for r := range rows {
		t.Rows[r] = make([]string, cols)
		for c := range cols {
			t.Rows[r][c] = fmt.Sprint(r * c)
		}
	}
	return t
}

// agents returns in-process agents; the VLM always answers with table.
func agents(table *tablegraph.Table) tablegraph.Agents {
	identity := func(_ context.Context, img tablegraph.Image) (tablegraph.Image, error) {
		return img, nil
	}
	return tablegraph.Agents{
		Image: tablegraph.ImageAgentFunc(identity),
		VLM: tablegraph.VLMAgentFunc(func(context.Context, tablegraph.Image) (tablegraph.Extraction, error) {
			return tablegraph.Extraction{Table: table}, nil
		}),
		Validator: validate.Rules{MinRows: 1, Logger: discard},
		Retry:     tablegraph.RetryAgentFunc(identity),
		QC:        qc.NewAuditor(discard),
	}
}

func mustBuild(b *testing.B, a tablegraph.Agents, opts ...tablegraph.Option) *tablegraph.Pipeline {
	b.Helper()
	p, err := tablegraph.Build(a, append([]tablegraph.Option{tablegraph.WithLogger(discard)}, opts...)...)
	if err != nil {
		b.Fatal(err)
	}
	return p
}

// BenchmarkBuild measures graph assembly and compilation.
func BenchmarkBuild(b *testing.B) {
	a := agents(largeTable(10, 5))
	for b.Loop() {
		_, _ = tablegraph.Build(a)
	}
}

// BenchmarkRun_FirstAttempt runs the straight path through all stages.
func BenchmarkRun_FirstAttempt(b *testing.B) {
	p := mustBuild(b, agents(largeTable(10, 5)))
	ctx := context.Background()
	for b.Loop() {
		_, _ = p.Run(ctx, tablegraph.State{RunID: "bench"})
	}
}

// BenchmarkRun_RetryLoop runs 10 retry cycles before giving up.
func BenchmarkRun_RetryLoop(b *testing.B) {
	p := mustBuild(b, agents(&tablegraph.Table{}), tablegraph.WithMaxRetries(10))
	ctx := context.Background()
	for b.Loop() {
		_, _ = p.Run(ctx, tablegraph.State{RunID: "bench"})
	}
}

// BenchmarkRun_TableSizes shows how table size affects a full run.
func BenchmarkRun_TableSizes(b *testing.B) {
	for _, rows := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("rows=%d", rows), func(b *testing.B) {
			p := mustBuild(b, agents(largeTable(rows, 8)))
			ctx := context.Background()
			for b.Loop() {
				_, _ = p.Run(ctx, tablegraph.State{RunID: "bench"})
			}
		})
	}
}

// BenchmarkRun_MemoryCheckpoints checkpoints after every stage.
func BenchmarkRun_MemoryCheckpoints(b *testing.B) {
	p := mustBuild(b, agents(largeTable(100, 8)),
		tablegraph.WithCheckpointing(checkpoint.NewMemoryStore()))
	ctx := context.Background()
	i := 0
	for b.Loop() {
		i++
		_, _ = p.Run(ctx, tablegraph.State{RunID: fmt.Sprintf("run-%d", i)})
	}
}

// BenchmarkRun_SQLite persists tables and checkpoints to SQLite files.
func BenchmarkRun_SQLite(b *testing.B) {
	ctx := context.Background()
	dir := b.TempDir()

	tables, err := tablestore.NewSQLite(ctx, dir+"/tables.db")
	if err != nil {
		b.Fatal(err)
	}
	defer tables.Close()
	cps, err := checkpoint.NewSQLiteStore(ctx, dir+"/checkpoints.db")
	if err != nil {
		b.Fatal(err)
	}
	defer cps.Close()

	p := mustBuild(b, agents(largeTable(100, 8)),
		tablegraph.WithTableStore(tables),
		tablegraph.WithCheckpointing(cps))
	i := 0
	for b.Loop() {
		i++
		_, _ = p.Run(ctx, tablegraph.State{RunID: fmt.Sprintf("run-%d", i)})
	}
}

// BenchmarkRunBatch runs 64 images with 8 workers.
func BenchmarkRunBatch(b *testing.B) {
	p := mustBuild(b, agents(largeTable(10, 5)))
	inputs := make([]tablegraph.State, 64)
	ctx := context.Background()
	for b.Loop() {
		_ = tablegraph.RunBatch(ctx, p, inputs, 8)
	}
}

// BenchmarkTableStore_Save compares table store backends.
func BenchmarkTableStore_Save(b *testing.B) {
	ctx := context.Background()
	rec := tablegraph.Record{RunID: "run-1", Table: largeTable(100, 8)}

	sqliteMem, err := tablestore.NewSQLite(ctx, sqlitedb.Memory)
	if err != nil {
		b.Fatal(err)
	}
	defer sqliteMem.Close()

	for name, s := range map[string]tablestore.Store{
		"memory": tablestore.NewMemory(),
		"sqlite": sqliteMem,
	} {
		b.Run(name, func(b *testing.B) {
			for b.Loop() {
				_ = s.Save(ctx, rec)
			}
		})
	}
}

// BenchmarkStateMarshal measures checkpoint serialisation of a state.
func BenchmarkStateMarshal(b *testing.B) {
	s := tablegraph.State{
		RunID: "bench",
		Image: tablegraph.Image{Data: make([]byte, 256<<10), Format: "png"},
		Table: largeTable(100, 8),
	}
	for b.Loop() {
		_, _ = json.Marshal(s)
	}
}
