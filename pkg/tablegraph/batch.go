package tablegraph

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one pipeline run in a batch.
type Result struct {
	State State
	Err   error
}

// RunBatch runs p on every input with at most workers runs in flight.
// Results are in input order. A failed run does not stop the others; only
// cancellation of ctx does, in which case pending runs report ctx.Err().
func RunBatch(ctx context.Context, p *Pipeline, inputs []State, workers int) []Result {
	results := make([]Result, len(inputs))
	if workers <= 0 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i := range inputs {
		s := inputs[i]
		if s.RunID == "" {
			s.RunID = uuid.New().String()
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{State: s, Err: err}
				return nil
			}
			state, err := p.Run(ctx, s)
			results[i] = Result{State: state, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
