package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// AnalyzeBatch runs inputs concurrently with at most parallelism runs in
// flight. Results keep input order. Only cancellation of ctx fails the batch.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, inputs []Input, parallelism int) ([]Result, error) {
	if parallelism <= 0 {
		parallelism = 1
	}
	out := make([]Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = a.Analyze(gctx, inputs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
