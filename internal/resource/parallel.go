package resource

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEachChunk splits [0, n) into contiguous chunks and runs fn on them with
// at most Workers() goroutines. Chunks are sized so each worker gets several,
// which evens out items of different cost.
//
// The first error cancels the context passed to the remaining chunks and is
// returned once all started chunks have finished.
func (c *Controller) ForEachChunk(ctx context.Context, n int, fn func(ctx context.Context, lo, hi int) error) error {
	if n <= 0 {
		return ctx.Err()
	}
	workers := max(c.Workers(), 1)
	chunk := max(n/(workers*4), 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, lo, hi)
		})
	}
	return g.Wait()
}
