package nav

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// dispatch computes the preview of every item concurrently and sends the
// items, in completion order, on the returned channel. Each item is ranked
// by its position in items. Previews already running when ctx ends still
// finish but are no longer sent.
func dispatch(ctx context.Context, items []Item, preview PreviewFunc, workers int) <-chan Item {
	out := make(chan Item)
	compute := context.WithoutCancel(ctx)

	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}

	go func() {
		defer close(out)
		for i, it := range items {
			if ctx.Err() != nil {
				break
			}
			it := it
			it.Rank = i
			g.Go(func() error {
				if preview != nil {
					it.Preview = preview(compute, it)
				}
				select {
				case out <- it:
				case <-ctx.Done():
				}
				return nil
			})
		}
		_ = g.Wait()
	}()

	return out
}
