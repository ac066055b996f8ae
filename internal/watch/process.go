package watch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/clauserisk/internal/model"
	"github.com/ppiankov/clauserisk/internal/worker"
)

// Handler receives the outcome of every analyzed event
type Handler func(ev Event, report *model.Report, err error)

// Process analyzes events until the channel closes or ctx is done, with at
// most concurrency analyses in flight. Analysis errors go to handle and never
// stop the loop.
func Process(ctx context.Context, events <-chan Event, analyzer worker.Analyzer, concurrency int, handle Handler) error {
	if concurrency <= 0 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

loop:
	for {
		select {
		case <-gctx.Done():
			break loop
		case ev, ok := <-events:
			if !ok {
				break loop
			}
			g.Go(func() error {
				report, err := analyzer.AnalyzeSource(gctx, ev.Path)
				handle(ev, report, err)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
