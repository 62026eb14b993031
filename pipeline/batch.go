package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-shpb/internal/config"
	"github.com/cwbudde/algo-shpb/trace"
)

// BatchItem is the outcome for one recording of a batch. Exactly one of
// Result and Err is set.
type BatchItem struct {
	Path   string
	Result *Result
	Err    error
}

// ProcessBatch loads and processes each recording in paths with cfg.
func ProcessBatch(ctx context.Context, paths []string, cfg *config.Config, limit int) ([]BatchItem, error) {
	return New(cfg).ProcessBatch(ctx, paths, limit)
}

// ProcessBatch loads and processes each recording in paths, running at
// most limit recordings at once (no limit if limit <= 0). A failing
// recording does not stop the others; its error is reported in its
// BatchItem. The returned error is non-nil only when ctx is cancelled, in
// which case unfinished results are discarded.
func (p *Processor) ProcessBatch(ctx context.Context, paths []string, limit int) ([]BatchItem, error) {
	items := make([]BatchItem, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, path := range paths {
		items[i].Path = path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			exp, err := trace.Load(path)
			if err == nil {
				items[i].Result, err = p.Process(gctx, exp)
			}
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				items[i].Err = err
				p.logger.Printf("pipeline: skipping %s: %v", path, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}
