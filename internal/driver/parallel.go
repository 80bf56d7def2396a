package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// CompileAll compiles independent units concurrently, at most jobs at a time
// (GOMAXPROCS when jobs <= 0). Results keep the order of reqs. Every unit runs
// its own pass instance, so units share nothing but the disk cache.
func CompileAll(ctx context.Context, reqs []*CompileRequest, jobs int) ([]*CompileResult, error) {
	results := make([]*CompileResult, len(reqs))
	if len(reqs) == 0 {
		return results, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for _, req := range reqs {
		if req != nil {
			emit(req.Progress, Event{Unit: req.Unit(), Stage: StageLoad, Status: StatusQueued})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(reqs)))
	for i, req := range reqs {
		g.Go(func() error {
			// индекс i уникален для горутины, мьютекс не нужен
			res, err := Compile(gctx, req)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
