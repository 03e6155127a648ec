package batch

import (
	"context"
	"sync"

	"webpconv/internal/conversion"
	"webpconv/internal/discovery"
)

// dispatch runs one Job per entry on req.Workers goroutines and streams the
// outcomes back. The returned channel closes once every started job has
// finished. Entries not yet handed to a worker when ctx is cancelled are
// dropped.
func (o *Orchestrator) dispatch(ctx context.Context, req Request, entries []discovery.FileEntry) <-chan conversion.Outcome {
	workers := req.Workers
	if workers > len(entries) {
		workers = len(entries)
	}

	work := make(chan discovery.FileEntry)
	results := make(chan conversion.Outcome, workers)

	go func() {
		defer close(work)
		for _, entry := range entries {
			if ctx.Err() != nil {
				return
			}
			select {
			case work <- entry:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range work {
				job := conversion.Job{
					Entry:           entry,
					OutputExtension: req.OutputExtension,
					Params:          req.Params,
					Encoder:         o.encoder,
					Logger:          o.logger,
				}
				results <- job.Run(ctx)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
