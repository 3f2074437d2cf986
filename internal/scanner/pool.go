package scanner

import (
	"context"
	"sync"
	"sync/atomic"
)

// runPool runs fn for every job on at most workers goroutines and returns
// once all started jobs have finished. Jobs not yet handed out when ctx is
// cancelled are dropped. onDone is called after each job with the number of
// completed jobs.
func runPool[T any](ctx context.Context, workers int, jobs []T, fn func(context.Context, T), onDone func(done int)) {
	if len(jobs) == 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	queue := make(chan T)
	var completed atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				fn(ctx, job)
				n := completed.Add(1)
				if onDone != nil {
					onDone(int(n))
				}
			}
		}()
	}

feed:
	for _, job := range jobs {
		select {
		case queue <- job:
		case <-ctx.Done():
			break feed
		}
	}
	close(queue)
	wg.Wait()
}
