// Package parallel splits index ranges across CPU cores.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

// Parallelize divides items into one contiguous chunk per CPU core and runs fn
// on each range [start, end) concurrently.
func Parallelize(items int, fn func(start, end int)) {
	_ = ParallelizeContext(context.Background(), items, func(start, end int) error {
		fn(start, end)
		return nil
	})
}

// ParallelizeContext is Parallelize for fallible work. Chunks not yet started
// when ctx is cancelled are skipped. The first error by chunk order is returned.
func ParallelizeContext(ctx context.Context, items int, fn func(start, end int) error) error {
	if items <= 0 {
		return ctx.Err()
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// ceiling division
	chunkSize := (items + numWorkers - 1) / numWorkers

	errs := make([]error, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(w, s, e int) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[w] = err
				return
			}
			errs[w] = fn(s, e)
		}(i, start, end)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ParallelizeWithThreshold runs fn sequentially over [0, items) when items does
// not exceed threshold, and in parallel otherwise.
func ParallelizeWithThreshold(ctx context.Context, items, threshold int, fn func(start, end int) error) error {
	if items <= threshold {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(0, items)
	}
	return ParallelizeContext(ctx, items, fn)
}
