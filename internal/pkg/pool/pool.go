// Package pool provides a generic concurrent worker pool for fan-out/fan-in
// processing. Used by batch teaching to verify several candidate commands in
// parallel before their ledger writes are applied sequentially.
package pool

import (
	"runtime"
	"sync"
)

// Result pairs a processed value with its original index to preserve ordering.
type Result[R any] struct {
	Index int
	Value R
	Err   error
}

// Pool fans out work items to a fixed number of goroutine workers
// and collects results preserving the original input order.
type Pool[T, R any] struct {
	concurrency int
}

// New creates a worker pool with the given concurrency.
// If concurrency <= 0, defaults to runtime.NumCPU().
func New[T, R any](concurrency int) *Pool[T, R] {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &Pool[T, R]{concurrency: concurrency}
}

// Process distributes items across workers, applies fn to each, and returns
// results in the same order as the input slice. Errors from individual items
// are captured per-result rather than aborting the whole batch.
func (p *Pool[T, R]) Process(items []T, fn func(T) (R, error)) []Result[R] {
	if len(items) == 0 {
		return nil
	}

	workers := p.concurrency
	if workers > len(items) {
		workers = len(items)
	}

	type job struct {
		index int
		item  T
	}

	jobs := make(chan job, len(items))
	results := make([]Result[R], len(items))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				val, err := fn(j.item)
				results[j.index] = Result[R]{
					Index: j.index,
					Value: val,
					Err:   err,
				}
			}
		}()
	}

	for i, item := range items {
		jobs <- job{index: i, item: item}
	}
	close(jobs)

	wg.Wait()

	return results
}
