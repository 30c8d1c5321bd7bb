package pyjamaz

import (
	"context"
	"runtime"
	"sync"
)

// BatchItem is one input to an OptimizeBatch call.
type BatchItem struct {
	// Name identifies the item in BatchResult (e.g. a file path or key);
	// purely informational, never read by Optimize.
	Name string
	Data []byte
	// Opts overrides the batch's DefaultOpts for this item. Nil uses the
	// default.
	Opts *Options
}

// BatchResult is the outcome for one BatchItem, in the same order as the
// input slice.
type BatchResult struct {
	Item      BatchItem
	Selection *Selection
	Err       error
	Index     int
}

// BatchOptions configures OptimizeBatch.
type BatchOptions struct {
	// Workers bounds how many items run concurrently. 0 = runtime.NumCPU().
	// Each item's own Constraints.Workers still bounds its internal
	// per-format concurrency independently — the two pools don't share a
	// budget.
	Workers int
	// DefaultOpts is used for any BatchItem with a nil Opts.
	DefaultOpts Options
	// OnItem, if set, is called after each item completes.
	OnItem func(completed, total int)
}

// OptimizeBatch runs Optimize over many inputs concurrently with a bounded
// worker pool, generalizing a single call across a directory's worth of
// images without callers reimplementing the pool themselves. Results are
// returned in the same order as items. Canceling ctx stops starting new
// items; in-flight items still finish.
func OptimizeBatch(ctx context.Context, items []BatchItem, batchOpts BatchOptions) []BatchResult {
	if len(items) == 0 {
		return nil
	}

	workers := batchOpts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(items) {
		workers = len(items)
	}

	results := make([]BatchResult, len(items))
	workCh := make(chan int, len(items))
	for i := range items {
		workCh <- i
	}
	close(workCh)

	var wg sync.WaitGroup
	var completedMu sync.Mutex
	completed := 0

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				select {
				case <-ctx.Done():
					results[idx] = BatchResult{Item: items[idx], Err: ctx.Err(), Index: idx}
					continue
				default:
				}

				item := items[idx]
				opts := batchOpts.DefaultOpts
				if item.Opts != nil {
					opts = *item.Opts
				}

				sel, err := Optimize(ctx, item.Data, opts)
				results[idx] = BatchResult{Item: item, Selection: sel, Err: err, Index: idx}

				if batchOpts.OnItem != nil {
					completedMu.Lock()
					completed++
					c := completed
					completedMu.Unlock()
					batchOpts.OnItem(c, len(items))
				}
			}
		}()
	}

	wg.Wait()
	return results
}
