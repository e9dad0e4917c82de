package translate

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// completer sends one prompt to a provider and returns the reply text.
type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
}

// batchTranslator splits items into prompt-sized batches and fans them
// out over a worker pool.
type batchTranslator struct {
	provider Provider
	client   completer
	options  Options
}

func (t *batchTranslator) batchSize() int {
	if t.options.BatchSize > 0 {
		return t.options.BatchSize
	}
	return DefaultBatchSize
}

func (t *batchTranslator) Translate(
	ctx context.Context,
	items []Item,
	concurrency int,
) ([]Result, error) {
	if len(items) == 0 {
		return []Result{}, nil
	}
	return runBatches(ctx, splitBatches(items, t.batchSize()), concurrency, t.translateBatch)
}

func (t *batchTranslator) translateBatch(
	ctx context.Context,
	items []Item,
) ([]Result, error) {
	text, err := t.client.complete(ctx, BuildPrompt(t.options, items))
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	return parseResponse(t.provider, text, len(items))
}

func splitBatches(items []Item, size int) [][]Item {
	var batches [][]Item
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		batches = append(batches, items[i:end])
	}
	return batches
}

// runBatches hands batch indices to up to concurrency workers. The first
// failure cancels the rest. Results come back sorted by item index.
func runBatches(
	parent context.Context,
	batches [][]Item,
	concurrency int,
	fn func(context.Context, []Item) ([]Result, error),
) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	out := make([][]Result, len(batches))
	work := make(chan int)

	for w := 0; w < concurrency && w < len(batches); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				if ctx.Err() != nil {
					continue
				}
				results, err := fn(ctx, batches[idx])
				if err != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("batch %d failed: %w", idx, err)
						cancel()
					})
					continue
				}
				out[idx] = results
			}
		}()
	}

feed:
	for i := range batches {
		select {
		case <-ctx.Done():
			break feed
		case work <- i:
		}
	}
	close(work)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}

	var all []Result
	for _, r := range out {
		all = append(all, r...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Index < all[j].Index
	})
	return all, nil
}
