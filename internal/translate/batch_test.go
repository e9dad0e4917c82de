package translate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func makeItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{Index: i, Text: strings.Repeat("w", i+1)}
	}
	return items
}

func TestSplitBatches(t *testing.T) {
	tests := []struct {
		n, size int
		want    []int
	}{
		{n: 5, size: 2, want: []int{2, 2, 1}},
		{n: 4, size: 2, want: []int{2, 2}},
		{n: 3, size: 50, want: []int{3}},
	}
	for _, tt := range tests {
		batches := splitBatches(makeItems(tt.n), tt.size)
		if len(batches) != len(tt.want) {
			t.Fatalf("n=%d size=%d: got %d batches, want %d", tt.n, tt.size, len(batches), len(tt.want))
		}
		for i, b := range batches {
			if len(b) != tt.want[i] {
				t.Errorf("n=%d size=%d batch %d: len %d, want %d", tt.n, tt.size, i, len(b), tt.want[i])
			}
		}
	}
}

func TestRunBatchesOrdersResults(t *testing.T) {
	batches := splitBatches(makeItems(7), 2)

	fn := func(ctx context.Context, items []Item) ([]Result, error) {
		// later batches finish first
		time.Sleep(time.Duration(10-items[0].Index) * time.Millisecond)
		out := make([]Result, len(items))
		for i, it := range items {
			out[len(items)-1-i] = Result{Index: it.Index, Text: strings.ToUpper(it.Text)}
		}
		return out, nil
	}

	results, err := runBatches(context.Background(), batches, 3, fn)
	if err != nil {
		t.Fatalf("runBatches() error = %v", err)
	}
	if len(results) != 7 {
		t.Fatalf("got %d results, want 7", len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("results[%d].Index = %d", i, r.Index)
		}
	}
}

func TestRunBatchesConcurrencyLimit(t *testing.T) {
	batches := splitBatches(makeItems(10), 1)

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	fn := func(ctx context.Context, items []Item) ([]Result, error) {
		mu.Lock()
		active++
		maxSeen = max(maxSeen, active)
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
		return []Result{{Index: items[0].Index, Text: "ok"}}, nil
	}

	if _, err := runBatches(context.Background(), batches, 2, fn); err != nil {
		t.Fatalf("runBatches() error = %v", err)
	}
	if maxSeen > 2 {
		t.Errorf("saw %d concurrent batches, limit 2", maxSeen)
	}
}

func TestRunBatchesStopsOnError(t *testing.T) {
	batches := splitBatches(makeItems(20), 1)
	boom := errors.New("boom")

	var calls atomic.Int32
	fn := func(ctx context.Context, items []Item) ([]Result, error) {
		calls.Add(1)
		if items[0].Index == 0 {
			return nil, boom
		}
		time.Sleep(5 * time.Millisecond)
		return []Result{{Index: items[0].Index, Text: "ok"}}, nil
	}

	_, err := runBatches(context.Background(), batches, 1, fn)
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
	if !strings.Contains(err.Error(), "batch 0 failed") {
		t.Errorf("error %q should name the batch", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("fn called %d times after failure, want 1", n)
	}
}

func TestRunBatchesParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fn := func(ctx context.Context, items []Item) ([]Result, error) {
		t.Error("fn called with cancelled context")
		return nil, nil
	}
	_, err := runBatches(ctx, splitBatches(makeItems(3), 1), 2, fn)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
