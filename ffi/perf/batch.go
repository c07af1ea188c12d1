package perf

import (
	"context"
	"errors"
	"sync"

	"github.com/obinexus/libpolycall/ffi/types"
)

// ErrWithdrawn is returned in a BatchResult slot whose submission was
// withdrawn before ExecuteBatch began executing it.
var ErrWithdrawn = errors.New("perf: batch call withdrawn before execution")

// Invoke performs one call already bound to its target adapter and
// arguments; the batch queue only sequences calls, it does not know how
// to dispatch them.
type Invoke func(ctx context.Context) (types.CanonicalValue, error)

// BatchCall is one submission to a Batch. LockKey groups calls that must
// execute serially — calls with distinct LockKeys may run concurrently,
// calls sharing one never do. The batch itself takes no dispatch adapter
// lock, so a batched call is not serialized against a direct
// dispatch.Context.Call to the same adapter.
type BatchCall struct {
	LockKey string
	Run     Invoke
}

// BatchResult is the outcome of one submitted call, in submission order.
type BatchResult struct {
	Value types.CanonicalValue
	Err   error
}

// Batch is a FIFO batch dispatch queue (spec component C5). Calls
// submitted before ExecuteBatch run in insertion order within their
// lock-key group; an error in one call never aborts the rest of the
// batch.
type Batch struct {
	mu    sync.Mutex
	calls []BatchCall
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Submit queues call and returns its slot index, used later to address
// its BatchResult or to Withdraw it.
func (b *Batch) Submit(call BatchCall) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)
	return len(b.calls) - 1
}

// Withdraw cancels a queued call before ExecuteBatch begins. Returns
// false if index is out of range or already withdrawn.
func (b *Batch) Withdraw(index int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.calls) || b.calls[index].Run == nil {
		return false
	}
	b.calls[index].Run = nil
	return true
}

// Len returns the number of calls currently queued.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

// ExecuteBatch runs every queued call, grouped by LockKey so that calls
// sharing a key run serially in submission order while different keys'
// groups proceed concurrently: one goroutine per group, joined by a
// sync.WaitGroup before the results are returned.
func (b *Batch) ExecuteBatch(ctx context.Context) []BatchResult {
	b.mu.Lock()
	calls := append([]BatchCall(nil), b.calls...)
	b.calls = nil
	b.mu.Unlock()

	results := make([]BatchResult, len(calls))
	groups := make(map[string][]int)
	var order []string
	for i, c := range calls {
		if _, seen := groups[c.LockKey]; !seen {
			order = append(order, c.LockKey)
		}
		groups[c.LockKey] = append(groups[c.LockKey], i)
	}

	var wg sync.WaitGroup
	for _, key := range order {
		indices := groups[key]
		wg.Add(1)
		go func(indices []int) {
			defer wg.Done()
			for _, idx := range indices {
				call := calls[idx]
				if call.Run == nil {
					results[idx] = BatchResult{Err: ErrWithdrawn}
					continue
				}
				v, err := call.Run(ctx)
				results[idx] = BatchResult{Value: v, Err: err}
			}
		}(indices)
	}
	wg.Wait()

	return results
}
