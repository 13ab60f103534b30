package list

import (
	"sync"
	"sync/atomic"
)

type safeListNode[T comparable] struct {
	prev, next *safeListNode[T]
	marked     atomic.Bool // set while the node is being unlinked
	value      T
}

// DefaultNodePoolCapacity bounds the recycled nodes a pool retains
// after the list shrinks. Past the bound, unlinked nodes are simply
// released to the garbage collector.
const DefaultNodePoolCapacity = 1024

// safeListNodePool is a bounded free-list of scrubbed node records.
// It amortizes allocation under insert/erase churn and is a pure
// performance aid, never a correctness requirement. The pool carries
// its own mutex, independent of any list's lock, so one pool could in
// principle back several lists.
type safeListNodePool[T comparable] struct {
	mu       sync.Mutex
	free     []*safeListNode[T]
	capacity int
}

func newSafeListNodePool[T comparable](capacity int) *safeListNodePool[T] {
	if capacity <= 0 {
		capacity = DefaultNodePoolCapacity
	}
	return &safeListNodePool[T]{
		free:     make([]*safeListNode[T], 0, capacity),
		capacity: capacity,
	}
}

func (p *safeListNodePool[T]) allocate(v T) *safeListNode[T] {
	p.mu.Lock()
	if n := len(p.free); n > 0 {
		node := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		p.mu.Unlock()
		node.value = v
		node.marked.Store(false)
		return node
	}
	p.mu.Unlock()
	return &safeListNode[T]{value: v}
}

func (p *safeListNodePool[T]) deallocate(node *safeListNode[T]) {
	if node == nil {
		return
	}
	// Scrub links and payload now; the marker stays set until the node
	// is handed out again, so stale iterators see it as invalid.
	var zero T
	node.prev, node.next = nil, nil
	node.value = zero
	node.marked.Store(true)

	p.mu.Lock()
	if len(p.free) < p.capacity {
		p.free = append(p.free, node)
	}
	p.mu.Unlock()
}

func (p *safeListNodePool[T]) retained() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}
