package list

// Iterator is a forward-only cursor over a SafeList. It pins the node
// it references, so the node's record stays reachable even after being
// unlinked, and it snapshots the element at each step: an iterator
// invalidated by a concurrent erase still yields the value it observed
// last, it just cannot advance (the node's forward link is cleared on
// unlink).
//
// Iterator steps are not lock-protected across calls. A traversal that
// interleaves with mutators may observe the structure mid-change;
// callers needing a stable view should work on Values() or hold their
// own external lock.
type Iterator[T comparable] struct {
	curr *safeListNode[T]
	v    T
}

func makeIterator[T comparable](node *safeListNode[T]) Iterator[T] {
	it := Iterator[T]{curr: node}
	if node != nil {
		it.v = node.value
	}
	return it
}

// Valid reports whether the iterator references an element. The
// past-the-end iterator is invalid.
func (it Iterator[T]) Valid() bool {
	return it.curr != nil
}

// Value returns the element observed when the iterator last moved, or
// the zero value at End.
func (it Iterator[T]) Value() T {
	return it.v
}

// Next returns an iterator to the successor. Advancing past the last
// element, at End, or on a node unlinked meanwhile yields End.
func (it Iterator[T]) Next() Iterator[T] {
	if it.curr == nil || it.curr.marked.Load() {
		return Iterator[T]{}
	}
	return makeIterator(it.curr.next)
}

// Equal reports whether both iterators reference the same position.
func (it Iterator[T]) Equal(other Iterator[T]) bool {
	return it.curr == other.curr
}
