package list

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/kuserspace/kuserspace/lib/id"
	"github.com/kuserspace/kuserspace/lib/infra"
)

type ListErr string

func (err ListErr) Error() string {
	return string(err)
}

const (
	// ErrEmptyList reports element access on a list with no elements.
	// Recoverable by the caller: check Empty first or test with errors.Is.
	ErrEmptyList ListErr = "access to empty safe list"
)

var (
	_ SafeList[struct{}] = (*safeList[struct{}])(nil) // Type check assertion

	// Every list draws a process-unique ticket at construction. Two-list
	// operations always lock in ascending ticket order, which makes
	// concurrent cross-list Merge/Splice/TakeFrom deadlock-free.
	lockOrderGen = lo.Must(id.MonotonicNonZeroID())
)

type safeList[T comparable] struct {
	head, tail *safeListNode[T]
	pool       *safeListNodePool[T]
	count      atomic.Int64
	seq        uint64
	mu         sync.RWMutex
}

// NewSafeList builds an empty goroutine-safe doubly linked list. The
// optional argument overrides the node pool capacity
// (DefaultNodePoolCapacity).
func NewSafeList[T comparable](poolCapacity ...int) SafeList[T] {
	capacity := DefaultNodePoolCapacity
	if len(poolCapacity) > 0 && poolCapacity[0] > 0 {
		capacity = poolCapacity[0]
	}
	return newSafeList[T](capacity)
}

// NewSafeListOf builds a list preloaded with values, element-wise,
// front to back.
func NewSafeListOf[T comparable](values ...T) SafeList[T] {
	l := newSafeList[T](DefaultNodePoolCapacity)
	for _, v := range values {
		l.pushBack(v)
	}
	return l
}

func newSafeList[T comparable](poolCapacity int) *safeList[T] {
	return &safeList[T]{
		seq:  lockOrderGen.Number(),
		pool: newSafeListNodePool[T](poolCapacity),
	}
}

// lockPair acquires the exclusive locks of both lists in ascending
// ticket order. Callers release through unlockPair.
func (l *safeList[T]) lockPair(o *safeList[T]) {
	if l.seq < o.seq {
		l.mu.Lock()
		o.mu.Lock()
	} else {
		o.mu.Lock()
		l.mu.Lock()
	}
}

func (l *safeList[T]) unlockPair(o *safeList[T]) {
	if l.seq < o.seq {
		o.mu.Unlock()
		l.mu.Unlock()
	} else {
		l.mu.Unlock()
		o.mu.Unlock()
	}
}

// linked reports whether node is currently part of this list's chain.
// Detached, recycled and mid-unlink nodes all fail the check.
func (l *safeList[T]) linked(node *safeListNode[T]) bool {
	if node == nil || node.marked.Load() {
		return false
	}
	if node.prev == nil && node != l.head {
		return false
	}
	if node.next == nil && node != l.tail {
		return false
	}
	return true
}

// unlink detaches node from the chain. Exclusive lock held by caller.
func (l *safeList[T]) unlink(node *safeListNode[T]) {
	node.marked.Store(true)
	prev, next := node.prev, node.next
	if prev != nil {
		prev.next = next
	} else {
		l.head = next
	}
	if next != nil {
		next.prev = prev
	} else {
		l.tail = prev
	}
	node.prev, node.next = nil, nil
	l.count.Add(-1)
}

func (l *safeList[T]) pushFront(v T) *safeListNode[T] {
	node := l.pool.allocate(v)
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	} else {
		l.tail = node
	}
	l.head = node
	l.count.Add(1)
	return node
}

func (l *safeList[T]) pushBack(v T) *safeListNode[T] {
	node := l.pool.allocate(v)
	node.prev = l.tail
	if l.tail != nil {
		l.tail.next = node
	} else {
		l.head = node
	}
	l.tail = node
	l.count.Add(1)
	return node
}

func (l *safeList[T]) popFront() (T, error) {
	var zero T
	if l.head == nil {
		return zero, infra.WrapErrorStackWithMessage(ErrEmptyList, "pop front")
	}
	node := l.head
	v := node.value
	l.unlink(node)
	l.pool.deallocate(node)
	return v, nil
}

func (l *safeList[T]) popBack() (T, error) {
	var zero T
	if l.tail == nil {
		return zero, infra.WrapErrorStackWithMessage(ErrEmptyList, "pop back")
	}
	node := l.tail
	v := node.value
	l.unlink(node)
	l.pool.deallocate(node)
	return v, nil
}

// insertBefore links a new node holding v just before at. at must pass
// the linked check. Exclusive lock held by caller.
func (l *safeList[T]) insertBefore(at *safeListNode[T], v T) *safeListNode[T] {
	node := l.pool.allocate(v)
	node.next = at
	node.prev = at.prev
	if at.prev != nil {
		at.prev.next = node
	} else {
		l.head = node
	}
	at.prev = node
	l.count.Add(1)
	return node
}

func (l *safeList[T]) Len() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count.Load()
}

func (l *safeList[T]) Empty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count.Load() == 0
}

func (l *safeList[T]) Front() (T, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var zero T
	if l.head == nil {
		return zero, infra.WrapErrorStackWithMessage(ErrEmptyList, "front")
	}
	return l.head.value, nil
}

func (l *safeList[T]) Back() (T, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var zero T
	if l.tail == nil {
		return zero, infra.WrapErrorStackWithMessage(ErrEmptyList, "back")
	}
	return l.tail.value, nil
}

func (l *safeList[T]) PushFront(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pushFront(v)
}

func (l *safeList[T]) PushBack(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pushBack(v)
}

func (l *safeList[T]) PopFront() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.popFront()
}

func (l *safeList[T]) PopBack() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.popBack()
}

func (l *safeList[T]) Insert(pos Iterator[T], v T) Iterator[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	if pos.curr == nil || !l.linked(pos.curr) {
		return makeIterator(l.pushBack(v))
	}
	return makeIterator(l.insertBefore(pos.curr, v))
}

func (l *safeList[T]) Erase(pos Iterator[T]) Iterator[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.erase(pos)
}

func (l *safeList[T]) erase(pos Iterator[T]) Iterator[T] {
	if pos.curr == nil || !l.linked(pos.curr) {
		return Iterator[T]{}
	}
	next := pos.curr.next
	l.unlink(pos.curr)
	l.pool.deallocate(pos.curr)
	return makeIterator(next)
}

func (l *safeList[T]) EraseRange(first, last Iterator[T]) Iterator[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	it := first
	for it.curr != nil && it.curr != last.curr {
		it = l.erase(it)
	}
	return last
}

func (l *safeList[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clear()
}

func (l *safeList[T]) clear() {
	for cur := l.head; cur != nil; {
		next := cur.next
		cur.marked.Store(true)
		cur.prev, cur.next = nil, nil
		l.pool.deallocate(cur)
		cur = next
	}
	l.head, l.tail = nil, nil
	l.count.Store(0)
}

func (l *safeList[T]) Find(v T) Iterator[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for cur := l.head; cur != nil; cur = cur.next {
		if cur.value == v {
			return makeIterator(cur)
		}
	}
	return Iterator[T]{}
}

func (l *safeList[T]) Contains(v T) bool {
	return l.Find(v).Valid()
}

func (l *safeList[T]) Remove(v T) int64 {
	return l.RemoveIf(func(x T) bool { return x == v })
}

func (l *safeList[T]) RemoveIf(pred func(v T) bool) int64 {
	if pred == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := int64(0)
	for cur := l.head; cur != nil; {
		next := cur.next
		if pred(cur.value) {
			l.unlink(cur)
			l.pool.deallocate(cur)
			removed++
		}
		cur = next
	}
	return removed
}

func (l *safeList[T]) Reverse() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for cur := l.head; cur != nil; {
		next := cur.next
		cur.prev, cur.next = cur.next, cur.prev
		cur = next
	}
	l.head, l.tail = l.tail, l.head
}

func (l *safeList[T]) Unique() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := int64(0)
	for cur := l.head; cur != nil && cur.next != nil; {
		if cur.next.value == cur.value {
			dup := cur.next
			l.unlink(dup)
			l.pool.deallocate(dup)
			removed++
		} else {
			cur = cur.next
		}
	}
	return removed
}

func (l *safeList[T]) Sort(less func(a, b T) bool) {
	if less == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	n := int(l.count.Load())
	if n < 2 {
		return
	}
	values := make([]T, 0, n)
	for cur := l.head; cur != nil; cur = cur.next {
		values = append(values, cur.value)
	}
	sort.SliceStable(values, func(i, j int) bool {
		return less(values[i], values[j])
	})
	i := 0
	// Rewrite payloads in place, node identities survive the sort.
	for cur := l.head; cur != nil; cur = cur.next {
		cur.value = values[i]
		i++
	}
}

func (l *safeList[T]) Merge(other SafeList[T], less func(a, b T) bool) {
	o, ok := other.(*safeList[T])
	if !ok || o == nil || o == l || less == nil {
		return
	}
	l.lockPair(o)
	defer l.unlockPair(o)

	a, b := l.head, o.head
	oldTailL, oldTailO := l.tail, o.tail
	var head, tail *safeListNode[T]
	take := func(n *safeListNode[T]) {
		n.prev = tail
		n.next = nil
		if tail == nil {
			head = n
		} else {
			tail.next = n
		}
		tail = n
	}
	for a != nil && b != nil {
		if less(b.value, a.value) {
			n := b
			b = b.next
			take(n)
		} else {
			n := a
			a = a.next
			take(n)
		}
	}
	attach := func(first, last *safeListNode[T]) {
		if first == nil {
			return
		}
		first.prev = tail
		if tail == nil {
			head = first
		} else {
			tail.next = first
		}
		tail = last
	}
	if a != nil {
		attach(a, oldTailL)
	}
	if b != nil {
		attach(b, oldTailO)
	}

	l.head, l.tail = head, tail
	l.count.Add(o.count.Load())
	o.head, o.tail = nil, nil
	o.count.Store(0)
}

func (l *safeList[T]) Splice(pos Iterator[T], other SafeList[T]) {
	o, ok := other.(*safeList[T])
	if !ok || o == nil || o == l {
		return
	}
	l.lockPair(o)
	defer l.unlockPair(o)

	if o.head == nil {
		return
	}
	first, last, moved := o.head, o.tail, o.count.Load()
	o.head, o.tail = nil, nil
	o.count.Store(0)

	at := pos.curr
	if at == nil || !l.linked(at) {
		// End position, the moved chain becomes the new back.
		if l.tail == nil {
			first.prev = nil
			l.head, l.tail = first, last
		} else {
			l.tail.next = first
			first.prev = l.tail
			l.tail = last
		}
	} else {
		first.prev = at.prev
		if at.prev != nil {
			at.prev.next = first
		} else {
			l.head = first
		}
		last.next = at
		at.prev = last
	}
	l.count.Add(moved)
}

func (l *safeList[T]) Clone() SafeList[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cloned := newSafeList[T](l.pool.capacity)
	for cur := l.head; cur != nil; cur = cur.next {
		cloned.pushBack(cur.value)
	}
	return cloned
}

func (l *safeList[T]) TakeFrom(other SafeList[T]) {
	o, ok := other.(*safeList[T])
	if !ok || o == nil || o == l {
		return
	}
	l.lockPair(o)
	defer l.unlockPair(o)

	l.clear()
	l.head, l.tail = o.head, o.tail
	l.count.Store(o.count.Load())
	o.head, o.tail = nil, nil
	o.count.Store(0)
}

func (l *safeList[T]) Begin() Iterator[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return makeIterator(l.head)
}

func (l *safeList[T]) End() Iterator[T] {
	return Iterator[T]{}
}

func (l *safeList[T]) Values() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	values := make([]T, 0, l.count.Load())
	for cur := l.head; cur != nil; cur = cur.next {
		values = append(values, cur.value)
	}
	return values
}

func (l *safeList[T]) TryPushFront(v T) bool {
	if !l.mu.TryLock() {
		return false
	}
	defer l.mu.Unlock()
	l.pushFront(v)
	return true
}

func (l *safeList[T]) TryPushBack(v T) bool {
	if !l.mu.TryLock() {
		return false
	}
	defer l.mu.Unlock()
	l.pushBack(v)
	return true
}

func (l *safeList[T]) TryPopFront() (T, bool) {
	var zero T
	if !l.mu.TryLock() {
		return zero, false
	}
	defer l.mu.Unlock()
	v, err := l.popFront()
	if err != nil {
		return zero, false
	}
	return v, true
}

func (l *safeList[T]) TryPopBack() (T, bool) {
	var zero T
	if !l.mu.TryLock() {
		return zero, false
	}
	defer l.mu.Unlock()
	v, err := l.popBack()
	if err != nil {
		return zero, false
	}
	return v, true
}

func (l *safeList[T]) TryInsert(pos Iterator[T], v T) bool {
	if !l.mu.TryLock() {
		return false
	}
	defer l.mu.Unlock()
	if pos.curr == nil || !l.linked(pos.curr) {
		l.pushBack(v)
		return true
	}
	l.insertBefore(pos.curr, v)
	return true
}

func (l *safeList[T]) TryErase(pos Iterator[T]) bool {
	if pos.curr == nil {
		return false
	}
	if !l.mu.TryLock() {
		return false
	}
	defer l.mu.Unlock()
	if !l.linked(pos.curr) {
		return false
	}
	l.unlink(pos.curr)
	l.pool.deallocate(pos.curr)
	return true
}
