package list

import (
	"github.com/kuserspace/kuserspace/lib/infra"
)

// SafeList is a goroutine-safe doubly linked list. Every method is
// atomic at the granularity of a single call: reads take the shared
// side of a reader/writer lock, mutations take the exclusive side.
// There is no cross-call atomicity; a traversal made of repeated
// iterator steps may observe mutations from other goroutines in
// between steps.
type SafeList[T comparable] interface {
	// Len returns the live element count.
	Len() int64
	// Empty reports whether the list holds no elements.
	Empty() bool
	// Front returns the first element or ErrEmptyList.
	Front() (T, error)
	// Back returns the last element or ErrEmptyList.
	Back() (T, error)
	// PushFront prepends v in O(1).
	PushFront(v T)
	// PushBack appends v in O(1).
	PushBack(v T)
	// PopFront unlinks and returns the first element, or ErrEmptyList.
	PopFront() (T, error)
	// PopBack unlinks and returns the last element, or ErrEmptyList.
	PopBack() (T, error)
	// Insert places v immediately before pos and returns an iterator to
	// the new element. An end (invalid) pos behaves as PushBack.
	Insert(pos Iterator[T], v T) Iterator[T]
	// Erase unlinks the element at pos and returns an iterator to its
	// successor. Erasing at End is a no-op that returns End.
	Erase(pos Iterator[T]) Iterator[T]
	// EraseRange unlinks every element in [first, last) and returns last.
	EraseRange(first, last Iterator[T]) Iterator[T]
	// Clear unlinks and recycles every element.
	Clear()
	// Find returns an iterator to the first element equal to v, or End.
	Find(v T) Iterator[T]
	// Contains reports whether any element equals v.
	Contains(v T) bool
	// Remove drops every element equal to v and returns the drop count.
	Remove(v T) int64
	// RemoveIf drops every element matching pred and returns the drop count.
	RemoveIf(pred func(v T) bool) int64
	// Reverse flips the element order in place.
	Reverse()
	// Unique drops elements equal to their immediate predecessor. Only
	// adjacent duplicates go away; sort first for full deduplication.
	Unique() int64
	// Sort orders the elements ascending by less. Node identities are
	// kept; only the payloads are rewritten.
	Sort(less func(a, b T) bool)
	// Merge drains other into the receiver, assuming both are already
	// sorted by less. Nodes move, they are not copied. Violating the
	// pre-sortedness gives an unordered result, not an error.
	Merge(other SafeList[T], less func(a, b T) bool)
	// Splice moves the whole chain of other immediately before pos in
	// O(1). other is left empty.
	Splice(pos Iterator[T], other SafeList[T])
	// Clone deep-copies the list element-wise under the source's shared lock.
	Clone() SafeList[T]
	// TakeFrom transfers ownership of other's chain to the receiver,
	// replacing the current content. other is left empty.
	TakeFrom(other SafeList[T])
	// Begin returns an iterator to the first element (End when empty).
	Begin() Iterator[T]
	// End returns the past-the-end iterator.
	End() Iterator[T]
	// Values snapshots the elements front to back.
	Values() []T

	// The Try family attempts the exclusive lock without waiting and
	// reports false on contention, mutating nothing.
	TryPushFront(v T) bool
	TryPushBack(v T) bool
	TryPopFront() (T, bool)
	TryPopBack() (T, bool)
	TryInsert(pos Iterator[T], v T) bool
	TryErase(pos Iterator[T]) bool
}

// OrderedLess is the stock ascending comparator for element types with
// a natural total order.
func OrderedLess[K infra.OrderedKey]() func(a, b K) bool {
	return func(a, b K) bool {
		return infra.OrderedCompare(a, b) < 0
	}
}
