package id

import (
	"strconv"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

const cacheLinePadSize = unsafe.Sizeof(cpu.CacheLinePad{})

// monotonicNonZeroID is an increase-only id source. It skips zero on
// overflow so that a generated id can double as a "present" marker.
// The counter occupies a whole cache line to avoid false sharing with
// neighbouring allocations when many goroutines draw ids at once.
type monotonicNonZeroID struct {
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte
	val uint64
	_   [cacheLinePadSize - unsafe.Sizeof(*new(uint64))]byte
}

func (id *monotonicNonZeroID) next() uint64 {
	var v uint64
	if v = atomic.AddUint64(&id.val, 1); v == 0 {
		v = atomic.AddUint64(&id.val, 1)
	}
	return v
}

// MonotonicNonZeroID builds a process-local id generator whose values
// are strictly increasing and never zero. Suitable as an identity or
// lock-ordering ticket source.
func MonotonicNonZeroID() (Generator, error) {
	src := &monotonicNonZeroID{val: 0}
	gen := &idDelegator{
		number: src.next,
		str: func() string {
			return strconv.FormatUint(src.next(), 10)
		},
	}
	return gen, nil
}
