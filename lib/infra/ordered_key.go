package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
type Float interface {
	~float32 | ~float64
}

// OrderedKey constrains the element types that carry a natural total
// order usable by sort and merge style algorithms.
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// OrderedKeyComparator reports the relative order of i and j.
//  1. i == j, return 0
//  2. i > j, return 1
//  3. i < j, return -1
type OrderedKeyComparator[K OrderedKey] func(i, j K) int64

// OrderedCompare is the stock comparator over any OrderedKey.
func OrderedCompare[K OrderedKey](i, j K) int64 {
	switch {
	case i < j:
		return -1
	case i > j:
		return 1
	}
	return 0
}
