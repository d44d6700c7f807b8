package array

import "cmp"

// Comparator is a stateless three-way comparison strategy. Fixed takes it as
// a type parameter, so the zero value is used and calls are resolved at
// compile time.
type Comparator[T any] interface {
	// Compare returns a negative number when a < b, zero when a == b, and a
	// positive number when a > b.
	Compare(a, b T) int
}

// Natural orders values with < and ==.
type Natural[T cmp.Ordered] struct{}

func (Natural[T]) Compare(a, b T) int { return cmp.Compare(a, b) }

// Equality only distinguishes equal from not equal. Search and Equal work
// with it; Sort and BinarySearch need an ordering comparator.
type Equality[T comparable] struct{}

func (Equality[T]) Compare(a, b T) int {
	if a == b {
		return 0
	}
	return 1
}

// Reverse inverts the ordering of C.
type Reverse[T any, C Comparator[T]] struct{}

func (Reverse[T, C]) Compare(a, b T) int {
	var c C
	return c.Compare(b, a)
}

func compare[T any, C Comparator[T]](a, b T) int {
	var c C
	return c.Compare(a, b)
}
