package array

import "slices"

// Equal reports whether a and other hold the same elements in the same
// order, compared with C. An array equals itself, and two empty arrays are
// equal.
func (a *Fixed[T, C]) Equal(other *Fixed[T, C]) bool {
	if a == other {
		return true
	}
	n := a.Count()
	if n != other.Count() {
		return false
	}
	if n == 0 {
		return true
	}
	for i := range n {
		if compare[T, C](a.elems[i], other.elems[i]) != 0 {
			return false
		}
	}
	return true
}

// Contains reports whether any element compares equal to v.
func (a *Fixed[T, C]) Contains(v T) bool { return a.IndexOf(v) != NotFound }

// IndexOf returns the index of the first element equal to v, or NotFound.
func (a *Fixed[T, C]) IndexOf(v T) int { return a.scan(v, 0) }

// IndexOfFrom is IndexOf starting at, and including, index start.
func (a *Fixed[T, C]) IndexOfFrom(v T, start int) (int, error) {
	if err := a.requireIndex("array.IndexOfFrom", start); err != nil {
		return NotFound, err
	}
	return a.scan(v, start), nil
}

// PositionOf returns an iterator at the first element equal to v, or at
// ForwardEnd when there is none.
func (a *Fixed[T, C]) PositionOf(v T) Iterator[T, C] {
	return a.positionAt(a.scan(v, 0))
}

// PositionOfFrom is PositionOf starting at, and including, the position of
// start. start must be a real position of this array.
func (a *Fixed[T, C]) PositionOfFrom(v T, start Cursor[T, C]) (Iterator[T, C], error) {
	i, err := a.resolve("array.PositionOfFrom", start)
	if err != nil {
		return Iterator[T, C]{}, err
	}
	return a.positionAt(a.scan(v, i)), nil
}

func (a *Fixed[T, C]) positionAt(i int) Iterator[T, C] {
	if i == NotFound {
		return a.iterator(ForwardEnd)
	}
	return a.iterator(Real(i))
}

func (a *Fixed[T, C]) scan(v T, start int) int {
	elems := a.view()
	for i := start; i < len(elems); i++ {
		if compare[T, C](elems[i], v) == 0 {
			return i
		}
	}
	return NotFound
}

// Sort orders the elements ascending by C. C must define an ordering;
// Equality does not.
func (a *Fixed[T, C]) Sort() {
	slices.SortStableFunc(a.view(), compare[T, C])
}

// IsSorted reports whether the elements are ascending by C.
func (a *Fixed[T, C]) IsSorted() bool {
	return slices.IsSortedFunc(a.view(), compare[T, C])
}

// BinarySearch looks for v in an array sorted by C. It returns the index where
// v is or would be inserted, and whether it was found.
func (a *Fixed[T, C]) BinarySearch(v T) (int, bool) {
	return slices.BinarySearchFunc(a.view(), v, compare[T, C])
}
