package array

import (
	"math"

	"github.com/joshuapare/poolkit/internal/contract"
)

// Cursor is implemented by ConstIterator and Iterator. Operations that take
// positions accept either.
type Cursor[T any, C Comparator[T]] interface {
	Position() Position
	owner() *Fixed[T, C]
}

// ConstIterator is a read-only bidirectional position in one array. It is
// bound to that array for its whole life. Stepping past the last element
// lands on ForwardEnd, stepping before the first on BackwardEnd.
//
// Iterators hold a position, not a pointer, so they stay usable while the
// array lives. Close empties the array, so real positions become invalid.
type ConstIterator[T any, C Comparator[T]] struct {
	arr *Fixed[T, C]
	pos Position
}

// Iterator is a ConstIterator that can write the element it points at.
type Iterator[T any, C Comparator[T]] struct {
	ConstIterator[T, C]
}

// Position returns the current position.
func (it ConstIterator[T, C]) Position() Position { return it.pos }

func (it ConstIterator[T, C]) owner() *Fixed[T, C] { return it.arr }

// Valid reports whether the iterator is bound to a live array and points at
// one of its elements or an end position.
func (it ConstIterator[T, C]) Valid() bool {
	if it.arr == nil {
		return false
	}
	switch it.pos.kind {
	case posForwardEnd, posBackwardEnd:
		return true
	case posReal:
		return it.pos.index < it.arr.Count()
	}
	return false
}

// IsEnd reports whether the iterator is at either end position.
func (it ConstIterator[T, C]) IsEnd() bool { return it.pos.IsEnd() }

// IsEndDir reports whether the iterator is at the end position of d.
func (it ConstIterator[T, C]) IsEndDir(d Direction) bool { return it.pos == End(d) }

// Index returns the element index, or false at an end or invalid position.
func (it ConstIterator[T, C]) Index() (int, bool) {
	if !it.Valid() {
		return 0, false
	}
	return it.pos.Index()
}

// Value returns the element at the iterator.
func (it ConstIterator[T, C]) Value() (T, error) {
	i, err := it.element("array.Iterator.Value")
	if err != nil {
		var zero T
		return zero, err
	}
	return it.arr.elems[i], nil
}

// Equal reports whether both iterators are at the same position. Comparing
// an invalid iterator, or iterators of different arrays, is a violation.
func (it ConstIterator[T, C]) Equal(other Cursor[T, C]) (bool, error) {
	const op = "array.Iterator.Equal"
	if it.arr == nil || other == nil || other.owner() == nil {
		return false, it.checker().Fail(op, ErrInvalidIterator, "unbound iterator")
	}
	if other.owner() != it.arr {
		return false, it.checker().Fail(op, ErrForeignIterator, "")
	}
	if o := (ConstIterator[T, C]{arr: it.arr, pos: other.Position()}); !it.Valid() || !o.Valid() {
		return false, it.checker().Fail(op, ErrInvalidIterator, "position=%s other=%s", it.pos, o.pos)
	}
	return it.pos == other.Position(), nil
}

// Next steps one element forward. From BackwardEnd it lands on the first
// element (ForwardEnd for an empty array); from the last element on
// ForwardEnd.
func (it *ConstIterator[T, C]) Next() error { return it.MoveForward(1) }

// Prev steps one element backward. From ForwardEnd it lands on the last
// element (BackwardEnd for an empty array); from the first element on
// BackwardEnd.
func (it *ConstIterator[T, C]) Prev() error { return it.MoveBackward(1) }

// MoveForward steps n elements forward, stopping at ForwardEnd. A negative n
// moves backward and n == 0 leaves the iterator where it is.
func (it *ConstIterator[T, C]) MoveForward(n int) error {
	const op = "array.Iterator.MoveForward"
	if n < 0 {
		return it.moveBackward(op, negate(n))
	}
	return it.moveForward(op, n)
}

// MoveBackward steps n elements backward, stopping at BackwardEnd. A negative
// n moves forward and n == 0 leaves the iterator where it is.
func (it *ConstIterator[T, C]) MoveBackward(n int) error {
	const op = "array.Iterator.MoveBackward"
	if n < 0 {
		return it.moveForward(op, negate(n))
	}
	return it.moveBackward(op, n)
}

// negate returns -n for n < 0. math.MinInt maps to math.MaxInt, which clamps
// to the end position like any step longer than the array.
func negate(n int) int {
	if n == math.MinInt {
		return math.MaxInt
	}
	return -n
}

func (it *ConstIterator[T, C]) moveForward(op string, n int) error {
	if !it.Valid() {
		return it.checker().Fail(op, ErrInvalidIterator, "position=%s", it.pos)
	}
	if n == 0 {
		return nil
	}
	count := it.arr.Count()
	switch it.pos.kind {
	case posForwardEnd:
		return it.checker().Fail(op, ErrStepPastEnd, "already at %s", it.pos)
	case posBackwardEnd:
		// the first step lands on element 0
		if n > count {
			it.pos = ForwardEnd
		} else {
			it.pos = Real(n - 1)
		}
	default:
		if n > count-1-it.pos.index {
			it.pos = ForwardEnd
		} else {
			it.pos = Real(it.pos.index + n)
		}
	}
	return nil
}

func (it *ConstIterator[T, C]) moveBackward(op string, n int) error {
	if !it.Valid() {
		return it.checker().Fail(op, ErrInvalidIterator, "position=%s", it.pos)
	}
	if n == 0 {
		return nil
	}
	count := it.arr.Count()
	switch it.pos.kind {
	case posBackwardEnd:
		return it.checker().Fail(op, ErrStepPastEnd, "already at %s", it.pos)
	case posForwardEnd:
		// the first step lands on the last element
		if n > count {
			it.pos = BackwardEnd
		} else {
			it.pos = Real(count - n)
		}
	default:
		if n > it.pos.index {
			it.pos = BackwardEnd
		} else {
			it.pos = Real(it.pos.index - n)
		}
	}
	return nil
}

// element returns the index of the element under the iterator.
func (it ConstIterator[T, C]) element(op string) (int, error) {
	if !it.Valid() {
		return 0, it.checker().Fail(op, ErrInvalidIterator, "position=%s", it.pos)
	}
	i, ok := it.pos.Index()
	if !ok {
		return 0, it.checker().Fail(op, ErrEndIterator, "position=%s", it.pos)
	}
	return i, nil
}

func (it ConstIterator[T, C]) checker() contract.Checker {
	if it.arr == nil {
		return contract.Checker{Mode: contract.ModeFromEnv()}
	}
	return it.arr.check
}

// Set stores v at the iterator.
func (it Iterator[T, C]) Set(v T) error {
	i, err := it.element("array.Iterator.Set")
	if err != nil {
		return err
	}
	it.arr.elems[i] = v
	return nil
}

// Pointer returns a pointer to the element at the iterator. The pointer is
// valid until the array is closed.
func (it Iterator[T, C]) Pointer() (*T, error) {
	i, err := it.element("array.Iterator.Pointer")
	if err != nil {
		return nil, err
	}
	return &it.arr.elems[i], nil
}

// Const returns the read-only view of the iterator.
func (it Iterator[T, C]) Const() ConstIterator[T, C] { return it.ConstIterator }

// Compile-time interface checks
var (
	_ Cursor[int, Natural[int]] = ConstIterator[int, Natural[int]]{}
	_ Cursor[int, Natural[int]] = Iterator[int, Natural[int]]{}
)
