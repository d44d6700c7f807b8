package array

import "errors"

var (
	// ErrZeroLength indicates a construction with no elements.
	ErrZeroLength = errors.New("array: length must be greater than zero")

	// ErrNilSource indicates a nil source slice.
	ErrNilSource = errors.New("array: source slice is nil")

	// ErrTooLarge indicates that length * element size overflows int.
	ErrTooLarge = errors.New("array: length overflows addressable size")

	// ErrIndexOutOfRange indicates an index outside [0, Count()).
	ErrIndexOutOfRange = errors.New("array: index out of range")

	// ErrEmpty indicates an operation that needs at least one element.
	ErrEmpty = errors.New("array: array is empty")

	// ErrBadRange indicates a range whose first position comes after its last.
	ErrBadRange = errors.New("array: range first after last")

	// ErrInvalidIterator indicates an unbound iterator or a stale position.
	ErrInvalidIterator = errors.New("array: invalid iterator")

	// ErrForeignIterator indicates an iterator bound to a different array.
	ErrForeignIterator = errors.New("array: iterator belongs to another array")

	// ErrEndIterator indicates an end position where an element is required.
	ErrEndIterator = errors.New("array: iterator at an end position")

	// ErrStepPastEnd indicates a step beyond the end position of its direction.
	ErrStepPastEnd = errors.New("array: step past end position")
)
