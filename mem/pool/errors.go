package pool

import "errors"

var (
	// ErrZeroSize indicates a pool or reallocation size of zero or less.
	ErrZeroSize = errors.New("pool: size must be greater than zero")

	// ErrZeroBlockSize indicates a block size of zero or less.
	ErrZeroBlockSize = errors.New("pool: block size must be greater than zero")

	// ErrNilBuffer indicates a nil caller-supplied buffer.
	ErrNilBuffer = errors.New("pool: buffer is nil")

	// ErrBadAlignment indicates an alignment that is not a positive power of two.
	ErrBadAlignment = errors.New("pool: alignment must be a power of two")

	// ErrTooSmall indicates that no whole block fits after alignment adjustment,
	// or that a reallocation target holds fewer blocks than the pool already has.
	ErrTooSmall = errors.New("pool: buffer too small for a block")

	// ErrSizeOverflow indicates a size computation that overflows int.
	ErrSizeOverflow = errors.New("pool: size overflows int")

	// ErrBadBlock indicates a block that does not belong to this pool or does
	// not start on a block boundary.
	ErrBadBlock = errors.New("pool: bad block reference")

	// ErrDoubleFree indicates a deallocation of a block that is already free.
	ErrDoubleFree = errors.New("pool: block is not allocated")

	// ErrBlockSizeMismatch indicates CopyTo between pools with different block sizes.
	ErrBlockSizeMismatch = errors.New("pool: block sizes differ")

	// ErrDestinationTooSmall indicates a CopyTo destination with fewer blocks or bytes.
	ErrDestinationTooSmall = errors.New("pool: destination smaller than source")

	// ErrClosed indicates use of a pool after Close.
	ErrClosed = errors.New("pool: closed")

	// ErrBadFreeOrder indicates a free order with out-of-range or repeated indices.
	ErrBadFreeOrder = errors.New("pool: invalid free order")
)
