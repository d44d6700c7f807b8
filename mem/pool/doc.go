// Package pool provides a fixed-block memory pool with an index-based free list.
//
// # Overview
//
// A Pool owns (or borrows) one contiguous byte region, aligns its start to a
// power-of-two boundary, and divides it into equally sized blocks. Free blocks
// are chained in a LIFO list stored in a slice parallel to the region, so
// allocation and deallocation are O(1) and the most recently freed block is
// the next one handed out.
//
// # Construction
//
//   - New(size, blockSize, alignment): the pool allocates size bytes itself,
//     from the Go heap or, with WithSource(SourceMmap), from an anonymous
//     mapping that Close unmaps.
//   - NewWithBuffer(buf, blockSize): the pool borrows buf with pointer-size
//     alignment and never releases it.
//   - NewWithBufferAligned(buf, blockSize, alignment): same, explicit alignment.
//
// When a borrowed buffer does not start on the alignment boundary, the region
// starts at the next boundary and the skipped bytes are lost. This is silent;
// size borrowed buffers with alignment-1 bytes of slack.
//
// # Usage Example
//
//	p, err := pool.New(32, 8, 8)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	b := p.Allocate() // 8-byte block, nil once all 4 are in use
//	if b == nil {
//	    return errFull
//	}
//	copy(b, payload)
//
//	if err := p.Deallocate(b); err != nil {
//	    return err
//	}
//
// # Exhaustion
//
// Allocate returning nil is the normal saturation signal, not an error.
// Reallocate(newSize) grows the pool into a bigger buffer while keeping every
// block's bytes and allocated/free state by index. It moves the region, so
// slices obtained earlier must be re-fetched.
//
// # Contract Violations
//
// Bad sizes, foreign or misaligned blocks, double frees and mismatched CopyTo
// targets are precondition violations. By default they are returned as a
// *Violation wrapping one of the Err* sentinels; WithPolicy(PolicyPanic) or
// POOLKIT_CONTRACT=panic makes them panic at the call site instead.
//
// # Thread Safety
//
// Pool instances are not thread-safe. Callers must synchronize access
// externally.
package pool
