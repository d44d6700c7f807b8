// Package array provides Fixed, a fixed-count container whose elements live
// in the blocks of a mem/pool Pool.
//
// # Overview
//
// A Fixed[T, C] owns one pool sized to exactly its element count, with one
// block per element, block size unsafe.Sizeof(T) and the alignment of T. The
// element count never changes after construction. C is a Comparator strategy
// chosen at compile time; Natural orders cmp.Ordered types and Equality only
// tells equal from not equal.
//
//	a, err := array.OrderedFrom([]int{0, 1, 2, 3, 4, 5})
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	mid, _ := a.Range(2, 4) // {2, 3, 4}
//	_ = a.Swap(0, 5)        // {5, 1, 2, 3, 4, 0}
//
// # Iteration
//
// Iterators are bidirectional and carry explicit end positions: ForwardEnd
// after the last element and BackwardEnd before the first. Next from
// BackwardEnd lands on the first element and Prev from ForwardEnd on the
// last. Stepping past an end position, or reading through one, is a
// violation. For plain loops use All, Backward or Values.
//
// # Copy Semantics
//
// Clone, Range and FromSlice copy elements into a new pool. Assign copies
// element values by position into an existing array without reallocating:
// with arrays of different length only the overlap is written.
//
// # Contract Violations
//
// Out-of-range indices, foreign or end iterators and empty construction are
// reported like the pool's violations: returned as errors by default, or
// panics under WithPolicy(pool.PolicyPanic) or POOLKIT_CONTRACT=panic.
//
// # Thread Safety
//
// Fixed instances and their iterators are not thread-safe.
package array
