package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two non-negative sizes, returning ok = false when
// either operand is negative or the product would overflow int.
// Pools use it for blocksCount * blockSize and count * sizeof(T).
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// CheckSpan validates that count items of itemSize bytes fit in a buffer of
// bufLen bytes starting at offset. It returns the end offset.
//
//	end, err := buf.CheckSpan(len(data), off, int(freeCount), 4)
//	if err != nil {
//	    return fmt.Errorf("snapshot: free order: %w", err)
//	}
func CheckSpan(bufLen, offset, count, itemSize int) (int, error) {
	if offset < 0 {
		return 0, fmt.Errorf("negative offset: %d", offset)
	}
	if count < 0 {
		return 0, fmt.Errorf("negative count: %d", count)
	}
	if itemSize < 0 {
		return 0, fmt.Errorf("negative item size: %d", itemSize)
	}

	total, ok := MulOverflowSafe(count, itemSize)
	if !ok {
		return 0, fmt.Errorf("overflow: count=%d * itemSize=%d", count, itemSize)
	}

	end, ok := AddOverflowSafe(offset, total)
	if !ok {
		return 0, fmt.Errorf("overflow: offset=%d + size=%d", offset, total)
	}

	if end > bufLen {
		return 0, fmt.Errorf("bounds: end=%d > len=%d", end, bufLen)
	}
	return end, nil
}

// Slice returns the n bytes of b starting at off, or false when that span
// does not fit in b.
func Slice(b []byte, off, n int) ([]byte, bool) {
	end, err := CheckSpan(len(b), off, n, 1)
	if err != nil {
		return nil, false
	}
	return b[off:end:end], true
}

// Has reports whether b holds n bytes at off.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}
