// Package align provides power-of-two alignment helpers for pool regions.
package align

import (
	"unsafe"
)

// Pointer is the default block alignment: the size of a machine pointer.
// Used when a caller hands a pool a buffer without naming an alignment.
const Pointer = int(unsafe.Sizeof(uintptr(0)))

// IsPowerOfTwo reports whether n is a positive power of two.
//
// Example:
//
//	IsPowerOfTwo(1)  = true
//	IsPowerOfTwo(8)  = true
//	IsPowerOfTwo(12) = false
//	IsPowerOfTwo(0)  = false
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Up returns n aligned up to the next multiple of a. a must be a power of two.
//
// Example:
//
//	Up(1, 8)  = 8
//	Up(8, 8)  = 8
//	Up(9, 16) = 16
func Up(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}

// UpAddr is the uintptr version of Up, used on real addresses.
func UpAddr(addr uintptr, a int) uintptr {
	mask := uintptr(a - 1)
	return (addr + mask) &^ mask
}

// Addr returns the address of the first byte of b, or 0 for an empty slice.
func Addr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// Offset returns how many bytes must be skipped from the start of b so the
// remainder starts on an a-byte boundary.
func Offset(b []byte, a int) int {
	addr := Addr(b)
	return int(UpAddr(addr, a) - addr)
}
