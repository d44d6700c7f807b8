package align

import (
	"testing"
	"unsafe"
)

func TestIsPowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8, 64, 4096} {
		if !IsPowerOfTwo(n) {
			t.Fatalf("IsPowerOfTwo(%d)=false want true", n)
		}
	}
	for _, n := range []int{0, -8, 3, 12, 4095} {
		if IsPowerOfTwo(n) {
			t.Fatalf("IsPowerOfTwo(%d)=true want false", n)
		}
	}
}

func TestUp(t *testing.T) {
	cases := []struct{ n, a, want int }{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 16, 16},
		{17, 16, 32},
		{5, 1, 5},
	}
	for _, c := range cases {
		if got := Up(c.n, c.a); got != c.want {
			t.Fatalf("Up(%d,%d)=%d want %d", c.n, c.a, got, c.want)
		}
	}
}

func TestOffset(t *testing.T) {
	b := make([]byte, 128)
	for _, a := range []int{1, 2, 4, 8, 16, 32} {
		off := Offset(b, a)
		if off < 0 || off >= a {
			t.Fatalf("Offset(_, %d)=%d out of range", a, off)
		}
		if (Addr(b)+uintptr(off))%uintptr(a) != 0 {
			t.Fatalf("Offset(_, %d)=%d does not align", a, off)
		}
	}
	if Offset(nil, 8) != 0 {
		t.Fatalf("Offset of empty slice should be 0")
	}
}

func TestPointer(t *testing.T) {
	if Pointer != int(unsafe.Sizeof(uintptr(0))) {
		t.Fatalf("Pointer=%d", Pointer)
	}
	if !IsPowerOfTwo(Pointer) {
		t.Fatalf("pointer size %d is not a power of two", Pointer)
	}
}
