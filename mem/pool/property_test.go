package pool

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestPoolProperties checks the pool invariants over random operation sequences.
func TestPoolProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	// Property: exactly N allocations succeed on a fresh pool of N blocks
	properties.Property("exhaustion at N", prop.ForAll(
		func(blocks, blockSize int) bool {
			p, err := New(blocks*blockSize, blockSize, 8)
			if err != nil {
				return false
			}
			defer p.Close()
			for range blocks {
				if p.Allocate() == nil {
					return false
				}
			}
			return p.Allocate() == nil && p.FreeCount() == 0
		},
		gen.IntRange(1, 64),
		gen.IntRange(1, 48),
	))

	// Property: byte accounting holds after any alloc/free/clear sequence
	properties.Property("byte accounting", prop.ForAll(
		func(ops []int) bool {
			p, err := New(16*12, 12, 4)
			if err != nil {
				return false
			}
			defer p.Close()
			held := map[int]bool{}
			for _, op := range ops {
				switch {
				case op < 6:
					if i, ok := p.AllocateIndex(); ok {
						if held[i] {
							return false // handed out twice
						}
						held[i] = true
					} else if len(held) != p.BlocksCount() {
						return false
					}
				case op < 9:
					for i := range held {
						if p.DeallocateIndex(i) != nil {
							return false
						}
						delete(held, i)
						break
					}
				default:
					p.Clear()
					held = map[int]bool{}
				}
				if p.AllocatedBytes() != 12*len(held) || p.FreeCount() != p.BlocksCount()-len(held) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 9)),
	))

	// Property: Reallocate keeps the allocated set and adds exactly the new blocks
	properties.Property("reallocate preserves pattern", prop.ForAll(
		func(freed []int, extra int) bool {
			p, err := New(10*8, 8, 8)
			if err != nil {
				return false
			}
			defer p.Close()
			for p.Allocate() != nil {
			}
			for _, i := range freed {
				_ = p.DeallocateIndex(i) // repeats are double frees and are rejected
			}
			before := make([]bool, p.BlocksCount())
			for i := range before {
				before[i] = p.IsAllocated(i)
			}
			free := p.FreeCount()

			if err := p.Reallocate((10 + extra) * 8); err != nil {
				return false
			}
			for i, a := range before {
				if p.IsAllocated(i) != a {
					return false
				}
			}
			n := 0
			for p.Allocate() != nil {
				n++
			}
			return n == free+extra
		},
		gen.SliceOf(gen.IntRange(0, 9)),
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t)
}
