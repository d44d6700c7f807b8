package pool

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/poolkit/internal/align"
)

// fillPattern allocates every block, writes its index into it, then frees the
// listed indices in order.
func fillPattern(t *testing.T, p *Pool, freed ...int) {
	t.Helper()
	for {
		i, ok := p.AllocateIndex()
		if !ok {
			break
		}
		b := p.Block(i)
		for k := range b {
			b[k] = byte(i)
		}
	}
	for _, i := range freed {
		require.NoError(t, p.DeallocateIndex(i))
	}
}

func Test_CopyTo_PreservesPattern(t *testing.T) {
	src := newTestPool(t, 48, 8, 8)
	fillPattern(t, src, 1, 4)

	dst := newTestPool(t, 80, 8, 8)
	require.NoError(t, src.CopyTo(dst))

	require.Equal(t, src.AllocatedBytes(), dst.AllocatedBytes())
	require.True(t, bytes.Equal(src.Bytes(), dst.Bytes()[:src.PoolSize()]))
	for i := range src.BlocksCount() {
		require.Equal(t, src.IsAllocated(i), dst.IsAllocated(i), "block %d", i)
	}
	require.Equal(t, []int{4, 1, 6, 7, 8, 9}, dst.FreeOrder(), "source order first, extra blocks after")

	n := 0
	for dst.Allocate() != nil {
		n++
	}
	require.Equal(t, 6, n, "2 freed source blocks plus 4 extra destination blocks")
}

func Test_CopyTo_SameSize(t *testing.T) {
	src := newTestPool(t, 32, 8, 8)
	fillPattern(t, src)
	dst := newTestPool(t, 32, 8, 8)
	require.NoError(t, src.CopyTo(dst))
	require.Nil(t, dst.Allocate())
	require.Equal(t, byte(3), dst.Block(3)[0])
}

func Test_CopyTo_Violations(t *testing.T) {
	src := newTestPool(t, 64, 8, 8)

	small := newTestPool(t, 32, 8, 8)
	require.ErrorIs(t, src.CopyTo(small), ErrDestinationTooSmall)

	other := newTestPool(t, 128, 16, 8)
	require.ErrorIs(t, src.CopyTo(other), ErrBlockSizeMismatch)

	require.ErrorIs(t, src.CopyTo(nil), ErrClosed)
	require.NoError(t, src.CopyTo(src))
}

func Test_CopyTo_AlignmentMismatchWarns(t *testing.T) {
	var out bytes.Buffer
	l := slog.New(slog.NewTextHandler(&out, nil))
	src := newTestPool(t, 32, 8, 8, WithLogger(l))
	dst := newTestPool(t, 32, 8, 16)

	require.NoError(t, src.CopyTo(dst))
	require.Contains(t, out.String(), "alignment differs")
}

func Test_Reallocate_PreservesContentAndPattern(t *testing.T) {
	p := newTestPool(t, 32, 8, 8)
	fillPattern(t, p, 2)
	before := append([]byte(nil), p.Bytes()...)
	oldBase := align.Addr(p.Bytes())

	require.NoError(t, p.Reallocate(80))
	require.Equal(t, 10, p.BlocksCount())
	require.NotEqual(t, oldBase, align.Addr(p.Bytes()), "region moved")
	require.Zero(t, align.Addr(p.Bytes())%8)
	require.True(t, bytes.Equal(before, p.Bytes()[:len(before)]))

	require.True(t, p.IsAllocated(0))
	require.False(t, p.IsAllocated(2))
	require.Equal(t, 3*8, p.AllocatedBytes())

	added := 0
	for p.Allocate() != nil {
		added++
	}
	require.Equal(t, 1+(10-4), added, "freed block plus new blocks")
}

func Test_Reallocate_NotLargerIsNoop(t *testing.T) {
	var out bytes.Buffer
	l := slog.New(slog.NewTextHandler(&out, nil))
	p := newTestPool(t, 32, 8, 8, WithLogger(l))
	base := align.Addr(p.Bytes())

	require.NoError(t, p.Reallocate(32))
	require.NoError(t, p.Reallocate(8))
	require.Equal(t, base, align.Addr(p.Bytes()))
	require.Equal(t, 4, p.BlocksCount())
	require.Contains(t, out.String(), "not greater than pool size")
}

func Test_ReallocateInto_CallerBuffer(t *testing.T) {
	p := newTestPool(t, 24, 8, 8)
	fillPattern(t, p)

	target := make([]byte, 72)
	shifted := target[3:]
	require.NoError(t, p.ReallocateInto(shifted))
	require.False(t, p.Owned())

	adj := align.Offset(shifted, 8)
	require.Equal(t, (len(shifted)-adj)/8, p.BlocksCount())
	require.Equal(t, byte(1), shifted[adj+8], "block 1 copied into caller buffer")
	require.True(t, p.IsAllocated(2))
	require.NotNil(t, p.Allocate())
}

func Test_ReallocateInto_TooSmallAfterAlignment(t *testing.T) {
	p := newTestPool(t, 32, 8, 8)
	target := make([]byte, 48)
	shifted := target[1:34] // 33 bytes, only 3 whole aligned blocks
	err := p.ReallocateInto(shifted)
	require.ErrorIs(t, err, ErrTooSmall)
	require.Equal(t, 4, p.BlocksCount(), "pool unchanged")

	require.ErrorIs(t, p.ReallocateInto(nil), ErrNilBuffer)
}

func Test_Reallocate_MmapSourceReleasesOld(t *testing.T) {
	p := newTestPool(t, 4096, 128, 64, WithSource(SourceMmap))
	b := p.Allocate()
	copy(b, "survives")

	require.NoError(t, p.Reallocate(8192))
	require.True(t, p.Owned())
	require.Equal(t, 64, p.BlocksCount())
	require.Equal(t, "survives", string(p.Block(0)[:8]))
}
