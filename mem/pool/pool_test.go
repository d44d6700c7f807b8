package pool

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/joshuapare/poolkit/internal/align"
	"github.com/joshuapare/poolkit/internal/contract"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// newTestPool creates a self-allocated pool and closes it with the test.
func newTestPool(t testing.TB, size, blockSize, alignment int, opts ...Option) *Pool {
	t.Helper()
	p, err := New(size, blockSize, alignment, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, p.Close()) })
	return p
}

// Test_Pool_FourBlockScenario walks the 32-byte / 8-byte-block pool end to end.
func Test_Pool_FourBlockScenario(t *testing.T) {
	p := newTestPool(t, 32, 8, 8)
	require.Equal(t, 4, p.BlocksCount())

	base := align.Addr(p.Bytes())
	require.Zero(t, base%8, "region must start on the alignment boundary")

	var blocks [][]byte
	for i := range 4 {
		b := p.Allocate()
		require.NotNil(t, b, "allocation %d", i)
		require.Len(t, b, 8)
		require.Equal(t, 8, cap(b), "blocks are capacity-limited")
		require.Equal(t, base+uintptr(i*8), align.Addr(b))
		blocks = append(blocks, b)
	}
	require.Nil(t, p.Allocate(), "fifth allocation must report exhaustion")

	require.NoError(t, p.Deallocate(blocks[1]))
	again := p.Allocate()
	require.NotNil(t, again)
	require.Equal(t, align.Addr(blocks[1]), align.Addr(again))
}

func Test_Pool_ExhaustionAtN(t *testing.T) {
	for _, n := range []int{1, 3, 16, 100} {
		p := newTestPool(t, n*24, 24, 8)
		for i := range n {
			require.NotNil(t, p.Allocate(), "n=%d allocation %d", n, i)
		}
		require.Nil(t, p.Allocate(), "n=%d", n)
		require.Zero(t, p.FreeCount())
	}
}

func Test_Pool_RemainderBytesUnusable(t *testing.T) {
	p := newTestPool(t, 30, 8, 8)
	assert.Equal(t, 3, p.BlocksCount())
	assert.Equal(t, 24, p.PoolSize())
	assert.Equal(t, 24+3*linkSize, p.TotalSize())
	assert.Equal(t, 6, p.Stats().LostBytes)
}

func Test_Pool_LIFOReuse(t *testing.T) {
	p := newTestPool(t, 64, 8, 8)
	a, _ := p.AllocateIndex()
	b, _ := p.AllocateIndex()
	c, _ := p.AllocateIndex()
	require.Equal(t, []int{0, 1, 2}, []int{a, b, c})

	require.NoError(t, p.DeallocateIndex(a))
	require.NoError(t, p.DeallocateIndex(c))

	got, ok := p.AllocateIndex()
	require.True(t, ok)
	require.Equal(t, c, got, "most recently freed first")
	got, _ = p.AllocateIndex()
	require.Equal(t, a, got)
	got, _ = p.AllocateIndex()
	require.Equal(t, 3, got, "then untouched blocks in order")
}

func Test_Pool_ByteAccounting(t *testing.T) {
	p := newTestPool(t, 160, 16, 16)
	var held []int
	check := func() {
		t.Helper()
		require.Equal(t, 16*len(held), p.AllocatedBytes())
		require.Equal(t, p.BlocksCount()-len(held), p.FreeCount())
	}
	for range 7 {
		i, ok := p.AllocateIndex()
		require.True(t, ok)
		held = append(held, i)
		check()
	}
	for _, i := range held[:3] {
		require.NoError(t, p.DeallocateIndex(i))
	}
	held = held[3:]
	check()

	p.Clear()
	held = nil
	check()
}

func Test_Pool_ClearResetsExhaustion(t *testing.T) {
	p := newTestPool(t, 40, 8, 8)
	for p.Allocate() != nil {
	}
	first := p.Block(0)
	copy(first, "stale!!!")

	p.Clear()
	for i := range 5 {
		require.NotNil(t, p.Allocate(), "allocation %d after Clear", i)
	}
	require.Nil(t, p.Allocate())
	require.Equal(t, "stale!!!", string(p.Block(0)), "Clear keeps contents")
}

func Test_Pool_DeallocateViolations(t *testing.T) {
	p := newTestPool(t, 32, 8, 8)
	b := p.Allocate()

	err := p.Deallocate(b[1:])
	require.ErrorIs(t, err, ErrBadBlock, "misaligned block")

	err = p.Deallocate(make([]byte, 8))
	require.ErrorIs(t, err, ErrBadBlock, "foreign block")

	err = p.Deallocate(nil)
	require.ErrorIs(t, err, ErrBadBlock)

	require.NoError(t, p.Deallocate(b))
	err = p.Deallocate(b)
	require.ErrorIs(t, err, ErrDoubleFree)

	err = p.DeallocateIndex(4)
	require.ErrorIs(t, err, ErrBadBlock)

	var v *Violation
	require.ErrorAs(t, err, &v)
	require.Equal(t, "pool.DeallocateIndex", v.Op)
	require.Equal(t, contract.Error, v.Severity)
}

func Test_Pool_ConstructorViolations(t *testing.T) {
	cases := []struct {
		name string
		make func() (*Pool, error)
		want error
	}{
		{"zero size", func() (*Pool, error) { return New(0, 8, 8) }, ErrZeroSize},
		{"zero block", func() (*Pool, error) { return New(32, 0, 8) }, ErrZeroBlockSize},
		{"bad alignment", func() (*Pool, error) { return New(32, 8, 12) }, ErrBadAlignment},
		{"block larger than pool", func() (*Pool, error) { return New(4, 8, 8) }, ErrTooSmall},
		{"nil buffer", func() (*Pool, error) { return NewWithBuffer(nil, 8) }, ErrNilBuffer},
		{"empty buffer", func() (*Pool, error) { return NewWithBuffer([]byte{}, 8) }, ErrZeroSize},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := tc.make()
			require.Nil(t, p)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func Test_Pool_PanicPolicy(t *testing.T) {
	require.Panics(t, func() {
		_, _ = New(0, 8, 8, WithPolicy(PolicyPanic))
	})

	p := newTestPool(t, 32, 8, 8, WithPolicy(PolicyPanic))
	require.Panics(t, func() { _ = p.DeallocateIndex(0) }, "double free panics")
}

func Test_Pool_PolicyFromEnv(t *testing.T) {
	t.Setenv(contract.EnvMode, "panic")
	require.Panics(t, func() { _, _ = New(32, 0, 8) })

	_, err := New(32, 0, 8, WithPolicy(PolicyReturn))
	require.ErrorIs(t, err, ErrZeroBlockSize, "explicit policy wins over env")
}

func Test_Pool_ExternalBufferAlignmentLoss(t *testing.T) {
	backing := make([]byte, 64)
	shifted := backing[1:]
	adj := align.Offset(shifted, 8)
	require.NotZero(t, adj)

	p, err := NewWithBufferAligned(shifted, 8, 8)
	require.NoError(t, err)
	defer p.Close()

	require.False(t, p.Owned())
	require.Zero(t, align.Addr(p.Bytes())%8)
	require.Equal(t, (len(shifted)-adj)/8, p.BlocksCount())
	require.Equal(t, len(shifted)-p.PoolSize(), p.Stats().LostBytes)

	b := p.Allocate()
	copy(b, "external")
	require.NoError(t, p.Close())
	require.Equal(t, "external", string(shifted[adj:adj+8]), "Close leaves caller memory alone")
}

func Test_Pool_DefaultBufferAlignment(t *testing.T) {
	p, err := NewWithBuffer(make([]byte, 64), 16)
	require.NoError(t, err)
	require.Equal(t, align.Pointer, p.Alignment())
	require.Equal(t, 4, p.BlocksCount())
}

func Test_Pool_MmapSource(t *testing.T) {
	p := newTestPool(t, 4096, 64, 64, WithSource(SourceMmap))
	require.True(t, p.Owned())
	require.Equal(t, SourceMmap, p.Stats().Source)
	require.Equal(t, 64, p.BlocksCount())

	b := p.Allocate()
	require.NotNil(t, b)
	copy(b, "mapped")
	require.Equal(t, "mapped", string(p.Block(0)[:6]))
}

func Test_Pool_FreeOrderRoundTrip(t *testing.T) {
	p := newTestPool(t, 48, 8, 8)
	for range 6 {
		p.Allocate()
	}
	require.NoError(t, p.DeallocateIndex(4))
	require.NoError(t, p.DeallocateIndex(1))
	require.Equal(t, []int{1, 4}, p.FreeOrder())

	q := newTestPool(t, 48, 8, 8)
	require.NoError(t, q.SetFreeOrder(p.FreeOrder()))
	require.Equal(t, p.FreeOrder(), q.FreeOrder())
	require.Equal(t, p.AllocatedBytes(), q.AllocatedBytes())
	require.True(t, q.IsAllocated(0))
	require.False(t, q.IsAllocated(4))

	require.ErrorIs(t, q.SetFreeOrder([]int{1, 1}), ErrBadFreeOrder)
	require.ErrorIs(t, q.SetFreeOrder([]int{6}), ErrBadFreeOrder)
}

func Test_Pool_Closed(t *testing.T) {
	p, err := New(32, 8, 8)
	require.NoError(t, err)
	b := p.Allocate()
	require.NoError(t, p.Close())
	require.NoError(t, p.Close(), "idempotent")

	require.True(t, p.Closed())
	require.Nil(t, p.Allocate())
	require.ErrorIs(t, p.Deallocate(b), ErrClosed)
	require.ErrorIs(t, p.Reallocate(64), ErrClosed)
	require.Zero(t, p.BlocksCount())
	require.Zero(t, p.AllocatedBytes())
}

func Test_Pool_LogsDebug(t *testing.T) {
	var out bytes.Buffer
	l := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := newTestPool(t, 32, 8, 8, WithLogger(l))
	p.Clear()

	s := out.String()
	require.Contains(t, s, "pool created")
	require.Contains(t, s, "blocks=4")
	require.Contains(t, s, "pool cleared")
}

func Test_Pool_ErrorsAreDistinct(t *testing.T) {
	all := []error{
		ErrZeroSize, ErrZeroBlockSize, ErrNilBuffer, ErrBadAlignment, ErrTooSmall,
		ErrSizeOverflow, ErrBadBlock, ErrDoubleFree, ErrBlockSizeMismatch,
		ErrDestinationTooSmall, ErrClosed, ErrBadFreeOrder,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Fatalf("%v matches %v", a, b)
			}
		}
	}
}

func Test_Source_Parse(t *testing.T) {
	s, err := ParseSource("MMAP")
	require.NoError(t, err)
	require.Equal(t, SourceMmap, s)
	require.Equal(t, "mmap", s.String())

	s, err = ParseSource("")
	require.NoError(t, err)
	require.Equal(t, SourceHeap, s)

	_, err = ParseSource("disk")
	require.Error(t, err)
}
