package pool

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/joshuapare/poolkit/internal/align"
	"github.com/joshuapare/poolkit/internal/buf"
	"github.com/joshuapare/poolkit/internal/contract"
	"github.com/joshuapare/poolkit/internal/logger"
	"github.com/joshuapare/poolkit/internal/mmap"
)

// linkSize is the bookkeeping cost of one free-list slot.
const linkSize = strconv.IntSize / 8

// Pool is a fixed-block allocator over one contiguous, aligned region.
//
// Blocks are handed out as capacity-limited sub-slices of the region and
// tracked by an index-based LIFO free list. A Pool is not safe for concurrent
// use.
type Pool struct {
	region  []byte // aligned usable part of the buffer, len == blockSize*blocksCount
	free    *freeList
	release func() error // unmaps owned mapped memory

	blockSize int
	alignment int
	allocated int
	lost      int
	owned     bool
	closed    bool

	source Source
	log    *slog.Logger
	check  contract.Checker
}

// New creates a pool that allocates size bytes for itself, divided into
// blocks of blockSize bytes aligned to alignment. Remainder bytes that do not
// fill a whole block are unusable.
func New(size, blockSize, alignment int, opts ...Option) (*Pool, error) {
	const op = "pool.New"
	p := newPool(opts)
	if err := p.validate(op, size, blockSize, alignment); err != nil {
		return nil, err
	}

	data, release, err := p.obtain(op, size, alignment)
	if err != nil {
		return nil, err
	}
	if err := p.adopt(op, data, size, blockSize, alignment, true, release); err != nil {
		if release != nil {
			_ = release()
		}
		return nil, err
	}
	return p, nil
}

// NewWithBuffer creates a pool over a caller buffer using pointer-size
// alignment. The pool never releases the buffer.
func NewWithBuffer(b []byte, blockSize int, opts ...Option) (*Pool, error) {
	return newWithBuffer("pool.NewWithBuffer", b, blockSize, align.Pointer, opts)
}

// NewWithBufferAligned creates a pool over a caller buffer with an explicit
// alignment. If b does not start on an alignment boundary the region starts at
// the next one and the usable size shrinks by the skipped bytes.
func NewWithBufferAligned(b []byte, blockSize, alignment int, opts ...Option) (*Pool, error) {
	return newWithBuffer("pool.NewWithBufferAligned", b, blockSize, alignment, opts)
}

func newWithBuffer(op string, b []byte, blockSize, alignment int, opts []Option) (*Pool, error) {
	p := newPool(opts)
	if b == nil {
		return nil, p.check.Fail(op, ErrNilBuffer, "")
	}
	if err := p.validate(op, len(b), blockSize, alignment); err != nil {
		return nil, err
	}
	if err := p.adopt(op, b, len(b), blockSize, alignment, false, nil); err != nil {
		return nil, err
	}
	return p, nil
}

func newPool(opts []Option) *Pool {
	o := resolveOptions(opts)
	l := o.logger
	if l == nil {
		l = logger.Default()
	}
	return &Pool{
		source: o.source,
		log:    l,
		check:  contract.Checker{Mode: o.policy, Logger: l},
	}
}

func (p *Pool) validate(op string, size, blockSize, alignment int) error {
	if size <= 0 {
		return p.check.Fail(op, ErrZeroSize, "size=%d", size)
	}
	if blockSize <= 0 {
		return p.check.Fail(op, ErrZeroBlockSize, "blockSize=%d", blockSize)
	}
	if !align.IsPowerOfTwo(alignment) {
		return p.check.Fail(op, ErrBadAlignment, "alignment=%d", alignment)
	}
	return nil
}

// obtain gets size bytes plus alignment slack from the configured source.
func (p *Pool) obtain(op string, size, alignment int) ([]byte, func() error, error) {
	total, ok := buf.AddOverflowSafe(size, alignment-1)
	if !ok {
		return nil, nil, p.check.Fail(op, ErrSizeOverflow, "size=%d alignment=%d", size, alignment)
	}
	if p.source == SourceMmap {
		data, release, err := mmap.Anonymous(total)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		return data, release, nil
	}
	return make([]byte, total), nil, nil
}

// layout carves the aligned block region out of data, using at most size
// bytes past the alignment boundary.
func layout(data []byte, size, blockSize, alignment int) (region []byte, blocks, lost int, ok bool) {
	adj := align.Offset(data, alignment)
	if adj >= len(data) {
		return nil, 0, 0, false
	}
	usable := min(len(data)-adj, size)
	blocks = usable / blockSize
	if blocks == 0 {
		return nil, 0, 0, false
	}
	poolSize := blocks * blockSize
	lost = adj + usable - poolSize
	if size < len(data) {
		// self-allocated slack is not a loss
		lost = usable - poolSize
	}
	return data[adj : adj+poolSize : adj+poolSize], blocks, lost, true
}

func (p *Pool) adopt(op string, data []byte, size, blockSize, alignment int, owned bool, release func() error) error {
	region, blocks, lost, ok := layout(data, size, blockSize, alignment)
	if !ok {
		return p.check.Fail(op, ErrTooSmall, "size=%d blockSize=%d alignment=%d", size, blockSize, alignment)
	}
	p.region = region
	p.free = newFreeList(blocks)
	p.release = release
	p.blockSize = blockSize
	p.alignment = alignment
	p.lost = lost
	p.owned = owned
	p.log.Debug("pool created",
		"op", op,
		"blocks", blocks,
		"block_size", blockSize,
		"alignment", alignment,
		"lost_bytes", lost,
		"owned", owned,
		"source", p.source)
	return nil
}

// Allocate pops the most recently freed block, or the lowest-index untouched
// block, and returns it. It returns nil when the pool is exhausted.
func (p *Pool) Allocate() []byte {
	i, ok := p.AllocateIndex()
	if !ok {
		return nil
	}
	return p.Block(i)
}

// AllocateIndex is Allocate returning the block index.
func (p *Pool) AllocateIndex() (int, bool) {
	if p.closed {
		return 0, false
	}
	i, ok := p.free.pop()
	if !ok {
		return 0, false
	}
	p.allocated += p.blockSize
	return i, true
}

// Deallocate returns block to the pool. block must be a slice returned by
// Allocate (or Block) whose first byte is still the block's first byte.
func (p *Pool) Deallocate(block []byte) error {
	const op = "pool.Deallocate"
	i, err := p.indexOf(op, block)
	if err != nil {
		return err
	}
	return p.deallocate(op, i)
}

// DeallocateIndex returns block i to the pool.
func (p *Pool) DeallocateIndex(i int) error {
	const op = "pool.DeallocateIndex"
	if p.closed {
		return p.check.Fail(op, ErrClosed, "")
	}
	if i < 0 || i >= p.BlocksCount() {
		return p.check.Fail(op, ErrBadBlock, "index %d outside [0,%d)", i, p.BlocksCount())
	}
	return p.deallocate(op, i)
}

func (p *Pool) deallocate(op string, i int) error {
	if !p.free.push(i) {
		return p.check.Fail(op, ErrDoubleFree, "index %d", i)
	}
	p.allocated -= p.blockSize
	return nil
}

// IndexOf resolves a block slice to its index.
func (p *Pool) IndexOf(block []byte) (int, error) {
	return p.indexOf("pool.IndexOf", block)
}

func (p *Pool) indexOf(op string, block []byte) (int, error) {
	if p.closed {
		return 0, p.check.Fail(op, ErrClosed, "")
	}
	if len(block) == 0 {
		return 0, p.check.Fail(op, ErrBadBlock, "empty block")
	}
	addr, base := align.Addr(block), align.Addr(p.region)
	if addr < base || addr >= base+uintptr(len(p.region)) {
		return 0, p.check.Fail(op, ErrBadBlock, "address %#x outside pool", addr)
	}
	off := int(addr - base)
	if off%p.blockSize != 0 {
		return 0, p.check.Fail(op, ErrBadBlock, "offset %d not on a %d-byte block boundary", off, p.blockSize)
	}
	return off / p.blockSize, nil
}

// Block returns the bytes of block i, allocated or not.
// It panics if i is out of range, like a slice index.
func (p *Pool) Block(i int) []byte {
	off := i * p.blockSize
	end := off + p.blockSize
	return p.region[off:end:end]
}

// IsAllocated reports whether block i is currently handed out.
func (p *Pool) IsAllocated(i int) bool {
	if p.closed || i < 0 || i >= p.BlocksCount() {
		return false
	}
	return !p.free.isFree(i)
}

// Clear marks every block free. Block contents are left as they are.
func (p *Pool) Clear() {
	if p.closed {
		return
	}
	p.free.reset()
	p.allocated = 0
	p.log.Debug("pool cleared", "blocks", p.BlocksCount())
}

// FreeOrder returns the free block indices in the order Allocate would hand
// them out.
func (p *Pool) FreeOrder() []int {
	if p.closed {
		return nil
	}
	return p.free.order()
}

// SetFreeOrder makes exactly the listed blocks free, in pop order, and marks
// every other block allocated. Used to restore a saved pattern.
func (p *Pool) SetFreeOrder(order []int) error {
	const op = "pool.SetFreeOrder"
	if p.closed {
		return p.check.Fail(op, ErrClosed, "")
	}
	if !p.free.setOrder(order) {
		return p.check.Fail(op, ErrBadFreeOrder, "%d indices over %d blocks", len(order), p.BlocksCount())
	}
	p.allocated = p.blockSize * (p.BlocksCount() - len(order))
	return nil
}

// Close releases owned mapped memory and drops every reference. Caller
// buffers are never touched. Close is idempotent.
func (p *Pool) Close() error {
	if p.closed {
		return nil
	}
	var err error
	if p.owned && p.release != nil {
		err = p.release()
	}
	p.region, p.release = nil, nil
	p.free = newFreeList(0)
	p.allocated = 0
	p.closed = true
	return err
}

// Bytes returns the whole aligned block region.
func (p *Pool) Bytes() []byte { return p.region }

// BlockSize returns the size of one block in bytes.
func (p *Pool) BlockSize() int { return p.blockSize }

// Alignment returns the byte boundary the region starts on.
func (p *Pool) Alignment() int { return p.alignment }

// BlocksCount returns the number of blocks in the pool.
func (p *Pool) BlocksCount() int {
	if p.free == nil {
		return 0
	}
	return len(p.free.links)
}

// FreeCount returns the number of free blocks.
func (p *Pool) FreeCount() int {
	if p.free == nil {
		return 0
	}
	return p.free.free
}

// PoolSize returns the bytes available for blocks.
func (p *Pool) PoolSize() int { return len(p.region) }

// TotalSize returns PoolSize plus the free-list bookkeeping.
func (p *Pool) TotalSize() int { return p.PoolSize() + p.BlocksCount()*linkSize }

// AllocatedBytes returns blockSize times the number of allocated blocks.
func (p *Pool) AllocatedBytes() int { return p.allocated }

// Owned reports whether the pool allocated its buffer itself.
func (p *Pool) Owned() bool { return p.owned }

// Closed reports whether Close has been called.
func (p *Pool) Closed() bool { return p.closed }

// Stats returns a snapshot of the pool's accounting.
func (p *Pool) Stats() Stats {
	blocks, free := p.BlocksCount(), p.FreeCount()
	return Stats{
		BlockSize:       p.blockSize,
		Alignment:       p.alignment,
		BlocksCount:     blocks,
		FreeBlocks:      free,
		AllocatedBlocks: blocks - free,
		PoolSize:        p.PoolSize(),
		TotalSize:       p.TotalSize(),
		AllocatedBytes:  p.allocated,
		LostBytes:       p.lost,
		Owned:           p.owned,
		Source:          p.source,
	}
}

// Compile-time interface check
var _ Allocator = (*Pool)(nil)
