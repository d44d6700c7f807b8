package pool

// CopyTo copies this pool's blocks into dst and makes dst's free list match:
// the same indices are allocated, free blocks pop in the same order, and any
// blocks dst has beyond this pool's count are chained after them.
//
// dst must have the same block size and at least as many blocks. Differing
// alignments only log a warning.
func (p *Pool) CopyTo(dst *Pool) error {
	const op = "pool.CopyTo"
	if p.closed {
		return p.check.Fail(op, ErrClosed, "source")
	}
	if dst == nil || dst.closed {
		return p.check.Fail(op, ErrClosed, "destination")
	}
	if dst == p {
		return nil
	}
	if dst.blockSize != p.blockSize {
		return p.check.Fail(op, ErrBlockSizeMismatch, "source=%d destination=%d", p.blockSize, dst.blockSize)
	}
	n, m := p.BlocksCount(), dst.BlocksCount()
	if m < n || dst.PoolSize() < p.PoolSize() {
		return p.check.Fail(op, ErrDestinationTooSmall, "source=%d blocks destination=%d blocks", n, m)
	}
	if dst.alignment != p.alignment {
		p.check.Warn(op, "alignment differs: source=%d destination=%d", p.alignment, dst.alignment)
	}

	copy(dst.region, p.region)

	copy(dst.free.links, p.free.links)
	dst.free.head = p.free.head
	dst.free.free = p.free.free
	dst.free.appendRange(n, m)
	dst.allocated = p.allocated

	p.log.Debug("pool copied", "blocks", n, "destination_blocks", m, "allocated_bytes", p.allocated)
	return nil
}

// Reallocate moves the pool into a new self-allocated buffer of newSize
// bytes. Block contents keep their offsets, every block keeps its
// allocated/free state, and the added blocks are chained after the existing
// free blocks. The previous buffer is released if the pool owned it.
//
// Slices previously returned by Allocate or Bytes still point at the old
// buffer and must be re-fetched. A newSize not greater than PoolSize is
// logged and ignored.
func (p *Pool) Reallocate(newSize int) error {
	const op = "pool.Reallocate"
	if p.closed {
		return p.check.Fail(op, ErrClosed, "")
	}
	if newSize <= p.PoolSize() {
		p.check.Warn(op, "new size %d not greater than pool size %d", newSize, p.PoolSize())
		return nil
	}
	data, release, err := p.obtain(op, newSize, p.alignment)
	if err != nil {
		return err
	}
	if err := p.move(op, data, newSize, true, release); err != nil {
		if release != nil {
			_ = release()
		}
		return err
	}
	return nil
}

// ReallocateInto is Reallocate into a caller buffer. The region starts at the
// first aligned address in b, and the pool no longer owns its memory
// afterwards. b must still hold at least BlocksCount blocks after alignment
// adjustment.
func (p *Pool) ReallocateInto(b []byte) error {
	const op = "pool.ReallocateInto"
	if p.closed {
		return p.check.Fail(op, ErrClosed, "")
	}
	if b == nil {
		return p.check.Fail(op, ErrNilBuffer, "")
	}
	if len(b) <= p.PoolSize() {
		p.check.Warn(op, "new size %d not greater than pool size %d", len(b), p.PoolSize())
		return nil
	}
	return p.move(op, b, len(b), false, nil)
}

// move copies blocks into data and rebuilds the free list by index.
func (p *Pool) move(op string, data []byte, size int, owned bool, release func() error) error {
	region, blocks, lost, ok := layout(data, size, p.blockSize, p.alignment)
	if !ok || blocks < p.BlocksCount() {
		return p.check.Fail(op, ErrTooSmall, "room for %d blocks, pool has %d", blocks, p.BlocksCount())
	}
	oldBlocks := p.BlocksCount()

	copy(region, p.region)
	p.free.grow(blocks)

	if p.owned && p.release != nil {
		if err := p.release(); err != nil {
			p.log.Warn("releasing previous buffer failed", "op", op, "err", err)
		}
	}
	p.region = region
	p.release = release
	p.owned = owned
	p.lost = lost

	p.log.Debug("pool reallocated",
		"op", op,
		"old_blocks", oldBlocks,
		"blocks", blocks,
		"owned", owned)
	return nil
}
