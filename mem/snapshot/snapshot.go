package snapshot

import (
	"fmt"
	"math"

	"github.com/joshuapare/poolkit/internal/buf"
	"github.com/joshuapare/poolkit/mem/pool"
)

// Encode returns the snapshot image of p.
func Encode(p *pool.Pool) ([]byte, error) {
	h, order, err := headerOf(p)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, h.Size())
	out = h.append(out)
	for _, i := range order {
		out = buf.AppendU32LE(out, uint32(i))
	}
	return append(out, p.Bytes()...), nil
}

func headerOf(p *pool.Pool) (Header, []int, error) {
	if p == nil || p.Closed() {
		return Header{}, nil, fmt.Errorf("snapshot: encode: %w", pool.ErrClosed)
	}
	if uint64(p.BlockSize()) > math.MaxUint32 || uint64(p.BlocksCount()) > math.MaxUint32 || uint64(p.Alignment()) > math.MaxUint32 {
		return Header{}, nil, fmt.Errorf("snapshot: encode: %w", pool.ErrSizeOverflow)
	}
	order := p.FreeOrder()
	h := Header{
		Version:     Version,
		BlockSize:   uint32(p.BlockSize()),
		BlocksCount: uint32(p.BlocksCount()),
		Alignment:   uint32(p.Alignment()),
		FreeCount:   uint32(len(order)),
	}
	if p.Owned() {
		h.Flags |= FlagOwned
	}
	return h, order, nil
}

// Decode restores a pool from a snapshot image. The new pool allocates its
// own memory; opts are passed to pool.New. data is not retained.
func Decode(data []byte, opts ...pool.Option) (*pool.Pool, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	entries, ok := buf.Slice(data, HeaderSize, int(h.FreeCount)*freeEntrySize)
	if !ok {
		return nil, fmt.Errorf("snapshot: decode free list: %w", ErrTruncated)
	}
	region, ok := buf.Slice(data, HeaderSize+len(entries), h.PoolSize())
	if !ok {
		return nil, fmt.Errorf("snapshot: decode region: %w", ErrTruncated)
	}
	order := make([]int, h.FreeCount)
	for k := range order {
		order[k] = int(buf.U32LE(entries[k*freeEntrySize:]))
	}

	p, err := pool.New(h.PoolSize(), int(h.BlockSize), int(h.Alignment), opts...)
	if err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	copy(p.Bytes(), region)
	if err := p.SetFreeOrder(order); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("snapshot: decode: %w: %w", ErrCorrupt, err)
	}
	return p, nil
}
