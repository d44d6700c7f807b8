// Package snapshot serializes a pool's blocks and free list to a compact
// binary image and restores pools from it.
//
// The image is little endian:
//
//	Offset  Size          Description
//	------  ------------  -------------------------------------------
//	 0x00   4             'P' 'K' 'S' 'N'
//	 0x04   2             Format version (1)
//	 0x06   2             Flags (bit 0: pool owned its memory)
//	 0x08   4             Block size in bytes
//	 0x0C   4             Block count
//	 0x10   4             Alignment
//	 0x14   4             Free block count (F)
//	 0x18   4*F           Free list, head first
//	 ....   size*count    Block region
//
// Restored pools hand out free blocks in exactly the saved order.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/joshuapare/poolkit/internal/align"
	"github.com/joshuapare/poolkit/internal/buf"
)

const (
	HeaderSize = 0x18
	Version    = 1

	offVersion   = 0x04
	offFlags     = 0x06
	offBlockSize = 0x08
	offBlocks    = 0x0C
	offAlignment = 0x10
	offFreeCount = 0x14

	freeEntrySize = 4
)

// FlagOwned marks a snapshot taken from a pool that allocated its own memory.
const FlagOwned uint16 = 1 << 0

var magic = []byte("PKSN")

var (
	ErrTruncated = errors.New("snapshot: truncated data")
	ErrMagic     = errors.New("snapshot: bad magic")
	ErrVersion   = errors.New("snapshot: unsupported version")
	ErrCorrupt   = errors.New("snapshot: inconsistent header")
)

// Header is the fixed part of a snapshot.
type Header struct {
	Version     uint16
	Flags       uint16
	BlockSize   uint32
	BlocksCount uint32
	Alignment   uint32
	FreeCount   uint32
}

// Owned reports whether FlagOwned is set.
func (h Header) Owned() bool { return h.Flags&FlagOwned != 0 }

// PoolSize returns the size of the block region.
func (h Header) PoolSize() int { return int(h.BlockSize) * int(h.BlocksCount) }

// Size returns the full encoded length described by h.
func (h Header) Size() int {
	return HeaderSize + int(h.FreeCount)*freeEntrySize + h.PoolSize()
}

// ParseHeader validates and extracts the header fields of b. It checks that
// the free list and region described by the header fit in b.
func ParseHeader(b []byte) (Header, error) {
	if !buf.Has(b, 0, HeaderSize) {
		return Header{}, fmt.Errorf("snapshot header: %w", ErrTruncated)
	}
	if !bytes.Equal(b[:len(magic)], magic) {
		return Header{}, fmt.Errorf("snapshot header: %w", ErrMagic)
	}
	h := Header{
		Version:     buf.U16LE(b[offVersion:]),
		Flags:       buf.U16LE(b[offFlags:]),
		BlockSize:   buf.U32LE(b[offBlockSize:]),
		BlocksCount: buf.U32LE(b[offBlocks:]),
		Alignment:   buf.U32LE(b[offAlignment:]),
		FreeCount:   buf.U32LE(b[offFreeCount:]),
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("snapshot header: %w: %d", ErrVersion, h.Version)
	}
	switch {
	case h.BlockSize == 0, h.BlocksCount == 0:
		return Header{}, fmt.Errorf("snapshot header: %w: %d blocks of %d bytes", ErrCorrupt, h.BlocksCount, h.BlockSize)
	case !align.IsPowerOfTwo(int(h.Alignment)):
		return Header{}, fmt.Errorf("snapshot header: %w: alignment %d", ErrCorrupt, h.Alignment)
	case h.FreeCount > h.BlocksCount:
		return Header{}, fmt.Errorf("snapshot header: %w: %d free of %d blocks", ErrCorrupt, h.FreeCount, h.BlocksCount)
	}

	end, err := buf.CheckSpan(len(b), HeaderSize, int(h.FreeCount), freeEntrySize)
	if err != nil {
		return Header{}, fmt.Errorf("snapshot free list: %w: %w", ErrTruncated, err)
	}
	if _, err := buf.CheckSpan(len(b), end, int(h.BlocksCount), int(h.BlockSize)); err != nil {
		return Header{}, fmt.Errorf("snapshot region: %w: %w", ErrTruncated, err)
	}
	return h, nil
}

func (h Header) append(b []byte) []byte {
	b = append(b, magic...)
	b = buf.AppendU16LE(b, h.Version)
	b = buf.AppendU16LE(b, h.Flags)
	b = buf.AppendU32LE(b, h.BlockSize)
	b = buf.AppendU32LE(b, h.BlocksCount)
	b = buf.AppendU32LE(b, h.Alignment)
	return buf.AppendU32LE(b, h.FreeCount)
}
