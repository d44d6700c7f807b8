package pool

import (
	"fmt"
	"strings"

	"github.com/joshuapare/poolkit/internal/contract"
)

// Allocator is the block-level contract shared by pool implementations.
type Allocator interface {
	// Allocate returns a free block, or nil when every block is in use.
	Allocate() []byte

	// Deallocate returns a block obtained from Allocate to the pool.
	Deallocate(block []byte) error

	// Clear marks every block free without touching block contents.
	Clear()
}

// Source selects where a pool obtains memory it allocates for itself.
type Source uint8

const (
	// SourceHeap allocates from the Go heap.
	SourceHeap Source = iota
	// SourceMmap maps anonymous memory outside the Go heap.
	// Blocks from such a pool must never hold Go pointers.
	SourceMmap
)

func (s Source) String() string {
	switch s {
	case SourceHeap:
		return "heap"
	case SourceMmap:
		return "mmap"
	}
	return "unknown"
}

// ParseSource maps "heap" and "mmap" (any case) to a Source.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "heap", "":
		return SourceHeap, nil
	case "mmap":
		return SourceMmap, nil
	}
	return SourceHeap, fmt.Errorf("pool: unknown source %q", s)
}

// Policy selects how precondition violations surface.
type Policy = contract.Mode

const (
	// PolicyReturn returns violations as errors (the default).
	PolicyReturn = contract.ModeReturn
	// PolicyPanic panics with the violation at the offending call.
	PolicyPanic = contract.ModePanic
)

// Violation is the error type returned (or panicked with) for a failed
// precondition. It unwraps to one of the Err* sentinels.
type Violation = contract.Violation

// Stats is a point-in-time view of a pool's accounting.
type Stats struct {
	BlockSize       int
	Alignment       int
	BlocksCount     int
	FreeBlocks      int
	AllocatedBlocks int
	PoolSize        int // bytes available for blocks
	TotalSize       int // PoolSize plus free-list overhead
	AllocatedBytes  int
	LostBytes       int // alignment padding and remainder bytes that hold no block
	Owned           bool
	Source          Source
}
