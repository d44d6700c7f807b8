package array

import (
	"cmp"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"unsafe"

	"github.com/joshuapare/poolkit/internal/buf"
	"github.com/joshuapare/poolkit/internal/contract"
	"github.com/joshuapare/poolkit/mem/pool"
)

// NotFound is the index search methods return when no element matches.
const NotFound = -1

// Fixed is a container of exactly Count() elements of T stored in one pool
// block each. The element count is fixed at construction; C decides equality
// and ordering for search, Equal and Sort.
//
// The zero Fixed is empty: Count is 0, First and Last yield ForwardEnd and
// every element access is a violation. A Fixed is not safe for concurrent use.
type Fixed[T any, C Comparator[T]] struct {
	pool  *pool.Pool
	elems []T // typed view of the pool region, one element per allocated block

	first Position
	last  Position

	opts  options
	log   *slog.Logger
	check contract.Checker
}

// Ordered is a Fixed over a cmp.Ordered type with natural ordering.
type Ordered[T cmp.Ordered] = Fixed[T, Natural[T]]

// NewOrdered is New with the Natural comparator.
func NewOrdered[T cmp.Ordered](count int, initial T, opts ...Option) (*Ordered[T], error) {
	return New[T, Natural[T]](count, initial, opts...)
}

// OrderedFrom is FromSlice with the Natural comparator.
func OrderedFrom[T cmp.Ordered](src []T, opts ...Option) (*Ordered[T], error) {
	return FromSlice[T, Natural[T]](src, opts...)
}

// New creates an array of count copies of initial.
func New[T any, C Comparator[T]](count int, initial T, opts ...Option) (*Fixed[T, C], error) {
	a, err := build[T, C]("array.New", count, resolveOptions(opts))
	if err != nil {
		return nil, err
	}
	for i := range a.elems {
		a.elems[i] = initial
	}
	return a, nil
}

// FromSlice creates an array holding a copy of src.
func FromSlice[T any, C Comparator[T]](src []T, opts ...Option) (*Fixed[T, C], error) {
	const op = "array.FromSlice"
	o := resolveOptions(opts)
	if src == nil {
		return nil, o.checker().Fail(op, ErrNilSource, "")
	}
	a, err := build[T, C](op, len(src), o)
	if err != nil {
		return nil, err
	}
	copy(a.elems, src)
	return a, nil
}

// build allocates the pool for count elements and allocates every block.
func build[T any, C Comparator[T]](op string, count int, o options) (*Fixed[T, C], error) {
	check := o.checker()
	if count <= 0 {
		return nil, check.Fail(op, ErrZeroLength, "count=%d", count)
	}

	var zero T
	size, alignment := int(unsafe.Sizeof(zero)), int(unsafe.Alignof(zero))
	blockSize := max(size, 1)
	if _, ok := buf.MulOverflowSafe(count, blockSize); !ok {
		return nil, check.Fail(op, ErrTooLarge, "count=%d size=%d", count, size)
	}

	// The pool carves its blocks out of a []T so element pointers stay
	// visible to the garbage collector.
	backing := make([]T, count)
	var region []byte
	if size == 0 {
		// no element bytes are ever stored, so the placeholder region needs no alignment
		region, alignment = make([]byte, count), 1
	} else {
		region = unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(backing))), count*size)
	}
	p, err := pool.NewWithBufferAligned(region, blockSize, alignment, o.poolOptions()...)
	if err != nil {
		return nil, err
	}
	for range count {
		if _, ok := p.AllocateIndex(); !ok {
			_ = p.Close()
			return nil, check.Fail(op, pool.ErrTooSmall, "pool exhausted before %d elements", count)
		}
	}

	a := &Fixed[T, C]{pool: p, opts: o, log: o.logger, check: check}
	if size == 0 {
		a.elems = backing
	} else {
		a.elems = unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(p.Bytes()))), count)
	}
	a.first, a.last = Real(0), Real(count-1)
	a.log.Debug("array created", "op", op, "count", count, "element_size", size)
	return a, nil
}

// Clone returns a deep copy with its own pool. Cloning an empty array yields
// another empty array.
func (a *Fixed[T, C]) Clone() (*Fixed[T, C], error) {
	if a.Count() == 0 {
		return &Fixed[T, C]{opts: a.opts, log: a.log, check: a.check}, nil
	}
	return FromSlice[T, C](a.elems, a.opts.inherit()...)
}

// Assign copies min(a.Count(), other.Count()) elements from other by
// position and returns how many it copied. It never reallocates: the tail of
// the longer array is left untouched.
func (a *Fixed[T, C]) Assign(other *Fixed[T, C]) int {
	if other == nil || a == other {
		return 0
	}
	return copy(a.elems, other.elems)
}

// At returns a pointer to element i. It panics when i is out of range, like
// indexing a slice.
func (a *Fixed[T, C]) At(i int) *T { return &a.elems[i] }

// Get returns element i.
func (a *Fixed[T, C]) Get(i int) (T, error) {
	if err := a.requireIndex("array.Get", i); err != nil {
		var zero T
		return zero, err
	}
	return a.elems[i], nil
}

// Set stores v at index i.
func (a *Fixed[T, C]) Set(i int, v T) error {
	if err := a.requireIndex("array.Set", i); err != nil {
		return err
	}
	a.elems[i] = v
	return nil
}

// Count returns the number of elements.
func (a *Fixed[T, C]) Count() int {
	if a == nil || a.pool == nil || a.pool.BlockSize() == 0 {
		return 0
	}
	return a.pool.AllocatedBytes() / a.pool.BlockSize()
}

// Capacity returns the number of block slots in the backing pool.
func (a *Fixed[T, C]) Capacity() int {
	if a == nil || a.pool == nil || a.pool.BlockSize() == 0 {
		return 0
	}
	return a.pool.PoolSize() / a.pool.BlockSize()
}

// IsEmpty reports whether the array holds no elements.
func (a *Fixed[T, C]) IsEmpty() bool { return a.Count() == 0 }

// Iterator returns a mutable iterator at element i.
func (a *Fixed[T, C]) Iterator(i int) (Iterator[T, C], error) {
	if err := a.requireIndex("array.Iterator", i); err != nil {
		return Iterator[T, C]{}, err
	}
	return a.iterator(Real(i)), nil
}

// First returns an iterator at the first element, or at ForwardEnd when the
// array is empty.
func (a *Fixed[T, C]) First() Iterator[T, C] {
	if a.Count() == 0 {
		return a.iterator(ForwardEnd)
	}
	return a.iterator(a.first)
}

// Last returns an iterator at the last element, or at ForwardEnd when the
// array is empty.
func (a *Fixed[T, C]) Last() Iterator[T, C] {
	if a.Count() == 0 {
		return a.iterator(ForwardEnd)
	}
	return a.iterator(a.last)
}

// End returns an iterator at the end position of direction d.
func (a *Fixed[T, C]) End(d Direction) Iterator[T, C] { return a.iterator(End(d)) }

func (a *Fixed[T, C]) iterator(p Position) Iterator[T, C] {
	return Iterator[T, C]{ConstIterator[T, C]{arr: a, pos: p}}
}

// GetRange is the former name of Range.
//
// Deprecated: use Range.
func (a *Fixed[T, C]) GetRange(first, last int) (*Fixed[T, C], error) {
	a.check.Deprecated("array.GetRange", "array.Range")
	return a.Range(first, last)
}

// Range returns a new array holding a copy of elements first through last,
// both included.
func (a *Fixed[T, C]) Range(first, last int) (*Fixed[T, C], error) {
	const op = "array.Range"
	if a.Count() == 0 {
		return nil, a.check.Fail(op, ErrEmpty, "")
	}
	if err := a.requireIndex(op, first); err != nil {
		return nil, err
	}
	if err := a.requireIndex(op, last); err != nil {
		return nil, err
	}
	if first > last {
		return nil, a.check.Fail(op, ErrBadRange, "first=%d last=%d", first, last)
	}
	return FromSlice[T, C](a.elems[first:last+1], a.opts.inherit()...)
}

// RangeOf is Range over two iterator positions.
func (a *Fixed[T, C]) RangeOf(first, last Cursor[T, C]) (*Fixed[T, C], error) {
	const op = "array.RangeOf"
	if a.Count() == 0 {
		return nil, a.check.Fail(op, ErrEmpty, "")
	}
	i, err := a.resolve(op, first)
	if err != nil {
		return nil, err
	}
	j, err := a.resolve(op, last)
	if err != nil {
		return nil, err
	}
	return a.Range(i, j)
}

// Swap exchanges elements i and j. Swapping an element with itself logs a
// warning and does nothing.
func (a *Fixed[T, C]) Swap(i, j int) error {
	const op = "array.Swap"
	if err := a.requireIndex(op, i); err != nil {
		return err
	}
	if err := a.requireIndex(op, j); err != nil {
		return err
	}
	a.swap(op, i, j)
	return nil
}

// SwapAt is Swap over two iterator positions.
func (a *Fixed[T, C]) SwapAt(x, y Cursor[T, C]) error {
	const op = "array.SwapAt"
	i, err := a.resolve(op, x)
	if err != nil {
		return err
	}
	j, err := a.resolve(op, y)
	if err != nil {
		return err
	}
	a.swap(op, i, j)
	return nil
}

func (a *Fixed[T, C]) swap(op string, i, j int) {
	if i == j {
		a.check.Warn(op, "swap of index %d with itself", i)
		return
	}
	a.elems[i], a.elems[j] = a.elems[j], a.elems[i]
}

// All iterates over index/value pairs from first to last.
func (a *Fixed[T, C]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range a.view() {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Backward iterates over index/value pairs from last to first.
func (a *Fixed[T, C]) Backward() iter.Seq2[int, T] {
	return slices.Backward(a.view())
}

// Values returns a copy of the elements.
func (a *Fixed[T, C]) Values() []T { return slices.Clone(a.view()) }

func (a *Fixed[T, C]) String() string {
	if a == nil {
		return "[]"
	}
	return fmt.Sprint(a.view())
}

// Close clears every element and closes the backing pool. The array is empty
// afterwards.
func (a *Fixed[T, C]) Close() error {
	if a.pool == nil {
		return nil
	}
	clear(a.elems)
	err := a.pool.Close()
	a.pool, a.elems = nil, nil
	a.first, a.last = Position{}, Position{}
	return err
}

// Stats returns the backing pool's accounting.
func (a *Fixed[T, C]) Stats() pool.Stats {
	if a.pool == nil {
		return pool.Stats{}
	}
	return a.pool.Stats()
}

func (a *Fixed[T, C]) view() []T {
	if a == nil {
		return nil
	}
	return a.elems[:a.Count()]
}

func (a *Fixed[T, C]) requireIndex(op string, i int) error {
	return a.check.Require(i >= 0 && i < a.Count(), op, ErrIndexOutOfRange, "index=%d count=%d", i, a.Count())
}

// resolve maps a cursor of this array at a real position to its index.
func (a *Fixed[T, C]) resolve(op string, c Cursor[T, C]) (int, error) {
	if c == nil || c.owner() == nil {
		return 0, a.check.Fail(op, ErrInvalidIterator, "unbound iterator")
	}
	if c.owner() != a {
		return 0, a.check.Fail(op, ErrForeignIterator, "")
	}
	p := c.Position()
	i, ok := p.Index()
	if !ok {
		if p.IsEnd() {
			return 0, a.check.Fail(op, ErrEndIterator, "position=%s", p)
		}
		return 0, a.check.Fail(op, ErrInvalidIterator, "position=%s", p)
	}
	if i >= a.Count() {
		return 0, a.check.Fail(op, ErrInvalidIterator, "stale position %d, count=%d", i, a.Count())
	}
	return i, nil
}
