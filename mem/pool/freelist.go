package pool

const (
	// endOfList terminates the free chain.
	endOfList = -1
	// inUse marks the link slot of an allocated block.
	inUse = -2
)

// freeList is an index-based LIFO chain of free blocks. links[i] holds the
// index of the free block after i, endOfList, or inUse when i is allocated.
// The slice runs parallel to the data region: one pointer-sized slot per block.
type freeList struct {
	links []int
	head  int
	free  int
}

func newFreeList(n int) *freeList {
	f := &freeList{links: make([]int, n)}
	f.reset()
	return f
}

// reset marks every block free with pop order 0, 1, 2, ...
func (f *freeList) reset() {
	n := len(f.links)
	for i := range f.links {
		f.links[i] = i + 1
	}
	if n == 0 {
		f.head = endOfList
	} else {
		f.links[n-1] = endOfList
		f.head = 0
	}
	f.free = n
}

func (f *freeList) pop() (int, bool) {
	if f.head == endOfList {
		return 0, false
	}
	i := f.head
	f.head = f.links[i]
	f.links[i] = inUse
	f.free--
	return i, true
}

// push returns i to the head. It reports false when i is already free.
func (f *freeList) push(i int) bool {
	if f.links[i] != inUse {
		return false
	}
	f.links[i] = f.head
	f.head = i
	f.free++
	return true
}

func (f *freeList) isFree(i int) bool {
	return f.links[i] != inUse
}

// tail returns the last free index, or endOfList when the chain is empty.
func (f *freeList) tail() int {
	t := endOfList
	for i := f.head; i != endOfList; i = f.links[i] {
		t = i
	}
	return t
}

// appendRange chains the blocks [from, to) after the current tail.
// links must already have room for them.
func (f *freeList) appendRange(from, to int) {
	if from >= to {
		return
	}
	for i := from; i < to-1; i++ {
		f.links[i] = i + 1
	}
	f.links[to-1] = endOfList
	if t := f.tail(); t == endOfList {
		f.head = from
	} else {
		f.links[t] = from
	}
	f.free += to - from
}

// grow extends links to n slots, preserving every existing link, and chains
// the new blocks after the tail.
func (f *freeList) grow(n int) {
	old := len(f.links)
	if n <= old {
		return
	}
	links := make([]int, n)
	copy(links, f.links)
	f.links = links
	f.appendRange(old, n)
}

// order returns the free indices in pop order.
func (f *freeList) order() []int {
	out := make([]int, 0, f.free)
	for i := f.head; i != endOfList; i = f.links[i] {
		out = append(out, i)
	}
	return out
}

// setOrder rebuilds the chain so blocks pop in the given order and every
// other block is allocated. It reports false on out-of-range or repeated indices.
func (f *freeList) setOrder(order []int) bool {
	seen := make([]bool, len(f.links))
	for _, i := range order {
		if i < 0 || i >= len(f.links) || seen[i] {
			return false
		}
		seen[i] = true
	}
	for i := range f.links {
		f.links[i] = inUse
	}
	f.head = endOfList
	for k := len(order) - 1; k >= 0; k-- {
		f.links[order[k]] = f.head
		f.head = order[k]
	}
	f.free = len(order)
	return true
}
