package array

import "strconv"

// Direction selects which end position a query refers to.
type Direction uint8

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

type posKind uint8

const (
	posInvalid posKind = iota
	posReal
	posForwardEnd
	posBackwardEnd
)

// Position is where an iterator points: an element index, one of the two end
// sentinels, or nothing at all. The zero Position is invalid.
type Position struct {
	kind  posKind
	index int
}

var (
	// ForwardEnd is the position one step after the last element.
	ForwardEnd = Position{kind: posForwardEnd}
	// BackwardEnd is the position one step before the first element.
	BackwardEnd = Position{kind: posBackwardEnd}
)

// Real returns the position of element i. Negative indices yield an invalid
// position.
func Real(i int) Position {
	if i < 0 {
		return Position{}
	}
	return Position{kind: posReal, index: i}
}

// End returns the end position of direction d.
func End(d Direction) Position {
	if d == Backward {
		return BackwardEnd
	}
	return ForwardEnd
}

// Index returns the element index of a real position.
func (p Position) Index() (int, bool) {
	if p.kind != posReal {
		return 0, false
	}
	return p.index, true
}

func (p Position) IsValid() bool { return p.kind != posInvalid }
func (p Position) IsReal() bool  { return p.kind == posReal }

// IsEnd reports whether p is either end sentinel.
func (p Position) IsEnd() bool { return p.kind == posForwardEnd || p.kind == posBackwardEnd }

func (p Position) String() string {
	switch p.kind {
	case posReal:
		return strconv.Itoa(p.index)
	case posForwardEnd:
		return "forward-end"
	case posBackwardEnd:
		return "backward-end"
	}
	return "invalid"
}
