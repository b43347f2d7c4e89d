package decoration

import "strconv"

// Anchor is a decoration boundary: an offset plus the side of an
// insertion at that offset the boundary sticks to.
//
// A Start anchor stays before text inserted at its offset, an End anchor
// moves after it. Anchors order as Start(x) < End(x) < Start(x+1).
type Anchor int

// Side is the insertion side of an anchor.
type Side uint8

const (
	SideStart Side = iota
	SideEnd
)

// Start returns the anchor before an insertion at offset.
func Start(offset int) Anchor {
	return Anchor(offset * 2)
}

// End returns the anchor after an insertion at offset.
func End(offset int) Anchor {
	return Anchor(offset*2 + 1)
}

// Offset returns the anchor's offset.
func (a Anchor) Offset() int {
	return int(a) >> 1
}

// Side returns the anchor's side.
func (a Anchor) Side() Side {
	if a&1 != 0 {
		return SideEnd
	}
	return SideStart
}

// Next returns the smallest anchor greater than a.
func (a Anchor) Next() Anchor {
	return a + 1
}

// String formats Start(5) as "5" and End(5) as "5+".
func (a Anchor) String() string {
	s := strconv.Itoa(a.Offset())
	if a.Side() == SideEnd {
		s += "+"
	}
	return s
}
