package metrics

import "fmt"

// Position is a line/column location. Both are 0-indexed and columns
// count code points.
type Position struct {
	Line   int
	Column int
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Less reports whether p comes before other.
func (p Position) Less(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// Key is a lookup key into a sequence summarised by Metrics.
type Key struct {
	offset     int
	position   Position
	byPosition bool
}

// OffsetKey returns a key locating a UTF-16 offset.
func OffsetKey(offset int) Key {
	return Key{offset: offset}
}

// PositionKey returns a key locating a line/column position.
func PositionKey(line, column int) Key {
	return Key{position: Position{Line: line, Column: column}, byPosition: true}
}

// Offset returns the offset of an offset key.
func (k Key) Offset() int {
	return k.offset
}

// Position returns the position of a position key.
func (k Key) Position() Position {
	return k.position
}

// ByPosition reports whether k was created with PositionKey.
func (k Key) ByPosition() bool {
	return k.byPosition
}

func (k Key) String() string {
	if k.byPosition {
		return "position " + k.position.String()
	}
	return fmt.Sprintf("offset %d", k.offset)
}

// Monoid adapts Metrics to the ordered monoid used by the merge tree.
type Monoid struct {
	DefaultWidth float64
}

// NewMonoid returns the monoid for metrics produced with m.
func NewMonoid(m Measurer) Monoid {
	if m == nil {
		return Monoid{DefaultWidth: 1}
	}
	return Monoid{DefaultWidth: m.DefaultWidth()}
}

// Identity returns the empty summary.
func (Monoid) Identity() Metrics {
	return Metrics{}
}

// Combine concatenates two summaries.
func (mo Monoid) Combine(a, b Metrics) Metrics {
	return a.Combine(b, mo.DefaultWidth)
}

// GreaterThan reports whether a prefix summarised by v extends past key.
func (Monoid) GreaterThan(v Metrics, key Key) bool {
	if !key.byPosition {
		return v.Length > key.offset
	}
	p := key.position
	return v.LineBreaks > p.Line || (v.LineBreaks == p.Line && v.Last > p.Column)
}

// GreaterOrEqual reports whether a prefix summarised by v reaches key.
func (Monoid) GreaterOrEqual(v Metrics, key Key) bool {
	if !key.byPosition {
		return v.Length >= key.offset
	}
	p := key.position
	return v.LineBreaks > p.Line || (v.LineBreaks == p.Line && v.Last >= p.Column)
}
