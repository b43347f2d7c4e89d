package decoration

import "fmt"

// handleRange isolates the nodes between two split keys and passes their
// subtree to fn before merging everything back. A nil fn drops them.
func (t *Tree[T]) handleRange(from Anchor, fromBy splitBy, to Anchor, toBy splitBy, fn func(*node[T])) {
	left, rest := split(t.root, from, fromBy)
	middle, right := split(rest, to, toBy)
	if fn != nil {
		fn(middle)
	} else {
		middle = nil
	}
	t.setRoot(merge(left, merge(middle, right)))
}

// starting selects decorations with from <= d.From < to.
func (t *Tree[T]) starting(from, to Anchor, fn func(*node[T])) {
	t.handleRange(from, byFrom, to, byFrom, fn)
}

// ending selects decorations with from <= d.To < to.
func (t *Tree[T]) ending(from, to Anchor, fn func(*node[T])) {
	t.handleRange(from, byTo, to, byTo, fn)
}

// touching selects decorations with d.To >= from and d.From < to.
func (t *Tree[T]) touching(from, to Anchor, fn func(*node[T])) {
	t.handleRange(from, byTo, to, byFrom, fn)
}

func count[T any](n *node[T]) int {
	if n == nil {
		return 0
	}
	return n.size
}

func list[T any](n *node[T]) []Decoration[T] {
	var out []Decoration[T]
	visit(n, func(n *node[T]) {
		out = append(out, n.decoration())
	})
	return out
}

func firstOf[T any](n *node[T]) (Decoration[T], bool) {
	if n == nil {
		return Decoration[T]{}, false
	}
	return first(n).decoration(), true
}

func lastOf[T any](n *node[T]) (Decoration[T], bool) {
	if n == nil {
		return Decoration[T]{}, false
	}
	return last(n).decoration(), true
}

func visitor[T any](fn func(Decoration[T])) func(*node[T]) {
	return func(n *node[T]) {
		visit(n, func(n *node[T]) {
			fn(n.decoration())
		})
	}
}

// CountAll returns the number of decorations.
func (t *Tree[T]) CountAll() int {
	return count(t.root)
}

// CountStarting returns the number of decorations starting in [from, to).
func (t *Tree[T]) CountStarting(from, to Anchor) int {
	var c int
	t.starting(from, to, func(n *node[T]) { c = count(n) })
	return c
}

// CountEnding returns the number of decorations ending in [from, to).
func (t *Tree[T]) CountEnding(from, to Anchor) int {
	var c int
	t.ending(from, to, func(n *node[T]) { c = count(n) })
	return c
}

// CountTouching returns the number of decorations intersecting or
// touching [from, to).
func (t *Tree[T]) CountTouching(from, to Anchor) int {
	var c int
	t.touching(from, to, func(n *node[T]) { c = count(n) })
	return c
}

// ListAll returns every decoration ordered by start.
func (t *Tree[T]) ListAll() []Decoration[T] {
	return list(t.root)
}

// ListStarting returns the decorations starting in [from, to).
func (t *Tree[T]) ListStarting(from, to Anchor) []Decoration[T] {
	var out []Decoration[T]
	t.starting(from, to, func(n *node[T]) { out = list(n) })
	return out
}

// ListEnding returns the decorations ending in [from, to).
func (t *Tree[T]) ListEnding(from, to Anchor) []Decoration[T] {
	var out []Decoration[T]
	t.ending(from, to, func(n *node[T]) { out = list(n) })
	return out
}

// ListTouching returns the decorations intersecting or touching [from, to).
func (t *Tree[T]) ListTouching(from, to Anchor) []Decoration[T] {
	var out []Decoration[T]
	t.touching(from, to, func(n *node[T]) { out = list(n) })
	return out
}

// FirstAll returns the decoration with the smallest start.
func (t *Tree[T]) FirstAll() (Decoration[T], bool) {
	return firstOf(t.root)
}

// FirstStarting returns the first decoration starting in [from, to).
func (t *Tree[T]) FirstStarting(from, to Anchor) (Decoration[T], bool) {
	var d Decoration[T]
	var ok bool
	t.starting(from, to, func(n *node[T]) { d, ok = firstOf(n) })
	return d, ok
}

// FirstEnding returns the first decoration ending in [from, to).
func (t *Tree[T]) FirstEnding(from, to Anchor) (Decoration[T], bool) {
	var d Decoration[T]
	var ok bool
	t.ending(from, to, func(n *node[T]) { d, ok = firstOf(n) })
	return d, ok
}

// FirstTouching returns the first decoration intersecting or touching
// [from, to).
func (t *Tree[T]) FirstTouching(from, to Anchor) (Decoration[T], bool) {
	var d Decoration[T]
	var ok bool
	t.touching(from, to, func(n *node[T]) { d, ok = firstOf(n) })
	return d, ok
}

// LastAll returns the decoration with the largest start.
func (t *Tree[T]) LastAll() (Decoration[T], bool) {
	return lastOf(t.root)
}

// LastStarting returns the last decoration starting in [from, to).
func (t *Tree[T]) LastStarting(from, to Anchor) (Decoration[T], bool) {
	var d Decoration[T]
	var ok bool
	t.starting(from, to, func(n *node[T]) { d, ok = lastOf(n) })
	return d, ok
}

// LastEnding returns the last decoration ending in [from, to).
func (t *Tree[T]) LastEnding(from, to Anchor) (Decoration[T], bool) {
	var d Decoration[T]
	var ok bool
	t.ending(from, to, func(n *node[T]) { d, ok = lastOf(n) })
	return d, ok
}

// LastTouching returns the last decoration intersecting or touching
// [from, to).
func (t *Tree[T]) LastTouching(from, to Anchor) (Decoration[T], bool) {
	var d Decoration[T]
	var ok bool
	t.touching(from, to, func(n *node[T]) { d, ok = lastOf(n) })
	return d, ok
}

// VisitAll calls fn for every decoration in order.
func (t *Tree[T]) VisitAll(fn func(Decoration[T])) {
	visitor(fn)(t.root)
}

// VisitStarting calls fn for the decorations starting in [from, to).
func (t *Tree[T]) VisitStarting(from, to Anchor, fn func(Decoration[T])) {
	t.starting(from, to, visitor(fn))
}

// VisitEnding calls fn for the decorations ending in [from, to).
func (t *Tree[T]) VisitEnding(from, to Anchor, fn func(Decoration[T])) {
	t.ending(from, to, visitor(fn))
}

// VisitTouching calls fn for the decorations intersecting or touching
// [from, to).
func (t *Tree[T]) VisitTouching(from, to Anchor, fn func(Decoration[T])) {
	t.touching(from, to, visitor(fn))
}

// ClearAll removes every decoration.
func (t *Tree[T]) ClearAll() {
	t.root = nil
}

// ClearStarting removes the decorations starting in [from, to).
func (t *Tree[T]) ClearStarting(from, to Anchor) {
	t.starting(from, to, nil)
}

// ClearEnding removes the decorations ending in [from, to).
func (t *Tree[T]) ClearEnding(from, to Anchor) {
	t.ending(from, to, nil)
}

// ClearTouching removes the decorations intersecting or touching [from, to).
func (t *Tree[T]) ClearTouching(from, to Anchor) {
	t.touching(from, to, nil)
}

// SparseVisitAll visits decorations in order while letting fn skip ahead.
// fn returns the smallest start of the next decoration to visit; returning
// d.To skips nothing. The next visited decoration starts strictly after
// the current one, so the walk always ends. A returned anchor before d.From
// stops the walk with ErrSkipBackwards.
func (t *Tree[T]) SparseVisitAll(fn func(Decoration[T]) Anchor) error {
	if t.root == nil {
		return nil
	}
	from := first(t.root).from
	for {
		n := find(t.root, from)
		if n == nil {
			return nil
		}
		d := n.decoration()
		next := fn(d)
		if next < d.From {
			return fmt.Errorf("%w: %v before %v", ErrSkipBackwards, next, d.From)
		}
		from = max(d.From.Next(), d.To, next)
	}
}
