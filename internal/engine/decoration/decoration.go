package decoration

import (
	"errors"
	"fmt"

	"github.com/mezzoeditor/mezzo-sub000/internal/engine/tree"
)

// Errors returned by decoration trees.
var (
	// ErrReversed indicates a decoration whose start is after its end.
	ErrReversed = errors.New("decoration: reversed range")

	// ErrOverlap indicates a decoration sharing an interior point with an
	// existing one.
	ErrOverlap = errors.New("decoration: overlaps an existing decoration")

	// ErrSkipBackwards indicates a sparse visitor that asked to continue
	// before the decoration it was given.
	ErrSkipBackwards = errors.New("decoration: visitor skipped backwards")
)

// DefaultSeed seeds node priorities when no seed is configured.
const DefaultSeed = 25

// Decoration is a range of anchors with attached data.
type Decoration[T any] struct {
	From, To Anchor
	Data     T
}

// Range returns the decoration's offsets.
func (d Decoration[T]) Range() (from, to int) {
	return d.From.Offset(), d.To.Offset()
}

// Handle refers to one decoration of a tree created with WithHandles.
// The zero Handle refers to nothing.
type Handle[T any] struct {
	n *node[T]
}

// IsZero reports whether h refers to nothing.
func (h Handle[T]) IsZero() bool {
	return h.n == nil
}

type options struct {
	handles bool
	seed    uint64
}

// Option configures a Tree during creation.
type Option func(*options)

// WithHandles makes Add return handles and Replace report removed ones.
// Handles cost some time on every Replace.
func WithHandles() Option {
	return func(o *options) {
		o.handles = true
	}
}

// WithSeed sets the seed of the priority generator.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// Tree is a mutable set of disjoint decorations kept in step with text
// edits.
//
// Decorations may touch but never share an interior point. Replace moves
// every decoration after an edit with a single lazy shift, so an edit costs
// O(log n) plus the number of decorations crossing it.
//
// Queries restructure the tree, so a Tree must be owned by one goroutine and
// visitors must not modify the tree they are visiting.
type Tree[T any] struct {
	root       *node[T]
	handles    bool
	priorities *tree.Priorities
}

// New creates an empty tree.
func New[T any](opts ...Option) *Tree[T] {
	o := options{seed: DefaultSeed}
	for _, opt := range opts {
		opt(&o)
	}
	return &Tree[T]{
		handles:    o.handles,
		priorities: tree.NewPriorities(o.seed),
	}
}

func (t *Tree[T]) setRoot(n *node[T]) {
	if n != nil {
		n.parent = nil
	}
	t.root = n
}

// Add inserts a decoration. It returns ErrReversed when from > to, which
// includes a zero-width decoration anchored End to Start, and ErrOverlap
// when the decoration would share an interior point with another one.
// The handle is zero unless the tree was created WithHandles.
func (t *Tree[T]) Add(from, to Anchor, data T) (Handle[T], error) {
	if from > to {
		return Handle[T]{}, fmt.Errorf("%w: [%v, %v]", ErrReversed, from, to)
	}

	left, right := split(t.root, from.Next(), byTo)
	if left != nil && last(left).to > from || right != nil && first(right).from < to {
		t.setRoot(merge(left, right))
		return Handle[T]{}, fmt.Errorf("%w: [%v, %v]", ErrOverlap, from, to)
	}

	n := &node[T]{data: data, from: from, to: to, priority: t.priorities.Next(), size: 1}
	t.setRoot(merge(merge(left, n), right))
	if !t.handles {
		return Handle[T]{}, nil
	}
	return Handle[T]{n: n}, nil
}

// Resolve returns the current bounds of the decoration h refers to. It
// returns false when the decoration was removed, directly or by an edit.
func (t *Tree[T]) Resolve(h Handle[T]) (Decoration[T], bool) {
	if h.n == nil || t.root == nil {
		return Decoration[T]{}, false
	}
	var path []*node[T]
	for n := h.n; n != nil; n = n.parent {
		path = append(path, n)
	}
	if path[len(path)-1] != t.root {
		return Decoration[T]{}, false
	}
	for i := len(path) - 1; i >= 0; i-- {
		normalize(path[i])
	}
	return h.n.decoration(), true
}

// Remove deletes the decoration h refers to and returns it. It returns
// false when the decoration is already gone.
func (t *Tree[T]) Remove(h Handle[T]) (Decoration[T], bool) {
	d, ok := t.Resolve(h)
	if !ok {
		return d, false
	}

	// Resolve normalized every ancestor, so none carries a pending shift.
	n := h.n
	sub := merge(n.left, n.right)
	if p := n.parent; p == nil {
		t.setRoot(sub)
	} else {
		if p.left == n {
			p.left = sub
		} else {
			p.right = sub
		}
		if sub != nil {
			sub.parent = p
		}
		for q := p; q != nil; q = q.parent {
			q.size--
		}
	}
	n.left, n.right, n.parent = nil, nil, nil
	n.size = 1
	return d, true
}

// Replace adjusts decorations to the replacement of [from, to) by inserted
// code units:
//
//   - decorations before from stay;
//   - decorations after to shift by the length difference;
//   - decorations covered by the replaced range are removed;
//   - decorations covering the range grow or shrink by the difference;
//   - decorations crossing from are cropped to end at from, and removed
//     when that leaves them empty;
//   - decorations crossing to restart after the insertion, keeping their
//     part after to.
//
// Handles of removed decorations are returned when the tree has handles.
func (t *Tree[T]) Replace(from, to, inserted int) []Handle[T] {
	if from > to {
		panic(fmt.Sprintf("decoration: reversed replace [%d, %d)", from, to))
	}
	f, e := Start(from), Start(to)
	ins := Anchor(inserted * 2)
	delta := Anchor((inserted - (to - from)) * 2)

	left, rest := split(t.root, f, byTo)
	rest, right := split(rest, e.Next(), byFrom)
	crossLeft, rest := split(rest, f.Next(), byFrom)
	covered, crossRight := split(rest, e, byTo)

	var removed []Handle[T]
	if t.handles {
		visit(covered, func(n *node[T]) {
			n.parent = nil
			removed = append(removed, Handle[T]{n: n})
		})
	}

	r := replacement{from: f, to: e, inserted: ins, delta: delta}
	processed := merge(t.process(crossLeft, r, &removed), t.process(crossRight, r, &removed))
	if right != nil {
		right.add += delta
	}
	t.setRoot(merge(left, merge(processed, right)))
	return removed
}

// replacement is an edit in anchor units.
type replacement struct {
	from, to, inserted, delta Anchor
}

func (t *Tree[T]) process(root *node[T], r replacement, removed *[]Handle[T]) *node[T] {
	var nodes []*node[T]
	visit(root, func(n *node[T]) {
		nodes = append(nodes, n)
	})

	var result *node[T]
	for _, n := range nodes {
		start, end := n.from, n.to
		drop := false
		switch {
		case r.from < start && r.to >= end:
			drop = true
		case r.from >= start && r.to < end:
			end += r.delta
		case r.from < start && r.to >= start:
			start = r.from + r.inserted
			end = r.from + r.inserted + (end - r.to)
		case r.from < end && r.to >= end:
			end = r.from
			drop = start == end && n.from < n.to
		case r.to < start:
			start += r.delta
			end += r.delta
		}

		n.left, n.right, n.parent = nil, nil, nil
		n.add = 0
		n.size = 1
		if drop {
			if t.handles {
				*removed = append(*removed, Handle[T]{n: n})
			}
			continue
		}
		n.from, n.to = start, end
		result = merge(result, n)
	}
	return result
}

// check verifies the heap order, sizes, parent links and disjointness.
func (t *Tree[T]) check() error {
	if t.root != nil && t.root.parent != nil {
		return errors.New("root has a parent")
	}
	var prev *Decoration[T]
	var walk func(n *node[T]) (int, error)
	walk = func(n *node[T]) (int, error) {
		if n == nil {
			return 0, nil
		}
		normalize(n)
		size := 1
		for _, child := range []*node[T]{n.left, n.right} {
			if child == nil {
				continue
			}
			if child.parent != n {
				return 0, fmt.Errorf("broken parent link under [%v, %v]", n.from, n.to)
			}
			if child.priority > n.priority {
				return 0, fmt.Errorf("child priority %d above parent %d", child.priority, n.priority)
			}
		}
		ls, err := walk(n.left)
		if err != nil {
			return 0, err
		}
		if n.from > n.to {
			return 0, fmt.Errorf("reversed decoration [%v, %v]", n.from, n.to)
		}
		if prev != nil && prev.To > n.from {
			return 0, fmt.Errorf("decorations [%v, %v] and [%v, %v] overlap", prev.From, prev.To, n.from, n.to)
		}
		d := n.decoration()
		prev = &d
		rs, err := walk(n.right)
		if err != nil {
			return 0, err
		}
		size += ls + rs
		if size != n.size {
			return 0, fmt.Errorf("size %d, want %d", n.size, size)
		}
		return size, nil
	}
	_, err := walk(t.root)
	return err
}
