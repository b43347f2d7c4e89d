package tree

import "fmt"

// Monoid is an ordered monoid over values of type V, searchable by keys of type K.
//
// Combine must be associative with Identity as its neutral element.
// The predicates compare a prefix value with a key and must be monotonic
// in the prefix: once a prefix is greater than a key, every longer prefix is.
type Monoid[V, K any] interface {
	Identity() V
	Combine(a, b V) V
	GreaterThan(v V, key K) bool
	GreaterOrEqual(v V, key K) bool
}

// SplitMode decides where a node containing the split key goes.
type SplitMode uint8

const (
	// IntersectionToRight puts a node containing the key into the right part.
	IntersectionToRight SplitMode = iota

	// IntersectionToLeft puts a node containing the key into the left part.
	IntersectionToLeft
)

// Item is a payload together with its own value.
type Item[D, V any] struct {
	Data  D
	Value V
}

// node is immutable once it is reachable from a Tree.
type node[D, V any] struct {
	data     D
	self     V // value of this node alone
	value    V // value of the whole subtree
	priority uint32
	left     *node[D, V]
	right    *node[D, V]
}

// Factory creates trees sharing a monoid and a priority source.
// A factory and the trees derived from it must be used from one goroutine.
type Factory[D, V, K any] struct {
	monoid     Monoid[V, K]
	priorities *Priorities
}

// NewFactory returns a factory whose priorities are drawn from seed.
func NewFactory[D, V, K any](monoid Monoid[V, K], seed uint64) *Factory[D, V, K] {
	return &Factory[D, V, K]{
		monoid:     monoid,
		priorities: NewPriorities(seed),
	}
}

// Monoid returns the factory's monoid.
func (f *Factory[D, V, K]) Monoid() Monoid[V, K] {
	return f.monoid
}

// Empty returns a tree without nodes.
func (f *Factory[D, V, K]) Empty() Tree[D, V, K] {
	return Tree[D, V, K]{f: f}
}

// Build constructs a tree holding items in order.
//
// Construction is linear: each node's parent is the lower-priority of its
// nearest higher-priority neighbours on either side, found with two
// monotonic stack scans.
func (f *Factory[D, V, K]) Build(items []Item[D, V]) Tree[D, V, K] {
	n := len(items)
	if n == 0 {
		return f.Empty()
	}

	nodes := make([]*node[D, V], n)
	for i, item := range items {
		nodes[i] = &node[D, V]{
			data:     item.Data,
			self:     item.Value,
			value:    item.Value,
			priority: f.priorities.Next(),
		}
	}
	if n == 1 {
		return Tree[D, V, K]{f: f, root: nodes[0]}
	}

	// Ties go to the leftmost node.
	prevGreater := make([]int, n)
	stack := make([]int, 0, n)
	for i := 0; i < n; i++ {
		for len(stack) > 0 && nodes[stack[len(stack)-1]].priority < nodes[i].priority {
			stack = stack[:len(stack)-1]
		}
		prevGreater[i] = -1
		if len(stack) > 0 {
			prevGreater[i] = stack[len(stack)-1]
		}
		stack = append(stack, i)
	}

	left := make([]int, n)
	right := make([]int, n)
	for i := range left {
		left[i], right[i] = -1, -1
	}
	root := -1
	stack = stack[:0]
	for i := n - 1; i >= 0; i-- {
		for len(stack) > 0 && nodes[stack[len(stack)-1]].priority <= nodes[i].priority {
			stack = stack[:len(stack)-1]
		}
		nextGreater := -1
		if len(stack) > 0 {
			nextGreater = stack[len(stack)-1]
		}
		stack = append(stack, i)

		p := prevGreater[i]
		parent := p
		switch {
		case p == -1:
			parent = nextGreater
		case nextGreater == -1:
		case nodes[p].priority >= nodes[nextGreater].priority:
			parent = nextGreater
		}

		switch {
		case parent == -1:
			root = i
		case parent > i:
			left[parent] = i
		default:
			right[parent] = i
		}
	}

	var fill func(i int) *node[D, V]
	fill = func(i int) *node[D, V] {
		nd := nodes[i]
		var l, r *node[D, V]
		if left[i] != -1 {
			l = fill(left[i])
		}
		if right[i] != -1 {
			r = fill(right[i])
		}
		return f.setChildren(nd, l, r)
	}
	return Tree[D, V, K]{f: f, root: fill(root)}
}

// setChildren attaches children to a node that is not yet published and
// recomputes its aggregate.
func (f *Factory[D, V, K]) setChildren(n, left, right *node[D, V]) *node[D, V] {
	n.left, n.right = left, right
	n.value = n.self
	if left != nil {
		n.value = f.monoid.Combine(left.value, n.value)
	}
	if right != nil {
		n.value = f.monoid.Combine(n.value, right.value)
	}
	return n
}

func clone[D, V any](n *node[D, V]) *node[D, V] {
	return &node[D, V]{data: n.data, self: n.self, value: n.self, priority: n.priority}
}

func (f *Factory[D, V, K]) merge(left, right *node[D, V]) *node[D, V] {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	if left.priority > right.priority {
		return f.setChildren(clone(left), left.left, f.merge(left.right, right))
	}
	return f.setChildren(clone(right), f.merge(left, right.left), right.right)
}

// split partitions root by key. current is the value of everything before root.
func (f *Factory[D, V, K]) split(root *node[D, V], key K, mode SplitMode, current V) (*node[D, V], *node[D, V]) {
	if root == nil {
		return nil, nil
	}
	m := f.monoid
	before := current
	if root.left != nil {
		before = m.Combine(current, root.left.value)
	}
	after := m.Combine(before, root.self)

	toLeft := true
	if m.GreaterOrEqual(before, key) {
		toLeft = false
	} else if m.GreaterThan(after, key) {
		toLeft = mode == IntersectionToLeft
	}

	if toLeft {
		l, r := f.split(root.right, key, mode, after)
		return f.setChildren(clone(root), root.left, l), r
	}
	l, r := f.split(root.left, key, mode, current)
	return l, f.setChildren(clone(root), r, root.right)
}

func (f *Factory[D, V, K]) splitFirst(root *node[D, V]) (first, rest *node[D, V]) {
	if root == nil {
		return nil, nil
	}
	if root.left != nil {
		first, rest := f.splitFirst(root.left)
		return first, f.setChildren(clone(root), rest, root.right)
	}
	return f.setChildren(clone(root), nil, nil), root.right
}

func (f *Factory[D, V, K]) splitLast(root *node[D, V]) (rest, last *node[D, V]) {
	if root == nil {
		return nil, nil
	}
	if root.right != nil {
		rest, last := f.splitLast(root.right)
		return f.setChildren(clone(root), root.left, rest), last
	}
	return root.left, f.setChildren(clone(root), nil, nil)
}

// Tree is a persistent sequence of payloads with aggregated values.
// Operations return new trees and never modify the receiver, so old
// trees stay valid and share unmodified subtrees with new ones.
type Tree[D, V, K any] struct {
	f    *Factory[D, V, K]
	root *node[D, V]
}

// Factory returns the factory the tree was created with.
func (t Tree[D, V, K]) Factory() *Factory[D, V, K] {
	return t.f
}

// IsEmpty reports whether the tree has no nodes.
func (t Tree[D, V, K]) IsEmpty() bool {
	return t.root == nil
}

// Value returns the combined value of all nodes.
func (t Tree[D, V, K]) Value() V {
	if t.root == nil {
		return t.f.monoid.Identity()
	}
	return t.root.value
}

// Merge returns a tree holding t's nodes followed by right's.
func (t Tree[D, V, K]) Merge(right Tree[D, V, K]) Tree[D, V, K] {
	f := t.f
	if f == nil {
		f = right.f
	}
	return Tree[D, V, K]{f: f, root: f.merge(t.root, right.root)}
}

// SplitAt cuts the tree at key. Nodes ending at or before key go left,
// nodes starting at or after key go right, and a node strictly containing
// key goes where mode says.
func (t Tree[D, V, K]) SplitAt(key K, mode SplitMode) (left, right Tree[D, V, K]) {
	l, r := t.f.split(t.root, key, mode, t.f.monoid.Identity())
	return Tree[D, V, K]{f: t.f, root: l}, Tree[D, V, K]{f: t.f, root: r}
}

// Split cuts the tree into three parts; middle holds every node that
// contains from or to or lies between them.
func (t Tree[D, V, K]) Split(from, to K) (left, middle, right Tree[D, V, K]) {
	rest, right := t.SplitAt(to, IntersectionToLeft)
	left, middle = rest.SplitAt(from, IntersectionToRight)
	return left, middle, right
}

// First returns the first node's payload.
func (t Tree[D, V, K]) First() (Item[D, V], bool) {
	if t.root == nil {
		return Item[D, V]{}, false
	}
	n := t.root
	for n.left != nil {
		n = n.left
	}
	return Item[D, V]{Data: n.data, Value: n.self}, true
}

// Last returns the last node's payload.
func (t Tree[D, V, K]) Last() (Item[D, V], bool) {
	if t.root == nil {
		return Item[D, V]{}, false
	}
	n := t.root
	for n.right != nil {
		n = n.right
	}
	return Item[D, V]{Data: n.data, Value: n.self}, true
}

// SplitFirst removes the first node, returning it and the remaining tree.
func (t Tree[D, V, K]) SplitFirst() (Item[D, V], Tree[D, V, K], bool) {
	first, rest := t.f.splitFirst(t.root)
	if first == nil {
		return Item[D, V]{}, t, false
	}
	return Item[D, V]{Data: first.data, Value: first.self}, Tree[D, V, K]{f: t.f, root: rest}, true
}

// SplitLast removes the last node, returning it and the remaining tree.
func (t Tree[D, V, K]) SplitLast() (Item[D, V], Tree[D, V, K], bool) {
	rest, last := t.f.splitLast(t.root)
	if last == nil {
		return Item[D, V]{}, t, false
	}
	return Item[D, V]{Data: last.data, Value: last.self}, Tree[D, V, K]{f: t.f, root: rest}, true
}

// Collect returns every payload in order.
func (t Tree[D, V, K]) Collect() []Item[D, V] {
	var items []Item[D, V]
	var walk func(n *node[D, V])
	walk = func(n *node[D, V]) {
		if n == nil {
			return
		}
		walk(n.left)
		items = append(items, Item[D, V]{Data: n.data, Value: n.self})
		walk(n.right)
	}
	walk(t.root)
	return items
}

// Len returns the number of nodes. It walks the whole tree.
func (t Tree[D, V, K]) Len() int {
	var count func(n *node[D, V]) int
	count = func(n *node[D, V]) int {
		if n == nil {
			return 0
		}
		return 1 + count(n.left) + count(n.right)
	}
	return count(t.root)
}

// Check verifies the heap order of priorities and every cached aggregate.
func (t Tree[D, V, K]) Check(equal func(a, b V) bool) error {
	var walk func(n *node[D, V]) error
	walk = func(n *node[D, V]) error {
		if n == nil {
			return nil
		}
		want := n.self
		for _, child := range []*node[D, V]{n.left, n.right} {
			if child == nil {
				continue
			}
			if child.priority > n.priority {
				return fmt.Errorf("child priority %d above parent %d", child.priority, n.priority)
			}
			if err := walk(child); err != nil {
				return err
			}
		}
		if n.left != nil {
			want = t.f.monoid.Combine(n.left.value, want)
		}
		if n.right != nil {
			want = t.f.monoid.Combine(want, n.right.value)
		}
		if !equal(want, n.value) {
			return fmt.Errorf("stale aggregate: have %v, want %v", n.value, want)
		}
		return nil
	}
	return walk(t.root)
}
