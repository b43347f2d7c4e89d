package tree

type frame[D, V any] struct {
	n     *node[D, V]
	value V // value of everything before n's subtree
}

// Iterator is a bidirectional cursor over a tree's nodes.
//
// It points to a node, to the position before the first node or to the
// position after the last node. Before is undefined before the first node
// and After is undefined after the last one.
type Iterator[D, V, K any] struct {
	f     *Factory[D, V, K]
	root  *node[D, V]
	stack []frame[D, V]

	cur       *node[D, V]
	before    V
	after     V
	hasBefore bool
	hasAfter  bool
}

// Iterator returns an unpositioned iterator; call Locate first.
func (t Tree[D, V, K]) Iterator() *Iterator[D, V, K] {
	return &Iterator[D, V, K]{f: t.f, root: t.root}
}

// Clone returns an independent copy of the iterator.
func (it *Iterator[D, V, K]) Clone() *Iterator[D, V, K] {
	c := *it
	c.stack = append([]frame[D, V](nil), it.stack...)
	return &c
}

// Valid reports whether the iterator points to a node.
func (it *Iterator[D, V, K]) Valid() bool {
	return it.cur != nil
}

// Data returns the current node's payload.
func (it *Iterator[D, V, K]) Data() D {
	if it.cur == nil {
		var zero D
		return zero
	}
	return it.cur.data
}

// Value returns the current node's own value.
func (it *Iterator[D, V, K]) Value() V {
	if it.cur == nil {
		return it.f.monoid.Identity()
	}
	return it.cur.self
}

// Before returns the combined value of every node before the current position.
func (it *Iterator[D, V, K]) Before() (V, bool) {
	return it.before, it.hasBefore
}

// After returns the combined value of every node up to and including the
// current one.
func (it *Iterator[D, V, K]) After() (V, bool) {
	return it.after, it.hasAfter
}

// Locate moves to the first node covering key: the node that key falls
// strictly inside, or the node starting at key. When key is at or past
// the end of the tree the iterator moves after the last node.
func (it *Iterator[D, V, K]) Locate(key K) {
	m := it.f.monoid
	it.stack = it.stack[:0]
	if it.root == nil {
		it.cur = nil
		it.before, it.hasBefore = m.Identity(), true
		it.hasAfter = false
		return
	}

	value := m.Identity()
	n := it.root
	for {
		it.stack = append(it.stack, frame[D, V]{n: n, value: value})
		if n.left != nil {
			next := m.Combine(value, n.left.value)
			if m.GreaterOrEqual(next, key) {
				n = n.left
				continue
			}
			value = next
		}
		next := m.Combine(value, n.self)
		if m.GreaterOrEqual(next, key) {
			it.cur = n
			it.before, it.hasBefore = value, true
			it.after, it.hasAfter = next, true
			break
		}
		if n.right == nil {
			it.cur = nil
			it.before, it.hasBefore = next, true
			it.hasAfter = false
			break
		}
		value = next
		n = n.right
	}

	if it.cur != nil && !m.GreaterOrEqual(it.before, key) && !m.GreaterThan(it.after, key) {
		it.Next()
	}
}

// Next moves to the following node. It returns false when it moves past
// the last node.
func (it *Iterator[D, V, K]) Next() bool {
	if it.root == nil || !it.hasAfter || len(it.stack) == 0 {
		return false
	}
	m := it.f.monoid

	top := it.stack[len(it.stack)-1]
	n, value := top.n, top.value
	switch {
	case !it.hasBefore:
		// n is the first node already.
	case n.right != nil:
		if n.left != nil {
			value = m.Combine(value, n.left.value)
		}
		value = m.Combine(value, n.self)
		n = n.right
		for {
			it.stack = append(it.stack, frame[D, V]{n: n, value: value})
			if n.left == nil {
				break
			}
			n = n.left
		}
	default:
		l := len(it.stack)
		for l > 1 && it.stack[l-2].n.right == it.stack[l-1].n {
			l--
		}
		if l == 1 {
			it.cur = nil
			it.before, it.hasBefore = it.after, true
			it.hasAfter = false
			return false
		}
		n, value = it.stack[l-2].n, it.stack[l-2].value
		it.stack = it.stack[:l-1]
	}

	if n.left != nil {
		value = m.Combine(value, n.left.value)
	}
	it.cur = n
	it.before, it.hasBefore = it.after, true
	it.after, it.hasAfter = m.Combine(value, n.self), true
	return true
}

// Prev moves to the preceding node. It returns false when it moves before
// the first node.
func (it *Iterator[D, V, K]) Prev() bool {
	if it.root == nil || !it.hasBefore || len(it.stack) == 0 {
		return false
	}
	m := it.f.monoid

	top := it.stack[len(it.stack)-1]
	n, value := top.n, top.value
	switch {
	case !it.hasAfter:
		// n is the last node already.
	case n.left != nil:
		n = n.left
		for {
			it.stack = append(it.stack, frame[D, V]{n: n, value: value})
			if n.right == nil {
				break
			}
			if n.left != nil {
				value = m.Combine(value, n.left.value)
			}
			value = m.Combine(value, n.self)
			n = n.right
		}
	default:
		l := len(it.stack)
		for l > 1 && it.stack[l-2].n.left == it.stack[l-1].n {
			l--
		}
		if l == 1 {
			it.cur = nil
			it.after, it.hasAfter = it.before, true
			it.hasBefore = false
			return false
		}
		n, value = it.stack[l-2].n, it.stack[l-2].value
		it.stack = it.stack[:l-1]
	}

	if n.left != nil {
		value = m.Combine(value, n.left.value)
	}
	it.cur = n
	it.after, it.hasAfter = it.before, true
	it.before, it.hasBefore = value, true
	return true
}
