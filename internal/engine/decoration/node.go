package decoration

type splitBy uint8

const (
	byFrom splitBy = iota
	byTo
)

// node carries a pending shift in add that applies to the whole subtree,
// the node's own bounds included. normalize realizes it one level down.
type node[T any] struct {
	data     T
	from, to Anchor
	priority uint32
	size     int
	add      Anchor

	left, right, parent *node[T]
}

func (n *node[T]) decoration() Decoration[T] {
	return Decoration[T]{From: n.from, To: n.to, Data: n.data}
}

func normalize[T any](n *node[T]) *node[T] {
	if n.add == 0 {
		return n
	}
	n.from += n.add
	n.to += n.add
	if n.left != nil {
		n.left.add += n.add
	}
	if n.right != nil {
		n.right.add += n.add
	}
	n.add = 0
	return n
}

func setChildren[T any](n, left, right *node[T]) *node[T] {
	if n.add != 0 {
		panic("decoration: children set on a node with a pending shift")
	}
	n.size = 1
	n.left = left
	if left != nil {
		n.size += left.size
		left.parent = n
	}
	n.right = right
	if right != nil {
		n.size += right.size
		right.parent = n
	}
	return n
}

func merge[T any](left, right *node[T]) *node[T] {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	normalize(left)
	normalize(right)
	if left.priority > right.priority {
		return setChildren(left, left.left, merge(left.right, right))
	}
	return setChildren(right, merge(left, right.left), right.right)
}

// split puts nodes whose from (or to) is below key on the left.
func split[T any](n *node[T], key Anchor, by splitBy) (left, right *node[T]) {
	if n == nil {
		return nil, nil
	}
	normalize(n)
	toLeft := n.to < key
	if by == byFrom {
		toLeft = n.from < key
	}
	n.parent = nil
	if toLeft {
		l, r := split(n.right, key, by)
		return setChildren(n, n.left, l), r
	}
	l, r := split(n.left, key, by)
	return l, setChildren(n, r, n.right)
}

// visit calls fn for every node in order, normalizing on the way down.
func visit[T any](n *node[T], fn func(*node[T])) {
	if n == nil {
		return
	}
	var stack []*node[T]
	normalize(n)
	for {
		for n.left != nil {
			stack = append(stack, n)
			n = normalize(n.left)
		}
		fn(n)
		for n.right == nil {
			if len(stack) == 0 {
				return
			}
			n = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			fn(n)
		}
		n = normalize(n.right)
	}
}

func first[T any](n *node[T]) *node[T] {
	for normalize(n).left != nil {
		n = n.left
	}
	return n
}

func last[T any](n *node[T]) *node[T] {
	for normalize(n).right != nil {
		n = n.right
	}
	return n
}

// find returns the first node starting at or after key.
func find[T any](n *node[T], key Anchor) *node[T] {
	var found *node[T]
	for n != nil {
		normalize(n)
		if n.from >= key {
			found = n
			n = n.left
		} else {
			n = n.right
		}
	}
	return found
}
