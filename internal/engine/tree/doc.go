// Package tree provides a persistent treap whose nodes carry values of an
// ordered monoid.
//
// Every node stores its own value and the combined value of its subtree,
// so a tree can be split at any key derived from running prefix values
// (an offset, a line/column position) in O(log n) expected time. Split and
// merge copy only the nodes on the touched path; the input trees remain
// valid and share the rest of their structure with the results.
//
// Balancing priorities come from a seeded generator owned by the Factory,
// which makes tree shapes reproducible in tests.
//
//	f := tree.NewFactory[string, int, int](lengths{}, 42)
//	t := f.Build(items)
//	left, middle, right := t.Split(10, 20)
//	t = left.Merge(right)
package tree
