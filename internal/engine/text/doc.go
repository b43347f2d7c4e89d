// Package text implements the immutable rope that stores document content.
//
// Content is kept in chunks of roughly a thousand UTF-16 code units held in
// a persistent tree from package tree. Each chunk carries its metrics, so
// offset and line/column conversions, content slicing and edits take
// logarithmic time plus the size of the chunks involved.
//
// Offsets count UTF-16 code units and columns count code points, matching
// what editor front ends report. An offset that falls inside a surrogate
// pair snaps down to the start of the pair.
//
// Replace never modifies its receiver:
//
//	t := text.FromString("hello world")
//	t2, removed := t.Replace(0, 5, "goodbye")
//	// t.String() == "hello world", t2.String() == "goodbye world"
//	// removed.String() == "hello"
package text
