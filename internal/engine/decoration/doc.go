// Package decoration tracks annotated ranges of a text across edits.
//
// A Tree holds disjoint decorations (selections, highlight spans, search
// hits, highlighter checkpoints) in a treap ordered by start. Every text
// edit is mirrored with Tree.Replace, which shifts all decorations after
// the edit by tagging a single subtree with a pending offset and only
// touches decorations that cross the edit individually.
//
// Boundaries are Anchors. Start(x) stays in place when text is inserted at
// x, End(x) moves past the inserted text:
//
//	t := decoration.New[string]()
//	t.Add(decoration.Start(2), decoration.End(5), "word")
//	t.Replace(5, 5, 3) // the decoration now spans [2, 8)
//
// Range queries come in four flavours (All, Starting, Ending, Touching),
// each available as Count, List, First, Last, Visit and Clear.
package decoration
