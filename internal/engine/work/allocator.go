// Package work tracks which parts of a text still need background
// processing.
//
// An Allocator starts with its whole size dirty. Consumers carve out
// ranges with WorkRange, process them and mark them Done. Edits are
// mirrored with Replace, after which the consumer usually marks the edited
// neighbourhood Undone again.
package work

import (
	"fmt"

	"github.com/mezzoeditor/mezzo-sub000/internal/engine/decoration"
)

// Range is a half-open range of offsets.
type Range struct {
	From, To int
}

// Len returns the number of offsets in the range.
func (r Range) Len() int {
	return r.To - r.From
}

// String returns "[from, to)".
func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.From, r.To)
}

// Allocator keeps dirty ranges as decorations with both ends on Start
// anchors: text inserted where a range starts joins it, text inserted where
// it ends stays outside.
type Allocator struct {
	size int
	work *decoration.Tree[struct{}]
}

// New creates an allocator of the given size with everything dirty.
func New(size int) *Allocator {
	a := &Allocator{
		size: max(size, 0),
		work: decoration.New[struct{}](),
	}
	a.add(0, a.size)
	return a
}

// Size returns the tracked length.
func (a *Allocator) Size() int {
	return a.size
}

func (a *Allocator) clamp(x int) int {
	return min(max(x, 0), a.size)
}

func (a *Allocator) add(from, to int) {
	if from >= to {
		return
	}
	if _, err := a.work.Add(decoration.Start(from), decoration.Start(to), struct{}{}); err != nil {
		panic(fmt.Sprintf("work: %v", err))
	}
}

// takeTouching removes and returns every range intersecting [from, to] or
// adjacent to it.
func (a *Allocator) takeTouching(from, to int) []decoration.Decoration[struct{}] {
	lo, hi := decoration.Start(from), decoration.End(to)
	ranges := a.work.ListTouching(lo, hi)
	a.work.ClearTouching(lo, hi)
	return ranges
}

// Done marks [from, to) as processed.
func (a *Allocator) Done(from, to int) {
	from, to = a.clamp(from), a.clamp(to)
	if from >= to {
		return
	}
	for _, d := range a.takeTouching(from, to) {
		rf, rt := d.Range()
		if rf < from {
			a.add(rf, from)
		}
		if to < rt {
			a.add(to, rt)
		}
	}
}

// Undone marks [from, to) as dirty, joining it with the dirty ranges it
// touches.
func (a *Allocator) Undone(from, to int) {
	from, to = a.clamp(from), a.clamp(to)
	if from > to {
		return
	}
	for _, d := range a.takeTouching(from, to) {
		rf, rt := d.Range()
		from = min(from, rf)
		to = max(to, rt)
	}
	a.add(from, to)
}

// WorkRange returns the first dirty part of [from, to).
func (a *Allocator) WorkRange(from, to int) (Range, bool) {
	from, to = a.clamp(from), a.clamp(to)
	if from >= to {
		return Range{}, false
	}
	d, ok := a.work.FirstTouching(decoration.End(from), decoration.Start(to))
	if !ok {
		return Range{}, false
	}
	rf, rt := d.Range()
	return Range{From: max(from, rf), To: min(to, rt)}, true
}

// HasWork reports whether anything is dirty.
func (a *Allocator) HasWork() bool {
	return a.work.CountAll() > 0
}

// Ranges returns the dirty ranges in order.
func (a *Allocator) Ranges() []Range {
	var out []Range
	a.work.VisitAll(func(d decoration.Decoration[struct{}]) {
		from, to := d.Range()
		out = append(out, Range{From: from, To: to})
	})
	return out
}

// Replace mirrors a text edit. Dirty ranges covered by the edit are
// dropped and the inserted text is only dirty when a dirty range spans the
// edit, so callers usually follow with Undone.
func (a *Allocator) Replace(from, to, inserted int) {
	a.work.Replace(from, to, inserted)
	a.size += inserted - (to - from)
}
