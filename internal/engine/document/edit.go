package document

import (
	"fmt"

	"github.com/mezzoeditor/mezzo-sub000/internal/engine/text"
)

// Range is a half-open range of UTF-16 offsets: [Start, End).
type Range struct {
	Start int // Inclusive start offset
	End   int // Exclusive end offset
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.End)
}

// Len returns the length of the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsValid returns true if Start <= End.
func (r Range) IsValid() bool {
	return r.Start <= r.End
}

// Contains returns true if the given offset is within the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Overlaps returns true if this range overlaps with another range.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Edit replaces a range with new text.
type Edit struct {
	Range   Range  // The range to replace
	NewText string // The replacement text
}

// NewInsert creates an Edit that inserts text at an offset.
func NewInsert(offset int, s string) Edit {
	return Edit{Range: Range{Start: offset, End: offset}, NewText: s}
}

// NewDelete creates an Edit that deletes a range.
func NewDelete(start, end int) Edit {
	return Edit{Range: Range{Start: start, End: end}}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%d, %q)", e.Range.Start, e.NewText)
	}
	if e.NewText == "" {
		return fmt.Sprintf("Delete%s", e.Range)
	}
	return fmt.Sprintf("Replace%s with %q", e.Range, e.NewText)
}

// IsNoOp returns true if this edit does nothing.
func (e Edit) IsNoOp() bool {
	return e.Range.IsEmpty() && e.NewText == ""
}

// Replacement describes one applied edit. Before and After are the whole
// texts around it.
type Replacement struct {
	Before   *text.Text
	After    *text.Text
	Offset   int
	Removed  *text.Text
	Inserted *text.Text
}

// From returns the start of the replaced range.
func (r Replacement) From() int {
	return r.Offset
}

// To returns the end of the replaced range in the text before the edit.
func (r Replacement) To() int {
	return r.Offset + r.Removed.Length()
}

// Delta returns the change in length.
func (r Replacement) Delta() int {
	return r.Inserted.Length() - r.Removed.Length()
}

// Invert returns the edit that undoes r.
func (r Replacement) Invert() Edit {
	return Edit{
		Range:   Range{Start: r.Offset, End: r.Offset + r.Inserted.Length()},
		NewText: r.Removed.String(),
	}
}

// Edit returns the edit that r applied.
func (r Replacement) Edit() Edit {
	return Edit{
		Range:   Range{Start: r.From(), End: r.To()},
		NewText: r.Inserted.String(),
	}
}
