package document

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mezzoeditor/mezzo-sub000/internal/engine/text"
)

// Errors returned by document operations.
var (
	ErrRangeInvalid  = errors.New("invalid range")
	ErrEditsOverlap  = errors.New("edits overlap or are not in reverse order")
	ErrReentrantEdit = errors.New("document modified from a replace listener")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxHistory bounds the undo stack when no limit is configured.
const DefaultMaxHistory = 1000

// Listener observes applied replacements.
type Listener func(Replacement)

type listenerEntry struct {
	id int
	fn Listener
}

// Option configures a Document.
type Option func(*Document)

// WithTextOptions sets the options used to build texts from strings.
func WithTextOptions(opts ...text.Option) Option {
	return func(d *Document) {
		d.textOpts = append(d.textOpts, opts...)
	}
}

// WithMaxHistory sets the maximum number of undo entries.
func WithMaxHistory(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.history.maxEntries = n
		}
	}
}

// Document owns the current text and tells listeners about every edit so
// decorations and background workers can follow along.
//
// A Document is not safe for concurrent use. Texts it returns are
// immutable and may be shared freely.
type Document struct {
	text     *text.Text
	revision uint64
	textOpts []text.Option

	listeners   []listenerEntry
	nextID      int
	dispatching bool

	history history
}

// New creates an empty document.
func New(opts ...Option) *Document {
	d := &Document{
		history: history{maxEntries: DefaultMaxHistory},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.text = text.New(d.textOpts...)
	return d
}

// FromString creates a document with initial content. The initial content
// is not part of the undo history.
func FromString(s string, opts ...Option) *Document {
	d := New(opts...)
	d.text = text.FromString(s, d.textOpts...)
	return d
}

// Text returns the current text.
func (d *Document) Text() *text.Text {
	return d.text
}

// Length returns the length of the current text in UTF-16 code units.
func (d *Document) Length() int {
	return d.text.Length()
}

// Revision returns a counter incremented by every applied replacement.
func (d *Document) Revision() uint64 {
	return d.revision
}

// OnReplace registers fn to run after every replacement, after listeners
// registered earlier. The returned func unregisters it.
func (d *Document) OnReplace(fn Listener) (remove func()) {
	d.nextID++
	id := d.nextID
	d.listeners = append(d.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		d.listeners = slices.DeleteFunc(d.listeners, func(e listenerEntry) bool {
			return e.id == id
		})
	}
}

func (d *Document) validate(r Range) error {
	if r.Start < 0 || r.Start > r.End || r.End > d.text.Length() {
		return fmt.Errorf("%w: %s in text of length %d", ErrRangeInvalid, r, d.text.Length())
	}
	return nil
}

// Replace replaces [from, to) with s and returns the removed text.
func (d *Document) Replace(from, to int, s string) (*text.Text, error) {
	if d.dispatching {
		return nil, ErrReentrantEdit
	}
	if err := d.validate(Range{Start: from, End: to}); err != nil {
		return nil, err
	}
	r := d.replace(from, to, s)
	d.history.push([]Replacement{r})
	return r.Removed, nil
}

// Insert inserts s at offset.
func (d *Document) Insert(offset int, s string) error {
	_, err := d.Replace(offset, offset, s)
	return err
}

// Delete removes [from, to).
func (d *Document) Delete(from, to int) error {
	_, err := d.Replace(from, to, "")
	return err
}

// Reset replaces the whole content.
func (d *Document) Reset(s string) error {
	_, err := d.Replace(0, d.text.Length(), s)
	return err
}

// ApplyEdits applies several edits as one undo step. Edits must be in
// reverse order (highest offset first) and must not overlap.
func (d *Document) ApplyEdits(edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}
	if d.dispatching {
		return ErrReentrantEdit
	}
	for i := 1; i < len(edits); i++ {
		if edits[i].Range.End > edits[i-1].Range.Start {
			return fmt.Errorf("%w: %s after %s", ErrEditsOverlap, edits[i].Range, edits[i-1].Range)
		}
	}
	for _, e := range edits {
		if err := d.validate(e.Range); err != nil {
			return err
		}
	}

	applied := make([]Replacement, 0, len(edits))
	for _, e := range edits {
		if e.IsNoOp() {
			continue
		}
		applied = append(applied, d.replace(e.Range.Start, e.Range.End, e.NewText))
	}
	d.history.push(applied)
	return nil
}

func (d *Document) replace(from, to int, s string) Replacement {
	// Listeners must see the offsets the text actually edits.
	from = d.text.Snap(from)
	to = d.text.Snap(to)
	inserted := text.FromString(s, d.textOpts...)
	result, removed := d.text.Replace(from, to, s)
	r := Replacement{
		Before:   d.text,
		After:    result,
		Offset:   from,
		Removed:  removed,
		Inserted: inserted,
	}
	d.text = result
	d.revision++
	d.notify(r)
	return r
}

func (d *Document) notify(r Replacement) {
	d.dispatching = true
	defer func() { d.dispatching = false }()
	for _, e := range slices.Clone(d.listeners) {
		e.fn(r)
	}
}

// CanUndo reports whether Undo has anything to revert.
func (d *Document) CanUndo() bool {
	return len(d.history.undo) > 0
}

// CanRedo reports whether Redo has anything to reapply.
func (d *Document) CanRedo() bool {
	return len(d.history.redo) > 0
}

// Undo reverts the last edit step. Listeners see the inverse
// replacements, last first.
func (d *Document) Undo() error {
	if d.dispatching {
		return ErrReentrantEdit
	}
	step, ok := d.history.popUndo()
	if !ok {
		return ErrNothingToUndo
	}
	for i := len(step) - 1; i >= 0; i-- {
		inv := step[i].Invert()
		d.replace(inv.Range.Start, inv.Range.End, inv.NewText)
	}
	d.history.redo = append(d.history.redo, step)
	return nil
}

// Redo reapplies the last undone step.
func (d *Document) Redo() error {
	if d.dispatching {
		return ErrReentrantEdit
	}
	step, ok := d.history.popRedo()
	if !ok {
		return ErrNothingToRedo
	}
	for _, r := range step {
		e := r.Edit()
		d.replace(e.Range.Start, e.Range.End, e.NewText)
	}
	d.history.undo = append(d.history.undo, step)
	return nil
}
