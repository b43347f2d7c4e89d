package document

import (
	"errors"
	"testing"

	"github.com/mezzoeditor/mezzo-sub000/internal/engine/decoration"
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/text"
)

type call struct {
	from, to, inserted int
}

func record(d *Document) *[]call {
	var calls []call
	d.OnReplace(func(r Replacement) {
		calls = append(calls, call{r.From(), r.To(), r.Inserted.Length()})
	})
	return &calls
}

func TestNew(t *testing.T) {
	d := New()
	if d.Length() != 0 {
		t.Errorf("expected empty document, got length %d", d.Length())
	}
	if d.Revision() != 0 {
		t.Errorf("expected revision 0, got %d", d.Revision())
	}
	if d.CanUndo() || d.CanRedo() {
		t.Error("new document should have no history")
	}
}

func TestReplace(t *testing.T) {
	d := FromString("Hello World")
	calls := record(d)

	removed, err := d.Replace(5, 6, ", ")
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if removed.String() != " " {
		t.Errorf("expected removed %q, got %q", " ", removed.String())
	}
	if got := d.Text().String(); got != "Hello, World" {
		t.Errorf("expected %q, got %q", "Hello, World", got)
	}
	if d.Revision() != 1 {
		t.Errorf("expected revision 1, got %d", d.Revision())
	}
	if len(*calls) != 1 || (*calls)[0] != (call{5, 6, 2}) {
		t.Errorf("unexpected listener calls %v", *calls)
	}
}

func TestReplaceInvalid(t *testing.T) {
	d := FromString("abc")
	tests := []struct {
		name     string
		from, to int
	}{
		{"negative", -1, 2},
		{"reversed", 2, 1},
		{"past end", 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Replace(tt.from, tt.to, "x")
			if !errors.Is(err, ErrRangeInvalid) {
				t.Errorf("expected ErrRangeInvalid, got %v", err)
			}
		})
	}
	if d.Revision() != 0 {
		t.Error("failed replaces must not change the revision")
	}
}

func TestReplaceSnapsSurrogates(t *testing.T) {
	d := FromString("a😀b")
	calls := record(d)

	if err := d.Insert(2, "x"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if got := d.Text().String(); got != "ax😀b" {
		t.Errorf("expected %q, got %q", "ax😀b", got)
	}
	if (*calls)[0] != (call{1, 1, 1}) {
		t.Errorf("expected snapped call, got %v", (*calls)[0])
	}
}

func TestListenersOrderAndRemoval(t *testing.T) {
	d := FromString("abc")
	var order []string
	removeFirst := d.OnReplace(func(Replacement) { order = append(order, "first") })
	d.OnReplace(func(Replacement) { order = append(order, "second") })

	if err := d.Insert(0, "x"); err != nil {
		t.Fatal(err)
	}
	removeFirst()
	if err := d.Insert(0, "y"); err != nil {
		t.Fatal(err)
	}

	want := []string{"first", "second", "second"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("call %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

func TestReentrantEdit(t *testing.T) {
	d := FromString("abc")
	var inner error
	d.OnReplace(func(Replacement) {
		inner = d.Insert(0, "nested")
	})
	if err := d.Insert(0, "x"); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(inner, ErrReentrantEdit) {
		t.Errorf("expected ErrReentrantEdit, got %v", inner)
	}
	if got := d.Text().String(); got != "xabc" {
		t.Errorf("expected %q, got %q", "xabc", got)
	}
}

func TestReplacementSnapshots(t *testing.T) {
	d := FromString("one two")
	var got Replacement
	d.OnReplace(func(r Replacement) { got = r })

	if err := d.Delete(3, 7); err != nil {
		t.Fatal(err)
	}
	if got.Before.String() != "one two" || got.After.String() != "one" {
		t.Errorf("unexpected snapshots %q -> %q", got.Before.String(), got.After.String())
	}
	if got.Delta() != -4 {
		t.Errorf("expected delta -4, got %d", got.Delta())
	}
	inv := got.Invert()
	if inv.Range != (Range{Start: 3, End: 3}) || inv.NewText != " two" {
		t.Errorf("unexpected inverse %v", inv)
	}
}

func TestApplyEdits(t *testing.T) {
	d := FromString("Hello World")
	calls := record(d)

	err := d.ApplyEdits([]Edit{
		NewDelete(6, 11),
		{Range: Range{Start: 5, End: 5}},
		NewInsert(0, ">> "),
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if got := d.Text().String(); got != ">> Hello " {
		t.Errorf("expected %q, got %q", ">> Hello ", got)
	}
	if len(*calls) != 2 {
		t.Errorf("expected no-op edit to be skipped, got %v", *calls)
	}

	if err := d.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := d.Text().String(); got != "Hello World" {
		t.Errorf("undo of a batch: expected %q, got %q", "Hello World", got)
	}
}

func TestApplyEditsOverlap(t *testing.T) {
	d := FromString("Hello World")
	tests := []struct {
		name  string
		edits []Edit
		want  error
	}{
		{"ascending", []Edit{NewInsert(0, "a"), NewInsert(5, "b")}, ErrEditsOverlap},
		{"overlapping", []Edit{NewDelete(3, 8), NewDelete(1, 4)}, ErrEditsOverlap},
		{"out of range", []Edit{NewDelete(8, 20)}, ErrRangeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := d.ApplyEdits(tt.edits); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if got := d.Text().String(); got != "Hello World" {
		t.Errorf("rejected edits changed the text: %q", got)
	}
}

func TestUndoRedo(t *testing.T) {
	d := New()
	for _, s := range []string{"a", "b", "c"} {
		if err := d.Insert(d.Length(), s); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := d.Replace(0, 1, "A"); err != nil {
		t.Fatal(err)
	}

	steps := []string{"abc", "ab", "a", ""}
	for _, want := range steps {
		if err := d.Undo(); err != nil {
			t.Fatal(err)
		}
		if got := d.Text().String(); got != want {
			t.Errorf("after undo expected %q, got %q", want, got)
		}
	}
	if err := d.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}

	for _, want := range []string{"a", "ab", "abc", "Abc"} {
		if err := d.Redo(); err != nil {
			t.Fatal(err)
		}
		if got := d.Text().String(); got != want {
			t.Errorf("after redo expected %q, got %q", want, got)
		}
	}
	if err := d.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestNewEditClearsRedo(t *testing.T) {
	d := FromString("abc")
	if err := d.Insert(3, "d"); err != nil {
		t.Fatal(err)
	}
	if err := d.Undo(); err != nil {
		t.Fatal(err)
	}
	if err := d.Insert(0, "z"); err != nil {
		t.Fatal(err)
	}
	if d.CanRedo() {
		t.Error("a new edit should clear the redo stack")
	}
}

func TestMaxHistory(t *testing.T) {
	d := New(WithMaxHistory(2))
	for range 5 {
		if err := d.Insert(0, "x"); err != nil {
			t.Fatal(err)
		}
	}
	undone := 0
	for d.Undo() == nil {
		undone++
	}
	if undone != 2 {
		t.Errorf("expected 2 undo steps, got %d", undone)
	}
	if got := d.Text().String(); got != "xxx" {
		t.Errorf("expected %q, got %q", "xxx", got)
	}
}

func TestTextOptions(t *testing.T) {
	d := FromString("abcdefghij", WithTextOptions(text.WithChunkSize(4)))
	if d.Text().ChunkSize() != 4 {
		t.Errorf("expected chunk size 4, got %d", d.Text().ChunkSize())
	}
}

func TestDecorationsFollowEdits(t *testing.T) {
	d := FromString("the quick brown fox")
	marks := decoration.New[string](decoration.WithHandles())
	d.OnReplace(func(r Replacement) {
		marks.Replace(r.From(), r.To(), r.Inserted.Length())
	})

	h, err := marks.Add(decoration.Start(10), decoration.Start(15), "brown")
	if err != nil {
		t.Fatal(err)
	}

	if err := d.Insert(4, "very "); err != nil {
		t.Fatal(err)
	}
	got, ok := marks.Resolve(h)
	if !ok {
		t.Fatal("decoration lost")
	}
	from, to := got.Range()
	if s := d.Text().Content(from, to); s != "brown" {
		t.Errorf("decoration now covers %q", s)
	}

	if err := d.Undo(); err != nil {
		t.Fatal(err)
	}
	got, _ = marks.Resolve(h)
	from, to = got.Range()
	if s := d.Text().Content(from, to); s != "brown" {
		t.Errorf("after undo decoration covers %q", s)
	}
}
