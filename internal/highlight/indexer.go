package highlight

import (
	"fmt"

	"github.com/mezzoeditor/mezzo-sub000/internal/engine/decoration"
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/document"
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/text"
	"github.com/mezzoeditor/mezzo-sub000/internal/scheduler"
)

// Defaults for Options.
const (
	DefaultBudget  = 20000
	DefaultDensity = 2000
)

// Delegate lexes text for an Indexer.
type Delegate[S any] interface {
	// InitialState returns the state at offset 0.
	InitialState() S

	// EqualStates reports whether two states lex the rest of a text the
	// same way.
	EqualStates(a, b S) bool

	// NewIndexer returns a function lexing t from offset, where the state
	// is state. The function is called with increasing offsets and returns
	// the state at each of them.
	NewIndexer(t *text.Text, offset int, state S) func(offset int) S
}

// Options tune an Indexer.
type Options struct {
	// Budget is the number of code units lexed per slice.
	Budget int

	// Density is the distance between checkpoints.
	Density int

	// OnSlice runs after every batch of slices.
	OnSlice func()
}

// Checkpoint is a lexer state stored at an offset.
type Checkpoint[S any] struct {
	Offset int
	State  S
}

// Indexer maintains lexer state checkpoints for a document.
//
// Dirty positions are kept as zero-width cursors in a second decoration
// tree. Each cursor sits on a checkpoint whose state is trusted; lexing
// resumes from the first cursor. An Indexer must be used from the
// goroutine that owns the document.
type Indexer[S any] struct {
	doc      *document.Document
	delegate Delegate[S]
	sched    scheduler.Scheduler
	budget   int
	density  int

	states  *decoration.Tree[S]
	cursors *decoration.Tree[struct{}]
	remove  func()
}

// New creates an indexer for doc and schedules the initial pass.
func New[S any](doc *document.Document, delegate Delegate[S], sched scheduler.Scheduler, opts Options) *Indexer[S] {
	ix := &Indexer[S]{
		doc:      doc,
		delegate: delegate,
		sched:    sched,
		budget:   opts.Budget,
		density:  opts.Density,
		states:   decoration.New[S](),
		cursors:  decoration.New[struct{}](),
	}
	if ix.budget <= 0 {
		ix.budget = DefaultBudget
	}
	if ix.density <= 0 {
		ix.density = DefaultDensity
	}

	ix.addState(0, delegate.InitialState())
	ix.addCursor(0)
	ix.remove = doc.OnReplace(ix.onReplace)
	sched.Init(ix.work, opts.OnSlice)
	sched.Schedule()
	return ix
}

// Close stops following the document and cancels pending work.
func (ix *Indexer[S]) Close() {
	if ix.remove != nil {
		ix.remove()
		ix.remove = nil
	}
	ix.sched.Cancel()
}

// Busy reports whether some checkpoints are still to be computed.
func (ix *Indexer[S]) Busy() bool {
	return ix.cursors.CountAll() > 0
}

// StateAt returns the last checkpoint at or before offset.
func (ix *Indexer[S]) StateAt(offset int) Checkpoint[S] {
	d, ok := ix.states.LastStarting(decoration.Start(0), decoration.End(max(offset, 0)))
	if !ok {
		panic("highlight: no checkpoint at offset 0")
	}
	return Checkpoint[S]{Offset: d.From.Offset(), State: d.Data}
}

// Checkpoints returns every stored checkpoint in order.
func (ix *Indexer[S]) Checkpoints() []Checkpoint[S] {
	var out []Checkpoint[S]
	ix.states.VisitAll(func(d decoration.Decoration[S]) {
		out = append(out, Checkpoint[S]{Offset: d.From.Offset(), State: d.Data})
	})
	return out
}

func (ix *Indexer[S]) addState(offset int, state S) {
	a := decoration.Start(offset)
	if _, err := ix.states.Add(a, a, state); err != nil {
		panic(fmt.Sprintf("highlight: checkpoint at %d: %v", offset, err))
	}
}

func (ix *Indexer[S]) addCursor(offset int) {
	a := decoration.Start(offset)
	if _, err := ix.cursors.Add(a, a, struct{}{}); err != nil {
		panic(fmt.Sprintf("highlight: cursor at %d: %v", offset, err))
	}
}

// fill stores checkpoints every density units from *offset up to limit
// (excluded), then the state at limit. It returns the state at limit and
// leaves *offset on the next grid point after limit.
func (ix *Indexer[S]) fill(index func(int) S, offset *int, limit int) S {
	for ; *offset < limit; *offset += ix.density {
		ix.addState(*offset, index(*offset))
	}
	if *offset == limit {
		*offset += ix.density
	}
	state := index(limit)
	ix.addState(limit, state)
	return state
}

func (ix *Indexer[S]) work() bool {
	budget := ix.budget
	t := ix.doc.Text()
	length := t.Length()

	for budget > 0 {
		cursor, ok := ix.cursors.FirstAll()
		if !ok {
			break
		}
		from := cursor.From.Offset()
		if from >= length-ix.density {
			// The tail after the last cursor gets no more checkpoints.
			ix.states.ClearStarting(decoration.End(from), decoration.End(length))
			ix.cursors.ClearAll()
			break
		}

		to := min(from+budget, length)
		start, ok := ix.states.FirstStarting(decoration.Start(from), decoration.End(from))
		if !ok {
			panic(fmt.Sprintf("highlight: cursor at %d has no checkpoint", from))
		}
		first, hasFirst := ix.states.FirstStarting(decoration.End(from), decoration.Start(to))
		var second decoration.Decoration[S]
		hasSecond := false
		if hasFirst {
			second, hasSecond = ix.states.LastStarting(first.From.Next(), decoration.Start(to))
		}

		index := ix.delegate.NewIndexer(t, from, start.Data)
		trusted := from
		converged := false
		offset := from + ix.density

		// Try to converge on the first checkpoint after the cursor, then
		// on the last one within the budget.
		for _, target := range []struct {
			d  decoration.Decoration[S]
			ok bool
		}{{first, hasFirst}, {second, hasSecond}} {
			if converged || !target.ok {
				continue
			}
			at := target.d.From.Offset()
			ix.states.ClearStarting(decoration.End(trusted), target.d.From.Next())
			state := ix.fill(index, &offset, at)
			trusted = at
			converged = ix.delegate.EqualStates(state, target.d.Data)
		}

		if converged {
			ix.cursors.ClearStarting(decoration.Start(from), decoration.Start(trusted))
			budget -= trusted - from
			continue
		}

		// Spend the rest of the budget pushing the cursor forward.
		ix.states.ClearStarting(decoration.End(trusted), decoration.End(to))
		ix.fill(index, &offset, to)
		ix.cursors.ClearStarting(decoration.Start(from), decoration.End(to))
		ix.addCursor(to)
		break
	}
	return ix.cursors.CountAll() > 0
}

func (ix *Indexer[S]) onReplace(r document.Replacement) {
	from, to, inserted := r.From(), r.To(), r.Inserted.Length()
	ix.states.Replace(from, to, inserted)
	ix.cursors.Replace(from, to, inserted)

	// Cursors always sit on undamaged checkpoints.
	last, ok := ix.states.LastStarting(decoration.Start(0), decoration.End(from))
	if !ok {
		panic("highlight: no checkpoint at offset 0")
	}
	ix.cursors.ClearStarting(last.From, last.From.Next())
	ix.addCursor(last.From.Offset())
	ix.sched.Schedule()
}
