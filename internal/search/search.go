package search

import (
	"fmt"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/text/language"
	textsearch "golang.org/x/text/search"

	"github.com/mezzoeditor/mezzo-sub000/internal/engine/decoration"
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/document"
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/metrics"
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/text"
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/work"
	"github.com/mezzoeditor/mezzo-sub000/internal/log"
	"github.com/mezzoeditor/mezzo-sub000/internal/scheduler"
)

// DefaultBudget is the number of code units searched per slice.
const DefaultBudget = 200000

const (
	// wordContext is how far around a match word boundaries are looked
	// for.
	wordContext = 16

	// foldSlack extends the window of a case-insensitive scan past the
	// last start offset, since folded matches can be longer than the
	// query.
	foldSlack = 16
)

// Options control how a query matches.
type Options struct {
	CaseInsensitive bool
	WholeWord       bool

	// Origin is where the first current match is looked for. Matches at
	// or after it are preferred.
	Origin int
}

// Match is the range of one occurrence.
type Match struct {
	From, To int
}

// String returns "[from, to)".
func (m Match) String() string {
	return fmt.Sprintf("[%d, %d)", m.From, m.To)
}

// Status summarizes a search for observers.
type Status struct {
	Enabled bool
	Current int // index of the current match, -1 if none
	Count   int
}

// Config configures a Search.
type Config struct {
	// Budget is the number of code units searched per slice.
	Budget int

	// Logger receives progress messages. Defaults to log.Nop().
	Logger *log.Logger

	// OnChange is called whenever Status changes.
	OnChange func(Status)
}

// Search finds the occurrences of one query at a time in a document. It
// must be used from the goroutine that owns the document.
type Search struct {
	doc    *document.Document
	sched  scheduler.Scheduler
	log    *log.Logger
	budget int
	notify func(Status)

	query   string
	opts    Options
	length  int // query length in code units
	reach   int // longest possible match
	pattern *textsearch.Pattern

	hits       *decoration.Tree[struct{}]
	work       *work.Allocator
	current    Match
	hasCurrent bool
	reported   Status

	remove func()
}

// New creates an idle search over doc.
func New(doc *document.Document, sched scheduler.Scheduler, cfg Config) *Search {
	s := &Search{
		doc:      doc,
		sched:    sched,
		log:      cfg.Logger,
		budget:   cfg.Budget,
		notify:   cfg.OnChange,
		hits:     decoration.New[struct{}](),
		reported: Status{Current: -1},
	}
	if s.budget <= 0 {
		s.budget = DefaultBudget
	}
	if s.log == nil {
		s.log = log.Nop()
	}
	s.log = s.log.WithComponent("search")
	s.remove = doc.OnReplace(s.onReplace)
	sched.Init(s.step, s.emit)
	return s
}

// Close stops the search and detaches it from the document.
func (s *Search) Close() {
	s.Cancel()
	if s.remove != nil {
		s.remove()
		s.remove = nil
	}
}

// Find starts searching for query, dropping the results of the previous
// query. An empty query behaves like Cancel.
func (s *Search) Find(query string, opts Options) {
	s.reset()
	if query == "" {
		s.emit()
		return
	}
	s.query = query
	s.opts = opts
	s.length = metrics.UTF16Len(query)
	s.reach = s.length
	if opts.CaseInsensitive {
		m := textsearch.New(language.Und, textsearch.IgnoreCase)
		s.pattern = m.CompileString(query)
		s.reach = 3*s.length + foldSlack
	}
	s.work = work.New(s.doc.Length())
	s.log.Debug("find %q (case-insensitive=%t, whole-word=%t)", query, opts.CaseInsensitive, opts.WholeWord)
	s.sched.Schedule()
	s.emit()
}

// Cancel drops the query and its matches.
func (s *Search) Cancel() {
	s.reset()
	s.emit()
}

func (s *Search) reset() {
	s.sched.Cancel()
	s.hits.ClearAll()
	s.query = ""
	s.opts = Options{}
	s.pattern = nil
	s.work = nil
	s.hasCurrent = false
}

// Query returns the active query, or "" when the search is idle.
func (s *Search) Query() string {
	return s.query
}

// Enabled reports whether a query is active.
func (s *Search) Enabled() bool {
	return s.query != ""
}

// Busy reports whether part of the document is still to be searched.
func (s *Search) Busy() bool {
	return s.work != nil && s.work.HasWork()
}

// MatchCount returns the number of matches found so far.
func (s *Search) MatchCount() int {
	return s.hits.CountAll()
}

// Matches returns the matches found so far, in order.
func (s *Search) Matches() []Match {
	list := s.hits.ListAll()
	matches := make([]Match, len(list))
	for i, d := range list {
		matches[i] = toMatch(d)
	}
	return matches
}

func toMatch(d decoration.Decoration[struct{}]) Match {
	from, to := d.Range()
	return Match{From: from, To: to}
}

// Current returns the current match.
func (s *Search) Current() (Match, bool) {
	return s.current, s.hasCurrent
}

// CurrentIndex returns the index of the current match, or -1.
func (s *Search) CurrentIndex() int {
	if !s.hasCurrent {
		return -1
	}
	return s.hits.CountStarting(decoration.Start(0), decoration.Start(s.current.From))
}

// MatchIndex returns the index of the match containing offset, or -1.
func (s *Search) MatchIndex(offset int) int {
	d, ok := s.hits.LastStarting(decoration.Start(0), decoration.End(max(offset, 0)))
	if !ok {
		return -1
	}
	if _, to := d.Range(); offset >= to {
		return -1
	}
	return s.hits.CountStarting(decoration.Start(0), d.From)
}

// NextMatch returns the first match starting at or after offset, wrapping
// around to the first match.
func (s *Search) NextMatch(offset int) (Match, bool) {
	d, ok := s.hits.FirstStarting(decoration.Start(max(offset, 0)), decoration.End(s.doc.Length()))
	if !ok {
		d, ok = s.hits.FirstAll()
	}
	if !ok {
		return Match{}, false
	}
	return toMatch(d), true
}

// PreviousMatch returns the last match ending at or before offset,
// wrapping around to the last match.
func (s *Search) PreviousMatch(offset int) (Match, bool) {
	d, ok := s.hits.LastEnding(decoration.Start(0), decoration.End(max(offset, 0)))
	if !ok {
		d, ok = s.hits.LastAll()
	}
	if !ok {
		return Match{}, false
	}
	return toMatch(d), true
}

// Next makes the match after the current one current.
func (s *Search) Next() (Match, bool) {
	offset := s.opts.Origin
	if s.hasCurrent {
		offset = s.current.To
	}
	return s.moveTo(s.NextMatch(offset))
}

// Previous makes the match before the current one current.
func (s *Search) Previous() (Match, bool) {
	offset := s.opts.Origin
	if s.hasCurrent {
		offset = s.current.From
	}
	return s.moveTo(s.PreviousMatch(offset))
}

func (s *Search) moveTo(m Match, ok bool) (Match, bool) {
	if ok {
		s.current, s.hasCurrent = m, true
		s.emit()
	}
	return m, ok
}

// Markers coalesces matches into buckets of the given size, as for
// scrollbar marks, and returns the index of every bucket holding at least
// one match. Only one match per bucket is visited.
func (s *Search) Markers(bucket int) ([]int, error) {
	if bucket <= 0 {
		return nil, fmt.Errorf("search: invalid bucket size %d", bucket)
	}
	var markers []int
	err := s.hits.SparseVisitAll(func(d decoration.Decoration[struct{}]) decoration.Anchor {
		from, _ := d.Range()
		index := from / bucket
		markers = append(markers, index)
		return decoration.Start((index + 1) * bucket)
	})
	if err != nil {
		return nil, err
	}
	return markers, nil
}

// Status returns the current status.
func (s *Search) Status() Status {
	return Status{Enabled: s.Enabled(), Current: s.CurrentIndex(), Count: s.MatchCount()}
}

func (s *Search) emit() {
	st := s.Status()
	if st == s.reported {
		return
	}
	s.reported = st
	if s.notify != nil {
		s.notify(st)
	}
}

// step searches up to the budget and reports whether work is left.
func (s *Search) step() bool {
	if s.work == nil {
		return false
	}
	budget := s.budget
	for budget > 0 {
		r, ok := s.work.WorkRange(0, s.work.Size())
		if !ok {
			break
		}
		end := s.scan(r.From, min(r.To, r.From+budget))
		s.work.Done(r.From, end)
		budget -= end - r.From
	}
	s.pickCurrent()

	if s.work.HasWork() {
		return true
	}
	s.log.Debug("search %q done: %d matches", s.query, s.hits.CountAll())
	return false
}

func (s *Search) pickCurrent() {
	if s.hasCurrent || s.hits.CountAll() == 0 {
		return
	}
	d, ok := s.hits.FirstStarting(decoration.Start(max(s.opts.Origin, 0)), decoration.End(s.doc.Length()))
	if !ok {
		d, ok = s.hits.FirstAll()
	}
	if ok {
		s.current, s.hasCurrent = toMatch(d), true
	}
}

// scan replaces the matches starting in [from, to) and returns the end of
// the searched range, which is past to when the last match extends
// beyond it.
func (s *Search) scan(from, to int) int {
	s.hits.ClearStarting(decoration.Start(from), decoration.Start(to))
	t := s.doc.Text()
	end := to
	add := func(start, stop int) bool {
		if s.opts.WholeWord && !wholeWord(t, start, stop) {
			return false
		}
		if _, err := s.hits.Add(decoration.Start(start), decoration.Start(stop), struct{}{}); err != nil {
			return false
		}
		end = max(end, stop)
		return true
	}
	if s.pattern != nil {
		s.scanFolded(t, from, to, add)
	} else {
		s.scanExact(t, from, to, add)
	}

	if s.hasCurrent && s.current.From >= from && s.current.From < end {
		d, ok := s.hits.FirstStarting(decoration.Start(s.current.From), decoration.End(s.current.From))
		if !ok || toMatch(d) != s.current {
			s.hasCurrent = false
		}
	}
	return end
}

func (s *Search) scanExact(t *text.Text, from, to int, add func(start, stop int) bool) {
	it := t.Iterator(from, from, to+s.length-1)
	for it.Find(s.query) {
		start := it.Offset()
		if add(start, start+s.length) {
			it.Advance(s.length)
			continue
		}
		r, _ := it.Current()
		it.Advance(metrics.RuneUTF16Len(r))
	}
}

func (s *Search) scanFolded(t *text.Text, from, to int, add func(start, stop int) bool) {
	base := t.Snap(from)
	window := t.Content(base, to+s.reach)
	pos, units := 0, base
	for pos < len(window) {
		bs, be := s.pattern.IndexString(window[pos:])
		if bs < 0 {
			return
		}
		bs, be = bs+pos, be+pos
		start := units + metrics.UTF16Len(window[pos:bs])
		if start >= to {
			return
		}
		stop := start + metrics.UTF16Len(window[bs:be])
		if be > bs && add(start, stop) {
			pos, units = be, stop
			continue
		}
		_, size := utf8.DecodeRuneInString(window[bs:])
		pos, units = bs+size, start+metrics.UTF16Len(window[bs:bs+size])
	}
}

// wholeWord reports whether [from, to) starts and ends on word boundaries.
func wholeWord(t *text.Text, from, to int) bool {
	before := t.Content(from-wordContext, from)
	match := t.Content(from, to)
	after := t.Content(to, to+wordContext)

	left, right := len(before), len(before)+len(match)
	leftOK, rightOK := left == 0, after == ""
	rest, state, pos := before+match+after, -1, 0
	for rest != "" && pos < right {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		pos += len(word)
		leftOK = leftOK || pos == left
		rightOK = rightOK || pos == right
	}
	return leftOK && rightOK
}

func (s *Search) onReplace(r document.Replacement) {
	if s.query == "" {
		return
	}
	from, to, inserted := r.From(), r.To(), r.Inserted.Length()
	s.hits.Replace(from, to, inserted)
	s.work.Replace(from, to, inserted)
	if s.hasCurrent {
		switch {
		case s.current.From >= to:
			s.current.From += r.Delta()
			s.current.To += r.Delta()
		case s.current.To > from:
			s.hasCurrent = false
		}
	}
	// Matches starting up to reach before the edit may now end differently,
	// and a whole-word match right after it may have lost its boundary.
	s.work.Undone(max(0, from-s.reach), from+inserted+1)
	s.sched.Schedule()
	s.emit()
}
