package text

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/mezzoeditor/mezzo-sub000/internal/engine/metrics"
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/tree"
)

// Iterator walks a text between two bounds.
//
// The offset always satisfies from-1 <= offset <= to. At from-1 and at to
// the iterator is out of bounds and has no current character, but it can
// still move back inside. Iterators work on immutable texts and are never
// invalidated by edits.
type Iterator struct {
	tree *tree.Iterator[string, metrics.Metrics, metrics.Key]

	chunk  string
	length int // UTF-16 length of chunk
	start  int // offset of chunk
	pos    int // byte index of max(offset, from) in chunk

	offset   int
	from, to int
}

// Iterator returns an iterator positioned at offset and bounded by
// [from, to]. Bounds are clamped to the text and offset to the bounds.
func (t *Text) Iterator(offset, from, to int) *Iterator {
	from, to = t.clamp(from, to)
	to = max(from, to)
	it := &Iterator{tree: t.tree.Iterator()}
	it.from = it.locate(from)
	it.to = it.locate(to)
	it.seek(min(max(offset, it.from), it.to))
	return it
}

func (it *Iterator) load() {
	before, _ := it.tree.Before()
	after, _ := it.tree.After()
	it.chunk = it.tree.Data()
	it.start = before.Length
	it.length = after.Length - before.Length
}

// locate moves to the chunk holding offset and returns offset snapped to
// a code point boundary.
func (it *Iterator) locate(offset int) int {
	it.tree.Locate(metrics.OffsetKey(offset))
	if !it.tree.Valid() && !it.tree.Prev() {
		it.chunk, it.length, it.start, it.pos = "", 0, 0, 0
		return 0
	}
	it.load()
	rel := offset - it.start
	it.pos = byteIndex(it.chunk, it.length, rel)
	return it.start + snapOffset(it.chunk, it.length, rel)
}

// seek moves to target, which must lie within [from-1, to].
func (it *Iterator) seek(target int) {
	s := max(target, it.from)
	if it.chunk != "" && s >= it.start && s <= it.start+it.length {
		rel := s - it.start
		it.pos = byteIndex(it.chunk, it.length, rel)
		s = it.start + snapOffset(it.chunk, it.length, rel)
	} else {
		s = it.locate(s)
	}
	if target < it.from {
		it.offset = target
		return
	}
	it.offset = s
}

func (it *Iterator) nextChunk() bool {
	if !it.tree.Next() {
		it.tree.Prev()
		return false
	}
	it.load()
	it.pos = 0
	return true
}

func (it *Iterator) prevChunk() bool {
	if !it.tree.Prev() {
		it.tree.Next()
		return false
	}
	it.load()
	it.pos = len(it.chunk)
	return true
}

func (it *Iterator) ascii() bool {
	return it.length == len(it.chunk)
}

// Offset returns the current offset.
func (it *Iterator) Offset() int {
	return it.offset
}

// From returns the lower bound.
func (it *Iterator) From() int {
	return it.from
}

// To returns the upper bound.
func (it *Iterator) To() int {
	return it.to
}

// Length returns the number of code units between the bounds.
func (it *Iterator) Length() int {
	return it.to - it.from
}

// OutOfBounds reports whether the iterator is at from-1 or at to.
func (it *Iterator) OutOfBounds() bool {
	return it.offset < it.from || it.offset >= it.to
}

// Current returns the code point at the current offset.
func (it *Iterator) Current() (rune, bool) {
	if it.OutOfBounds() {
		return 0, false
	}
	if it.pos == len(it.chunk) && !it.nextChunk() {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(it.chunk[it.pos:])
	return r, true
}

// Next moves forward by one code point. It returns false at the upper bound.
func (it *Iterator) Next() bool {
	if it.offset < it.from {
		it.offset = it.from
		return true
	}
	if it.offset >= it.to {
		return false
	}
	if it.pos == len(it.chunk) && !it.nextChunk() {
		return false
	}
	r, size := utf8.DecodeRuneInString(it.chunk[it.pos:])
	it.pos += size
	it.offset += metrics.RuneUTF16Len(r)
	return true
}

// Prev moves backward by one code point. From the lower bound it moves to
// from-1; it returns false when already there.
func (it *Iterator) Prev() bool {
	if it.offset < it.from {
		return false
	}
	if it.offset == it.from {
		it.offset--
		return true
	}
	if it.pos == 0 && !it.prevChunk() {
		return false
	}
	r, size := utf8.DecodeLastRuneInString(it.chunk[:it.pos])
	it.pos -= size
	it.offset -= metrics.RuneUTF16Len(r)
	return true
}

// Read returns up to n code units starting at the current offset and
// advances past them. A read never ends inside a surrogate pair; it is
// shortened to the pair start instead. Reading from from-1 starts at from.
func (it *Iterator) Read(n int) string {
	if it.offset < it.from {
		it.offset = it.from
	}
	n = min(n, it.to-it.offset)
	if n <= 0 {
		return ""
	}

	var b strings.Builder
	seg := it.pos
	for n > 0 {
		if it.pos == len(it.chunk) {
			b.WriteString(it.chunk[seg:])
			if !it.nextChunk() {
				seg = it.pos
				break
			}
			seg = 0
		}
		if it.ascii() {
			k := min(n, len(it.chunk)-it.pos)
			it.pos += k
			it.offset += k
			n -= k
			continue
		}
		r, size := utf8.DecodeRuneInString(it.chunk[it.pos:])
		w := metrics.RuneUTF16Len(r)
		if w > n {
			break
		}
		it.pos += size
		it.offset += w
		n -= w
	}
	b.WriteString(it.chunk[seg:it.pos])
	return b.String()
}

// Peek is Read without moving.
func (it *Iterator) Peek(n int) string {
	return it.Clone().Read(n)
}

// RRead returns up to n code units ending at the current offset and moves
// to their start. Like Read, it never splits a surrogate pair.
func (it *Iterator) RRead(n int) string {
	n = min(n, it.offset-it.from)
	if n <= 0 {
		return ""
	}

	var parts []string
	end := it.pos
	for n > 0 {
		if it.pos == 0 {
			parts = append(parts, it.chunk[:end])
			if !it.prevChunk() {
				end = it.pos
				break
			}
			end = it.pos
		}
		if it.ascii() {
			k := min(n, it.pos)
			it.pos -= k
			it.offset -= k
			n -= k
			continue
		}
		r, size := utf8.DecodeLastRuneInString(it.chunk[:it.pos])
		w := metrics.RuneUTF16Len(r)
		if w > n {
			break
		}
		it.pos -= size
		it.offset -= w
		n -= w
	}
	parts = append(parts, it.chunk[it.pos:end])
	slices.Reverse(parts)
	return strings.Join(parts, "")
}

// RPeek is RRead without moving.
func (it *Iterator) RPeek(n int) string {
	return it.Clone().RRead(n)
}

// Advance moves by n code units, forward or backward depending on the sign,
// stopping at from-1 and at to. It returns the distance actually moved.
func (it *Iterator) Advance(n int) int {
	old := it.offset
	it.seek(min(max(it.offset+n, it.from-1), it.to))
	return it.offset - old
}

// Reset moves to offset, clamped to [from-1, to].
func (it *Iterator) Reset(offset int) {
	it.seek(min(max(offset, it.from-1), it.to))
}

// Find searches for query starting at the current offset. On success it
// moves to the start of the first occurrence that ends within the bounds.
// Otherwise it moves to the upper bound and returns false.
func (it *Iterator) Find(query string) bool {
	if it.OutOfBounds() {
		return false
	}
	if query == "" {
		return true
	}

	scan := it.tree.Clone()
	window := it.chunk[it.pos:]
	windowOffset := it.offset
	windowEnd := it.start + it.length
	queryLength := metrics.UTF16Len(query)
	for {
		if idx := strings.Index(window, query); idx >= 0 {
			match := windowOffset + metrics.UTF16Len(window[:idx])
			if match+queryLength > it.to {
				break
			}
			it.seek(match)
			return true
		}
		if windowEnd >= it.to || !scan.Next() {
			break
		}

		// Keep the last len(query)-1 bytes, which may start a match that
		// continues in the next chunk.
		if cut := len(window) - (len(query) - 1); cut > 0 {
			for cut < len(window) && !utf8.RuneStart(window[cut]) {
				cut++
			}
			windowOffset += metrics.UTF16Len(window[:cut])
			window = window[cut:]
		}
		window += scan.Data()
		after, _ := scan.After()
		windowEnd = after.Length
	}
	it.seek(it.to)
	return false
}

// Clone returns an independent copy of the iterator.
func (it *Iterator) Clone() *Iterator {
	c := *it
	c.tree = it.tree.Clone()
	return &c
}
