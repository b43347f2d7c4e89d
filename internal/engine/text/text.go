package text

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mezzoeditor/mezzo-sub000/internal/engine/metrics"
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/tree"
)

// ErrPositionOutOfRange indicates a line/column position that has no
// offset in the text.
var ErrPositionOutOfRange = errors.New("position out of range")

// Position is a line/column location; columns count code points.
type Position = metrics.Position

// DefaultSeed seeds chunk priorities when no seed is configured.
const DefaultSeed = 42

type chunkTree = tree.Tree[string, metrics.Metrics, metrics.Key]

// config is shared by a text and every text derived from it.
type config struct {
	chunkSize int
	measurer  metrics.Measurer
	seed      uint64
	factory   *tree.Factory[string, metrics.Metrics, metrics.Key]
}

// Option configures a Text during creation.
type Option func(*config)

// WithChunkSize sets the target chunk size in UTF-16 code units.
func WithChunkSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithMeasurer sets the measurer used for line widths.
func WithMeasurer(m metrics.Measurer) Option {
	return func(c *config) {
		if m != nil {
			c.measurer = m
		}
	}
}

// WithSeed sets the seed of the chunk priority generator.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// Text is an immutable rope of text chunks.
//
// Offsets are UTF-16 code units and columns are code points. Every edit
// returns a new Text; old values stay valid and share unmodified chunks
// with new ones. A Text and the texts derived from it must be used from
// one goroutine.
type Text struct {
	tree chunkTree
	cfg  *config
}

// New creates an empty text.
func New(opts ...Option) *Text {
	return FromString("", opts...)
}

// FromString creates a text holding s.
func FromString(s string, opts ...Option) *Text {
	cfg := &config{
		chunkSize: DefaultChunkSize,
		measurer:  metrics.Fixed(1),
		seed:      DefaultSeed,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.factory = tree.NewFactory[string, metrics.Metrics, metrics.Key](metrics.NewMonoid(cfg.measurer), cfg.seed)

	return &Text{tree: cfg.build(s), cfg: cfg}
}

func (c *config) build(s string) chunkTree {
	chunks := splitChunks(s, c.chunkSize)
	items := make([]tree.Item[string, metrics.Metrics], len(chunks))
	for i, chunk := range chunks {
		items[i] = tree.Item[string, metrics.Metrics]{Data: chunk, Value: metrics.FromString(chunk, c.measurer)}
	}
	return c.factory.Build(items)
}

func (t *Text) with(tr chunkTree) *Text {
	return &Text{tree: tr, cfg: t.cfg}
}

// Length returns the length in UTF-16 code units.
func (t *Text) Length() int {
	return t.tree.Value().Length
}

// IsEmpty reports whether the text has no content.
func (t *Text) IsEmpty() bool {
	return t.tree.IsEmpty()
}

// Metrics returns the summary of the whole text.
func (t *Text) Metrics() metrics.Metrics {
	return t.tree.Value()
}

// LineCount returns the number of lines; an empty text has one line.
func (t *Text) LineCount() int {
	return t.tree.Value().LineBreaks + 1
}

// LongestLine returns the column count of the longest line.
func (t *Text) LongestLine() int {
	return t.tree.Value().Longest
}

// ChunkSize returns the configured chunk size.
func (t *Text) ChunkSize() int {
	return t.cfg.chunkSize
}

// Measurer returns the measurer used for line widths.
func (t *Text) Measurer() metrics.Measurer {
	return t.cfg.measurer
}

// String returns the whole content.
func (t *Text) String() string {
	return t.Content(0, t.Length())
}

func (t *Text) clamp(from, to int) (int, int) {
	n := t.Length()
	from = min(max(from, 0), n)
	to = min(max(to, 0), n)
	return from, to
}

// Content returns the text between two offsets. Offsets are clamped to
// the text.
func (t *Text) Content(from, to int) string {
	from, to = t.clamp(from, to)
	if from >= to {
		return ""
	}

	it := t.tree.Iterator()
	it.Locate(metrics.OffsetKey(from))
	var b strings.Builder
	for it.Valid() {
		before, _ := it.Before()
		after, _ := it.After()
		chunk := it.Data()
		length := after.Length - before.Length

		start, end := 0, len(chunk)
		if from > before.Length {
			start = byteIndex(chunk, length, from-before.Length)
		}
		if after.Length > to {
			end = byteIndex(chunk, length, to-before.Length)
		}
		if start == 0 && end == len(chunk) && after.Length == to && b.Len() == 0 {
			return chunk
		}
		b.WriteString(chunk[start:end])
		if after.Length >= to {
			break
		}
		it.Next()
	}
	return b.String()
}

// Replace returns a text with [from, to) replaced by insertion, and the
// removed text. The receiver is not modified.
//
// Only the chunks intersecting the edit are rebuilt, so the cost is
// proportional to the edit size plus the tree height. Offsets are
// clamped and then snapped with Snap; removed.Length() equals to-from for
// offsets that are already snapped. A reversed range panics.
func (t *Text) Replace(from, to int, insertion string) (result, removed *Text) {
	if from > to {
		panic(fmt.Sprintf("text: reversed range [%d, %d)", from, to))
	}
	from, to = t.clamp(from, to)
	from, to = t.Snap(from), t.Snap(to)

	left, middle, right := t.tree.Split(metrics.OffsetKey(from), metrics.OffsetKey(to))
	leftLength := left.Value().Length

	var head, tail string
	removedTree := t.cfg.factory.Empty()
	if first, rest, ok := middle.SplitFirst(); ok {
		startIn := byteIndex(first.Data, first.Value.Length, from-leftLength)
		head = first.Data[:startIn]
		if last, inner, ok := rest.SplitLast(); ok {
			lastStart := leftLength + first.Value.Length + inner.Value().Length
			endIn := byteIndex(last.Data, last.Value.Length, to-lastStart)
			tail = last.Data[endIn:]
			removedTree = t.cfg.build(first.Data[startIn:]).
				Merge(inner).
				Merge(t.cfg.build(last.Data[:endIn]))
		} else {
			endIn := byteIndex(first.Data, first.Value.Length, to-leftLength)
			tail = first.Data[endIn:]
			removedTree = t.cfg.build(first.Data[startIn:endIn])
		}
	}

	neighborhood := head + insertion + tail
	minChunk := t.cfg.chunkSize / 2
	if metrics.UTF16Len(neighborhood) < minChunk {
		if prev, rest, ok := left.SplitLast(); ok {
			neighborhood = prev.Data + neighborhood
			left = rest
		}
	}
	if metrics.UTF16Len(neighborhood) < minChunk {
		if next, rest, ok := right.SplitFirst(); ok {
			neighborhood += next.Data
			right = rest
		}
	}

	rebuilt := t.cfg.build(neighborhood)
	return t.with(left.Merge(rebuilt).Merge(right)), t.with(removedTree)
}

// Insert returns a text with s inserted at offset.
func (t *Text) Insert(offset int, s string) *Text {
	result, _ := t.Replace(offset, offset, s)
	return result
}

// Delete returns a text without [from, to).
func (t *Text) Delete(from, to int) *Text {
	result, _ := t.Replace(from, to, "")
	return result
}

// OffsetToPosition converts an offset to a line/column position.
// The offset is clamped to the text and snapped down when it falls
// inside a surrogate pair.
func (t *Text) OffsetToPosition(offset int) Position {
	offset, _ = t.clamp(offset, offset)

	it := t.tree.Iterator()
	it.Locate(metrics.OffsetKey(offset))
	if !it.Valid() {
		total := t.tree.Value()
		return Position{Line: total.LineBreaks, Column: total.Last}
	}

	before, _ := it.Before()
	pos := Position{Line: before.LineBreaks, Column: before.Last}
	units := offset - before.Length
	n := 0
	for _, r := range it.Data() {
		w := metrics.RuneUTF16Len(r)
		if n+w > units {
			break
		}
		n += w
		if r == '\n' {
			pos.Line++
			pos.Column = 0
		} else {
			pos.Column++
		}
	}
	return pos
}

// PositionToOffset converts a line/column position to an offset.
//
// Without clamp, a position past the end of its line or past the last
// line returns ErrPositionOutOfRange. With clamp, the position saturates
// to the end of its line or the end of the text.
func (t *Text) PositionToOffset(pos Position, clamp bool) (int, error) {
	total := t.tree.Value()
	outOfRange := func() (int, error) {
		return 0, fmt.Errorf("%w: %v", ErrPositionOutOfRange, pos)
	}

	if pos.Line < 0 {
		if !clamp {
			return outOfRange()
		}
		return 0, nil
	}
	if pos.Line > total.LineBreaks {
		if !clamp {
			return outOfRange()
		}
		return total.Length, nil
	}
	if pos.Column < 0 {
		if !clamp {
			return outOfRange()
		}
		pos.Column = 0
	}

	it := t.tree.Iterator()
	it.Locate(metrics.PositionKey(pos.Line, pos.Column))
	if !it.Valid() {
		if pos.Line == total.LineBreaks && pos.Column == total.Last {
			return total.Length, nil
		}
		if !clamp {
			return outOfRange()
		}
		return total.Length, nil
	}

	before, _ := it.Before()
	line, column := before.LineBreaks, before.Last
	offset := before.Length
	for _, r := range it.Data() {
		if line == pos.Line && column == pos.Column {
			return offset, nil
		}
		if r == '\n' {
			if line == pos.Line {
				if !clamp {
					return outOfRange()
				}
				return offset, nil
			}
			line++
			column = 0
		} else {
			column++
		}
		offset += metrics.RuneUTF16Len(r)
	}
	if line == pos.Line && column == pos.Column {
		return offset, nil
	}
	panic(fmt.Sprintf("text: inconsistent lookup of %v", pos))
}

// Snap clamps offset to the text and moves it down to the start of the
// surrogate pair it falls inside, if any.
func (t *Text) Snap(offset int) int {
	offset, _ = t.clamp(offset, offset)
	it := t.tree.Iterator()
	it.Locate(metrics.OffsetKey(offset))
	if !it.Valid() {
		return offset
	}
	before, _ := it.Before()
	return before.Length + snapOffset(it.Data(), it.Value().Length, offset-before.Length)
}

// LineStart returns the offset of the first character of line.
func (t *Text) LineStart(line int) (int, error) {
	return t.PositionToOffset(Position{Line: line}, false)
}

// LineEnd returns the offset just before the line break ending line, or
// the end of the text for the last line.
func (t *Text) LineEnd(line int) (int, error) {
	if line < 0 || line >= t.LineCount() {
		return 0, fmt.Errorf("%w: line %d", ErrPositionOutOfRange, line)
	}
	return t.PositionToOffset(Position{Line: line, Column: int(^uint(0) >> 1)}, true)
}

// chunks returns every chunk in order.
func (t *Text) chunks() []string {
	items := t.tree.Collect()
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Data
	}
	return out
}
