package text

import (
	"strings"
	"testing"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mezzoeditor/mezzo-sub000/internal/engine/metrics"
)

// model is a reference implementation working on UTF-16 code units.
type model []uint16

func newModel(s string) model {
	return utf16.Encode([]rune(s))
}

func (m model) String() string {
	return string(utf16.Decode(m))
}

func (m model) snap(i int) int {
	i = min(max(i, 0), len(m))
	if i > 0 && i < len(m) && m[i] >= 0xDC00 && m[i] <= 0xDFFF {
		return i - 1
	}
	return i
}

func (m model) content(from, to int) string {
	from, to = m.snap(from), m.snap(to)
	if from >= to {
		return ""
	}
	return model(m[from:to]).String()
}

func (m model) replace(from, to int, s string) (model, string) {
	from, to = m.snap(from), m.snap(to)
	removed := model(m[from:to]).String()
	out := make(model, 0, len(m)+len(s))
	out = append(out, m[:from]...)
	out = append(out, newModel(s)...)
	out = append(out, m[to:]...)
	return out, removed
}

func (m model) position(offset int) Position {
	prefix := model(m[:m.snap(offset)]).String()
	line := strings.Count(prefix, "\n")
	last := prefix[strings.LastIndexByte(prefix, '\n')+1:]
	return Position{Line: line, Column: utf8.RuneCountInString(last)}
}

func checkText(t require.TestingT, tx *Text) {
	require.NoError(t, tx.tree.Check(func(a, b metrics.Metrics) bool { return a == b }))
	size := tx.ChunkSize()
	for _, chunk := range tx.chunks() {
		require.NotEmpty(t, chunk)
		require.LessOrEqual(t, metrics.UTF16Len(chunk), size+size/2+1, "chunk %q", chunk)
	}
}

func TestFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		length  int
		lines   int
		longest int
	}{
		{"empty", "", 0, 1, 0},
		{"ascii", "hello", 5, 1, 5},
		{"trailing newline", "a\nb\n", 4, 3, 1},
		{"cjk", "日本語\nx", 5, 2, 3},
		{"astral", "a😀b", 4, 1, 3},
		{"longest in middle", "a\nbbb\ncc", 8, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, size := range []int{1, 2, 3, DefaultChunkSize} {
				tx := FromString(tt.input, WithChunkSize(size))
				checkText(t, tx)
				assert.Equal(t, tt.input, tx.String())
				assert.Equal(t, tt.length, tx.Length())
				assert.Equal(t, tt.lines, tx.LineCount())
				assert.Equal(t, tt.longest, tx.LongestLine())
				assert.Equal(t, tt.input == "", tx.IsEmpty())
			}
		})
	}
}

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		input string
		size  int
		want  []string
	}{
		{"", 3, nil},
		{"abcdefghij", 3, []string{"abc", "def", "ghi", "j"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"abcdefghij", 5, []string{"abcde", "fghij"}},
		{"abcdefghij", 8, []string{"abcdefghij"}},
		{"😀😀😀", 3, []string{"😀😀", "😀"}},
		{"ab😀", 3, []string{"ab😀"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitChunks(tt.input, tt.size), "%q/%d", tt.input, tt.size)
	}
}

func TestContent(t *testing.T) {
	input := "hello\nworld 😀 日本\nlast"
	m := newModel(input)
	for _, size := range []int{1, 2, 3, 7, DefaultChunkSize} {
		tx := FromString(input, WithChunkSize(size))
		for from := -1; from <= len(m)+1; from++ {
			for to := from; to <= len(m)+1; to++ {
				require.Equal(t, m.content(from, to), tx.Content(from, to), "size %d [%d, %d)", size, from, to)
			}
		}
	}
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		from, to  int
		insertion string
		want      string
		removed   string
	}{
		{"insert at start", "world", 0, 0, "hello ", "hello world", ""},
		{"insert at end", "hello", 5, 5, "!", "hello!", ""},
		{"delete all", "hello", 0, 5, "", "", "hello"},
		{"replace middle", "hello world", 6, 11, "there", "hello there", "world"},
		{"clamped", "abc", 1, 100, "x", "ax", "bc"},
		{"into empty", "", 0, 0, "abc", "abc", ""},
		{"snaps inside pair", "a😀b", 2, 3, "x", "axb", "😀"},
		{"end inside pair", "a😀b", 1, 2, "", "a😀b", ""},
		{"multiline", "a\nb\nc", 1, 4, "-", "a-c", "\nb\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, size := range []int{1, 2, 4, DefaultChunkSize} {
				tx := FromString(tt.input, WithChunkSize(size))
				result, removed := tx.Replace(tt.from, tt.to, tt.insertion)
				checkText(t, result)
				checkText(t, removed)
				assert.Equal(t, tt.want, result.String())
				assert.Equal(t, tt.removed, removed.String())
				assert.Equal(t, tt.input, tx.String(), "receiver must not change")
			}
		})
	}
}

func TestSnap(t *testing.T) {
	tx := FromString("a😀b😀", WithChunkSize(2))
	tests := []struct {
		offset, want int
	}{
		{-1, 0}, {0, 0}, {1, 1}, {2, 1}, {3, 3}, {4, 4}, {5, 4}, {6, 6}, {9, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tx.Snap(tt.offset), "offset %d", tt.offset)
	}
}

func TestReplaceRemovesSnappedRange(t *testing.T) {
	pieces := []string{"a", "\n", "é", "😀"}
	rapid.Check(t, func(rt *rapid.T) {
		input := strings.Join(rapid.SliceOfN(rapid.SampledFrom(pieces), 0, 20).Draw(rt, "input"), "")
		tx := FromString(input, WithChunkSize(rapid.IntRange(1, 8).Draw(rt, "chunk")))
		n := tx.Length()
		from := tx.Snap(rapid.IntRange(0, n).Draw(rt, "from"))
		to := tx.Snap(rapid.IntRange(from, n).Draw(rt, "to"))

		result, removed := tx.Replace(from, to, "x")
		if removed.Length() != to-from {
			rt.Fatalf("removed %d units from [%d, %d)", removed.Length(), from, to)
		}
		if result.Length() != n-(to-from)+1 {
			rt.Fatalf("result length %d, want %d", result.Length(), n-(to-from)+1)
		}
	})
}

func TestReplaceReversedPanics(t *testing.T) {
	tx := FromString("hello")
	assert.Panics(t, func() { tx.Replace(3, 2, "") })
}

func TestInsertDelete(t *testing.T) {
	tx := FromString("hello")
	tx = tx.Insert(5, " world")
	assert.Equal(t, "hello world", tx.String())
	tx = tx.Delete(0, 6)
	assert.Equal(t, "world", tx.String())
}

func TestRandomReplace(t *testing.T) {
	pieces := []string{"a", "b", "\n", "é", "日", "😀", "xyz", "\n\n"}
	draw := func(rt *rapid.T, label string) string {
		return strings.Join(rapid.SliceOfN(rapid.SampledFrom(pieces), 0, 30).Draw(rt, label), "")
	}

	rapid.Check(t, func(rt *rapid.T) {
		size := rapid.IntRange(1, 100).Draw(rt, "size")
		initial := draw(rt, "initial")
		tx := FromString(initial, WithChunkSize(size), WithSeed(rapid.Uint64().Draw(rt, "seed")))
		m := newModel(initial)

		for i := 0; i < 20; i++ {
			from := rapid.IntRange(0, len(m)).Draw(rt, "from")
			to := rapid.IntRange(from, len(m)).Draw(rt, "to")
			insertion := draw(rt, "insertion")

			var removed *Text
			var wantRemoved string
			tx, removed = tx.Replace(from, to, insertion)
			m, wantRemoved = m.replace(from, to, insertion)

			checkText(rt, tx)
			if tx.String() != m.String() {
				rt.Fatalf("content %q, want %q", tx.String(), m.String())
			}
			if removed.String() != wantRemoved {
				rt.Fatalf("removed %q, want %q", removed.String(), wantRemoved)
			}
			if tx.Length() != len(m) {
				rt.Fatalf("length %d, want %d", tx.Length(), len(m))
			}
			if tx.LineCount() != strings.Count(m.String(), "\n")+1 {
				rt.Fatalf("line count %d", tx.LineCount())
			}
		}
	})
}

func TestOffsetToPosition(t *testing.T) {
	input := "ab\n😀c\n\n日本"
	m := newModel(input)
	for _, size := range []int{1, 3, DefaultChunkSize} {
		tx := FromString(input, WithChunkSize(size))
		for offset := -2; offset <= len(m)+2; offset++ {
			assert.Equal(t, m.position(offset), tx.OffsetToPosition(offset), "size %d offset %d", size, offset)
		}
	}
}

func TestPositionRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := strings.Join(rapid.SliceOfN(rapid.SampledFrom([]string{"a", "\n", "😀", "é"}), 0, 40).Draw(rt, "input"), "")
		tx := FromString(input, WithChunkSize(rapid.IntRange(1, 10).Draw(rt, "size")))
		m := newModel(input)
		offset := rapid.IntRange(0, len(m)).Draw(rt, "offset")

		pos := tx.OffsetToPosition(offset)
		got, err := tx.PositionToOffset(pos, false)
		if err != nil {
			rt.Fatalf("position %v: %v", pos, err)
		}
		if got != m.snap(offset) {
			rt.Fatalf("offset %d -> %v -> %d", offset, pos, got)
		}
	})
}

func TestPositionToOffset(t *testing.T) {
	tx := FromString("ab\ncd", WithChunkSize(2))

	tests := []struct {
		pos     Position
		clamp   bool
		want    int
		wantErr bool
	}{
		{Position{Line: 0, Column: 0}, false, 0, false},
		{Position{Line: 0, Column: 2}, false, 2, false},
		{Position{Line: 1, Column: 0}, false, 3, false},
		{Position{Line: 1, Column: 2}, false, 5, false},
		{Position{Line: 0, Column: 5}, false, 0, true},
		{Position{Line: 0, Column: 5}, true, 2, false},
		{Position{Line: 1, Column: 3}, false, 0, true},
		{Position{Line: 1, Column: 3}, true, 5, false},
		{Position{Line: 2, Column: 0}, false, 0, true},
		{Position{Line: 2, Column: 0}, true, 5, false},
		{Position{Line: -1, Column: 0}, false, 0, true},
		{Position{Line: -1, Column: 0}, true, 0, false},
		{Position{Line: 1, Column: -1}, true, 3, false},
	}
	for _, tt := range tests {
		got, err := tx.PositionToOffset(tt.pos, tt.clamp)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrPositionOutOfRange, "%v", tt.pos)
			continue
		}
		require.NoError(t, err, "%v", tt.pos)
		assert.Equal(t, tt.want, got, "%v clamp=%v", tt.pos, tt.clamp)
	}

	empty := New()
	got, err := empty.PositionToOffset(Position{}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
	assert.Equal(t, Position{}, empty.OffsetToPosition(5))
}

func TestLineBounds(t *testing.T) {
	tx := FromString("ab\ncd\n")
	start, err := tx.LineStart(1)
	require.NoError(t, err)
	assert.Equal(t, 3, start)

	end, err := tx.LineEnd(0)
	require.NoError(t, err)
	assert.Equal(t, 2, end)
	end, err = tx.LineEnd(2)
	require.NoError(t, err)
	assert.Equal(t, 6, end)

	_, err = tx.LineEnd(3)
	assert.ErrorIs(t, err, ErrPositionOutOfRange)
}

func TestMeasurerWidths(t *testing.T) {
	tx := FromString("日本\nab", WithMeasurer(metrics.NewRuneWidth()), WithChunkSize(1))
	m := tx.Metrics()
	first, last, longest := m.Widths(tx.Measurer().DefaultWidth())
	assert.Equal(t, 4.0, first)
	assert.Equal(t, 2.0, last)
	assert.Equal(t, 4.0, longest)
}
