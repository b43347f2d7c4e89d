package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mezzoeditor/mezzo-sub000/internal/engine/metrics"
)

func current(t *testing.T, it *Iterator) rune {
	t.Helper()
	r, ok := it.Current()
	require.True(t, ok, "no current character at %d", it.Offset())
	return r
}

func TestIteratorBasics(t *testing.T) {
	it := FromString("world").Iterator(0, 0, 5)
	assert.Equal(t, 'w', current(t, it))
	assert.Equal(t, 0, it.Offset())

	require.True(t, it.Next())
	assert.Equal(t, 'o', current(t, it))
	assert.Equal(t, 1, it.Offset())

	require.True(t, it.Prev())
	assert.Equal(t, 'w', current(t, it))
	assert.Equal(t, 0, it.Offset())
}

func TestIteratorBounds(t *testing.T) {
	it := FromString("world").Iterator(0, 0, 5)
	require.True(t, it.Prev())
	assert.Equal(t, -1, it.Offset())
	assert.True(t, it.OutOfBounds())
	_, ok := it.Current()
	assert.False(t, ok)
	assert.False(t, it.Prev())

	require.True(t, it.Next())
	assert.Equal(t, 'w', current(t, it))

	it = FromString("world").Iterator(2, 1, 4)
	assert.Equal(t, 2, it.Advance(10))
	assert.Equal(t, 4, it.Offset())
	assert.True(t, it.OutOfBounds())
	assert.False(t, it.Next())
	assert.Equal(t, -4, it.Advance(-10))
	assert.Equal(t, 0, it.Offset())
	assert.Equal(t, 3, it.Length())
}

func TestIteratorAdvance(t *testing.T) {
	for _, size := range []int{1, 2, DefaultChunkSize} {
		it := FromString("world", WithChunkSize(size)).Iterator(0, 0, 5)
		it.Advance(4)
		assert.Equal(t, 'd', current(t, it))
		it.Advance(-2)
		assert.Equal(t, 'r', current(t, it))
		it.Reset(1)
		assert.Equal(t, 'o', current(t, it))
	}
}

func TestIteratorRead(t *testing.T) {
	for _, size := range []int{1, 2, DefaultChunkSize} {
		it := FromString("world", WithChunkSize(size)).Iterator(0, 0, 5)
		assert.Equal(t, "wor", it.Peek(3))
		assert.Equal(t, 0, it.Offset())
		assert.Equal(t, "worl", it.Read(4))
		assert.Equal(t, 'd', current(t, it))
		assert.Equal(t, "orl", it.RPeek(3))
		assert.Equal(t, "rl", it.RRead(2))
		assert.Equal(t, 'r', current(t, it))
		assert.Equal(t, "wo", it.RRead(10))
		assert.Equal(t, "world", it.Read(10))
		assert.Equal(t, "", it.Read(1))
	}
}

func TestIteratorSurrogates(t *testing.T) {
	tx := FromString("a😀b", WithChunkSize(1))
	it := tx.Iterator(0, 0, tx.Length())

	assert.Equal(t, "a", it.Read(2), "read stops before a split pair")
	assert.Equal(t, 1, it.Offset())
	assert.Equal(t, '😀', current(t, it))

	require.True(t, it.Next())
	assert.Equal(t, 3, it.Offset())
	assert.Equal(t, 'b', current(t, it))
	assert.Equal(t, "", it.RRead(1))
	assert.Equal(t, "😀", it.RRead(2))

	it.Reset(2)
	assert.Equal(t, 1, it.Offset(), "offsets inside a pair snap down")
}

func TestIteratorFind(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		size   int
		from   int
		to     int
		query  string
		found  bool
		offset int
	}{
		{"single chunk", "hello, world", DefaultChunkSize, 0, 12, "world", true, 7},
		{"tiny chunks", "hello, world!!!", 1, 0, 15, "world", true, 7},
		{"across chunks", "hello, world!!!", 3, 0, 15, "world", true, 7},
		{"missing", "hello, world", DefaultChunkSize, 0, 12, "eee", false, 12},
		{"past bound", "hello, world", DefaultChunkSize, 0, 3, "hello", false, 3},
		{"missing across chunks", "/*abcdefghijklmonpqrsuvwxyz0123456789@!*/", 5, 0, 8, "*/", false, 8},
		{"found across chunks", "/*abcdefghijklmonpqrsuvwxyz0123456789@!*/", 5, 0, 41, "*/", true, 39},
		{"multibyte", "日本語😀テキスト", 2, 0, 10, "テキ", true, 5},
		{"empty query", "abc", 1, 1, 3, "", true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := FromString(tt.input, WithChunkSize(tt.size))
			it := tx.Iterator(tt.from, tt.from, tt.to)
			assert.Equal(t, tt.found, it.Find(tt.query))
			assert.Equal(t, tt.offset, it.Offset())
			if tt.found && tt.query != "" {
				assert.Equal(t, tt.query, it.Peek(metrics.UTF16Len(tt.query)))
			}
		})
	}
}

func TestIteratorFindRepeated(t *testing.T) {
	tx := FromString(strings.Repeat("ab", 50), WithChunkSize(7))
	it := tx.Iterator(0, 0, tx.Length())
	count := 0
	for it.Find("ba") {
		assert.Equal(t, 1, it.Offset()%2)
		count++
		it.Next()
	}
	assert.Equal(t, 49, count)
}

func TestIteratorClone(t *testing.T) {
	it := FromString("abcdef", WithChunkSize(2)).Iterator(1, 0, 6)
	clone := it.Clone()
	it.Advance(3)
	assert.Equal(t, 'e', current(t, it))
	assert.Equal(t, 'b', current(t, clone))
}

func TestIteratorMatchesContent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := strings.Join(rapid.SliceOfN(rapid.SampledFrom([]string{"a", "b", "\n", "é", "😀"}), 0, 50).Draw(rt, "input"), "")
		tx := FromString(input, WithChunkSize(rapid.IntRange(1, 8).Draw(rt, "size")))
		m := newModel(input)
		from := rapid.IntRange(0, len(m)).Draw(rt, "from")
		to := rapid.IntRange(from, len(m)).Draw(rt, "to")
		from, to = m.snap(from), m.snap(to)

		it := tx.Iterator(from, from, to)
		var forward strings.Builder
		for {
			r, ok := it.Current()
			if !ok {
				break
			}
			forward.WriteRune(r)
			it.Next()
		}
		if forward.String() != m.content(from, to) {
			rt.Fatalf("forward walk %q, want %q", forward.String(), m.content(from, to))
		}

		it.Reset(from)
		if got := it.Read(to - from); got != m.content(from, to) {
			rt.Fatalf("read %q, want %q", got, m.content(from, to))
		}
		if got := it.RRead(to - from); got != m.content(from, to) {
			rt.Fatalf("rread %q, want %q", got, m.content(from, to))
		}
		if it.Offset() != from {
			rt.Fatalf("rread ended at %d, want %d", it.Offset(), from)
		}
	})
}
