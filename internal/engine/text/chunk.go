package text

import (
	"unicode/utf8"

	"github.com/mezzoeditor/mezzo-sub000/internal/engine/metrics"
)

// DefaultChunkSize is the number of UTF-16 code units per chunk when
// no size is configured.
const DefaultChunkSize = 1000

// splitChunks cuts s into pieces of about size code units.
// A piece never ends inside a code point, and a tail shorter than half a
// chunk is folded into the previous piece.
func splitChunks(s string, size int) []string {
	if s == "" {
		return nil
	}
	if size < 1 {
		size = 1
	}

	var chunks []string
	start, units := 0, 0
	for i, r := range s {
		if units >= size {
			chunks = append(chunks, s[start:i])
			start, units = i, 0
		}
		units += metrics.RuneUTF16Len(r)
	}
	chunks = append(chunks, s[start:])

	if n := len(chunks); n > 1 && units < size/2 {
		chunks[n-2] += chunks[n-1]
		chunks = chunks[:n-1]
	}
	return chunks
}

// byteIndex converts a UTF-16 offset inside s to a byte index.
// An offset inside a surrogate pair maps to the start of the pair.
// length is the UTF-16 length of s and enables the ASCII fast path.
func byteIndex(s string, length, units int) int {
	if units <= 0 {
		return 0
	}
	if units >= length {
		return len(s)
	}
	if length == len(s) {
		return units
	}
	n := 0
	for i, r := range s {
		if n >= units {
			return i
		}
		n += metrics.RuneUTF16Len(r)
		if n > units {
			return i
		}
	}
	return len(s)
}

// snapOffset returns the largest offset not above units that does not
// fall inside a surrogate pair of s.
func snapOffset(s string, length, units int) int {
	if units <= 0 {
		return 0
	}
	if units >= length {
		return length
	}
	if length == len(s) {
		return units
	}
	return metrics.UTF16Len(s[:byteIndex(s, length, units)])
}

// runeBefore decodes the code point ending at byte index i.
func runeBefore(s string, i int) (rune, int) {
	return utf8.DecodeLastRuneInString(s[:i])
}
