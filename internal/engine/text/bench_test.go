package text

import (
	"math/rand"
	"strings"
	"testing"
)

func generateLines(lines, lineLen int) string {
	var sb strings.Builder
	sb.Grow(lines * (lineLen + 1))
	for i := 0; i < lines; i++ {
		for j := 0; j < lineLen; j++ {
			sb.WriteByte(byte('a' + rand.Intn(26)))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func BenchmarkFromString(b *testing.B) {
	s := generateLines(10000, 80)
	b.SetBytes(int64(len(s)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		FromString(s)
	}
}

func BenchmarkReplaceRandom(b *testing.B) {
	tx := FromString(generateLines(10000, 80))
	n := tx.Length()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		from := rand.Intn(n)
		tx, _ = tx.Replace(from, min(from+3, n), "xyz")
	}
}

func BenchmarkOffsetToPosition(b *testing.B) {
	tx := FromString(generateLines(10000, 80))
	n := tx.Length()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tx.OffsetToPosition(rand.Intn(n))
	}
}

func BenchmarkPositionToOffset(b *testing.B) {
	tx := FromString(generateLines(10000, 80))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tx.PositionToOffset(Position{Line: rand.Intn(10000), Column: 40}, true)
	}
}

func BenchmarkIteratorWalk(b *testing.B) {
	tx := FromString(generateLines(1000, 80))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it := tx.Iterator(0, 0, tx.Length())
		for it.Next() {
		}
	}
}

func BenchmarkIteratorFind(b *testing.B) {
	tx := FromString(generateLines(1000, 80) + "needle")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it := tx.Iterator(0, 0, tx.Length())
		it.Find("needle")
	}
}
