package metrics

import "unicode/utf8"

// Metrics is the aggregate summary of a run of text.
//
// Lengths are counted in UTF-16 code units, columns in code points.
// Width fields are sparse: a width is stored only when it differs from
// columns*defaultWidth, so uniform text never stores widths. An unstored
// width field is zero; a stored width may be zero too, for a line of
// combining marks.
type Metrics struct {
	// Length is the number of UTF-16 code units.
	Length int

	// LineBreaks is the number of '\n' characters.
	LineBreaks int

	// First is the column count of the first line.
	First int

	// Last is the column count of the last line.
	Last int

	// Longest is the column count of the longest line.
	Longest int

	FirstWidth   float64
	LastWidth    float64
	LongestWidth float64

	// stored marks the width fields that hold a value.
	stored widthSet
}

type widthSet uint8

const (
	firstStored widthSet = 1 << iota
	lastStored
	longestStored
)

// IsZero reports whether m is the identity summary.
func (m Metrics) IsZero() bool {
	return m == Metrics{}
}

// Widths returns the first, last and longest line widths with the
// sparse representation expanded.
func (m Metrics) Widths(defaultWidth float64) (first, last, longest float64) {
	return m.expand(firstStored, m.FirstWidth, m.First, defaultWidth),
		m.expand(lastStored, m.LastWidth, m.Last, defaultWidth),
		m.expand(longestStored, m.LongestWidth, m.Longest, defaultWidth)
}

// Combine concatenates two summaries (monoid operation).
// The result describes the text of m followed by the text of other.
func (m Metrics) Combine(other Metrics, defaultWidth float64) Metrics {
	if m.IsZero() {
		return other
	}
	if other.IsZero() {
		return m
	}

	result := Metrics{
		Length:     m.Length + other.Length,
		LineBreaks: m.LineBreaks + other.LineBreaks,
		First:      m.First,
		Last:       other.Last,
		Longest:    max(m.Longest, m.Last+other.First, other.Longest),
	}
	if m.LineBreaks == 0 {
		result.First += other.First
	}
	if other.LineBreaks == 0 {
		result.Last += m.Last
	}

	if m.stored != 0 || other.stored != 0 {
		af, al, alg := m.Widths(defaultWidth)
		bf, bl, blg := other.Widths(defaultWidth)
		first, last := af, bl
		if m.LineBreaks == 0 {
			first += bf
		}
		if other.LineBreaks == 0 {
			last += al
		}
		longest := max(alg, al+bf, blg)
		result.setWidths(first, last, longest, defaultWidth)
	}

	return result
}

func (m Metrics) expand(bit widthSet, width float64, columns int, defaultWidth float64) float64 {
	if m.stored&bit == 0 {
		return float64(columns) * defaultWidth
	}
	return width
}

// setWidths stores the widths that differ from the default product.
func (m *Metrics) setWidths(first, last, longest, defaultWidth float64) {
	m.stored = 0
	m.FirstWidth = m.sparse(firstStored, first, m.First, defaultWidth)
	m.LastWidth = m.sparse(lastStored, last, m.Last, defaultWidth)
	m.LongestWidth = m.sparse(longestStored, longest, m.Longest, defaultWidth)
}

func (m *Metrics) sparse(bit widthSet, width float64, columns int, defaultWidth float64) float64 {
	if width == float64(columns)*defaultWidth {
		return 0
	}
	m.stored |= bit
	return width
}

// FromString computes metrics for s using m to measure line widths.
// A nil measurer measures every code point at width 1.
func FromString(s string, m Measurer) Metrics {
	if m == nil {
		m = Fixed(1)
	}
	dw := m.DefaultWidth()

	var result Metrics
	result.Length = UTF16Len(s)

	lineStart := 0
	first := true
	var firstWidth, lastWidth, longestWidth float64
	closeLine := func(line string) {
		columns, width := m.Measure(line)
		if first {
			result.First = columns
			firstWidth = width
			first = false
		}
		result.Last = columns
		lastWidth = width
		if columns > result.Longest {
			result.Longest = columns
		}
		if width > longestWidth {
			longestWidth = width
		}
	}

	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			closeLine(s[lineStart:i])
			result.LineBreaks++
			lineStart = i + 1
		}
	}
	closeLine(s[lineStart:])

	result.setWidths(firstWidth, lastWidth, longestWidth, dw)
	return result
}

// UTF16Len returns the number of UTF-16 code units needed to encode s.
func UTF16Len(s string) int {
	n := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			n++
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		n += RuneUTF16Len(r)
	}
	return n
}

// RuneUTF16Len returns 2 for code points outside the Basic Multilingual
// Plane and 1 otherwise.
func RuneUTF16Len(r rune) int {
	if r >= 0x10000 && r <= utf8.MaxRune {
		return 2
	}
	return 1
}
