package metrics

import (
	"github.com/mattn/go-runewidth"
)

// Measurer converts code points to widths.
// Widths must be additive: the width of a string is the sum of the widths
// of its code points.
type Measurer interface {
	// DefaultWidth is the width of a typical code point.
	DefaultWidth() float64

	// Measure returns the number of code points in line and its total width.
	// The line never contains a line break.
	Measure(line string) (columns int, width float64)
}

// Fixed measures every code point at the same width.
type Fixed float64

// DefaultWidth implements Measurer.
func (f Fixed) DefaultWidth() float64 { return float64(f) }

// Measure implements Measurer.
func (f Fixed) Measure(line string) (int, float64) {
	columns := 0
	for range line {
		columns++
	}
	return columns, float64(columns) * float64(f)
}

// RuneWidth measures code points in terminal cells.
// Wide East Asian characters take two cells, combining marks take none.
type RuneWidth struct {
	cond     *runewidth.Condition
	tabWidth int
}

// RuneWidthOption configures a RuneWidth measurer.
type RuneWidthOption func(*RuneWidth)

// WithTabWidth makes a tab character count as n cells.
func WithTabWidth(n int) RuneWidthOption {
	return func(m *RuneWidth) {
		if n > 0 {
			m.tabWidth = n
		}
	}
}

// WithEastAsianAmbiguousWide treats ambiguous-width characters as wide.
func WithEastAsianAmbiguousWide() RuneWidthOption {
	return func(m *RuneWidth) {
		m.cond.EastAsianWidth = true
	}
}

// NewRuneWidth creates a cell-width measurer.
func NewRuneWidth(opts ...RuneWidthOption) *RuneWidth {
	m := &RuneWidth{
		cond:     runewidth.NewCondition(),
		tabWidth: 4,
	}
	m.cond.EastAsianWidth = false
	for _, opt := range opts {
		opt(m)
	}
	m.cond.CreateLUT()
	return m
}

// DefaultWidth implements Measurer.
func (m *RuneWidth) DefaultWidth() float64 { return 1 }

// Measure implements Measurer.
func (m *RuneWidth) Measure(line string) (int, float64) {
	columns, width := 0, 0
	for _, r := range line {
		columns++
		width += m.RuneWidth(r)
	}
	return columns, float64(width)
}

// RuneWidth returns the cell width of a single code point.
func (m *RuneWidth) RuneWidth(r rune) int {
	if r == '\t' {
		return m.tabWidth
	}
	return m.cond.RuneWidth(r)
}
