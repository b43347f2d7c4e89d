package highlight

import (
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/metrics"
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/text"
)

// Mode is the kind of construct a CommentLexer is inside.
type Mode uint8

const (
	ModeCode Mode = iota
	ModeLineComment
	ModeBlockComment
	ModeString
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeCode:
		return "code"
	case ModeLineComment:
		return "line-comment"
	case ModeBlockComment:
		return "block-comment"
	case ModeString:
		return "string"
	default:
		return "unknown"
	}
}

// CommentState is the state of a CommentLexer between two code points.
type CommentState struct {
	Mode Mode

	// Quote closes the current string.
	Quote rune

	// Pending is a code point that changes the meaning of the next one:
	// '/' in code, '*' in a block comment, '\\' in a string.
	Pending rune
}

// Kind classifies a span of text.
type Kind uint8

const (
	KindCode Kind = iota
	KindComment
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindComment:
		return "comment"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Span is a range of text of one kind.
type Span struct {
	From, To int
	Kind     Kind
}

// CommentLexer recognizes C-style comments and quoted strings. Strings
// quoted with backticks may span lines; other strings end at a newline.
type CommentLexer struct{}

// InitialState implements Delegate.
func (CommentLexer) InitialState() CommentState {
	return CommentState{}
}

// EqualStates implements Delegate.
func (CommentLexer) EqualStates(a, b CommentState) bool {
	return a == b
}

// NewIndexer implements Delegate.
func (l CommentLexer) NewIndexer(t *text.Text, offset int, state CommentState) func(int) CommentState {
	it := t.Iterator(offset, offset, t.Length())
	return func(target int) CommentState {
		for it.Offset() < target {
			r, ok := it.Current()
			if !ok {
				break
			}
			state = l.Step(state, r)
			it.Next()
		}
		return state
	}
}

// Step returns the state after r.
func (CommentLexer) Step(s CommentState, r rune) CommentState {
	switch s.Mode {
	case ModeCode:
		if s.Pending == '/' {
			s.Pending = 0
			switch r {
			case '/':
				s.Mode = ModeLineComment
				return s
			case '*':
				s.Mode = ModeBlockComment
				return s
			}
		}
		switch r {
		case '/':
			s.Pending = '/'
		case '"', '\'', '`':
			s.Mode = ModeString
			s.Quote = r
		}
	case ModeLineComment:
		if r == '\n' {
			s.Mode = ModeCode
		}
	case ModeBlockComment:
		if s.Pending == '*' && r == '/' {
			s.Mode = ModeCode
			s.Pending = 0
			return s
		}
		s.Pending = 0
		if r == '*' {
			s.Pending = '*'
		}
	case ModeString:
		switch {
		case s.Pending == '\\':
			s.Pending = 0
		case r == '\\':
			s.Pending = '\\'
		case r == s.Quote, r == '\n' && s.Quote != '`':
			s.Mode = ModeCode
			s.Quote = 0
		}
	}
	return s
}

func kindOf(before, after Mode) Kind {
	switch {
	case before == ModeLineComment || before == ModeBlockComment ||
		after == ModeLineComment || after == ModeBlockComment:
		return KindComment
	case before == ModeString || after == ModeString:
		return KindString
	default:
		return KindCode
	}
}

// Tokenize splits [from, to) into spans, starting in state. Adjacent spans
// always differ in kind.
func (l CommentLexer) Tokenize(t *text.Text, from, to int, state CommentState) []Span {
	var spans []Span
	push := func(from, to int, kind Kind) {
		if from >= to {
			return
		}
		if n := len(spans); n > 0 && spans[n-1].Kind == kind && spans[n-1].To == from {
			spans[n-1].To = to
			return
		}
		spans = append(spans, Span{From: from, To: to, Kind: kind})
	}

	it := t.Iterator(from, from, to)
	for {
		r, ok := it.Current()
		if !ok {
			break
		}
		offset := it.Offset()
		next := l.Step(state, r)
		kind := kindOf(state.Mode, next.Mode)
		if kind == KindComment && state.Mode == ModeCode {
			// The slash opening the comment was lexed as code.
			if n := len(spans); n > 0 && spans[n-1].To == offset && spans[n-1].From < offset {
				spans[n-1].To--
				if spans[n-1].From == spans[n-1].To {
					spans = spans[:n-1]
				}
				push(offset-1, offset, KindComment)
			}
		}
		push(offset, offset+metrics.RuneUTF16Len(r), kind)
		state = next
		it.Next()
	}
	return spans
}
