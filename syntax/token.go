package syntax

// Span is a 1-based, inclusive source line range. The zero Span covers nothing.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// IsZero reports whether the span is empty.
func (s Span) IsZero() bool {
	return s.Start == 0 && s.End == 0
}

// Lines returns End-Start+1. The zero span counts as one line.
func (s Span) Lines() int {
	return s.End - s.Start + 1
}

// Cover returns the smallest span containing both s and o.
func (s Span) Cover(o Span) Span {
	if s.IsZero() {
		return o
	}
	if o.IsZero() {
		return s
	}
	return Span{Start: min(s.Start, o.Start), End: max(s.End, o.End)}
}

// Lexeme is a flat lexical token as produced by a lexer, before grouping.
type Lexeme struct {
	Text   string
	Span   Span
	Offset int
}

// Token is either a leaf or a delimited group of tokens.
type Token struct {
	Text  string
	Span  Span
	Inner []Token
	group bool
}

// IsGroup reports whether the token is a bracketed sub-sequence.
func (t Token) IsGroup() bool {
	return t.group
}

// Leaf builds a leaf token.
func Leaf(text string, span Span) Token {
	return Token{Text: text, Span: span}
}

// Group builds a group token spanning from its opening to its closing delimiter.
func Group(open string, span Span, inner ...Token) Token {
	return Token{Text: open, Span: span, Inner: inner, group: true}
}

var closers = map[string]string{"(": ")", "[": "]", "{": "}"}

// GroupTokens folds a flat lexeme sequence into delimiter trees. A group's span
// runs from its opening to its closing delimiter; the delimiters themselves are
// not kept as inner tokens. Stray closers stay leaves and unclosed groups end at
// the last lexeme.
func GroupTokens(lexemes []Lexeme) []Token {
	type frame struct {
		open  Lexeme
		close string
		inner []Token
	}

	var (
		stack []frame
		top   []Token
	)
	emit := func(t Token) {
		if len(stack) == 0 {
			top = append(top, t)
			return
		}
		f := &stack[len(stack)-1]
		f.inner = append(f.inner, t)
	}

	var last Span
	for _, lx := range lexemes {
		last = lx.Span
		if c, ok := closers[lx.Text]; ok {
			stack = append(stack, frame{open: lx, close: c})
			continue
		}
		if len(stack) > 0 && lx.Text == stack[len(stack)-1].close {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			emit(Group(f.open.Text, Span{Start: f.open.Span.Start, End: lx.Span.End}, f.inner...))
			continue
		}
		emit(Leaf(lx.Text, lx.Span))
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		emit(Group(f.open.Text, Span{Start: f.open.Span.Start, End: last.End}, f.inner...))
	}

	return top
}

// Slice returns the lexemes whose offsets fall in [start, end).
func Slice(lexemes []Lexeme, start, end int) []Lexeme {
	var out []Lexeme
	for _, lx := range lexemes {
		if lx.Offset >= start && lx.Offset < end {
			out = append(out, lx)
		}
	}
	return out
}
