package analysis

import (
	"slices"

	"github.com/TFMV/codemetrics/syntax"
)

// LineSet is the line footprint of a token stream.
type LineSet struct {
	// Span runs from the lowest start line to the highest end line of the
	// top-level tokens; it is zero for an empty stream.
	Span  syntax.Span
	Lines map[int]struct{}
}

// Len returns the number of distinct touched lines.
func (s LineSet) Len() int {
	return len(s.Lines)
}

// Sorted returns the touched lines in ascending order.
func (s LineSet) Sorted() []int {
	out := make([]int, 0, len(s.Lines))
	for l := range s.Lines {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}

// ExtractLines collects the span of a unit's tokens and the set of lines that
// hold code. A group contributes its inner tokens plus its own start and end
// line, so lines holding only a delimiter still count; a leaf contributes only
// its start line.
func ExtractLines(tokens []syntax.Token) LineSet {
	set := LineSet{Lines: make(map[int]struct{})}
	for i, tok := range tokens {
		if i == 0 {
			set.Span = tok.Span
		} else {
			set.Span.Start = min(set.Span.Start, tok.Span.Start)
			set.Span.End = max(set.Span.End, tok.Span.End)
		}
		touch(tok, set.Lines)
	}
	return set
}

func touch(tok syntax.Token, lines map[int]struct{}) {
	if !tok.IsGroup() {
		lines[tok.Span.Start] = struct{}{}
		return
	}
	for _, inner := range tok.Inner {
		touch(inner, lines)
	}
	lines[tok.Span.Start] = struct{}{}
	lines[tok.Span.End] = struct{}{}
}
