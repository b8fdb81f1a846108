package analysis_test

import (
	"testing"

	"github.com/TFMV/codemetrics/analysis"
	"github.com/TFMV/codemetrics/syntax"
	"github.com/stretchr/testify/assert"
)

func node(kind syntax.Kind, children ...*syntax.Node) *syntax.Node {
	return syntax.New(kind, syntax.Span{Start: 1, End: 1}, children...)
}

func binary(op syntax.Op, children ...*syntax.Node) *syntax.Node {
	n := node(syntax.KindBinary, children...)
	n.Op = op
	return n
}

func arm(guard *syntax.Node, children ...*syntax.Node) *syntax.Node {
	n := node(syntax.KindArm, children...)
	n.Guard = guard
	return n
}

func fn(body ...*syntax.Node) *syntax.Node {
	return node(syntax.KindFunction, node(syntax.KindBlock, body...))
}

func TestComplexity(t *testing.T) {
	tests := []struct {
		name string
		root *syntax.Node
		want int
	}{
		{name: "nil tree", root: nil, want: 0},
		{name: "empty function", root: fn(), want: 1},
		{name: "method", root: node(syntax.KindMethod), want: 1},
		{
			name: "straight line code",
			root: fn(node(syntax.KindStmtLocal, node(syntax.KindCall)), node(syntax.KindReturn)),
			want: 1,
		},
		{
			name: "if",
			root: fn(node(syntax.KindStmtLocal), node(syntax.KindIf, binary(syntax.OpOther))),
			want: 2,
		},
		{
			name: "if else counts once",
			root: fn(node(syntax.KindIf, binary(syntax.OpOther), node(syntax.KindBlock), node(syntax.KindBlock))),
			want: 2,
		},
		{
			name: "if with and",
			root: fn(node(syntax.KindIf, binary(syntax.OpAnd, binary(syntax.OpOther), binary(syntax.OpOther)))),
			want: 3,
		},
		{
			name: "nested short circuits",
			root: fn(node(syntax.KindReturn, binary(syntax.OpOr, binary(syntax.OpAnd), binary(syntax.OpOr, binary(syntax.OpAnd))))),
			want: 5,
		},
		{
			name: "loops",
			root: fn(node(syntax.KindFor), node(syntax.KindWhile), node(syntax.KindLoop)),
			want: 3,
		},
		{
			name: "single arm match",
			root: fn(node(syntax.KindMatch, arm(nil))),
			want: 1,
		},
		{
			name: "multi arm match",
			root: fn(node(syntax.KindMatch, arm(nil), arm(nil), arm(nil))),
			want: 2,
		},
		{
			name: "guarded arms",
			root: fn(node(syntax.KindMatch, arm(node(syntax.KindExpr)), arm(binary(syntax.OpAnd)), arm(nil))),
			want: 5,
		},
		{
			name: "guard on single arm",
			root: fn(node(syntax.KindMatch, arm(node(syntax.KindExpr)))),
			want: 2,
		},
		{
			name: "if nested in loop",
			root: fn(node(syntax.KindFor, node(syntax.KindBlock, node(syntax.KindIf)))),
			want: 3,
		},
		{
			name: "nested function and closure",
			root: fn(node(syntax.KindStmtItem, node(syntax.KindItem, fn())), node(syntax.KindClosure, node(syntax.KindIf))),
			want: 3,
		},
		{
			name: "unknown kinds are visited but add nothing",
			root: fn(node(syntax.KindUnknown, node(syntax.Kind(999), node(syntax.KindIf)))),
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analysis.Complexity(tt.root))
		})
	}
}

func TestComplexity_SiblingOrder(t *testing.T) {
	a := node(syntax.KindIf, binary(syntax.OpAnd))
	b := node(syntax.KindWhile)
	c := node(syntax.KindMatch, arm(nil), arm(node(syntax.KindExpr)))

	assert.Equal(t, analysis.Complexity(fn(a, b, c)), analysis.Complexity(fn(c, a, b)))
	assert.Equal(t, 6, analysis.Complexity(fn(b, c, a)))
}

func TestComplexity_AddingIf(t *testing.T) {
	base := fn(node(syntax.KindFor, node(syntax.KindBlock)))
	before := analysis.Complexity(base)

	base.Children[0].Append(node(syntax.KindIf, binary(syntax.OpOther)))
	assert.Equal(t, before+1, analysis.Complexity(base))
}
