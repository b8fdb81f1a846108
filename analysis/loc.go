package analysis

import (
	"github.com/TFMV/codemetrics/syntax"
	"github.com/TFMV/codemetrics/types"
)

// LogicalLines counts the logical lines of a unit: one for the unit itself plus
// one for every item, local binding, nested item and statement-like expression
// in the tree. A call on the right of a binding counts for both.
func LogicalLines(root *syntax.Node) int {
	lloc := 1
	visitLogical(root, &lloc)
	return lloc
}

func visitLogical(n *syntax.Node, lloc *int) {
	if n == nil {
		return
	}

	if countsAsLogical(n.Kind) {
		*lloc++
	}

	visitLogical(n.Guard, lloc)
	for _, c := range n.Children {
		visitLogical(c, lloc)
	}
}

func countsAsLogical(k syntax.Kind) bool {
	switch k {
	case syntax.KindItem, syntax.KindStmtLocal, syntax.KindStmtItem:
		return true
	case syntax.KindAssign, syntax.KindAssignOp,
		syntax.KindContinue, syntax.KindBreak,
		syntax.KindFor, syntax.KindLoop, syntax.KindIf, syntax.KindWhile,
		syntax.KindAwait, syntax.KindLet, syntax.KindReturn, syntax.KindYield,
		syntax.KindUnsafe, syntax.KindMatch, syntax.KindTry, syntax.KindRepeat,
		syntax.KindStruct, syntax.KindField:
		return true
	case syntax.KindCall, syntax.KindMethodCall, syntax.KindMacro:
		return true
	case syntax.KindUnknown, syntax.KindFile, syntax.KindFunction, syntax.KindMethod,
		syntax.KindClosure, syntax.KindBlock, syntax.KindStmtExpr, syntax.KindArm,
		syntax.KindBinary, syntax.KindExpr:
		return false
	}
	return false
}

// CountLines returns the source, physical and logical line counts of a unit.
func CountLines(u syntax.Unit) types.LineCounts {
	counts, _ := measureLines(u)
	return counts
}
