package analysis

import "github.com/TFMV/codemetrics/syntax"

// Complexity returns the cyclomatic complexity of the subtree rooted at n.
// Every function or method entry adds one, nested ones included, and so does
// every decision point below it. A nil tree scores 0.
func Complexity(n *syntax.Node) int {
	var score int
	visitComplexity(n, &score)
	return score
}

func visitComplexity(n *syntax.Node, score *int) {
	if n == nil {
		return
	}

	switch n.Kind {
	case syntax.KindFunction, syntax.KindMethod:
		*score++
	case syntax.KindIf, syntax.KindFor, syntax.KindWhile:
		*score++
	case syntax.KindMatch:
		if n.Arms() > 1 {
			*score++
		}
	case syntax.KindArm:
		if n.Guard != nil {
			*score++
		}
	case syntax.KindBinary:
		if n.Op.ShortCircuit() {
			*score++
		}
	default:
		// closures, loops without a condition, calls and the rest add nothing
	}

	visitComplexity(n.Guard, score)
	for _, c := range n.Children {
		visitComplexity(c, score)
	}
}
