// Package syntax defines the language-neutral syntax tree and token stream that the
// metric visitors walk. Frontends in package parser lower Go and Rust sources into it.
package syntax

// Kind identifies the syntactic category of a Node.
type Kind int

const (
	KindUnknown Kind = iota

	// Declarations and containers
	KindFile
	KindItem
	KindFunction
	KindMethod
	KindClosure
	KindBlock

	// Statements
	KindStmtLocal
	KindStmtItem
	KindStmtExpr

	// Statement-like expressions
	KindAssign
	KindAssignOp
	KindContinue
	KindBreak
	KindFor
	KindLoop
	KindIf
	KindWhile
	KindAwait
	KindLet
	KindReturn
	KindYield
	KindUnsafe
	KindMatch
	KindArm
	KindTry
	KindRepeat
	KindStruct
	KindField

	// Invocations
	KindCall
	KindMethodCall
	KindMacro

	// Operators and everything else an expression can be
	KindBinary
	KindExpr
)

var kindNames = map[Kind]string{
	KindUnknown:    "unknown",
	KindFile:       "file",
	KindItem:       "item",
	KindFunction:   "function",
	KindMethod:     "method",
	KindClosure:    "closure",
	KindBlock:      "block",
	KindStmtLocal:  "stmt_local",
	KindStmtItem:   "stmt_item",
	KindStmtExpr:   "stmt_expr",
	KindAssign:     "assign",
	KindAssignOp:   "assign_op",
	KindContinue:   "continue",
	KindBreak:      "break",
	KindFor:        "for",
	KindLoop:       "loop",
	KindIf:         "if",
	KindWhile:      "while",
	KindAwait:      "await",
	KindLet:        "let",
	KindReturn:     "return",
	KindYield:      "yield",
	KindUnsafe:     "unsafe",
	KindMatch:      "match",
	KindArm:        "arm",
	KindTry:        "try",
	KindRepeat:     "repeat",
	KindStruct:     "struct",
	KindField:      "field",
	KindCall:       "call",
	KindMethodCall: "method_call",
	KindMacro:      "macro",
	KindBinary:     "binary",
	KindExpr:       "expr",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Op classifies the operator of a KindBinary node.
type Op int

const (
	OpOther Op = iota
	OpAnd
	OpOr
)

// ShortCircuit reports whether the operator is a logical AND or OR.
func (o Op) ShortCircuit() bool {
	return o == OpAnd || o == OpOr
}

// Node is one syntax tree node. Kind-specific data lives in Op (binary operators)
// and Guard (match arms); everything else is reached through Children.
type Node struct {
	Kind     Kind
	Span     Span
	Op       Op
	Guard    *Node
	Children []*Node
}

// New builds a node of the given kind, dropping nil children.
func New(kind Kind, span Span, children ...*Node) *Node {
	n := &Node{Kind: kind, Span: span}
	n.Append(children...)
	return n
}

// Append adds non-nil children in order.
func (n *Node) Append(children ...*Node) {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
}

// Arms returns the number of KindArm children.
func (n *Node) Arms() int {
	count := 0
	for _, c := range n.Children {
		if c.Kind == KindArm {
			count++
		}
	}
	return count
}

// UnitKind tells what an analyzed unit is.
type UnitKind string

const (
	UnitFunction UnitKind = "function"
	UnitMethod   UnitKind = "method"
	UnitFile     UnitKind = "file"
)

// Unit is one analyzable piece of source with its tree and tokens.
type Unit struct {
	Name   string
	Kind   UnitKind
	Root   *Node
	Tokens []Token
}

// SourceFile is everything a frontend extracts from one file.
type SourceFile struct {
	Path      string
	Language  string
	Unit      Unit
	Functions []Unit
}
