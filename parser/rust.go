package parser

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/TFMV/codemetrics/syntax"
)

const LangRust = "rust"

// ErrSyntax is returned when tree-sitter recovered from errors in the source.
var ErrSyntax = errors.New("syntax error")

// RustFrontend lowers Rust sources with the tree-sitter Rust grammar.
type RustFrontend struct{}

func (f *RustFrontend) Language() string     { return LangRust }
func (f *RustFrontend) Extensions() []string { return []string{".rs"} }

func (f *RustFrontend) Parse(path string, src []byte) (*syntax.SourceFile, error) {
	sp := sitter.NewParser()
	defer sp.Close()
	sp.SetLanguage(rust.GetLanguage())

	tree, err := sp.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%w near line %d", ErrSyntax, firstErrorLine(root))
	}

	var lexemes []syntax.Lexeme
	rustLexemes(root, src, &lexemes)

	l := &rustLowerer{src: src}
	file := l.file(root)

	out := &syntax.SourceFile{Path: path, Language: LangRust}
	for _, u := range l.units {
		out.Functions = append(out.Functions,
			unit(u.name, u.kind, u.root, lexemes, int(u.ts.StartByte()), int(u.ts.EndByte())))
	}

	tokens := syntax.GroupTokens(lexemes)
	file.Span = spanOf(tokens)
	out.Unit = syntax.Unit{Name: path, Kind: syntax.UnitFile, Root: file, Tokens: tokens}
	return out, nil
}

func firstErrorLine(n *sitter.Node) int {
	if n.Type() == "ERROR" || n.IsMissing() {
		return int(n.StartPoint().Row) + 1
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.HasError() {
			return firstErrorLine(c)
		}
	}
	return int(n.StartPoint().Row) + 1
}

// rustLexemes collects the leaves of the tree in source order. Comments are
// dropped and string or char literals stay whole.
func rustLexemes(n *sitter.Node, src []byte, out *[]syntax.Lexeme) {
	switch n.Type() {
	case "line_comment", "block_comment":
		return
	case "string_literal", "raw_string_literal", "char_literal":
	default:
		if n.ChildCount() > 0 {
			for i := 0; i < int(n.ChildCount()); i++ {
				rustLexemes(n.Child(i), src, out)
			}
			return
		}
	}
	if n.StartByte() == n.EndByte() {
		return
	}
	*out = append(*out, syntax.Lexeme{
		Text:   n.Content(src),
		Span:   tsSpan(n),
		Offset: int(n.StartByte()),
	})
}

func tsSpan(n *sitter.Node) syntax.Span {
	return syntax.Span{Start: int(n.StartPoint().Row) + 1, End: int(n.EndPoint().Row) + 1}
}

var rustItems = map[string]bool{
	"function_item":            true,
	"function_signature_item":  true,
	"struct_item":              true,
	"enum_item":                true,
	"union_item":               true,
	"impl_item":                true,
	"trait_item":               true,
	"mod_item":                 true,
	"use_declaration":          true,
	"const_item":               true,
	"static_item":              true,
	"type_item":                true,
	"macro_definition":         true,
	"extern_crate_declaration": true,
	"foreign_mod_item":         true,
}

type rustUnit struct {
	name string
	kind syntax.UnitKind
	root *syntax.Node
	ts   *sitter.Node
}

type rustLowerer struct {
	src   []byte
	units []rustUnit
}

func (l *rustLowerer) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(l.src)
}

// file lowers the crate root. Free functions and impl methods declared at the
// top level become units of their own.
func (l *rustLowerer) file(root *sitter.Node) *syntax.Node {
	file := syntax.New(syntax.KindFile, tsSpan(root))
	for i := 0; i < int(root.NamedChildCount()); i++ {
		c := root.NamedChild(i)
		switch c.Type() {
		case "function_item":
			fn := l.function(c, syntax.KindFunction)
			file.Append(syntax.New(syntax.KindItem, tsSpan(c), fn))
			l.units = append(l.units, rustUnit{
				name: l.text(c.ChildByFieldName("name")),
				kind: syntax.UnitFunction,
				root: fn,
				ts:   c,
			})
		case "impl_item":
			file.Append(syntax.New(syntax.KindItem, tsSpan(c), l.impl(c, true)))
		case "macro_invocation":
			file.Append(syntax.New(syntax.KindItem, tsSpan(c), syntax.New(syntax.KindMacro, tsSpan(c))))
		default:
			file.Append(l.item(c))
		}
	}
	return file
}

// item wraps a declaration in an Item node. Anything that is not a
// declaration is lowered as an expression.
func (l *rustLowerer) item(n *sitter.Node) *syntax.Node {
	if !rustItems[n.Type()] {
		return l.expr(n)
	}
	return syntax.New(syntax.KindItem, tsSpan(n), l.itemBody(n))
}

func (l *rustLowerer) itemBody(n *sitter.Node) *syntax.Node {
	sp := tsSpan(n)
	switch n.Type() {
	case "function_item":
		return l.function(n, syntax.KindFunction)
	case "impl_item":
		return l.impl(n, false)
	case "trait_item":
		return l.members(n.ChildByFieldName("body"), sp)
	case "mod_item":
		body := n.ChildByFieldName("body")
		inner := syntax.New(syntax.KindExpr, sp)
		if body != nil {
			for i := 0; i < int(body.NamedChildCount()); i++ {
				inner.Append(l.item(body.NamedChild(i)))
			}
		}
		return inner
	case "const_item", "static_item":
		return l.expr(n.ChildByFieldName("value"))
	default:
		return nil
	}
}

func (l *rustLowerer) function(n *sitter.Node, kind syntax.Kind) *syntax.Node {
	return syntax.New(kind, tsSpan(n), l.expr(n.ChildByFieldName("body")))
}

// impl lowers an impl block. With top set, its methods are recorded as units
// named Type::method; impls for types without a plain path name are skipped.
func (l *rustLowerer) impl(n *sitter.Node, top bool) *syntax.Node {
	body := n.ChildByFieldName("body")
	inner := syntax.New(syntax.KindExpr, tsSpan(n))
	if body == nil {
		return inner
	}
	typeName := implTypeName(n.ChildByFieldName("type"), l.src)

	for i := 0; i < int(body.NamedChildCount()); i++ {
		m := body.NamedChild(i)
		if m.Type() != "function_item" {
			inner.Append(l.member(m))
			continue
		}
		fn := l.function(m, syntax.KindMethod)
		inner.Append(fn)
		if top && typeName != "" {
			l.units = append(l.units, rustUnit{
				name: typeName + "::" + l.text(m.ChildByFieldName("name")),
				kind: syntax.UnitMethod,
				root: fn,
				ts:   m,
			})
		}
	}
	return inner
}

func implTypeName(t *sitter.Node, src []byte) string {
	if t == nil {
		return ""
	}
	switch t.Type() {
	case "type_identifier":
		return t.Content(src)
	case "generic_type":
		return implTypeName(t.ChildByFieldName("type"), src)
	case "scoped_type_identifier":
		return implTypeName(t.ChildByFieldName("name"), src)
	default:
		return ""
	}
}

// members lowers the body of a trait: methods with default bodies count as
// methods, other associated items only through their expressions.
func (l *rustLowerer) members(body *sitter.Node, sp syntax.Span) *syntax.Node {
	inner := syntax.New(syntax.KindExpr, sp)
	if body == nil {
		return inner
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		m := body.NamedChild(i)
		if m.Type() == "function_item" {
			inner.Append(l.function(m, syntax.KindMethod))
			continue
		}
		inner.Append(l.member(m))
	}
	return inner
}

func (l *rustLowerer) member(m *sitter.Node) *syntax.Node {
	switch m.Type() {
	case "const_item":
		return l.expr(m.ChildByFieldName("value"))
	case "macro_invocation":
		return syntax.New(syntax.KindMacro, tsSpan(m))
	default:
		return nil
	}
}

func (l *rustLowerer) block(n *sitter.Node) *syntax.Node {
	b := syntax.New(syntax.KindBlock, tsSpan(n))
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		sp := tsSpan(c)
		switch {
		case rustItems[c.Type()]:
			b.Append(syntax.New(syntax.KindStmtItem, sp, l.item(c)))
		case c.Type() == "let_declaration":
			b.Append(syntax.New(syntax.KindStmtLocal, sp,
				l.expr(c.ChildByFieldName("value")),
				l.expr(c.ChildByFieldName("alternative"))))
		case c.Type() == "expression_statement":
			b.Append(syntax.New(syntax.KindStmtExpr, sp, l.children(c)...))
		default:
			b.Append(l.expr(c))
		}
	}
	return b
}

func (l *rustLowerer) children(n *sitter.Node) []*syntax.Node {
	out := make([]*syntax.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, l.expr(n.NamedChild(i)))
	}
	return out
}

func (l *rustLowerer) field(n *sitter.Node, name string) *syntax.Node {
	return l.expr(n.ChildByFieldName(name))
}

func (l *rustLowerer) expr(n *sitter.Node) *syntax.Node {
	if n == nil {
		return nil
	}
	sp := tsSpan(n)

	switch n.Type() {
	case "line_comment", "block_comment", "attribute_item", "inner_attribute_item", "empty_statement":
		return nil
	case "block":
		return l.block(n)
	case "unsafe_block":
		return syntax.New(syntax.KindUnsafe, sp, l.children(n)...)
	case "if_expression":
		return syntax.New(syntax.KindIf, sp,
			l.field(n, "condition"), l.field(n, "consequence"), l.field(n, "alternative"))
	case "if_let_expression":
		return syntax.New(syntax.KindIf, sp,
			syntax.New(syntax.KindLet, sp, l.field(n, "value")),
			l.field(n, "consequence"), l.field(n, "alternative"))
	case "while_expression":
		return syntax.New(syntax.KindWhile, sp, l.field(n, "condition"), l.field(n, "body"))
	case "while_let_expression":
		return syntax.New(syntax.KindWhile, sp,
			syntax.New(syntax.KindLet, sp, l.field(n, "value")), l.field(n, "body"))
	case "loop_expression":
		return syntax.New(syntax.KindLoop, sp, l.field(n, "body"))
	case "for_expression":
		return syntax.New(syntax.KindFor, sp, l.field(n, "value"), l.field(n, "body"))
	case "let_condition":
		return syntax.New(syntax.KindLet, sp, l.field(n, "value"))
	case "let_chain":
		return l.letChain(n)
	case "match_expression":
		return l.match(n)
	case "binary_expression":
		b := syntax.New(syntax.KindBinary, sp, l.field(n, "left"), l.field(n, "right"))
		if op := n.ChildByFieldName("operator"); op != nil {
			switch op.Type() {
			case "&&":
				b.Op = syntax.OpAnd
			case "||":
				b.Op = syntax.OpOr
			}
		}
		return b
	case "assignment_expression":
		return syntax.New(syntax.KindAssign, sp, l.field(n, "left"), l.field(n, "right"))
	case "compound_assignment_expr":
		return syntax.New(syntax.KindAssignOp, sp, l.field(n, "left"), l.field(n, "right"))
	case "continue_expression":
		return syntax.New(syntax.KindContinue, sp)
	case "break_expression":
		return syntax.New(syntax.KindBreak, sp, l.children(n)...)
	case "return_expression":
		return syntax.New(syntax.KindReturn, sp, l.children(n)...)
	case "yield_expression":
		return syntax.New(syntax.KindYield, sp, l.children(n)...)
	case "await_expression":
		return syntax.New(syntax.KindAwait, sp, l.children(n)...)
	case "try_expression":
		return syntax.New(syntax.KindTry, sp, l.children(n)...)
	case "array_expression":
		if n.ChildByFieldName("length") != nil {
			return syntax.New(syntax.KindRepeat, sp, l.children(n)...)
		}
		return wrap(sp, l.children(n)...)
	case "struct_expression":
		return syntax.New(syntax.KindStruct, sp, l.field(n, "body"))
	case "field_expression":
		return syntax.New(syntax.KindField, sp, l.field(n, "value"))
	case "call_expression":
		return l.call(n)
	case "macro_invocation":
		return syntax.New(syntax.KindMacro, sp)
	case "closure_expression":
		return syntax.New(syntax.KindClosure, sp, l.field(n, "body"))
	default:
		if n.NamedChildCount() == 0 {
			return nil
		}
		return wrap(sp, l.children(n)...)
	}
}

// letChain lowers `let A = x && b` conditions; every && joining the links is
// a short-circuit operator of its own.
func (l *rustLowerer) letChain(n *sitter.Node) *syntax.Node {
	chain := syntax.New(syntax.KindExpr, tsSpan(n))
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch {
		case c.IsNamed():
			chain.Append(l.expr(c))
		case c.Type() == "&&":
			and := syntax.New(syntax.KindBinary, tsSpan(c))
			and.Op = syntax.OpAnd
			chain.Append(and)
		}
	}
	return chain
}

func (l *rustLowerer) match(n *sitter.Node) *syntax.Node {
	m := syntax.New(syntax.KindMatch, tsSpan(n), l.field(n, "value"))
	body := n.ChildByFieldName("body")
	if body == nil {
		return m
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		if c.Type() != "match_arm" && c.Type() != "last_match_arm" {
			continue
		}
		arm := syntax.New(syntax.KindArm, tsSpan(c), l.field(c, "value"))
		if pat := c.ChildByFieldName("pattern"); pat != nil {
			if cond := pat.ChildByFieldName("condition"); cond != nil {
				arm.Guard = l.expr(cond)
				if arm.Guard == nil {
					arm.Guard = syntax.New(syntax.KindExpr, tsSpan(cond))
				}
			}
		}
		m.Append(arm)
	}
	return m
}

// call tells method calls, whose callee is a field access, from plain calls.
func (l *rustLowerer) call(n *sitter.Node) *syntax.Node {
	sp := tsSpan(n)
	args := l.field(n, "arguments")

	callee := n.ChildByFieldName("function")
	if callee != nil && callee.Type() == "generic_function" {
		if inner := callee.ChildByFieldName("function"); inner != nil && inner.Type() == "field_expression" {
			callee = inner
		}
	}
	if callee != nil && callee.Type() == "field_expression" {
		return syntax.New(syntax.KindMethodCall, sp, l.field(callee, "value"), args)
	}
	return syntax.New(syntax.KindCall, sp, l.expr(callee), args)
}

var _ Frontend = (*RustFrontend)(nil)
