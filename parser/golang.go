package parser

import (
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"

	"github.com/TFMV/codemetrics/syntax"
)

const LangGo = "go"

// GoFrontend lowers Go sources with go/parser and go/scanner.
type GoFrontend struct{}

func (f *GoFrontend) Language() string     { return LangGo }
func (f *GoFrontend) Extensions() []string { return []string{".go"} }

func (f *GoFrontend) Parse(path string, src []byte) (*syntax.SourceFile, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	lexemes := goLexemes(path, src)
	l := &goLowerer{fset: fset, packages: make(map[string]bool)}
	for _, imp := range file.Imports {
		if name := importName(imp); name != "" {
			l.packages[name] = true
		}
	}

	out := &syntax.SourceFile{Path: path, Language: LangGo}
	root := syntax.New(syntax.KindFile, syntax.Span{})

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			kind, ukind, name := syntax.KindFunction, syntax.UnitFunction, d.Name.Name
			if d.Recv != nil && len(d.Recv.List) > 0 {
				kind, ukind = syntax.KindMethod, syntax.UnitMethod
				if recv := receiverName(d.Recv.List[0].Type); recv != "" {
					name = recv + "." + name
				}
			}
			fn := syntax.New(kind, l.span(d), l.block(d.Body))
			root.Append(syntax.New(syntax.KindItem, l.span(d), fn))
			out.Functions = append(out.Functions,
				unit(name, ukind, fn, lexemes, l.offset(d.Pos()), l.offset(d.End())))
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				root.Append(syntax.New(syntax.KindItem, l.span(spec), l.spec(spec)...))
			}
		}
	}

	tokens := syntax.GroupTokens(lexemes)
	root.Span = spanOf(tokens)
	out.Unit = syntax.Unit{Name: path, Kind: syntax.UnitFile, Root: root, Tokens: tokens}
	return out, nil
}

// goLexemes scans src into flat lexemes, dropping comments and the
// semicolons the scanner inserts at line ends.
func goLexemes(path string, src []byte) []syntax.Lexeme {
	fset := token.NewFileSet()
	tf := fset.AddFile(path, -1, len(src))

	var s scanner.Scanner
	s.Init(tf, src, nil, 0)

	var out []syntax.Lexeme
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}
		text := lit
		if text == "" {
			text = tok.String()
		}
		line := tf.Line(pos)
		out = append(out, syntax.Lexeme{
			Text:   text,
			Span:   syntax.Span{Start: line, End: line + strings.Count(text, "\n")},
			Offset: tf.Offset(pos),
		})
	}
	return out
}

func spanOf(tokens []syntax.Token) syntax.Span {
	var s syntax.Span
	for _, t := range tokens {
		s = s.Cover(t.Span)
	}
	return s
}

type goLowerer struct {
	fset     *token.FileSet
	packages map[string]bool
}

func (l *goLowerer) span(n ast.Node) syntax.Span {
	return syntax.Span{
		Start: l.fset.Position(n.Pos()).Line,
		End:   l.fset.Position(n.End()).Line,
	}
}

func (l *goLowerer) offset(p token.Pos) int {
	return l.fset.Position(p).Offset
}

func (l *goLowerer) isPackage(x ast.Expr) bool {
	id, ok := x.(*ast.Ident)
	return ok && l.packages[id.Name]
}

func (l *goLowerer) spec(spec ast.Spec) []*syntax.Node {
	switch s := spec.(type) {
	case *ast.ValueSpec:
		return l.exprs(s.Values)
	default:
		return nil
	}
}

func (l *goLowerer) block(b *ast.BlockStmt) *syntax.Node {
	if b == nil {
		return nil
	}
	n := syntax.New(syntax.KindBlock, l.span(b))
	for _, s := range b.List {
		n.Append(l.stmt(s))
	}
	return n
}

func (l *goLowerer) stmts(list []ast.Stmt) []*syntax.Node {
	out := make([]*syntax.Node, 0, len(list))
	for _, s := range list {
		out = append(out, l.stmt(s))
	}
	return out
}

func (l *goLowerer) stmt(s ast.Stmt) *syntax.Node {
	if s == nil {
		return nil
	}
	sp := l.span(s)

	switch s := s.(type) {
	case *ast.BlockStmt:
		return l.block(s)
	case *ast.ExprStmt:
		return syntax.New(syntax.KindStmtExpr, sp, l.expr(s.X))
	case *ast.AssignStmt:
		switch s.Tok {
		case token.DEFINE:
			return syntax.New(syntax.KindStmtLocal, sp, l.exprs(s.Rhs)...)
		case token.ASSIGN:
			return syntax.New(syntax.KindAssign, sp, append(l.exprs(s.Lhs), l.exprs(s.Rhs)...)...)
		default:
			return syntax.New(syntax.KindAssignOp, sp, append(l.exprs(s.Lhs), l.exprs(s.Rhs)...)...)
		}
	case *ast.IncDecStmt:
		return syntax.New(syntax.KindAssignOp, sp, l.expr(s.X))
	case *ast.DeclStmt:
		return l.declStmt(s)
	case *ast.ReturnStmt:
		return syntax.New(syntax.KindReturn, sp, l.exprs(s.Results)...)
	case *ast.BranchStmt:
		switch s.Tok {
		case token.BREAK:
			return syntax.New(syntax.KindBreak, sp)
		case token.CONTINUE:
			return syntax.New(syntax.KindContinue, sp)
		default:
			return nil
		}
	case *ast.IfStmt:
		return syntax.New(syntax.KindIf, sp, l.stmt(s.Init), l.expr(s.Cond), l.block(s.Body), l.stmt(s.Else))
	case *ast.ForStmt:
		switch {
		case s.Init == nil && s.Cond == nil && s.Post == nil:
			return syntax.New(syntax.KindLoop, sp, l.block(s.Body))
		case s.Init == nil && s.Post == nil:
			return syntax.New(syntax.KindWhile, sp, l.expr(s.Cond), l.block(s.Body))
		default:
			return syntax.New(syntax.KindFor, sp, l.stmt(s.Init), l.expr(s.Cond), l.stmt(s.Post), l.block(s.Body))
		}
	case *ast.RangeStmt:
		return syntax.New(syntax.KindFor, sp, l.expr(s.X), l.block(s.Body))
	case *ast.SwitchStmt:
		m := syntax.New(syntax.KindMatch, sp, l.stmt(s.Init), l.expr(s.Tag))
		for _, c := range s.Body.List {
			m.Append(l.caseClause(c.(*ast.CaseClause), s.Tag == nil))
		}
		return m
	case *ast.TypeSwitchStmt:
		m := syntax.New(syntax.KindMatch, sp, l.stmt(s.Init), l.stmt(s.Assign))
		for _, c := range s.Body.List {
			m.Append(l.caseClause(c.(*ast.CaseClause), false))
		}
		return m
	case *ast.SelectStmt:
		m := syntax.New(syntax.KindMatch, sp)
		for _, c := range s.Body.List {
			cc := c.(*ast.CommClause)
			arm := syntax.New(syntax.KindArm, l.span(cc), l.stmt(cc.Comm))
			arm.Append(l.stmts(cc.Body)...)
			m.Append(arm)
		}
		return m
	case *ast.SendStmt:
		return syntax.New(syntax.KindAwait, sp, l.expr(s.Chan), l.expr(s.Value))
	case *ast.GoStmt:
		return syntax.New(syntax.KindStmtExpr, sp, l.expr(s.Call))
	case *ast.DeferStmt:
		return syntax.New(syntax.KindStmtExpr, sp, l.expr(s.Call))
	case *ast.LabeledStmt:
		return l.stmt(s.Stmt)
	default:
		return nil
	}
}

// caseClause lowers one switch case. In a switch without a tag every case
// with expressions is a condition of its own and becomes the arm's guard.
func (l *goLowerer) caseClause(c *ast.CaseClause, guarded bool) *syntax.Node {
	arm := syntax.New(syntax.KindArm, l.span(c))
	if guarded && len(c.List) > 0 {
		arm.Guard = syntax.New(syntax.KindExpr, l.span(c.List[0]), l.exprs(c.List)...)
	} else {
		arm.Append(l.exprs(c.List)...)
	}
	arm.Append(l.stmts(c.Body)...)
	return arm
}

func (l *goLowerer) declStmt(s *ast.DeclStmt) *syntax.Node {
	gd, ok := s.Decl.(*ast.GenDecl)
	if !ok {
		return nil
	}
	if gd.Tok == token.TYPE {
		return syntax.New(syntax.KindStmtItem, l.span(s), syntax.New(syntax.KindItem, l.span(gd)))
	}

	// a grouped var or const declares one local per spec
	block := syntax.New(syntax.KindBlock, l.span(s))
	for _, spec := range gd.Specs {
		block.Append(syntax.New(syntax.KindStmtLocal, l.span(spec), l.spec(spec)...))
	}
	if len(block.Children) == 1 {
		return block.Children[0]
	}
	return block
}

func (l *goLowerer) exprs(list []ast.Expr) []*syntax.Node {
	out := make([]*syntax.Node, 0, len(list))
	for _, e := range list {
		out = append(out, l.expr(e))
	}
	return out
}

func (l *goLowerer) expr(e ast.Expr) *syntax.Node {
	if e == nil {
		return nil
	}
	sp := l.span(e)

	switch e := e.(type) {
	case *ast.BinaryExpr:
		n := syntax.New(syntax.KindBinary, sp, l.expr(e.X), l.expr(e.Y))
		switch e.Op {
		case token.LAND:
			n.Op = syntax.OpAnd
		case token.LOR:
			n.Op = syntax.OpOr
		}
		return n
	case *ast.UnaryExpr:
		if e.Op == token.ARROW {
			return syntax.New(syntax.KindAwait, sp, l.expr(e.X))
		}
		return l.expr(e.X)
	case *ast.CallExpr:
		return l.call(e)
	case *ast.SelectorExpr:
		if l.isPackage(e.X) {
			return nil
		}
		return syntax.New(syntax.KindField, sp, l.expr(e.X))
	case *ast.CompositeLit:
		kind := syntax.KindExpr
		switch e.Type.(type) {
		case *ast.Ident, *ast.SelectorExpr, *ast.IndexExpr, *ast.IndexListExpr:
			kind = syntax.KindStruct
		}
		return syntax.New(kind, sp, l.exprs(e.Elts)...)
	case *ast.KeyValueExpr:
		return wrap(sp, l.expr(e.Key), l.expr(e.Value))
	case *ast.FuncLit:
		return syntax.New(syntax.KindClosure, sp, l.block(e.Body))
	case *ast.ParenExpr:
		return l.expr(e.X)
	case *ast.StarExpr:
		return l.expr(e.X)
	case *ast.IndexExpr:
		return wrap(sp, l.expr(e.X), l.expr(e.Index))
	case *ast.IndexListExpr:
		return wrap(sp, append([]*syntax.Node{l.expr(e.X)}, l.exprs(e.Indices)...)...)
	case *ast.SliceExpr:
		return wrap(sp, l.expr(e.X), l.expr(e.Low), l.expr(e.High), l.expr(e.Max))
	case *ast.TypeAssertExpr:
		return l.expr(e.X)
	default:
		// identifiers, literals and type expressions
		return nil
	}
}

func (l *goLowerer) call(e *ast.CallExpr) *syntax.Node {
	sp := l.span(e)
	args := l.exprs(e.Args)

	if sel, ok := e.Fun.(*ast.SelectorExpr); ok {
		if l.isPackage(sel.X) {
			return syntax.New(syntax.KindCall, sp, args...)
		}
		return syntax.New(syntax.KindMethodCall, sp, append([]*syntax.Node{l.expr(sel.X)}, args...)...)
	}
	return syntax.New(syntax.KindCall, sp, append([]*syntax.Node{l.expr(e.Fun)}, args...)...)
}

// wrap groups children under a plain expression node, or returns nil when
// none of them carry anything.
func wrap(sp syntax.Span, children ...*syntax.Node) *syntax.Node {
	n := syntax.New(syntax.KindExpr, sp, children...)
	if len(n.Children) == 0 {
		return nil
	}
	return n
}

var _ Frontend = (*GoFrontend)(nil)
