package parser

import (
	"go/ast"
	"path"
	"strconv"
	"strings"

	"github.com/TFMV/codemetrics/syntax"
)

// FindUnit returns the function or method unit with the given name.
func FindUnit(file *syntax.SourceFile, name string) (syntax.Unit, bool) {
	for _, u := range file.Functions {
		if u.Name == name {
			return u, true
		}
	}
	return syntax.Unit{}, false
}

// unit slices the lexemes in [start, end) out of a file and groups them.
func unit(name string, kind syntax.UnitKind, root *syntax.Node, lexemes []syntax.Lexeme, start, end int) syntax.Unit {
	return syntax.Unit{
		Name:   name,
		Kind:   kind,
		Root:   root,
		Tokens: syntax.GroupTokens(syntax.Slice(lexemes, start, end)),
	}
}

// receiverName names the type of a method receiver, without pointers or type
// parameters.
func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.ParenExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	case *ast.SelectorExpr:
		return receiverName(t.X) + "." + t.Sel.Name
	default:
		return ""
	}
}

// importName returns the identifier an import binds in the file, or "" for
// blank and dot imports. Without an explicit name it guesses from the path:
// "gopkg.in/yaml.v3" binds yaml, "github.com/x/y/v2" binds y.
func importName(spec *ast.ImportSpec) string {
	if spec.Name != nil {
		if spec.Name.Name == "_" || spec.Name.Name == "." {
			return ""
		}
		return spec.Name.Name
	}

	p, err := strconv.Unquote(spec.Path.Value)
	if err != nil {
		return ""
	}
	base := path.Base(p)
	if isMajorVersion(base) {
		base = path.Base(path.Dir(p))
	}
	base, _, _ = strings.Cut(base, ".")
	base = strings.TrimPrefix(base, "go-")
	return strings.ReplaceAll(base, "-", "")
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}
