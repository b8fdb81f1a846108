package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/TFMV/codemetrics/analysis"
	"github.com/TFMV/codemetrics/parser"
	"github.com/TFMV/codemetrics/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParser(t *testing.T) *parser.Parser {
	t.Helper()
	p, err := parser.NewParser(nil)
	require.NoError(t, err)
	return p
}

func TestNewParser(t *testing.T) {
	p, err := parser.NewParser(nil, "Go")
	require.NoError(t, err)
	assert.Equal(t, []string{".go"}, p.Extensions())

	p, err = parser.NewParser(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{".go", ".rs"}, p.Extensions())

	_, err = parser.NewParser(nil, "cobol")
	assert.ErrorIs(t, err, parser.ErrUnsupported)
}

func TestDetect(t *testing.T) {
	assert.Equal(t, "go", parser.Detect("cmd/main.go", nil))
	assert.Equal(t, "rust", parser.Detect("src/lib.rs", nil))
}

func TestParser_ParseFile(t *testing.T) {
	p := newParser(t)

	tests := []struct {
		name      string
		file      string
		input     string
		wantUnits []string
		wantErr   bool
	}{
		{
			name:      "go functions and methods",
			file:      "shapes.go",
			input:     "package shapes\n\ntype Point struct{ X, Y float64 }\n\nfunc (p *Point) Norm() float64 { return p.X*p.X + p.Y*p.Y }\n\nfunc Origin() Point { return Point{} }\n",
			wantUnits: []string{"Point.Norm", "Origin"},
		},
		{
			name:      "go generic receiver",
			file:      "list.go",
			input:     "package list\n\ntype List[T any] struct{ items []T }\n\nfunc (l List[T]) Len() int { return len(l.items) }\n",
			wantUnits: []string{"List.Len"},
		},
		{
			name:      "rust free functions and impl methods",
			file:      "shapes.rs",
			input:     "struct Point { x: f64 }\n\nimpl Point {\n    fn norm(&self) -> f64 { self.x * self.x }\n}\n\nimpl Default for Point {\n    fn default() -> Self { Point { x: 0.0 } }\n}\n\nfn origin() -> Point { Point::default() }\n",
			wantUnits: []string{"origin", "Point::norm", "Point::default"},
		},
		{
			name:      "rust generic impl",
			file:      "wrap.rs",
			input:     "struct Wrap<T>(T);\nimpl<T> Wrap<T> {\n    fn get(&self) -> &T { &self.0 }\n}\n",
			wantUnits: []string{"Wrap::get"},
		},
		{
			name:    "invalid go",
			file:    "bad.go",
			input:   "package main func",
			wantErr: true,
		},
		{
			name:    "invalid rust",
			file:    "bad.rs",
			input:   "fn broken( {",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.input), 0644))

			file, err := p.ParseFile(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, path, file.Path)
			assert.Equal(t, syntax.UnitFile, file.Unit.Kind)

			var names []string
			for _, u := range file.Functions {
				names = append(names, u.Name)
			}
			assert.ElementsMatch(t, tt.wantUnits, names)
		})
	}
}

func TestParser_RustSyntaxError(t *testing.T) {
	_, err := newParser(t).ParseSource("bad.rs", []byte("fn main() { let = ; }"))
	assert.ErrorIs(t, err, parser.ErrSyntax)
}

func TestParser_UnsupportedFile(t *testing.T) {
	_, err := newParser(t).ParseSource("notes.txt", []byte("just text"))
	assert.ErrorIs(t, err, parser.ErrUnsupported)

	path := filepath.Join(t.TempDir(), "missing.go")
	_, err = newParser(t).ParseFile(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParser_UnitKinds(t *testing.T) {
	src := "package k\n\ntype T struct{}\n\nfunc (T) M() {}\n\nfunc F() {}\n"
	file, err := newParser(t).ParseSource("k.go", []byte(src))
	require.NoError(t, err)

	m, ok := parser.FindUnit(file, "T.M")
	require.True(t, ok)
	assert.Equal(t, syntax.UnitMethod, m.Kind)
	assert.Equal(t, syntax.KindMethod, m.Root.Kind)

	f, ok := parser.FindUnit(file, "F")
	require.True(t, ok)
	assert.Equal(t, syntax.UnitFunction, f.Kind)
	assert.Equal(t, syntax.KindFunction, f.Root.Kind)

	_, ok = parser.FindUnit(file, "missing")
	assert.False(t, ok)
}

func TestParser_Complexity(t *testing.T) {
	tests := []struct {
		name string
		file string
		src  string
		unit string
		want int
	}{
		{
			name: "go straight line",
			file: "a.go",
			src:  "package a\n\nfunc f() {\n\tx := 1\n\t_ = x\n}\n",
			unit: "f",
			want: 1,
		},
		{
			name: "go if",
			file: "a.go",
			src:  "package a\n\nfunc f() {\n\ti := 1\n\tif i == 1 {\n\t\tprintln()\n\t}\n}\n",
			unit: "f",
			want: 2,
		},
		{
			name: "go if else is one decision",
			file: "a.go",
			src:  "package a\n\nfunc f(i int) {\n\tif i == 1 {\n\t\tprintln()\n\t} else {\n\t\tprintln(i)\n\t}\n}\n",
			unit: "f",
			want: 2,
		},
		{
			name: "go short circuit",
			file: "a.go",
			src:  "package a\n\nfunc f(i int) {\n\tif i != 10 && i > 0 {\n\t\tprintln()\n\t}\n}\n",
			unit: "f",
			want: 3,
		},
		{
			name: "go loops",
			file: "a.go",
			src:  "package a\n\nfunc f(xs []int) {\n\tfor _, x := range xs {\n\t\t_ = x\n\t}\n\tfor i := 0; i < 3; i++ {\n\t}\n\tfor len(xs) > 0 {\n\t\txs = xs[1:]\n\t}\n\tfor {\n\t\tbreak\n\t}\n}\n",
			unit: "f",
			want: 4,
		},
		{
			name: "go tagged switch",
			file: "a.go",
			src:  "package a\n\nfunc f(i int) int {\n\tswitch i {\n\tcase 1:\n\t\treturn 1\n\tcase 2:\n\t\treturn 2\n\tdefault:\n\t\treturn 0\n\t}\n}\n",
			unit: "f",
			want: 2,
		},
		{
			name: "go tagless switch guards",
			file: "a.go",
			src:  "package a\n\nfunc f(i int) int {\n\tswitch {\n\tcase i > 1:\n\t\treturn 1\n\tcase i < 0 || i == 7:\n\t\treturn 2\n\tdefault:\n\t\treturn 0\n\t}\n}\n",
			unit: "f",
			want: 5,
		},
		{
			name: "go single case switch",
			file: "a.go",
			src:  "package a\n\nfunc f(i int) {\n\tswitch i {\n\tdefault:\n\t}\n}\n",
			unit: "f",
			want: 1,
		},
		{
			name: "go closure body is visited",
			file: "a.go",
			src:  "package a\n\nfunc f() func(int) bool {\n\treturn func(i int) bool {\n\t\tif i > 0 {\n\t\t\treturn true\n\t\t}\n\t\treturn false\n\t}\n}\n",
			unit: "f",
			want: 2,
		},
		{
			name: "rust if",
			file: "a.rs",
			src:  "fn f() {\n    let i = 1;\n    if i == 1 {\n        print();\n    }\n}\n",
			unit: "f",
			want: 2,
		},
		{
			name: "rust short circuit",
			file: "a.rs",
			src:  "fn f(i: i32) {\n    if i != 10 && i > 0 {\n        print();\n    }\n}\n",
			unit: "f",
			want: 3,
		},
		{
			name: "rust match with guard",
			file: "a.rs",
			src:  "fn f(x: i32) -> i32 {\n    match x {\n        0 => 1,\n        n if n > 10 => 2,\n        _ => 3,\n    }\n}\n",
			unit: "f",
			want: 3,
		},
		{
			name: "rust single arm match",
			file: "a.rs",
			src:  "fn f(x: i32) -> i32 {\n    match x {\n        _ => 0,\n    }\n}\n",
			unit: "f",
			want: 1,
		},
		{
			name: "rust loops",
			file: "a.rs",
			src:  "fn f(v: Vec<i32>) {\n    let mut x = 0;\n    for i in v {\n        x += i;\n    }\n    while x < 3 {\n        x += 1;\n    }\n    loop {\n        break;\n    }\n}\n",
			unit: "f",
			want: 3,
		},
		{
			name: "rust method",
			file: "a.rs",
			src:  "struct S { x: bool, y: bool }\nimpl S {\n    fn a(&self) -> bool {\n        self.x && self.y || true\n    }\n}\n",
			unit: "S::a",
			want: 3,
		},
		{
			name: "rust nested fn",
			file: "a.rs",
			src:  "fn outer() {\n    fn inner() {}\n    inner();\n}\n",
			unit: "outer",
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := newParser(t).ParseSource(tt.file, []byte(tt.src))
			require.NoError(t, err)

			u, ok := parser.FindUnit(file, tt.unit)
			require.True(t, ok, "unit %s not found", tt.unit)
			assert.Equal(t, tt.want, analysis.Complexity(u.Root))
		})
	}
}

func TestParser_LineCounts(t *testing.T) {
	tests := []struct {
		name string
		file string
		src  string
		unit string
		lloc int
	}{
		{
			name: "go single line binding",
			file: "a.go",
			src:  "package a\n\nfunc f() { i := 1 }\n",
			unit: "f",
			lloc: 2,
		},
		{
			name: "rust single line binding",
			file: "a.rs",
			src:  "fn f() { let i = 1; }\n",
			unit: "f",
			lloc: 2,
		},
		{
			name: "go if with package call",
			file: "a.go",
			src:  "package a\n\nimport \"fmt\"\n\nfunc f() {\n\ti := 1\n\tif i == 1 {\n\t\tfmt.Println()\n\t}\n}\n",
			unit: "f",
			lloc: 4,
		},
		{
			name: "rust if with call",
			file: "a.rs",
			src:  "fn f() {\n    let i = 1;\n    if i == 1 {\n        print();\n    }\n}\n",
			unit: "f",
			lloc: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := newParser(t).ParseSource(tt.file, []byte(tt.src))
			require.NoError(t, err)

			u, ok := parser.FindUnit(file, tt.unit)
			require.True(t, ok)
			assert.Equal(t, tt.lloc, analysis.LogicalLines(u.Root))
		})
	}
}

func TestParser_PhysicalLinesSkipComments(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		src       string
		wantFunc  [3]int // source, physical, first line
		wantFile  [2]int // source, physical
		unit      string
		wantLines []int
	}{
		{
			name: "go",
			file: "a.go",
			src: "package a\n\n// comment only\n\nfunc f() {\n\t// inside\n\tx := []int{\n\t\t1,\n\t}\n\t_ = x\n}\n",
			unit:      "f",
			wantFunc:  [3]int{7, 6, 5},
			wantFile:  [2]int{11, 7},
			wantLines: []int{5, 7, 8, 9, 10, 11},
		},
		{
			name: "rust",
			file: "a.rs",
			src: "use std::fmt;\n\n/* block\n   comment */\nfn f() {\n    // inside\n    let x = vec![\n        1,\n    ];\n    drop(x);\n}\n",
			unit:      "f",
			wantFunc:  [3]int{7, 6, 5},
			wantFile:  [2]int{11, 7},
			wantLines: []int{5, 7, 8, 9, 10, 11},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := newParser(t).ParseSource(tt.file, []byte(tt.src))
			require.NoError(t, err)

			u, ok := parser.FindUnit(file, tt.unit)
			require.True(t, ok)

			lines := analysis.ExtractLines(u.Tokens)
			assert.Equal(t, tt.wantFunc[2], lines.Span.Start)
			assert.Equal(t, tt.wantLines, lines.Sorted())

			counts := analysis.CountLines(u)
			assert.Equal(t, tt.wantFunc[0], counts.Source)
			assert.Equal(t, tt.wantFunc[1], counts.Physical)

			fileCounts := analysis.CountLines(file.Unit)
			assert.Equal(t, tt.wantFile[0], fileCounts.Source)
			assert.Equal(t, tt.wantFile[1], fileCounts.Physical)
			assert.LessOrEqual(t, fileCounts.Physical, fileCounts.Source)
		})
	}
}
