package analysis_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/TFMV/codemetrics/analysis"
	"github.com/TFMV/codemetrics/db"
	"github.com/TFMV/codemetrics/parser"
	"github.com/TFMV/codemetrics/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goSource = `package demo

import "fmt"

type Counter struct{ n int }

func (c *Counter) Inc(by int) {
	if by > 0 && by < 100 {
		c.n += by
	}
}

func Report(c *Counter) {
	fmt.Println(c.n)
}
`

const rustSource = `struct Counter { n: i32 }

impl Counter {
    fn inc(&mut self, by: i32) {
        if by > 0 && by < 100 {
            self.n += by;
        }
    }
}

fn report(c: &Counter) {
    println!("{}", c.n);
}
`

func newAnalyzer(t *testing.T) *analysis.Analyzer {
	t.Helper()
	p, err := parser.NewParser(nil)
	require.NoError(t, err)
	return analysis.NewAnalyzer(p, nil, nil)
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, src := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	}
	return root
}

func TestAnalyzer_GetAnalysis(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"counter.go":     goSource,
		"src/counter.rs": rustSource,
		"notes.txt":      "not source",
	})

	analyzer := newAnalyzer(t)
	res, err := analyzer.GetAnalysis(context.Background(), root)
	require.NoError(t, err)

	assert.Len(t, res.Report.Files, 2)
	assert.Len(t, res.Report.Functions, 4)
	assert.Empty(t, res.Report.Failures)
	assert.Equal(t, root, res.Report.Root)

	byName := make(map[string]types.FunctionMetrics)
	for _, fn := range res.Report.Functions {
		byName[fn.Name] = fn
	}

	// equivalent constructs score the same in both languages
	assert.Equal(t, 3, byName["Counter.Inc"].Complexity)
	assert.Equal(t, 3, byName["Counter::inc"].Complexity)
	assert.Equal(t, 1, byName["Report"].Complexity)
	assert.Equal(t, 1, byName["report"].Complexity)
	assert.True(t, byName["Counter.Inc"].IsMethod)
	assert.False(t, byName["report"].IsMethod)

	inc := byName["Counter.Inc"]
	assert.Equal(t, 7, inc.StartLine)
	assert.Equal(t, 11, inc.EndLine)
	assert.Equal(t, types.LineCounts{Source: 5, Physical: 5, Logical: 4}, inc.Lines)

	rinc := byName["Counter::inc"]
	assert.Equal(t, 4, rinc.StartLine)
	assert.Equal(t, 8, rinc.EndLine)
	assert.Equal(t, types.LineCounts{Source: 5, Physical: 5, Logical: 4}, rinc.Lines)

	assert.Equal(t, 4, res.Complexity.Len())
	top, ok := res.Complexity.Max()
	require.True(t, ok)
	assert.Equal(t, 3, top.Score)
	assert.Equal(t, 2, res.FileLOC.Len())
	assert.InDelta(t, 2.0, res.Complexity.Mean(), 1e-9)
}

func TestAnalyzer_FileTotals(t *testing.T) {
	root := writeFiles(t, map[string]string{"counter.go": goSource})

	res, err := newAnalyzer(t).GetAnalysis(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, res.Report.Files, 1)

	f := res.Report.Files[0]
	assert.Equal(t, "go", f.Language)
	assert.Equal(t, 2, f.Functions)
	assert.Equal(t, 4, f.TotalComplexity)
	assert.Equal(t, 15, f.Lines.Source)
	// blank lines 2, 4, 6 and 12 hold no tokens
	assert.Equal(t, 11, f.Lines.Physical)
}

func TestAnalyzer_MeasureSelectsLOCScore(t *testing.T) {
	root := writeFiles(t, map[string]string{"counter.go": goSource})

	tests := []struct {
		measure types.LineMeasure
		want    int
	}{
		{measure: types.MeasureSource, want: 5},
		{measure: types.MeasurePhysical, want: 5},
		{measure: types.MeasureLogical, want: 4},
	}

	for _, tt := range tests {
		t.Run(string(tt.measure), func(t *testing.T) {
			analyzer := newAnalyzer(t)
			analyzer.Measure = tt.measure
			res, err := analyzer.GetAnalysis(context.Background(), root)
			require.NoError(t, err)

			top, ok := res.FunctionLOC.Max()
			require.True(t, ok)
			assert.Equal(t, "Counter.Inc", top.Subject)
			assert.Equal(t, tt.want, top.Score)
		})
	}
}

func TestAnalyzer_Failures(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"good.go": goSource,
		"bad.go":  "package main func",
		"bad.rs":  "fn broken( {",
	})

	analyzer := newAnalyzer(t)
	_, err := analyzer.GetAnalysis(context.Background(), root)
	require.Error(t, err)

	analyzer.KeepGoing = true
	res, err := analyzer.GetAnalysis(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, res.Report.Files, 1)
	require.Len(t, res.Report.Failures, 2)
	assert.Equal(t, filepath.Join(root, "bad.go"), res.Report.Failures[0].Path)
	assert.Equal(t, filepath.Join(root, "bad.rs"), res.Report.Failures[1].Path)
}

func TestAnalyzer_CacheReusesIdenticalFiles(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"a/counter.go": goSource,
		"b/counter.go": goSource,
	})

	analyzer := newAnalyzer(t)
	analyzer.Jobs = 1
	res, err := analyzer.GetAnalysis(context.Background(), root)
	require.NoError(t, err)

	hits, misses := analyzer.Cache.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	require.Len(t, res.Report.Files, 2)
	assert.Equal(t, filepath.Join(root, "a", "counter.go"), res.Report.Files[0].Path)
	assert.Equal(t, filepath.Join(root, "b", "counter.go"), res.Report.Files[1].Path)
	for _, fn := range res.Report.Functions {
		assert.Contains(t, []string{res.Report.Files[0].Path, res.Report.Files[1].Path}, fn.File)
	}
	assert.Equal(t, filepath.Join(root, "b", "counter.go"), res.Report.Functions[3].File)
}

func TestAnalyzer_ParallelIsDeterministic(t *testing.T) {
	files := make(map[string]string)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files[name+".go"] = "package p\n\nfunc " + name + "() {\n\tif true {\n\t}\n}\n"
	}
	root := writeFiles(t, files)

	serial := newAnalyzer(t)
	want, err := serial.GetAnalysis(context.Background(), root)
	require.NoError(t, err)

	parallel := newAnalyzer(t)
	parallel.Jobs = 8
	got, err := parallel.GetAnalysis(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, want.Complexity.Records(), got.Complexity.Records())
	assert.Equal(t, want.FileLOC.Records(), got.FileLOC.Records())
}

func TestAnalyzer_AnalyzeDirectoryStores(t *testing.T) {
	root := writeFiles(t, map[string]string{"counter.go": goSource})

	var stored []types.RunReport
	mock := db.NewMockDB()
	mock.StoreRunFunc = func(ctx context.Context, run types.RunReport) error {
		stored = append(stored, run)
		return nil
	}

	p, err := parser.NewParser(nil)
	require.NoError(t, err)
	analyzer := analysis.NewAnalyzer(p, mock, nil)
	require.NoError(t, analyzer.Initialize(context.Background()))

	_, err = analyzer.AnalyzeDirectory(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Len(t, stored[0].Functions, 2)

	mock.StoreRunFunc = func(ctx context.Context, run types.RunReport) error {
		return errors.New("connection refused")
	}
	_, err = analyzer.AnalyzeDirectory(context.Background(), root)
	assert.ErrorContains(t, err, "failed to store analysis results")
}

func TestAnalyzer_Canceled(t *testing.T) {
	root := writeFiles(t, map[string]string{"counter.go": goSource})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newAnalyzer(t).GetAnalysis(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzer_EmptyRoot(t *testing.T) {
	res, err := newAnalyzer(t).GetAnalysis(context.Background(), t.TempDir())
	require.NoError(t, err)

	_, ok := res.Complexity.Max()
	assert.False(t, ok)
	assert.Equal(t, 0.0, res.FileLOC.Mean())
}
