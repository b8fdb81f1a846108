package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/docopt/docopt-go"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `package demo

func Classify(n int) string {
	switch {
	case n < 0:
		return "negative"
	case n == 0:
		return "zero"
	default:
		return "positive"
	}
}

func Sum(xs []int) (total int) {
	for _, x := range xs {
		total += x
	}
	return total
}
`

func testParser() *docopt.Parser {
	return &docopt.Parser{HelpHandler: docopt.NoHelpHandler}
}

func input(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.go"), []byte(source), 0644))
	return dir
}

func TestRun_Text(t *testing.T) {
	prev := color.NoColor
	t.Cleanup(func() { color.NoColor = prev })

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), testParser(), []string{"cc", input(t), "--no-color", "--top", "1"}, &stdout, &stderr)
	require.NoError(t, err)

	want := `######## Cyclomatic Complexity Statistic ########
FUNC NUM: 2, MEAN: 3.00
MAX: Classify, 4
MIN: Sum, 2
TOP 1:
	Classify, 4
`
	assert.Equal(t, want, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRun_JSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	args := []string{"loc", input(t), "--format=json", "--measure=lloc", "--jobs=2", "-v"}
	require.NoError(t, run(context.Background(), testParser(), args, &stdout, &stderr))

	var doc struct {
		Rankings []struct {
			Kind  string `json:"kind"`
			Count int    `json:"count"`
			Top   []struct {
				Subject string `json:"subject"`
				Score   int    `json:"score"`
			} `json:"top"`
		} `json:"rankings"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &doc))
	require.Len(t, doc.Rankings, 1)
	assert.Equal(t, "loc", doc.Rankings[0].Kind)
	assert.Equal(t, 2, doc.Rankings[0].Count)
	// seed, match, three returns
	assert.Equal(t, "Classify", doc.Rankings[0].Top[0].Subject)
	assert.Equal(t, 5, doc.Rankings[0].Top[0].Score)

	assert.Contains(t, stderr.String(), "msg=analyzing")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown command", args: []string{"halstead"}},
		{name: "bad format", args: []string{"cc", "--format=html"}},
		{name: "bad measure", args: []string{"loc", "--measure=words"}},
		{name: "bad language", args: []string{"cc", "--lang=cobol"}},
		{name: "missing input", args: []string{"cc", filepath.Join(os.TempDir(), "codemetrics-missing-input")}},
		{name: "missing config", args: []string{"cc", "--config=missing.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), testParser(), tt.args, &stdout, &stderr)
			assert.Error(t, err)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestOverrides(t *testing.T) {
	opts := docopt.Opts{
		"--format":     "table",
		"--top":        nil,
		"--lang":       "go, rust,",
		"--exclude":    "*_test.go",
		"--keep-going": true,
		"--no-color":   false,
		"--verbose":    true,
	}

	assert.Equal(t, map[string]any{
		"output.format":       "table",
		"analysis.languages":  []string{"go", "rust"},
		"analysis.exclude":    []string{"*_test.go"},
		"analysis.keep_going": true,
		"logging.level":       "debug",
	}, overrides(opts))
}
