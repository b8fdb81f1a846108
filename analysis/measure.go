package analysis

import (
	"github.com/TFMV/codemetrics/syntax"
	"github.com/TFMV/codemetrics/types"
)

// Measure runs the complexity and line visitors over every unit of a parsed
// file. Each unit gets its own accumulators.
func Measure(sf *syntax.SourceFile) types.FileResult {
	fileLines, _ := measureLines(sf.Unit)
	res := types.FileResult{
		File: types.FileMetrics{
			Path:      sf.Path,
			Language:  sf.Language,
			Functions: len(sf.Functions),
			Lines:     fileLines,
		},
		Functions: make([]types.FunctionMetrics, 0, len(sf.Functions)),
	}

	for _, u := range sf.Functions {
		lines, span := measureLines(u)
		fn := types.FunctionMetrics{
			Name:       u.Name,
			File:       sf.Path,
			Language:   sf.Language,
			IsMethod:   u.Kind == syntax.UnitMethod,
			StartLine:  span.Start,
			EndLine:    span.End,
			Complexity: Complexity(u.Root),
			Lines:      lines,
		}
		res.File.TotalComplexity += fn.Complexity
		res.Functions = append(res.Functions, fn)
	}
	return res
}

func measureLines(u syntax.Unit) (types.LineCounts, syntax.Span) {
	set := ExtractLines(u.Tokens)
	return types.LineCounts{
		Source:   set.Span.Lines(),
		Physical: set.Len(),
		Logical:  LogicalLines(u.Root),
	}, set.Span
}

// ComplexityRecords ranks functions by cyclomatic complexity.
func ComplexityRecords(fns []types.FunctionMetrics) []types.MetricRecord {
	out := make([]types.MetricRecord, 0, len(fns))
	for _, fn := range fns {
		out = append(out, types.MetricRecord{Subject: fn.Name, File: fn.File, Score: fn.Complexity})
	}
	return out
}

// FunctionLineRecords ranks functions by the chosen line measure.
func FunctionLineRecords(fns []types.FunctionMetrics, m types.LineMeasure) []types.MetricRecord {
	out := make([]types.MetricRecord, 0, len(fns))
	for _, fn := range fns {
		out = append(out, types.MetricRecord{Subject: fn.Name, File: fn.File, Score: fn.Lines.Get(m)})
	}
	return out
}

// FileLineRecords ranks files by the chosen line measure.
func FileLineRecords(files []types.FileMetrics, m types.LineMeasure) []types.MetricRecord {
	out := make([]types.MetricRecord, 0, len(files))
	for _, f := range files {
		out = append(out, types.MetricRecord{Subject: f.Path, File: f.Path, Score: f.Lines.Get(m)})
	}
	return out
}
