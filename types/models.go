package types

import (
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// LineCounts holds the three lines-of-code variants of a unit.
type LineCounts struct {
	Source   int `json:"source" yaml:"source"`
	Physical int `json:"physical" yaml:"physical"`
	Logical  int `json:"logical" yaml:"logical"`
}

// Get returns the count for the given measure; unknown measures read as physical.
func (c LineCounts) Get(m LineMeasure) int {
	switch m {
	case MeasureSource:
		return c.Source
	case MeasureLogical:
		return c.Logical
	default:
		return c.Physical
	}
}

// FunctionMetrics holds the metrics of one free function or method
type FunctionMetrics struct {
	ID         *models.RecordID `json:"id,omitempty" yaml:"-"`
	Name       string           `json:"name" yaml:"name"`
	File       string           `json:"file" yaml:"file"`
	Language   string           `json:"language" yaml:"language"`
	IsMethod   bool             `json:"is_method" yaml:"is_method"`
	StartLine  int              `json:"start_line" yaml:"start_line"`
	EndLine    int              `json:"end_line" yaml:"end_line"`
	Complexity int              `json:"cyclomatic_complexity" yaml:"cyclomatic_complexity"`
	Lines      LineCounts       `json:"lines" yaml:"lines"`
}

// FileMetrics holds the metrics of one source file
type FileMetrics struct {
	ID              *models.RecordID `json:"id,omitempty" yaml:"-"`
	Path            string           `json:"path" yaml:"path"`
	Language        string           `json:"language" yaml:"language"`
	Functions       int              `json:"functions" yaml:"functions"`
	TotalComplexity int              `json:"total_complexity" yaml:"total_complexity"`
	Lines           LineCounts       `json:"lines" yaml:"lines"`
}

// FileResult is everything measured in one source file.
type FileResult struct {
	File      FileMetrics       `json:"file" yaml:"file"`
	Functions []FunctionMetrics `json:"functions" yaml:"functions"`
}

// WithPath returns a copy of the result attributed to another file with the
// same content.
func (r FileResult) WithPath(path string) FileResult {
	out := FileResult{File: r.File, Functions: make([]FunctionMetrics, len(r.Functions))}
	out.File.Path = path
	out.File.ID = nil
	for i, fn := range r.Functions {
		fn.File = path
		fn.ID = nil
		out.Functions[i] = fn
	}
	return out
}

// Failure records a file that could not be analyzed.
type Failure struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// RunReport is the persisted outcome of one analysis run.
type RunReport struct {
	ID        *models.RecordID  `json:"id,omitempty" yaml:"-"`
	Root      string            `json:"root" yaml:"root"`
	StartedAt time.Time         `json:"started_at" yaml:"started_at"`
	Functions []FunctionMetrics `json:"functions" yaml:"functions"`
	Files     []FileMetrics     `json:"files" yaml:"files"`
	Failures  []Failure         `json:"failures,omitempty" yaml:"failures,omitempty"`
}
