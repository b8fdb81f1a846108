package types

import (
	"fmt"
	"strings"
)

// MetricRecord is one scored subject (function, file or directory) in a ranking.
type MetricRecord struct {
	Subject string `json:"subject" yaml:"subject"`
	File    string `json:"file" yaml:"file"`
	Score   int    `json:"score" yaml:"score"`
}

func (r MetricRecord) String() string {
	return fmt.Sprintf("%s, %d", r.Subject, r.Score)
}

// MetricKind names a ranking and carries its report labels.
type MetricKind string

const (
	KindComplexity  MetricKind = "cc"
	KindFunctionLOC MetricKind = "loc"
	KindFileLOC     MetricKind = "locf"
	KindDirSize     MetricKind = "dirs"
)

var kindLabels = map[MetricKind]struct {
	title, count, empty string
}{
	KindComplexity:  {"Cyclomatic Complexity", "FUNC NUM", "No function or impl method found!"},
	KindFunctionLOC: {"Function Loc", "FUNC NUM", "No function or impl method found!"},
	KindFileLOC:     {"File Loc", "FILE NUM", "No source file found!"},
	KindDirSize:     {"Large Directory", "DIR NUM", "No directory found!"},
}

// Title is the banner title of the kind's summary.
func (k MetricKind) Title() string {
	if l, ok := kindLabels[k]; ok {
		return l.title
	}
	return strings.ToUpper(string(k))
}

// CountLabel is the label printed before the record count.
func (k MetricKind) CountLabel() string {
	if l, ok := kindLabels[k]; ok {
		return l.count
	}
	return "NUM"
}

// EmptyMessage is printed instead of statistics when nothing was recorded.
func (k MetricKind) EmptyMessage() string {
	if l, ok := kindLabels[k]; ok {
		return l.empty
	}
	return "No records found!"
}

// LineMeasure selects one of the lines-of-code variants.
type LineMeasure string

const (
	MeasurePhysical LineMeasure = "ploc"
	MeasureSource   LineMeasure = "sloc"
	MeasureLogical  LineMeasure = "lloc"
)

// ParseLineMeasure validates a measure name.
func ParseLineMeasure(s string) (LineMeasure, error) {
	switch m := LineMeasure(strings.ToLower(s)); m {
	case MeasurePhysical, MeasureSource, MeasureLogical:
		return m, nil
	}
	return "", fmt.Errorf("unknown line measure %q", s)
}
