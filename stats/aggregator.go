// Package stats ranks scored metric records and summarizes them.
package stats

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/TFMV/codemetrics/types"
)

// DefaultTopK is the number of records a summary lists when none is given.
const DefaultTopK = 5

// Aggregator collects records of one metric kind and answers ranked queries.
// The records are kept sorted descending by score lazily: every insertion marks
// the sequence dirty and the next order-dependent read re-sorts it.
type Aggregator struct {
	kind types.MetricKind

	mu      sync.Mutex
	records []types.MetricRecord
	sorted  bool
}

// New creates an empty Aggregator for the given metric kind.
func New(kind types.MetricKind) *Aggregator {
	return &Aggregator{kind: kind}
}

// Kind returns the metric kind the aggregator was created for.
func (a *Aggregator) Kind() types.MetricKind {
	return a.kind
}

// Add appends one record.
func (a *Aggregator) Add(rec types.MetricRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	a.sorted = false
}

// AddMany appends records in order.
func (a *Aggregator) AddMany(recs []types.MetricRecord) {
	if len(recs) == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, recs...)
	a.sorted = false
}

// Len returns the number of records.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

// Sort orders the records descending by score. Equal scores keep insertion order.
func (a *Aggregator) Sort() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sort()
}

func (a *Aggregator) sort() {
	slices.SortStableFunc(a.records, func(x, y types.MetricRecord) int {
		return cmp.Compare(y.Score, x.Score)
	})
	a.sorted = true
}

func (a *Aggregator) ensureSorted() {
	if !a.sorted {
		a.sort()
	}
}

// Max returns the highest scoring record. ok is false when there are none.
func (a *Aggregator) Max() (rec types.MetricRecord, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.records) == 0 {
		return types.MetricRecord{}, false
	}
	a.ensureSorted()
	return a.records[0], true
}

// Min returns the lowest scoring record; among equal lowest scores, the one
// inserted last. ok is false when there are none.
func (a *Aggregator) Min() (rec types.MetricRecord, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.records) == 0 {
		return types.MetricRecord{}, false
	}
	a.ensureSorted()
	return a.records[len(a.records)-1], true
}

// Mean returns the arithmetic mean of all scores, or 0 when empty.
func (a *Aggregator) Mean() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range a.records {
		sum += float64(r.Score)
	}
	return sum / float64(len(a.records))
}

// TopK returns a copy of the first min(k, n) records in ranked order.
func (a *Aggregator) TopK(k int) []types.MetricRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	if k <= 0 {
		return []types.MetricRecord{}
	}
	a.ensureSorted()
	k = min(k, len(a.records))
	return slices.Clone(a.records[:k])
}

// Records returns a copy of all records in ranked order.
func (a *Aggregator) Records() []types.MetricRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ensureSorted()
	return slices.Clone(a.records)
}

// Summary is a point-in-time snapshot of an aggregator.
type Summary struct {
	Kind  types.MetricKind     `json:"kind" yaml:"kind"`
	Title string               `json:"title" yaml:"title"`
	Count int                  `json:"count" yaml:"count"`
	Mean  float64              `json:"mean" yaml:"mean"`
	Max   *types.MetricRecord  `json:"max,omitempty" yaml:"max,omitempty"`
	Min   *types.MetricRecord  `json:"min,omitempty" yaml:"min,omitempty"`
	Top   []types.MetricRecord `json:"top" yaml:"top"`
}

// Snapshot collects count, mean, max, min and the top k records under one lock.
func (a *Aggregator) Snapshot(k int) Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ensureSorted()

	s := Summary{
		Kind:  a.kind,
		Title: a.kind.Title(),
		Count: len(a.records),
		Top:   []types.MetricRecord{},
	}
	if s.Count == 0 {
		return s
	}

	var sum float64
	for _, r := range a.records {
		sum += float64(r.Score)
	}
	s.Mean = sum / float64(s.Count)
	if k > 0 {
		s.Top = slices.Clone(a.records[:min(k, s.Count)])
	}
	maxRec, minRec := a.records[0], a.records[s.Count-1]
	s.Max, s.Min = &maxRec, &minRec
	return s
}

// Summarize writes the plain-text report: banner, count and mean, max, min and
// the top k records. An empty aggregator prints the kind's empty message.
func (a *Aggregator) Summarize(w io.Writer, k int) error {
	if k <= 0 {
		k = DefaultTopK
	}
	s := a.Snapshot(k)

	lines := []string{Banner(s.Title)}
	if s.Count == 0 {
		lines = append(lines, a.kind.EmptyMessage())
	} else {
		lines = append(lines, fmt.Sprintf("%s: %d, MEAN: %.2f", a.kind.CountLabel(), s.Count, s.Mean))
		lines = append(lines, "MAX: "+s.Max.String())
		lines = append(lines, "MIN: "+s.Min.String())
		lines = append(lines, fmt.Sprintf("TOP %d:", k))
		for _, rec := range s.Top {
			lines = append(lines, "\t"+rec.String())
		}
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write %s summary: %w", a.kind, err)
		}
	}
	return nil
}

// Banner returns the section header used by every text summary.
func Banner(title string) string {
	return fmt.Sprintf("######## %s Statistic ########", title)
}
