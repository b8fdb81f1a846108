// Package report renders the rankings of a run as text, tables, JSON or YAML.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/TFMV/codemetrics/scan"
	"github.com/TFMV/codemetrics/stats"
	"github.com/TFMV/codemetrics/types"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for a format no renderer handles.
var ErrUnknownFormat = errors.New("unknown report format")

const duplicateTitle = "File Duplicate"

var (
	bannerColor = color.New(color.FgCyan, color.Bold)
	failColor   = color.New(color.FgYellow)
)

// Report is everything one command prints.
type Report struct {
	Root       string
	Rankings   []*stats.Aggregator
	Duplicates *scan.DuplicateReport
	Failures   []types.Failure
}

type document struct {
	Root       string            `json:"root" yaml:"root"`
	Rankings   []stats.Summary   `json:"rankings,omitempty" yaml:"rankings,omitempty"`
	Duplicates *duplicateSummary `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Failures   []types.Failure   `json:"failures,omitempty" yaml:"failures,omitempty"`
}

type duplicateSummary struct {
	Total  int        `json:"total" yaml:"total"`
	Unique int        `json:"unique" yaml:"unique"`
	Rate   float64    `json:"rate" yaml:"rate"`
	Groups [][]string `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// Write renders rep to w. top is the number of records listed per ranking;
// 0 or less selects the default.
func Write(w io.Writer, format string, top int, rep Report) error {
	if top <= 0 {
		top = stats.DefaultTopK
	}

	switch strings.ToLower(format) {
	case "", "text":
		return writeText(w, top, rep)
	case "table":
		return writeTable(w, top, rep)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(newDocument(top, rep)); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newDocument(top, rep)); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func newDocument(top int, rep Report) document {
	doc := document{Root: rep.Root, Failures: rep.Failures}
	for _, agg := range rep.Rankings {
		doc.Rankings = append(doc.Rankings, agg.Snapshot(top))
	}
	if d := rep.Duplicates; d != nil {
		doc.Duplicates = &duplicateSummary{
			Total:  d.Total,
			Unique: d.Unique,
			Rate:   d.Rate(),
			Groups: d.Groups,
		}
	}
	return doc
}

func writeText(w io.Writer, top int, rep Report) error {
	for _, agg := range rep.Rankings {
		var buf bytes.Buffer
		if err := agg.Summarize(&buf, top); err != nil {
			return err
		}
		banner, rest, _ := strings.Cut(buf.String(), "\n")
		if _, err := bannerColor.Fprintln(w, banner); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if _, err := io.WriteString(w, rest); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if d := rep.Duplicates; d != nil {
		if _, err := bannerColor.Fprintln(w, stats.Banner(duplicateTitle)); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if _, err := io.WriteString(w, duplicateText(*d)); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	for _, f := range rep.Failures {
		if _, err := failColor.Fprintf(w, "FAILED: %s: %s\n", f.Path, f.Error); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

func duplicateText(d scan.DuplicateReport) string {
	if d.Total == 0 {
		return "No file found!\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Total file count: %d\n", d.Total)
	fmt.Fprintf(&sb, "Unique file count: %d\n", d.Unique)
	fmt.Fprintf(&sb, "File Duplicate Rate: %.2f\n", d.Rate())
	for _, group := range d.Groups {
		sb.WriteString("\t" + strings.Join(group, ", ") + "\n")
	}
	return sb.String()
}

func writeTable(w io.Writer, top int, rep Report) error {
	var parts []string
	for _, agg := range rep.Rankings {
		parts = append(parts, rankingTable(agg.Snapshot(top)))
	}
	if rep.Duplicates != nil {
		parts = append(parts, duplicateTable(*rep.Duplicates))
	}
	if len(rep.Failures) > 0 {
		parts = append(parts, failureTable(rep.Failures))
	}

	if _, err := fmt.Fprintln(w, strings.Join(parts, "\n\n")); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.SetTitle(title)
	return tbl
}

func rankingTable(s stats.Summary) string {
	tbl := newTable(s.Title)
	if s.Count == 0 {
		tbl.AppendRow(table.Row{s.Kind.EmptyMessage()})
		return tbl.Render()
	}

	tbl.AppendHeader(table.Row{"#", "Subject", "File", "Score"})
	for i, rec := range s.Top {
		tbl.AppendRow(table.Row{i + 1, rec.Subject, rec.File, humanize.Comma(int64(rec.Score))})
	}
	tbl.AppendFooter(table.Row{
		s.Kind.CountLabel(), humanize.Comma(int64(s.Count)),
		"MEAN", fmt.Sprintf("%.2f", s.Mean),
	})
	tbl.AppendFooter(table.Row{"MAX", s.Max.Subject, s.Max.File, humanize.Comma(int64(s.Max.Score))})
	tbl.AppendFooter(table.Row{"MIN", s.Min.Subject, s.Min.File, humanize.Comma(int64(s.Min.Score))})
	return tbl.Render()
}

func duplicateTable(d scan.DuplicateReport) string {
	tbl := newTable(duplicateTitle)
	tbl.AppendHeader(table.Row{"Total", "Unique", "Rate"})
	tbl.AppendRow(table.Row{
		humanize.Comma(int64(d.Total)),
		humanize.Comma(int64(d.Unique)),
		fmt.Sprintf("%.2f%%", d.Rate()*100),
	})
	if len(d.Groups) > 0 {
		tbl.AppendSeparator()
	}
	for _, group := range d.Groups {
		tbl.AppendRow(table.Row{strings.Join(group, ", ")})
	}
	return tbl.Render()
}

func failureTable(failures []types.Failure) string {
	tbl := newTable("Failures")
	tbl.AppendHeader(table.Row{"Path", "Error"})
	for _, f := range failures {
		tbl.AppendRow(table.Row{f.Path, f.Error})
	}
	return tbl.Render()
}
