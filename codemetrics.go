// Package codemetrics ranks the functions, files and directories of Go and
// Rust source trees by cyclomatic complexity and lines of code.
package codemetrics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/TFMV/codemetrics/analysis"
	"github.com/TFMV/codemetrics/cache"
	"github.com/TFMV/codemetrics/config"
	"github.com/TFMV/codemetrics/db"
	"github.com/TFMV/codemetrics/parser"
	"github.com/TFMV/codemetrics/report"
	"github.com/TFMV/codemetrics/scan"
	"github.com/TFMV/codemetrics/stats"
	"github.com/TFMV/codemetrics/types"
)

// Command selects which rankings a run produces.
type Command string

const (
	CommandComplexity  Command = "cc"
	CommandFunctionLOC Command = "loc"
	CommandFileLOC     Command = "locf"
	CommandDirs        Command = "dirs"
	CommandDuplicates  Command = "dup"
	CommandAll         Command = "all"
)

// Commands lists every command in the order `all` reports them.
var Commands = []Command{
	CommandComplexity,
	CommandFunctionLOC,
	CommandFileLOC,
	CommandDirs,
	CommandDuplicates,
}

// ParseCommand validates a command name.
func ParseCommand(s string) (Command, error) {
	c := Command(strings.ToLower(s))
	if c == CommandAll {
		return c, nil
	}
	for _, known := range Commands {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown command %q", s)
}

func (c Command) includes(other Command) bool {
	return c == other || c == CommandAll
}

func (c Command) analyzes() bool {
	return c.includes(CommandComplexity) || c.includes(CommandFunctionLOC) || c.includes(CommandFileLOC)
}

// NewAnalyzer builds an analyzer for the configured languages and analysis
// settings. store may be nil.
func NewAnalyzer(cfg *config.Config, store db.DB, logger *slog.Logger) (*analysis.Analyzer, error) {
	p, err := parser.NewParser(logger, cfg.Analysis.Languages...)
	if err != nil {
		return nil, fmt.Errorf("failed to create parser: %w", err)
	}

	a := analysis.NewAnalyzer(p, store, logger)
	a.Jobs = cfg.Analysis.Jobs
	a.KeepGoing = cfg.Analysis.KeepGoing
	a.Measure = cfg.LineMeasure()
	a.Scan = cfg.ScanOptions()
	if cfg.Analysis.CacheSize > 0 {
		a.Cache = cache.NewResultCache(cfg.Analysis.CacheSize)
	} else {
		a.Cache = nil
	}
	return a, nil
}

// OpenStore connects to the configured backend. It returns nil when
// persistence is off.
func OpenStore(cfg config.StoreConfig) (db.DB, error) {
	switch strings.ToLower(cfg.Backend) {
	case config.BackendSurreal:
		s, err := db.NewSurrealDB(db.Config{
			URL:       cfg.Surreal.URL,
			Namespace: cfg.Surreal.Namespace,
			Database:  cfg.Surreal.Database,
			Username:  cfg.Surreal.Username,
			Password:  cfg.Surreal.Password,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendBadger:
		b, err := db.NewBadgerDB(cfg.Badger.Path)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, nil
	}
}

// Run executes cmd against root and collects what it reports.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, cmd Command, root string) (report.Report, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	rep := report.Report{Root: root}

	if cmd.analyzes() {
		store, err := OpenStore(cfg.Store)
		if err != nil {
			return rep, err
		}
		if store != nil {
			defer func() {
				if err := store.Close(); err != nil {
					logger.Warn("failed to close store", "error", err)
				}
			}()
		}

		a, err := NewAnalyzer(cfg, store, logger)
		if err != nil {
			return rep, err
		}
		if err := a.Initialize(ctx); err != nil {
			return rep, fmt.Errorf("failed to initialize store: %w", err)
		}

		res, err := a.AnalyzeDirectory(ctx, root)
		if err != nil {
			return rep, err
		}
		if cmd.includes(CommandComplexity) {
			rep.Rankings = append(rep.Rankings, res.Complexity)
		}
		if cmd.includes(CommandFunctionLOC) {
			rep.Rankings = append(rep.Rankings, res.FunctionLOC)
		}
		if cmd.includes(CommandFileLOC) {
			rep.Rankings = append(rep.Rankings, res.FileLOC)
		}
		rep.Failures = res.Report.Failures
	}

	if cmd.includes(CommandDirs) {
		records, err := scan.DirSizes(root, cfg.ScanOptions())
		if err != nil {
			return rep, fmt.Errorf("failed to count directory sizes: %w", err)
		}
		dirs := stats.New(types.KindDirSize)
		dirs.AddMany(records)
		rep.Rankings = append(rep.Rankings, dirs)
	}

	if cmd.includes(CommandDuplicates) {
		paths, err := scan.Files(root, cfg.ScanOptions())
		if err != nil {
			return rep, err
		}
		dup, err := scan.Duplicates(paths)
		if err != nil {
			return rep, fmt.Errorf("failed to find duplicates: %w", err)
		}
		logger.Debug("duplicates", "files", dup.Total, "unique", dup.Unique)
		rep.Duplicates = &dup
	}

	return rep, nil
}
