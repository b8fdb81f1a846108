package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/TFMV/codemetrics/cache"
	"github.com/TFMV/codemetrics/db"
	"github.com/TFMV/codemetrics/parser"
	"github.com/TFMV/codemetrics/scan"
	"github.com/TFMV/codemetrics/stats"
	"github.com/TFMV/codemetrics/types"
	"golang.org/x/sync/errgroup"
)

// DefaultCacheSize is the number of file results kept by NewAnalyzer.
const DefaultCacheSize = 10000

// Analyzer measures every source file under a root and ranks the results
type Analyzer struct {
	DB     db.DB // optional
	Cache  *cache.ResultCache
	Parser *parser.Parser
	Logger *slog.Logger

	// Jobs bounds the number of files processed at once; 0 or less means one.
	Jobs int
	// KeepGoing records failing files and continues instead of aborting.
	KeepGoing bool
	// Measure is the line measure the LOC rankings use.
	Measure types.LineMeasure
	Scan    scan.Options
}

// Results holds the outcome of one run: detail records plus one ranked
// aggregator per metric kind.
type Results struct {
	Report      types.RunReport
	Complexity  *stats.Aggregator
	FunctionLOC *stats.Aggregator
	FileLOC     *stats.Aggregator
}

// NewAnalyzer creates an Analyzer with a result cache and physical lines as
// the LOC measure.
func NewAnalyzer(p *parser.Parser, store db.DB, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = discard
	}
	return &Analyzer{
		DB:      store,
		Cache:   cache.NewResultCache(DefaultCacheSize),
		Parser:  p,
		Logger:  logger,
		Jobs:    1,
		Measure: types.MeasurePhysical,
	}
}

// Initialize sets up the store, if there is one
func (a *Analyzer) Initialize(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Initialize(ctx)
}

// AnalyzeDirectory analyzes root and persists the run when a store is set
func (a *Analyzer) AnalyzeDirectory(ctx context.Context, root string) (*Results, error) {
	res, err := a.GetAnalysis(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze directory: %w", err)
	}

	if a.DB != nil {
		if err := a.DB.StoreRun(ctx, res.Report); err != nil {
			return nil, fmt.Errorf("failed to store analysis results: %w", err)
		}
	}

	return res, nil
}

// GetAnalysis performs code analysis without storing results
func (a *Analyzer) GetAnalysis(ctx context.Context, root string) (*Results, error) {
	paths, err := scan.SourceFiles(root, a.Parser.Extensions(), a.Scan)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeFiles(ctx, root, paths)
}

type fileSlot struct {
	res types.FileResult
	err error
}

// AnalyzeFiles measures the given files concurrently and folds the results
// in the order of paths, so rankings are reproducible.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, root string, paths []string) (*Results, error) {
	start := time.Now()
	a.log().Info("analyzing", "root", root, "files", len(paths), "jobs", a.jobs())

	slots := make([]fileSlot, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.jobs())

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := a.analyzeFile(path)
			if err != nil && !a.KeepGoing {
				return fmt.Errorf("error analyzing %s: %w", path, err)
			}
			slots[i] = fileSlot{res: res, err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Results{
		Report:      types.RunReport{Root: root, StartedAt: start},
		Complexity:  stats.New(types.KindComplexity),
		FunctionLOC: stats.New(types.KindFunctionLOC),
		FileLOC:     stats.New(types.KindFileLOC),
	}
	for i, slot := range slots {
		if slot.err != nil {
			a.log().Warn("skipping file", "path", paths[i], "error", slot.err)
			out.Report.Failures = append(out.Report.Failures, types.Failure{Path: paths[i], Error: slot.err.Error()})
			continue
		}
		out.Report.Files = append(out.Report.Files, slot.res.File)
		out.Report.Functions = append(out.Report.Functions, slot.res.Functions...)
	}

	out.Complexity.AddMany(ComplexityRecords(out.Report.Functions))
	out.FunctionLOC.AddMany(FunctionLineRecords(out.Report.Functions, a.measure()))
	out.FileLOC.AddMany(FileLineRecords(out.Report.Files, a.measure()))

	a.log().Info("analysis complete",
		"files", len(out.Report.Files),
		"functions", len(out.Report.Functions),
		"failures", len(out.Report.Failures),
		"duration", time.Since(start))
	return out, nil
}

func (a *Analyzer) analyzeFile(path string) (types.FileResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return types.FileResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var key cache.Key
	if a.Cache != nil {
		key = cache.KeyFor(path, src)
		if res, ok := a.Cache.Get(key, path); ok {
			a.log().Debug("cache hit", "path", path)
			return res, nil
		}
	}

	sf, err := a.Parser.ParseSource(path, src)
	if err != nil {
		return types.FileResult{}, err
	}
	res := Measure(sf)

	if a.Cache != nil {
		a.Cache.Put(key, res)
	}
	return res, nil
}

func (a *Analyzer) log() *slog.Logger {
	if a.Logger == nil {
		return discard
	}
	return a.Logger
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func (a *Analyzer) jobs() int {
	return max(a.Jobs, 1)
}

func (a *Analyzer) measure() types.LineMeasure {
	if a.Measure == "" {
		return types.MeasurePhysical
	}
	return a.Measure
}
