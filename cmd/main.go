package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/TFMV/codemetrics"
	"github.com/TFMV/codemetrics/config"
	"github.com/TFMV/codemetrics/report"
	"github.com/docopt/docopt-go"
	"github.com/fatih/color"
)

const version = "codemetrics 0.1.0"

const usage = `codemetrics ranks Go and Rust code by complexity and lines of code.

Usage:
  codemetrics (cc|loc|locf|dirs|dup|all) [<input>] [options]
  codemetrics -h | --help
  codemetrics --version

Commands:
  cc    Cyclomatic complexity per function and method.
  loc   Lines of code per function and method.
  locf  Lines of code per file.
  dirs  Largest directories by file count.
  dup   Whole-file duplicates.
  all   Every report above.

Arguments:
  <input>  File or directory to measure, ./ when omitted.

Options:
  -h --help               Show this screen.
  --version               Show version.
  -c --config=<file>      Config file (default .codemetrics.yaml).
  -f --format=<format>    Output format: text, table, json or yaml.
  -k --top=<k>            Number of records listed per ranking.
  -m --measure=<measure>  Line measure for loc and locf: ploc, sloc or lloc.
  -l --lang=<languages>   Comma separated languages to measure.
  -x --exclude=<globs>    Comma separated patterns to skip.
  -j --jobs=<n>           Files processed at once.
  --store=<backend>       Persist the run: none, surreal or badger.
  --keep-going            Report unparsable files instead of stopping.
  --no-color              Disable colored output.
  -v --verbose            Log debug messages.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	parser := &docopt.Parser{HelpHandler: docopt.PrintHelpAndExit}
	if err := run(ctx, parser, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		log.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, parser *docopt.Parser, argv []string, stdout, stderr io.Writer) error {
	opts, err := parser.ParseArgs(usage, argv, version)
	if err != nil {
		return err
	}
	if opts == nil {
		// help or version was printed
		return nil
	}

	cmd, err := command(opts)
	if err != nil {
		return err
	}

	input := "./"
	if s, ok := opts["<input>"].(string); ok && s != "" {
		input = s
	}

	cfg, err := config.Load(config.Options{
		File:      stringOpt(opts, "--config"),
		Overrides: overrides(opts),
	})
	if err != nil {
		return err
	}

	if !cfg.Output.Color {
		color.NoColor = true
	}

	logger, err := config.NewLogger(stderr, cfg.Logging)
	if err != nil {
		return err
	}

	rep, err := codemetrics.Run(ctx, cfg, logger, cmd, input)
	if err != nil {
		return err
	}

	return report.Write(stdout, cfg.Output.Format, cfg.Analysis.Top, rep)
}

func command(opts docopt.Opts) (codemetrics.Command, error) {
	if ok, _ := opts.Bool(string(codemetrics.CommandAll)); ok {
		return codemetrics.CommandAll, nil
	}
	for _, c := range codemetrics.Commands {
		if ok, _ := opts.Bool(string(c)); ok {
			return c, nil
		}
	}
	return "", fmt.Errorf("no command given")
}

func stringOpt(opts docopt.Opts, key string) string {
	s, _ := opts[key].(string)
	return s
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// overrides maps the given flags onto config keys.
func overrides(opts docopt.Opts) map[string]any {
	out := make(map[string]any)

	flags := map[string]string{
		"--format":  "output.format",
		"--top":     "analysis.top",
		"--measure": "analysis.measure",
		"--jobs":    "analysis.jobs",
		"--store":   "store.backend",
	}
	for flag, key := range flags {
		if s := stringOpt(opts, flag); s != "" {
			out[key] = s
		}
	}

	if s := stringOpt(opts, "--lang"); s != "" {
		out["analysis.languages"] = splitList(s)
	}
	if s := stringOpt(opts, "--exclude"); s != "" {
		out["analysis.exclude"] = splitList(s)
	}
	if ok, _ := opts.Bool("--keep-going"); ok {
		out["analysis.keep_going"] = true
	}
	if ok, _ := opts.Bool("--no-color"); ok {
		out["output.color"] = false
	}
	if ok, _ := opts.Bool("--verbose"); ok {
		out["logging.level"] = "debug"
	}
	return out
}
