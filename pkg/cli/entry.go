// Package cli implements the matchc command line.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/funvibe/matchcore/internal/backend"
	"github.com/funvibe/matchcore/internal/config"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/pipeline"
	"github.com/funvibe/matchcore/internal/planstore"
)

// Version is set at build time with -ldflags "-X .../pkg/cli.Version=...".
var Version = "dev"

const usage = `Usage: matchc <command> [flags] [args]

Commands:
  check <file|dir>...   report diagnostics
  lower [-json] <file>  print the lowering plans
  trace [-miss N,...] <file>
                        print the control steps of each match
  runs <file>           list stored runs of a file
  serve                 run the plan service
  repl                  read matches interactively
  version               print the version

Common flags:
  -config <path>        matchc.yaml to use instead of searching upward
  -store <path>         sqlite database receiving runs
  -v                    debug logging
`

// errFailed marks a command that already reported its problems.
var errFailed = errors.New("failed")

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Run is the matchc entry point.
func Run() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := Main(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Main runs one command and returns the process exit code.
func Main(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "check":
		err = a.check(ctx, rest)
	case "lower":
		err = a.lower(ctx, rest)
	case "trace":
		err = a.trace(ctx, rest)
	case "runs":
		err = a.runs(ctx, rest)
	case "serve":
		err = a.serve(ctx, rest)
	case "repl":
		err = a.repl(ctx, rest)
	case "version", "-version", "--version":
		fmt.Fprintln(stdout, "matchc "+Version)
	case "help", "-help", "--help", "-h":
		fmt.Fprint(stdout, usage)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n%s", cmd, usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errFailed):
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

// commonFlags are accepted by every command that compiles.
type commonFlags struct {
	config  string
	store   string
	verbose bool
}

func (a *app) flagSet(name string, c *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVar(&c.config, "config", "", "path to matchc.yaml")
	fs.StringVar(&c.store, "store", "", "sqlite database receiving runs")
	fs.BoolVar(&c.verbose, "v", false, "debug logging")
	return fs
}

func (a *app) setup(c *commonFlags) (*config.Config, error) {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})))

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working directory: %w", err)
	}
	cfg, err := config.Resolve(c.config, cwd)
	if err != nil {
		return nil, err
	}
	if c.store != "" {
		cfg.Store = c.store
	}
	return cfg, nil
}

// openStore opens the configured store, or returns nil when none is set.
func openStore(ctx context.Context, cfg *config.Config) (*planstore.Store, error) {
	if cfg.Store == "" {
		return nil, nil
	}
	if dir := filepath.Dir(cfg.Store); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}
	return planstore.Open(ctx, cfg.Store)
}

// stages returns the processors that follow lowering for this run.
func stages(st *planstore.Store, extra ...pipeline.Processor) []pipeline.Processor {
	if st != nil {
		extra = append([]pipeline.Processor{&planstore.StoreProcessor{Store: st}}, extra...)
	}
	return extra
}

// collectSources expands directories into the source files they contain.
func collectSources(cfg *config.Config, args []string) ([]pipeline.Unit, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && cfg.IsSource(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", arg, err)
		}
	}
	units := make([]pipeline.Unit, 0, len(paths))
	for _, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		units = append(units, pipeline.Unit{FilePath: p, SourceCode: string(src)})
	}
	return units, nil
}

func (a *app) formatter() *diagnostics.Formatter {
	if f, ok := a.stderr.(*os.File); ok {
		return diagnostics.NewTerminalFormatter(f)
	}
	return diagnostics.NewFormatter(a.stderr, false)
}

// compileOne runs the standard pipeline plus extra on a single file.
func (a *app) compileOne(cfg *config.Config, path string, extra ...pipeline.Processor) (*pipeline.PipelineContext, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	ctx := backend.NewPipeline(extra...).Run(pipeline.NewContext(path, string(src), cfg))
	return ctx, nil
}

// report prints the unit's diagnostics and returns errFailed when any is
// an error.
func (a *app) report(ctxs ...*pipeline.PipelineContext) error {
	f := a.formatter()
	var all []diagnostics.Diagnostic
	for _, ctx := range ctxs {
		f.AddSource(ctx.FilePath, ctx.SourceCode)
		ds := ctx.Report()
		f.FormatAll(ds)
		all = append(all, ds...)
	}
	f.Summary(all)
	if diagnostics.Count(all, diagnostics.SeverityError) > 0 {
		return errFailed
	}
	return nil
}
