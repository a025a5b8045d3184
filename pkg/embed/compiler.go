// Package matchcore is the embedding API: it checks and lowers source text
// and hands back lowering plans and diagnostics without exposing the
// pipeline.
package matchcore

import (
	"context"
	"fmt"
	"os"

	"github.com/funvibe/matchcore/internal/backend"
	"github.com/funvibe/matchcore/internal/config"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/mir"
	"github.com/funvibe/matchcore/internal/pipeline"
	"github.com/funvibe/matchcore/internal/wire"
)

type (
	Plan       = mir.MatchLoweringPlan
	Lowering   = mir.PatternLowering
	Diagnostic = diagnostics.Diagnostic
)

// Compiler runs the check and lowering stages with one configuration.
// It holds no per-run state and is safe for concurrent use.
type Compiler struct {
	cfg *config.Config
}

// New returns a compiler using the default configuration.
func New() *Compiler {
	return &Compiler{cfg: config.Default()}
}

// NewFromConfig loads matchc.yaml from path. An empty path searches upward
// from dir and falls back to the defaults.
func NewFromConfig(path, dir string) (*Compiler, error) {
	cfg, err := config.Resolve(path, dir)
	if err != nil {
		return nil, err
	}
	return &Compiler{cfg: cfg}, nil
}

// Result is the outcome of compiling one unit.
type Result struct {
	File        string
	RunID       string
	Module      *mir.Module
	Plans       []Plan
	Diagnostics []Diagnostic
}

func newResult(ctx *pipeline.PipelineContext) *Result {
	return &Result{
		File:        ctx.FilePath,
		RunID:       ctx.RunID,
		Module:      ctx.Mir,
		Plans:       ctx.Plans(),
		Diagnostics: ctx.Report(),
	}
}

// HasErrors reports whether any diagnostic has error severity.
func (r *Result) HasErrors() bool {
	return diagnostics.Count(r.Diagnostics, diagnostics.SeverityError) > 0
}

// PlanJSON encodes the plans in the wire format.
func (r *Result) PlanJSON(indent bool) ([]byte, error) {
	return wire.EncodePlans(wire.NewPlanSet(r.File, r.RunID, r.Plans), indent)
}

// ModuleJSON encodes the whole lowered module.
func (r *Result) ModuleJSON(indent bool) ([]byte, error) {
	if r.Module == nil {
		return nil, fmt.Errorf("%s: nothing was lowered", r.File)
	}
	return wire.EncodeModule(r.Module, indent)
}

// Compile checks and lowers src. Problems in the source are reported as
// diagnostics, never as an error.
func (c *Compiler) Compile(file, src string) *Result {
	return newResult(backend.NewPipeline().Run(pipeline.NewContext(file, src, c.cfg)))
}

func (c *Compiler) CompileFile(path string) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return c.Compile(path, string(src)), nil
}

// CompileAll compiles the files concurrently, bounded by the configured
// worker count. Results keep the order of paths.
func (c *Compiler) CompileAll(ctx context.Context, paths []string) ([]*Result, error) {
	units := make([]pipeline.Unit, len(paths))
	for i, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		units[i] = pipeline.Unit{FilePath: p, SourceCode: string(src)}
	}
	ctxs := pipeline.RunUnits(ctx, units, c.cfg.Workers, func(u pipeline.Unit) (*pipeline.Pipeline, *pipeline.PipelineContext) {
		return backend.NewPipeline(), pipeline.NewContext(u.FilePath, u.SourceCode, c.cfg)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results := make([]*Result, len(ctxs))
	for i, pc := range ctxs {
		results[i] = newResult(pc)
	}
	return results, nil
}
