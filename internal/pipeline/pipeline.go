package pipeline

import (
	"context"
	"log/slog"
	"sync"
)

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors: a unit with diagnostics still gets a
		// best-effort plan for later stages and editors.
	}
	slog.Debug("pipeline finished",
		slog.String("file", ctx.FilePath),
		slog.String("run", ctx.RunID),
		slog.Int("diagnostics", ctx.Diagnostics.Len()))
	return ctx
}

// Unit is one source file to compile.
type Unit struct {
	FilePath   string
	SourceCode string
}

// RunUnits runs a fresh copy of the pipeline for each unit, at most workers
// at a time. Units share no mutable state; results keep the input order.
func RunUnits(ctx context.Context, units []Unit, workers int, build func(Unit) (*Pipeline, *PipelineContext)) []*PipelineContext {
	if workers < 1 {
		workers = 1
	}
	results := make([]*PipelineContext, len(units))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, u := range units {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, u Unit) {
			defer wg.Done()
			defer func() { <-sem }()
			p, pctx := build(u)
			results[i] = p.Run(pctx)
		}(i, u)
	}
	wg.Wait()
	return results
}
