package backend

import (
	"log/slog"

	"github.com/funvibe/matchcore/internal/analyzer"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/lexer"
	"github.com/funvibe/matchcore/internal/mir"
	"github.com/funvibe/matchcore/internal/parser"
	"github.com/funvibe/matchcore/internal/pipeline"
	"github.com/funvibe/matchcore/internal/token"
)

// LoweringProcessor lowers the typed module into MIR. It runs even when
// earlier stages reported diagnostics; only a missing typed module stops it.
type LoweringProcessor struct{}

func (lp *LoweringProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Typed == nil {
		return ctx
	}
	ctx.Mir = mir.LowerModule(ctx.Typed, mir.OptionsFrom(ctx.Config))
	slog.Debug("lowered module",
		slog.String("file", ctx.FilePath),
		slog.Int("functions", len(ctx.Mir.Functions)),
		slog.Int("plans", len(ctx.Mir.MatchLowerings)))
	return ctx
}

// ExecutionProcessor hands the lowered module to a Backend and keeps the
// traces it returns.
type ExecutionProcessor struct {
	Backend Backend
	Traces  []Trace
}

// NewExecutionProcessor creates a new pipeline step for the given backend
func NewExecutionProcessor(b Backend) *ExecutionProcessor {
	return &ExecutionProcessor{Backend: b}
}

func (p *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Mir == nil {
		return ctx
	}
	traces, err := p.Backend.Run(ctx)
	p.Traces = traces
	if err != nil {
		ctx.Diagnostics.Add(diagnostics.NewDiagnostic(
			diagnostics.BackendPlanRejected,
			token.Span{},
			p.Backend.Name(),
			err.Error(),
		))
	}
	return ctx
}

// NewPipeline returns the standard stages, lexing through lowering,
// followed by extra.
func NewPipeline(extra ...pipeline.Processor) *pipeline.Pipeline {
	stages := []pipeline.Processor{
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
		&LoweringProcessor{},
	}
	return pipeline.New(append(stages, extra...)...)
}
