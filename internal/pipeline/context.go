package pipeline

import (
	"github.com/google/uuid"

	"github.com/funvibe/matchcore/internal/ast"
	"github.com/funvibe/matchcore/internal/config"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/mir"
	"github.com/funvibe/matchcore/internal/token"
	"github.com/funvibe/matchcore/internal/typed"
)

// TokenStream is the lexer output consumed by the parser.
type TokenStream interface {
	Next() token.Token
	Peek(n int) []token.Token
	Tokens() []token.Token
}

// PipelineContext carries one compilation unit through the stages.
type PipelineContext struct {
	SourceCode string
	FilePath   string
	Config     *config.Config
	RunID      string

	TokenStream TokenStream
	AstRoot     *ast.Program
	Typed       *typed.Module
	Mir         *mir.Module

	Diagnostics *diagnostics.Collector

	// Incomplete is set when parsing stopped at end of input inside an
	// unfinished construct; the REPL uses it to ask for more lines.
	Incomplete bool
}

// NewContext prepares a unit for Run with a fresh run id and collector.
func NewContext(file, source string, cfg *config.Config) *PipelineContext {
	if cfg == nil {
		cfg = config.Default()
	}
	return &PipelineContext{
		SourceCode:  source,
		FilePath:    file,
		Config:      cfg,
		RunID:       uuid.NewString(),
		Diagnostics: diagnostics.NewCollector(file),
	}
}

// Plans returns the lowering plans produced for this unit.
func (ctx *PipelineContext) Plans() []mir.MatchLoweringPlan {
	if ctx.Mir == nil {
		return nil
	}
	return ctx.Mir.MatchLowerings
}

// Report returns the diagnostics after applying the configured policy.
func (ctx *PipelineContext) Report() []diagnostics.Diagnostic {
	return ctx.Diagnostics.Apply(ctx.Config.DiagnosticPolicy())
}
