package analyzer

import (
	"log/slog"

	"github.com/funvibe/matchcore/internal/pipeline"
)

// SemanticAnalyzerProcessor types the parsed program and runs the pattern
// checks. It still runs when parsing reported errors so that partial
// programs get typed output for later stages.
type SemanticAnalyzerProcessor struct{}

func (sap *SemanticAnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil {
		return ctx
	}
	mod, diags := BuildModule(ctx.AstRoot)
	ctx.Diagnostics.AddAll(diags)
	ctx.Typed = mod

	checks := CheckModule(mod, ctx.Config)
	ctx.Diagnostics.AddAll(checks)
	slog.Debug("analyzed module", "file", ctx.FilePath, "functions", len(mod.Functions),
		"active_patterns", len(mod.ActivePatterns), "diagnostics", len(checks))
	return ctx
}
