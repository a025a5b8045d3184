package parser

import (
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/pipeline"
	"github.com/funvibe/matchcore/internal/token"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		ctx.Diagnostics.Add(diagnostics.NewDiagnostic(diagnostics.ParseUnexpectedEOF, token.Span{}, "a token stream"))
		return ctx
	}

	parser := New(ctx.TokenStream)
	ctx.AstRoot = parser.ParseProgram()
	ctx.AstRoot.File = ctx.FilePath
	ctx.Diagnostics.AddAll(parser.Errors())
	ctx.Incomplete = parser.Incomplete()
	return ctx
}
