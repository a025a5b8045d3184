package lexer

import (
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/pipeline"
	"github.com/funvibe/matchcore/internal/token"
)

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	stream := NewTokenStream(New(ctx.SourceCode))
	for _, tok := range stream.Tokens() {
		if tok.Type == token.ILLEGAL {
			ctx.Diagnostics.Add(diagnostics.NewDiagnostic(diagnostics.ParseIllegalToken, tok.Span(), tok.Lexeme))
		}
	}
	ctx.TokenStream = stream
	return ctx
}
