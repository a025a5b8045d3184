package main

import (
	"log/slog"
	"strings"

	"github.com/funvibe/matchcore/internal/mir"
	"github.com/funvibe/matchcore/internal/prettyprinter"
	"github.com/funvibe/matchcore/pkg/cli"
)

func (s *LanguageServer) handleInitialize(id interface{}, params InitializeParams) error {
	if params.RootURI != nil && *params.RootURI != "" {
		s.rootPath = uriToPath(*params.RootURI)
	} else if params.RootPath != nil {
		s.rootPath = *params.RootPath
	}
	s.logger.Info("initialize", slog.String("root", s.rootPath))
	return s.reply(id, InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:           1, // full
			HoverProvider:              true,
			DocumentFormattingProvider: true,
		},
		ServerInfo: ServerInfo{Name: "matchc-lsp", Version: cli.Version},
	})
}

// handleHover shows the lowering plan of the innermost match under the
// cursor.
func (s *LanguageServer) handleHover(id interface{}, params HoverParams) error {
	content, ctx, ok := s.document(params.TextDocument.URI)
	if !ok || ctx == nil {
		return s.reply(id, nil)
	}
	offset := positionOffset(content, params.Position)
	plan := innermostPlan(ctx.Plans(), offset)
	if plan == nil {
		return s.reply(id, nil)
	}
	r := spanRange(content, plan.Span.Start, plan.Span.End)
	return s.reply(id, Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: "```\n" + prettyprinter.PrintPlan(plan) + "```",
		},
		Range: &r,
	})
}

func innermostPlan(plans []mir.MatchLoweringPlan, offset int) *mir.MatchLoweringPlan {
	var best *mir.MatchLoweringPlan
	for i := range plans {
		p := &plans[i]
		if offset < p.Span.Start || offset > p.Span.End {
			continue
		}
		if best == nil || p.Span.End-p.Span.Start < best.Span.End-best.Span.Start {
			best = p
		}
	}
	return best
}

// handleFormatting replaces the document with its printed form. Documents
// that do not parse are left alone.
func (s *LanguageServer) handleFormatting(id interface{}, params DocumentFormattingParams) error {
	content, ctx, ok := s.document(params.TextDocument.URI)
	if !ok || ctx == nil || ctx.AstRoot == nil || hasParseErrors(ctx.Report()) {
		return s.reply(id, []TextEdit{})
	}
	formatted := prettyprinter.PrintProgram(ctx.AstRoot)
	if formatted == content {
		return s.reply(id, []TextEdit{})
	}
	lines := strings.Split(content, "\n")
	return s.reply(id, []TextEdit{{
		Range: Range{
			End: Position{Line: len(lines) - 1, Character: len(lines[len(lines)-1])},
		},
		NewText: formatted,
	}})
}
