package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/funvibe/matchcore/internal/backend"
	"github.com/funvibe/matchcore/internal/diagnostics"
	"github.com/funvibe/matchcore/internal/pipeline"
)

// DocumentState is one open document and its last analysis.
type DocumentState struct {
	Content string
	Context *pipeline.PipelineContext
	Mu      sync.RWMutex
}

func (s *LanguageServer) handleDidOpen(params DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	doc := &DocumentState{Content: params.TextDocument.Text}
	doc.Context = s.analyzeDocument(doc.Content, uri)

	s.mu.Lock()
	s.documents[uri] = doc
	s.mu.Unlock()

	s.logger.Debug("opened", slog.String("uri", uri))
	return s.publishDiagnostics(uri, doc.Context)
}

// handleDidChange expects full-content sync.
func (s *LanguageServer) handleDidChange(params DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	uri := params.TextDocument.URI
	content := params.ContentChanges[len(params.ContentChanges)-1].Text

	s.mu.RLock()
	doc, ok := s.documents[uri]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("document %s not found", uri)
	}

	ctx := s.analyzeDocument(content, uri)
	doc.Mu.Lock()
	doc.Content = content
	doc.Context = ctx
	doc.Mu.Unlock()
	return s.publishDiagnostics(uri, ctx)
}

func (s *LanguageServer) handleDidClose(params DidCloseTextDocumentParams) error {
	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	s.mu.Unlock()
	return s.notify("textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []Diagnostic{},
	})
}

func (s *LanguageServer) document(uri string) (string, *pipeline.PipelineContext, bool) {
	s.mu.RLock()
	doc, ok := s.documents[uri]
	s.mu.RUnlock()
	if !ok {
		return "", nil, false
	}
	doc.Mu.RLock()
	defer doc.Mu.RUnlock()
	return doc.Content, doc.Context, true
}

func (s *LanguageServer) analyzeDocument(content, uri string) *pipeline.PipelineContext {
	return backend.NewPipeline().Run(pipeline.NewContext(uriToPath(uri), content, s.cfg))
}

func (s *LanguageServer) publishDiagnostics(uri string, ctx *pipeline.PipelineContext) error {
	return s.notify("textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: convertDiagnostics(ctx.Report(), ctx.SourceCode),
	})
}

func convertDiagnostics(ds []diagnostics.Diagnostic, content string) []Diagnostic {
	out := make([]Diagnostic, 0, len(ds))
	for _, d := range ds {
		msg := d.Message
		for _, n := range d.Notes {
			msg += "\nnote: " + n
		}
		out = append(out, Diagnostic{
			Range:    spanRange(content, d.Span.Start, d.Span.End),
			Severity: lspSeverity(d.Severity),
			Code:     string(d.Code),
			Message:  msg,
			Source:   "matchc",
		})
	}
	return out
}

func lspSeverity(s diagnostics.Severity) DiagnosticSeverity {
	switch s {
	case diagnostics.SeverityWarning:
		return SeverityWarning
	case diagnostics.SeverityNote:
		return SeverityInfo
	}
	return SeverityError
}

func uriToPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	if u, err := url.Parse(uri); err == nil {
		return u.Path
	}
	return strings.TrimPrefix(uri, "file://")
}
