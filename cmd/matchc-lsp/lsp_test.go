package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func parseLSPOutput(t *testing.T, output string) string {
	t.Helper()
	parts := strings.SplitN(output, "\r\n\r\n", 2)
	if len(parts) != 2 {
		t.Fatalf("invalid LSP output format: %q", output)
	}
	return parts[1]
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupServer(t *testing.T, uri, code string) (*LanguageServer, *bytes.Buffer) {
	t.Helper()
	buf := new(bytes.Buffer)
	server := NewLanguageServer(buf, nil, quietLogger())
	params := DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: uri, LanguageID: "matchcore", Version: 1, Text: code},
	}
	if err := server.handleDidOpen(params); err != nil {
		t.Fatalf("handleDidOpen failed: %v", err)
	}
	return server, buf
}

func TestLSP_PublishDiagnostics(t *testing.T) {
	code := "fn f(n: Int) -> Int = match n with\n| _ -> 0\n| 1 -> 1\n"
	_, buf := setupServer(t, "file:///t.mc", code)

	var note struct {
		Method string                   `json:"method"`
		Params PublishDiagnosticsParams `json:"params"`
	}
	if err := json.Unmarshal([]byte(parseLSPOutput(t, buf.String())), &note); err != nil {
		t.Fatal(err)
	}
	if note.Method != "textDocument/publishDiagnostics" || note.Params.URI != "file:///t.mc" {
		t.Fatalf("unexpected notification %+v", note)
	}
	if len(note.Params.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %+v", note.Params.Diagnostics)
	}
	d := note.Params.Diagnostics[0]
	if d.Code != "pattern.unreachable_arm" || d.Range.Start.Line != 2 || d.Range.Start.Character != 0 {
		t.Errorf("diagnostic = %+v", d)
	}
}

func TestLSP_HoverShowsPlan(t *testing.T) {
	uri := "file:///t.mc"
	code := "fn f(n: Int) -> Int = match n with\n| 0 -> 0\n| k -> k\n"
	server, buf := setupServer(t, uri, code)
	buf.Reset()

	if err := server.handleHover(1, HoverParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
		Position:     Position{Line: 1, Character: 2},
	}); err != nil {
		t.Fatalf("handleHover failed: %v", err)
	}
	var resp struct {
		Result Hover `json:"result"`
	}
	if err := json.Unmarshal([]byte(parseLSPOutput(t, buf.String())), &resp); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"fn f: Int (2 arms)", "literal(0)"} {
		if !strings.Contains(resp.Result.Contents.Value, want) {
			t.Errorf("hover lacks %q: %q", want, resp.Result.Contents.Value)
		}
	}
}

func TestLSP_HoverOutsideMatch(t *testing.T) {
	uri := "file:///t.mc"
	server, buf := setupServer(t, uri, "fn f(n: Int) -> Int = n\n")
	buf.Reset()
	if err := server.handleHover(7, HoverParams{TextDocument: TextDocumentIdentifier{URI: uri}}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"result":null`) {
		t.Errorf("expected a null result, got %s", buf.String())
	}
}

func TestLSP_Formatting(t *testing.T) {
	uri := "file:///t.mc"
	server, buf := setupServer(t, uri, "fn f(n: Int) -> Int = match n with | 0 -> 0 | _ -> 1")
	buf.Reset()
	if err := server.handleFormatting(2, DocumentFormattingParams{TextDocument: TextDocumentIdentifier{URI: uri}}); err != nil {
		t.Fatal(err)
	}
	var resp struct {
		Result []TextEdit `json:"result"`
	}
	if err := json.Unmarshal([]byte(parseLSPOutput(t, buf.String())), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Result) != 1 || !strings.Contains(resp.Result[0].NewText, "\n    | 0 -> 0") {
		t.Errorf("edits = %+v", resp.Result)
	}
}

func frame(msg string) string {
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(msg), msg)
}

func TestLSP_ServeSession(t *testing.T) {
	in := frame(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"rootUri":"file:///w"}}`) +
		frame(`{"jsonrpc":"2.0","method":"initialized","params":{}}`) +
		frame(`{"jsonrpc":"2.0","id":2,"method":"textDocument/definition","params":{}}`) +
		frame(`{"jsonrpc":"2.0","id":3,"method":"shutdown"}`) +
		frame(`{"jsonrpc":"2.0","method":"exit"}`)
	out := new(bytes.Buffer)
	server := NewLanguageServer(out, nil, quietLogger())
	if err := server.Serve(strings.NewReader(in)); err != nil {
		t.Fatalf("serve: %v", err)
	}
	if server.rootPath != "/w" || !server.shutdown {
		t.Errorf("root %q, shutdown %v", server.rootPath, server.shutdown)
	}
	got := out.String()
	for _, want := range []string{`"hoverProvider":true`, `"code":-32601`, `"id":3,"result":null`} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %s:\n%s", want, got)
		}
	}
}

func TestPositionOffsetRoundTrip(t *testing.T) {
	content := "ab\ncde\n\nf"
	for offset := 0; offset <= len(content); offset++ {
		pos := offsetPosition(content, offset)
		if got := positionOffset(content, pos); got != offset {
			t.Errorf("offset %d -> %+v -> %d", offset, pos, got)
		}
	}
}
