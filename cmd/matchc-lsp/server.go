package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/funvibe/matchcore/internal/config"
)

// LanguageServer speaks JSON-RPC over a Content-Length framed stream.
type LanguageServer struct {
	documents map[string]*DocumentState
	mu        sync.RWMutex
	writeMu   sync.Mutex
	writer    io.Writer
	cfg       *config.Config
	logger    *slog.Logger
	rootPath  string
	shutdown  bool
}

func NewLanguageServer(writer io.Writer, cfg *config.Config, logger *slog.Logger) *LanguageServer {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LanguageServer{
		documents: make(map[string]*DocumentState),
		writer:    writer,
		cfg:       cfg,
		logger:    logger,
	}
}

// Serve reads messages until the client sends exit or closes the stream.
func (s *LanguageServer) Serve(r io.Reader) error {
	reader := bufio.NewReader(r)
	for {
		content, err := readMessage(reader)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		done, err := s.handleMessage(content)
		if err != nil {
			s.logger.Warn("handling message", slog.Any("error", err))
		}
		if done {
			return nil
		}
	}
}

func readMessage(reader *bufio.Reader) ([]byte, error) {
	length := -1
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && length < 0 && strings.TrimSpace(line) == "" {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("reading header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if length >= 0 {
				break
			}
			continue
		}
		if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("parsing Content-Length: %w", err)
			}
			length = n
		}
	}
	content := make([]byte, length)
	if _, err := io.ReadFull(reader, content); err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	return content, nil
}

type baseMessage struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Method  string      `json:"method"`
}

// handleMessage dispatches one message and reports whether the session
// has ended.
func (s *LanguageServer) handleMessage(content []byte) (bool, error) {
	var msg baseMessage
	if err := json.Unmarshal(content, &msg); err != nil {
		return false, fmt.Errorf("unmarshal message: %w", err)
	}
	s.logger.Debug("message", slog.String("method", msg.Method), slog.Any("id", msg.ID))

	if msg.ID != nil {
		return false, s.handleRequest(msg, content)
	}
	if msg.Method == "exit" {
		return true, nil
	}
	return false, s.handleNotification(msg, content)
}

func (s *LanguageServer) handleRequest(msg baseMessage, content []byte) error {
	switch msg.Method {
	case "initialize":
		var params InitializeParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleInitialize(msg.ID, params)

	case "shutdown":
		s.shutdown = true
		return s.reply(msg.ID, nil)

	case "textDocument/hover":
		var params HoverParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleHover(msg.ID, params)

	case "textDocument/formatting":
		var params DocumentFormattingParams
		if err := json.Unmarshal(content, &RequestMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleFormatting(msg.ID, params)

	default:
		return s.sendMessage(ResponseMessage{
			Jsonrpc: "2.0",
			ID:      msg.ID,
			Error:   &Error{Code: methodNotFound, Message: fmt.Sprintf("Method not found: %s", msg.Method)},
		})
	}
}

func (s *LanguageServer) handleNotification(msg baseMessage, content []byte) error {
	switch msg.Method {
	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if err := json.Unmarshal(content, &NotificationMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDidOpen(params)

	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := json.Unmarshal(content, &NotificationMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDidChange(params)

	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		if err := json.Unmarshal(content, &NotificationMessage{Params: &params}); err != nil {
			return err
		}
		return s.handleDidClose(params)
	}
	return nil
}

func (s *LanguageServer) reply(id interface{}, result interface{}) error {
	return s.sendMessage(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: result})
}

func (s *LanguageServer) notify(method string, params interface{}) error {
	return s.sendMessage(NotificationMessage{Jsonrpc: "2.0", Method: method, Params: params})
}

func (s *LanguageServer) sendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err = fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n%s", len(data), data)
	return err
}
