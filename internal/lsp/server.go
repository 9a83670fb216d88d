package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dkbb/dkbb-ls/internal/querydb"
	"github.com/dkbb/dkbb-ls/internal/text"
)

// Server is the keyword-deck LSP server: a thin adapter over querydb.DB
// (2. System overview: "LSP glue ... calls into the core synchronously").
// It holds no parsed state of its own; the DB is the source of truth.
type Server struct {
	db *querydb.DB

	mu       sync.Mutex
	shutdown bool
}

// NewServer creates a server backed by a fresh query database.
func NewServer() *Server {
	return &Server{db: querydb.NewDB(0)}
}

// DB returns the backing query database (tests and ancillary tooling).
func (s *Server) DB() *querydb.DB { return s.db }

// Run serves JSON-RPC/LSP messages read from in and written to out until EOF,
// an exit notification, or ctx is cancelled (5. Concurrency & resource
// model: no suspension points live inside the core; only this loop awaits
// I/O).
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	br := bufio.NewReader(in)
	bw := bufio.NewWriter(out)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		body, err := readFramedMessage(br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if len(body) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(body, &req); err != nil {
			_ = s.writeErrorResponse(bw, nil, jsonRPCParseError, err.Error())
			_ = bw.Flush()
			continue
		}
		if req.Method == "" {
			continue // client response or unknown envelope; nothing to do in v1.
		}

		if err := s.dispatch(bw, req); err != nil {
			if errors.Is(err, ErrShutdownRequested) {
				return nil
			}
			return err
		}
		if err := bw.Flush(); err != nil {
			return err
		}
	}
}

func (s *Server) dispatch(w *bufio.Writer, req Request) error {
	isRequest := len(req.ID) != 0
	writeResp := func(result any) error {
		if !isRequest {
			return nil
		}
		return s.writeResponse(w, Response{JSONRPC: JSONRPCVersion, ID: req.ID, Result: result})
	}
	writeErr := func(code int, msg string) error {
		if !isRequest {
			return nil
		}
		return s.writeErrorResponse(w, req.ID, code, msg)
	}

	switch req.Method {
	case "initialize":
		return writeResp(InitializeResult{Capabilities: defaultServerCapabilities()})
	case "initialized":
		return nil
	case "shutdown":
		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		return writeResp(nil)
	case "exit":
		return ErrShutdownRequested

	case "textDocument/didOpen":
		var p DidOpenParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return writeErr(jsonRPCInvalidParams, err.Error())
		}
		s.db.SetSource(p.TextDocument.URI, []byte(p.TextDocument.Text))
		return s.publishDiagnostics(w, p.TextDocument.URI)

	case "textDocument/didChange":
		var p DidChangeParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return writeErr(jsonRPCInvalidParams, err.Error())
		}
		diff, err := s.buildDiff(p)
		if err != nil {
			return writeErr(jsonRPCInvalidParams, err.Error())
		}
		if err := s.db.SetDiff(p.TextDocument.URI, diff); err != nil {
			return writeErr(jsonRPCInternalError, err.Error())
		}
		return s.publishDiagnostics(w, p.TextDocument.URI)

	case "textDocument/didSave":
		var p DidSaveParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &p); err != nil {
				return writeErr(jsonRPCInvalidParams, err.Error())
			}
		}
		if p.Text != nil {
			s.db.SetSource(p.TextDocument.URI, []byte(*p.Text))
		}
		return s.publishDiagnostics(w, p.TextDocument.URI)

	case "textDocument/didClose":
		var p DidCloseParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return writeErr(jsonRPCInvalidParams, err.Error())
		}
		s.db.Close(p.TextDocument.URI)
		return nil

	case "textDocument/hover":
		return writeResp(nil) // placeholder (1. Purpose & scope: out of core).
	case "textDocument/completion":
		return writeResp([]CompletionItem{})
	case "textDocument/documentSymbol":
		return writeResp([]DocumentSymbol{})
	case "workspace/symbol":
		return writeResp([]DocumentSymbol{})
	case "workspace/executeCommand":
		return s.executeCommand(req, writeResp, writeErr)

	case "$/cancelRequest":
		return nil // cancellation is not supported in v1 (5. Concurrency & resource model).

	default:
		return writeErr(jsonRPCMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

// executeCommand handles the one custom command initialize advertises:
// custom.notification. It has no side effect and ignores its arguments,
// answering with a nil result, matching the "no interesting logic" scope of
// the feature stubs.
func (s *Server) executeCommand(req Request, writeResp func(any) error, writeErr func(int, string) error) error {
	var p ExecuteCommandParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return writeErr(jsonRPCInvalidParams, err.Error())
	}
	if p.Command != "custom.notification" {
		return writeErr(jsonRPCInvalidParams, fmt.Sprintf("unknown command: %s", p.Command))
	}
	return writeResp(nil)
}

// publishDiagnostics runs Compile for uri and sends the accumulated
// diagnostics as a textDocument/publishDiagnostics notification.
func (s *Server) publishDiagnostics(w *bufio.Writer, uri string) error {
	diags, err := s.db.Compile(uri)
	if err != nil {
		return err
	}
	program, err := s.db.Program(uri)
	if err != nil {
		return err
	}
	return s.notify(w, "textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toLSPDiagnostics(program.LineIndex, diags),
	})
}

// buildDiff converts a didChange notification's content changes into a
// querydb.Diff. Each range is resolved against the document's line index as
// it stood before this notification (9. Design notes: UTF-16 columns are
// translated to bytes at the system edge, not carried internally).
func (s *Server) buildDiff(p DidChangeParams) (querydb.Diff, error) {
	program, err := s.db.Program(p.TextDocument.URI)
	if err != nil {
		return querydb.Diff{}, err
	}

	diff := querydb.Diff{Edits: make([]querydb.Edit, 0, len(p.ContentChanges))}
	for _, c := range p.ContentChanges {
		if c.Range == nil {
			diff.Edits = append(diff.Edits, querydb.Edit{NewText: []byte(c.Text)})
			continue
		}
		span, err := toByteSpan(program.LineIndex, *c.Range)
		if err != nil {
			return querydb.Diff{}, err
		}
		diff.Edits = append(diff.Edits, querydb.Edit{Range: &span, NewText: []byte(c.Text)})
	}
	return diff, nil
}

func toByteSpan(li *text.LineIndex, r Range) (text.Span, error) {
	start, err := li.UTF16PositionToOffset(text.UTF16Position{Line: r.Start.Line, Character: r.Start.Character})
	if err != nil {
		return text.Span{}, err
	}
	end, err := li.UTF16PositionToOffset(text.UTF16Position{Line: r.End.Line, Character: r.End.Character})
	if err != nil {
		return text.Span{}, err
	}
	return text.Span{Start: start, End: end}, nil
}

func (s *Server) notify(w *bufio.Writer, method string, params any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	body, err := json.Marshal(struct {
		JSONRPC string          `json:"jsonrpc"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params"`
	}{JSONRPC: JSONRPCVersion, Method: method, Params: raw})
	if err != nil {
		return err
	}
	return writeFramedMessage(w, body)
}

func (s *Server) writeResponse(w *bufio.Writer, resp Response) error {
	body, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return writeFramedMessage(w, body)
}

func (s *Server) writeErrorResponse(w *bufio.Writer, id json.RawMessage, code int, msg string) error {
	return s.writeResponse(w, Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   &ResponseError{Code: code, Message: msg},
	})
}

func defaultServerCapabilities() ServerCapabilities {
	return ServerCapabilities{
		TextDocumentSync: TextDocumentSyncOptions{
			OpenClose: true,
			Change:    TextDocumentSyncKindIncremental,
			Save:      true,
		},
		HoverProvider:          true,
		CompletionProvider:     &CompletionOptions{TriggerCharacters: []string{"*"}},
		ColorProvider:          true,
		DocumentSymbolProvider: true,
		ExecuteCommandProvider: &ExecuteCommandOptions{Commands: []string{"custom.notification"}},
	}
}

func readFramedMessage(r *bufio.Reader) ([]byte, error) {
	contentLen := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		if line == "\r\n" || line == "\n" {
			break
		}
		line = strings.TrimRight(line, "\r\n")
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header line %q", line)
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			var n int
			if _, err := fmt.Sscanf(strings.TrimSpace(value), "%d", &n); err != nil || n < 0 {
				return nil, fmt.Errorf("invalid Content-Length %q", value)
			}
			contentLen = n
		}
	}
	if contentLen < 0 {
		return nil, errors.New("missing Content-Length")
	}
	body := make([]byte, contentLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}

func writeFramedMessage(w io.Writer, body []byte) error {
	if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(body)); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}
