package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
)

func TestLSPInitializeDeclaresIncrementalSync(t *testing.T) {
	t.Parallel()

	msgs := runLSPScenario(t, []Request{
		{JSONRPC: JSONRPCVersion, ID: json.RawMessage(`"init"`), Method: "initialize", Params: json.RawMessage(`{}`)},
	})

	resp := responseByID(t, msgs, `"init"`)
	if resp.Error != nil {
		t.Fatalf("initialize error: %+v", resp.Error)
	}

	var result InitializeResult
	remarshal(t, resp.Result, &result)
	if result.Capabilities.TextDocumentSync.Change != TextDocumentSyncKindIncremental {
		t.Fatalf("Change = %d, want incremental", result.Capabilities.TextDocumentSync.Change)
	}
}

// S1: opening a geometry-only document publishes exactly one info diagnostic.
func TestLSPDidOpenPublishesGeometryDiagnostic(t *testing.T) {
	t.Parallel()

	msgs := runLSPScenario(t, []Request{
		{JSONRPC: JSONRPCVersion, Method: "textDocument/didOpen", Params: mustJSON(t, DidOpenParams{
			TextDocument: TextDocumentItem{URI: "file:///s1.deck", Version: 1, Text: "*NODE 1 0 0 0\n*END\n"},
		})},
	})

	diags := onlyPublishDiagnostics(t, msgs, "file:///s1.deck")
	if len(diags) != 1 || diags[0].Message != "here a geo!" {
		t.Fatalf("diagnostics = %+v", diags)
	}
	if diags[0].Severity != SeverityInformation {
		t.Fatalf("severity = %d, want information", diags[0].Severity)
	}
}

// S4: adjacent card error recovery still reaches publishDiagnostics as a warning.
func TestLSPDidOpenPublishesAdjacentCardWarning(t *testing.T) {
	t.Parallel()

	msgs := runLSPScenario(t, []Request{
		{JSONRPC: JSONRPCVersion, Method: "textDocument/didOpen", Params: mustJSON(t, DidOpenParams{
			TextDocument: TextDocumentItem{URI: "file:///s4.deck", Version: 1, Text: "*MAT_FOO\n*MAT_BAR\nrec\n"},
		})},
	})

	diags := onlyPublishDiagnostics(t, msgs, "file:///s4.deck")
	found := false
	for _, d := range diags {
		if d.Message == "new card in card!" && d.Severity == SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected new-card warning, got %+v", diags)
	}
}

// S5: an incremental edit landing inside a geometry block surfaces the
// reparser's refusal diagnostic on didChange.
func TestLSPDidChangeInsideGeometryRefuses(t *testing.T) {
	t.Parallel()

	msgs := runLSPScenario(t, []Request{
		{JSONRPC: JSONRPCVersion, Method: "textDocument/didOpen", Params: mustJSON(t, DidOpenParams{
			TextDocument: TextDocumentItem{URI: "file:///s5.deck", Version: 1, Text: "*NODE 1 0 0 0\n*END\n"},
		})},
		{JSONRPC: JSONRPCVersion, Method: "textDocument/didChange", Params: mustJSON(t, DidChangeParams{
			TextDocument: VersionedTextDocumentIdentifier{URI: "file:///s5.deck", Version: 2},
			ContentChanges: []TextDocumentContentChangeEvent{{
				Range: &Range{Start: Position{Line: 0, Character: 6}, End: Position{Line: 0, Character: 7}},
				Text:  "9",
			}},
		})},
	})

	all := collectMethodMessages(t, msgs, "textDocument/publishDiagnostics")
	if len(all) != 2 {
		t.Fatalf("publishDiagnostics notifications = %d, want 2", len(all))
	}
	var last PublishDiagnosticsParams
	remarshalRaw(t, all[1].Params, &last)

	found := false
	for _, d := range last.Diagnostics {
		if d.Message == "don't edit geometry yet, naughty!" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected geometry-edit diagnostic, got %+v", last.Diagnostics)
	}
}

func TestLSPShutdownThenExitEndsSession(t *testing.T) {
	t.Parallel()

	var in bytes.Buffer
	writeReqFrame(t, &in, Request{JSONRPC: JSONRPCVersion, ID: json.RawMessage(`"sd"`), Method: "shutdown"})
	writeReqFrame(t, &in, Request{JSONRPC: JSONRPCVersion, Method: "exit"})

	var out bytes.Buffer
	if err := NewServer().Run(context.Background(), &in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	msgs := readAllFrames(t, out.Bytes())
	resp := responseByID(t, msgs, `"sd"`)
	if resp.Error != nil {
		t.Fatalf("shutdown error: %+v", resp.Error)
	}
}

func onlyPublishDiagnostics(t *testing.T, msgs []testFrame, uri string) []Diagnostic {
	t.Helper()
	for _, m := range collectMethodMessages(t, msgs, "textDocument/publishDiagnostics") {
		var p PublishDiagnosticsParams
		remarshalRaw(t, m.Params, &p)
		if p.URI == uri {
			return p.Diagnostics
		}
	}
	t.Fatalf("no publishDiagnostics notification for %s", uri)
	return nil
}

func runLSPScenario(t *testing.T, reqs []Request) []testFrame {
	t.Helper()

	var in bytes.Buffer
	for _, req := range reqs {
		writeReqFrame(t, &in, req)
	}

	var out bytes.Buffer
	if err := NewServer().Run(context.Background(), &in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return readAllFrames(t, out.Bytes())
}

func writeReqFrame(t *testing.T, w *bytes.Buffer, req Request) {
	t.Helper()
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if err := writeFramedMessage(w, b); err != nil {
		t.Fatalf("writeFramedMessage: %v", err)
	}
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal params: %v", err)
	}
	return json.RawMessage(b)
}

func remarshal(t *testing.T, v any, out any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	remarshalRaw(t, b, out)
}

func remarshalRaw(t *testing.T, raw json.RawMessage, out any) {
	t.Helper()
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
}

type testFrame struct {
	body []byte
	msg  Request
}

func readAllFrames(t *testing.T, raw []byte) []testFrame {
	t.Helper()
	br := bufio.NewReader(bytes.NewReader(raw))
	var out []testFrame
	for {
		body, err := readFramedMessage(br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("readFramedMessage: %v", err)
		}
		var msg Request
		if err := json.Unmarshal(body, &msg); err != nil {
			t.Fatalf("json.Unmarshal frame: %v", err)
		}
		out = append(out, testFrame{body: body, msg: msg})
	}
	return out
}

func collectMethodMessages(t *testing.T, msgs []testFrame, method string) []Request {
	t.Helper()
	out := make([]Request, 0, len(msgs))
	for _, msg := range msgs {
		if msg.msg.Method == method {
			out = append(out, msg.msg)
		}
	}
	return out
}

func responseByID(t *testing.T, msgs []testFrame, id string) Response {
	t.Helper()
	for _, msg := range msgs {
		if string(msg.msg.ID) != id {
			continue
		}
		var resp Response
		if err := json.Unmarshal(msg.body, &resp); err != nil {
			t.Fatalf("json.Unmarshal response: %v", err)
		}
		return resp
	}
	t.Fatalf("response id=%s not found", id)
	return Response{}
}
