// Package lsp is the external glue (component I): it maps LSP protocol
// events onto querydb.DB inputs, and accumulated diagnostics back onto LSP
// notifications. It is hand-rolled Content-Length-framed JSON-RPC over
// stdio, with no interesting logic of its own. The analysis engine in
// internal/querydb, internal/syntax, and internal/validate does the work
// this package only carries to and from the wire.
package lsp

import "encoding/json"

// JSONRPCVersion is the supported JSON-RPC protocol version.
const JSONRPCVersion = "2.0"

// Request identifies a JSON-RPC request or notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// ResponseError is a JSON-RPC/LSP error object.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// InitializeParams is the subset of the LSP initialize request this server reads.
type InitializeParams struct {
	ProcessID *int64 `json:"processId,omitempty"`
}

// InitializeResult is the LSP initialize response payload.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
}

// ServerCapabilities declares the capability set from spec.md §6: incremental
// sync, hover and completion placeholders, document-color, document-symbol,
// and the custom.notification execute-command. Formatting and semantic
// tokens are absent; they are explicit Non-goals (SPEC_FULL.md §Non-goals).
type ServerCapabilities struct {
	TextDocumentSync       TextDocumentSyncOptions  `json:"textDocumentSync"`
	HoverProvider          bool                     `json:"hoverProvider,omitempty"`
	CompletionProvider     *CompletionOptions       `json:"completionProvider,omitempty"`
	ColorProvider          bool                     `json:"colorProvider,omitempty"`
	DocumentSymbolProvider bool                     `json:"documentSymbolProvider,omitempty"`
	ExecuteCommandProvider *ExecuteCommandOptions   `json:"executeCommandProvider,omitempty"`
	Workspace              *WorkspaceServerCapCombo `json:"workspace,omitempty"`
}

// WorkspaceServerCapCombo is the workspace capability object. Its one field
// is never serialized and the server leaves Workspace unset, so
// workspace/symbol is answered but not advertised.
type WorkspaceServerCapCombo struct {
	WorkspaceFolders bool `json:"-"`
}

// CompletionOptions declares completion trigger characters.
type CompletionOptions struct {
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
}

// ExecuteCommandOptions declares the supported execute-command names.
type ExecuteCommandOptions struct {
	Commands []string `json:"commands"`
}

// TextDocumentSyncOptions declares document sync behavior.
type TextDocumentSyncOptions struct {
	OpenClose bool `json:"openClose,omitempty"`
	Change    int  `json:"change,omitempty"`
	Save      bool `json:"save,omitempty"`
}

const (
	// TextDocumentSyncKindIncremental is LSP incremental sync mode.
	TextDocumentSyncKindIncremental = 2
)

// TextDocumentIdentifier identifies an open document.
type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

// VersionedTextDocumentIdentifier identifies an open document version.
type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int32  `json:"version"`
}

// TextDocumentItem is an LSP didOpen document payload.
type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId,omitempty"`
	Version    int32  `json:"version"`
	Text       string `json:"text"`
}

// DidOpenParams is the didOpen notification payload.
type DidOpenParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

// DidSaveParams is the didSave notification payload. The spec's contract is
// "identical to didOpen": text, when present, is treated as the full
// document, same as an open.
type DidSaveParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Text         *string                `json:"text,omitempty"`
}

// Position is an LSP UTF-16 position.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is an LSP UTF-16 range.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// TextDocumentContentChangeEvent is a didChange text edit. A nil Range means
// the client sent the whole new document text.
type TextDocumentContentChangeEvent struct {
	Range *Range `json:"range,omitempty"`
	Text  string `json:"text"`
}

// DidChangeParams is the didChange notification payload.
type DidChangeParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

// DidCloseParams is the didClose notification payload.
type DidCloseParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// PublishDiagnosticsParams is the LSP publishDiagnostics notification payload.
type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Diagnostic severities, per the LSP spec.
const (
	SeverityError       = 1
	SeverityWarning     = 2
	SeverityInformation = 3
)

// Diagnostic is a wire-form LSP diagnostic (6. External interfaces).
type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity,omitempty"`
	Source   string `json:"source,omitempty"`
	Message  string `json:"message"`
}

// HoverParams identifies a hover request's position. Hover has no
// interesting logic (1. Purpose & scope: feature stubs are out of core
// scope). It always returns null.
type HoverParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// CompletionParams identifies a completion request's position. Like hover,
// this is a placeholder: it returns an empty list regardless of trigger.
type CompletionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// CompletionItem is a minimal LSP completion item, unused by the stub but
// kept so the result type round-trips cleanly through JSON.
type CompletionItem struct {
	Label string `json:"label"`
}

// DocumentSymbolParams identifies the target document for symbol requests.
type DocumentSymbolParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// DocumentSymbol is a minimal LSP document symbol payload; the stub never
// populates it.
type DocumentSymbol struct {
	Name     string           `json:"name"`
	Kind     int              `json:"kind"`
	Range    Range            `json:"range"`
	Children []DocumentSymbol `json:"children,omitempty"`
}

// WorkspaceSymbolParams is the workspace/symbol request payload; the stub
// ignores the query and always returns an empty list (1. Purpose & scope).
type WorkspaceSymbolParams struct {
	Query string `json:"query"`
}

// ExecuteCommandParams is the workspace/executeCommand request payload.
type ExecuteCommandParams struct {
	Command   string            `json:"command"`
	Arguments []json.RawMessage `json:"arguments,omitempty"`
}
