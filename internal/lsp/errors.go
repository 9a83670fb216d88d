package lsp

import "errors"

const (
	jsonRPCParseError     = -32700
	jsonRPCInvalidRequest = -32600
	jsonRPCMethodNotFound = -32601
	jsonRPCInvalidParams  = -32602
	jsonRPCInternalError  = -32603
)

// ErrShutdownRequested unwinds Run's loop after an exit notification.
var ErrShutdownRequested = errors.New("lsp server exit requested")

// ErrDocumentNotOpen is returned for requests naming an unopened document.
var ErrDocumentNotOpen = errors.New("document is not open")
