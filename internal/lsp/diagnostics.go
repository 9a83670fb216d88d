package lsp

import (
	"github.com/dkbb/dkbb-ls/internal/syntax"
	"github.com/dkbb/dkbb-ls/internal/text"
)

// toLSPDiagnostics converts accumulated syntax errors to wire-form LSP
// diagnostics, translating each byte Span to a UTF-16 Range via li (9.
// Design notes: "Implementers MUST add a conversion ... or perform
// per-request translation"; this package does the latter, at publish time).
func toLSPDiagnostics(li *text.LineIndex, diags []syntax.SyntaxError) []Diagnostic {
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		rng, ok := toLSPRange(li, d.Range)
		if !ok {
			continue
		}
		out = append(out, Diagnostic{
			Range:    rng,
			Severity: toLSPSeverity(d.Severity),
			Source:   "kwdeckls",
			Message:  d.Message,
		})
	}
	return out
}

func toLSPRange(li *text.LineIndex, span text.Span) (Range, bool) {
	start, err := li.OffsetToUTF16Position(span.Start)
	if err != nil {
		return Range{}, false
	}
	end, err := li.OffsetToUTF16Position(span.End)
	if err != nil {
		return Range{}, false
	}
	return Range{
		Start: Position{Line: start.Line, Character: start.Character},
		End:   Position{Line: end.Line, Character: end.Character},
	}, true
}

func toLSPSeverity(s syntax.Severity) int {
	switch s {
	case syntax.SeverityError:
		return SeverityError
	case syntax.SeverityWarning:
		return SeverityWarning
	default:
		return SeverityInformation
	}
}
