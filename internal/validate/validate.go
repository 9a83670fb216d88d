// Package validate walks a parsed keyword-deck tree and emits the domain
// diagnostics: geometry markers, recognised-keyword markers, and MAT_54
// strength-sanity checks (component H).
package validate

import (
	"strings"

	"github.com/dkbb/dkbb-ls/internal/lexer"
	"github.com/dkbb/dkbb-ls/internal/syntax"
)

const matEnhancedCompositeDamageTitle = "*MAT_ENHANCED_COMPOSITE_DAMAGE_TITLE"

// Compile walks a parsed tree and returns its accumulated diagnostics:
// parse errors downgraded to warnings, followed by the tree walk's own
// findings. Output order is the parse errors first, in the order the parser
// recorded them, then the walker's findings in strict tree pre-order. It is
// never sorted. Consumers
// that want a presentation order must sort at the LSP boundary, not here.
func Compile(p *syntax.Parse) []syntax.SyntaxError {
	var out []syntax.SyntaxError

	for _, e := range p.Errors {
		out = append(out, syntax.SyntaxError{
			Message:  e.Message,
			Range:    e.Range,
			Severity: syntax.SeverityWarning,
		})
	}

	root := p.Red()
	for _, n := range root.Descendants() {
		switch n.Kind() {
		case lexer.GEOMETRY:
			out = append(out, syntax.SyntaxError{
				Message:  "here a geo!",
				Range:    n.Span(),
				Severity: syntax.SeverityInfo,
			})
		case lexer.CARD:
			out = append(out, cardDiagnostics(n)...)
		}
	}
	return out
}

// cardDiagnostics implements step 3's CARD branch: find the keyword, check
// whether it is the one recognised keyword, and if so run the MAT_54
// strength check over its deck.
func cardDiagnostics(card *syntax.Red) []syntax.SyntaxError {
	kw, ok := card.FirstDescendantOfKind(lexer.KEYWORD)
	if !ok {
		return nil
	}
	if strings.TrimSpace(kw.Text()) != matEnhancedCompositeDamageTitle {
		return nil
	}

	out := []syntax.SyntaxError{{
		Message:  "The matrix failure material model…",
		Range:    kw.Span(),
		Severity: syntax.SeverityInfo,
	}}

	deckRed, ok := card.FirstChildOfKind(lexer.DECK)
	if !ok {
		return out
	}
	d, ok := syntax.CastDeck(deckRed)
	if !ok {
		return out
	}
	records, ok := d.Records()
	if !ok {
		return out
	}
	return append(out, mat54(records)...)
}
