package syntax

import (
	"fmt"

	"github.com/dkbb/dkbb-ls/internal/lexer"
	"github.com/dkbb/dkbb-ls/internal/text"
)

// ReparseResult is the outcome of localising a single edit to the smallest
// syntactic container that covers it.
type ReparseResult struct {
	Green       *GreenNode
	Diagnostics []SyntaxError
}

// Reparse implements the edit-localised reparse contract (component F):
// given the prior red root and the byte range an edit deletes, it decides
// reparse scope without re-running the full parser.
//
//   - An edit inside a GEOMETRY block is refused outright: geometry text is
//     preserved as opaque trivia (Non-goals), so the fine-grained path never
//     touches it.
//   - An edit inside a CARD reports the card's start; this implementation
//     follows the documented stub contract (it does not splice a relexed
//     subtree back in) rather than the alternative true-reparse contract the
//     source material leaves as an open question.
//   - An edit that lands on a bare token outside any CARD/GEOMETRY reports
//     an error naming that token.
//
// In every case the prior green root is returned unchanged: nothing in this
// implementation currently performs the scoped relex the stub reserves.
func Reparse(root *Red, deleteRange text.Span) ReparseResult {
	cov := CoveringElement(root, deleteRange)
	anchor := cov.Node

	if geo, ok := NearestAncestorOfKind(anchor, lexer.GEOMETRY); ok {
		return ReparseResult{
			Green: root.Green(),
			Diagnostics: []SyntaxError{{
				Message:  "don't edit geometry yet, naughty!",
				Range:    geo.Span(),
				Severity: SeverityError,
			}},
		}
	}

	if card, ok := NearestAncestorOfKind(anchor, lexer.CARD); ok {
		return ReparseResult{
			Green: root.Green(),
			Diagnostics: []SyntaxError{{
				Message:  "got a card!",
				Range:    text.PointSpan(card.Span().Start),
				Severity: SeverityInfo,
			}},
		}
	}

	if cov.IsToken {
		return ReparseResult{
			Green: root.Green(),
			Diagnostics: []SyntaxError{{
				Message:  fmt.Sprintf("what is %q?", cov.TokText),
				Range:    deleteRange,
				Severity: SeverityError,
			}},
		}
	}

	return ReparseResult{
		Green: root.Green(),
		Diagnostics: []SyntaxError{{
			Message:  fmt.Sprintf("what is %q?", cov.Node.Text()),
			Range:    deleteRange,
			Severity: SeverityError,
		}},
	}
}
