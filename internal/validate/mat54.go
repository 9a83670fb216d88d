package validate

import (
	"strconv"

	"github.com/dkbb/dkbb-ls/internal/syntax"
	"github.com/dkbb/dkbb-ls/internal/text"
)

const (
	strengthLineIndex = 5 // 0-based: the 6th record line.
	strengthThreshold = 2000.0
)

// mat54 checks the 6th record line of a deck for un-naturally large
// strength values. The line is selected by ordinal, not by column schema;
// the deck format doesn't expose column semantics to this layer, and that
// mismatch is carried forward rather than guessed at.
//
// It tokenises the line into whitespace-delimited words (every word, not a
// fixed arity: the line may carry more fields than the domain's named
// "strengths", and every one of them is subject to the same sanity check),
// re-scans the raw bytes to recover each word's half-open column range, and
// flags any value exceeding strengthThreshold.
//
// Unparsable words are treated as 0.0, never as errors: this is a sanity
// check, not a grammar.
func mat54(records *syntax.Red) []syntax.SyntaxError {
	line, lineStart, ok := nthLine(records.Text(), strengthLineIndex)
	if !ok {
		return nil
	}

	base := records.Span().Start + text.ByteOffset(lineStart)
	var out []syntax.SyntaxError
	for _, w := range wordSpans(line) {
		v, _ := strconv.ParseFloat(w.text, 64)
		if v <= strengthThreshold {
			continue
		}
		out = append(out, syntax.SyntaxError{
			Message: "this strength is un-natural",
			Range: text.Span{
				Start: base + text.ByteOffset(w.start),
				End:   base + text.ByteOffset(w.end),
			},
			Severity: syntax.SeverityError,
		})
	}
	return out
}

// nthLine returns the n-th (0-based) '\n'-delimited line of s, and the byte
// offset within s where it starts. Trailing '\r' is left on the line; CRLF
// handling here shares the same known caveat as the line index (9. Design
// notes).
func nthLine(s string, n int) (line string, start int, ok bool) {
	lineNo := 0
	lineStart := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' {
			continue
		}
		if lineNo == n {
			return s[lineStart:i], lineStart, true
		}
		lineNo++
		lineStart = i + 1
	}
	if lineNo == n {
		return s[lineStart:], lineStart, true
	}
	return "", 0, false
}

type wordSpan struct {
	start, end int
	text       string
}

// wordSpans splits line into whitespace-delimited words, recording each
// word's inclusive-exclusive byte column range within line.
func wordSpans(line string) []wordSpan {
	var out []wordSpan
	i := 0
	for i < len(line) {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i >= len(line) {
			break
		}
		start := i
		for i < len(line) && !isSpace(line[i]) {
			i++
		}
		out = append(out, wordSpan{start: start, end: i, text: line[start:i]})
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r'
}
