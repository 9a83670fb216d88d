package syntax

import (
	"github.com/dkbb/dkbb-ls/internal/lexer"
	"github.com/dkbb/dkbb-ls/internal/text"
)

// Parse is the result of parsing a source buffer: an immutable green tree
// plus the ordered syntax errors collected while building it.
type Parse struct {
	Green  *GreenNode
	Errors []SyntaxError
}

// Red returns a positioned view over the parse's green root.
func (p *Parse) Red() *Red { return NewRoot(p.Green) }

// ParseSource runs the lexer and the hand-written recursive-descent parser
// over src, producing a lossless CST with inline error-recovery nodes.
//
// The parser walks a forward cursor over the token stream rather than
// popping from a reversed queue; behaviour is identical, it just reads
// better without the reverse-then-pop indirection.
func ParseSource(src []byte) *Parse {
	p := &parser{src: src, tokens: lexer.Lex(src), builder: NewBuilder()}
	p.parseRoot()
	return &Parse{Green: p.builder.FinishNode(), Errors: p.builder.Errors}
}

type parser struct {
	src     []byte
	tokens  []lexer.Token
	pos     int
	builder *Builder
}

func (p *parser) current() lexer.SyntaxKind {
	return p.tokens[p.pos].Kind
}

func (p *parser) currentSpan() text.Span {
	return p.tokens[p.pos].Span
}

// bump consumes the current token into the builder's open frame.
func (p *parser) bump() {
	tok := p.tokens[p.pos]
	p.builder.Token(tok.Kind, string(tok.Bytes(p.src)))
	p.pos++
}

func (p *parser) skipComment() {
	for p.current() == lexer.COMMENT {
		p.bump()
	}
}

// parseRoot is the ROOT-level loop. END and end-of-input normally finish
// the tree; unlike the reference implementation, END is bumped (not
// dropped) and the loop only returns at true EOF, so invariant I1
// (losslessness) holds even when stray bytes trail a terminator.
func (p *parser) parseRoot() {
	p.builder.StartNode(lexer.ROOT)
	p.skipComment()
	for {
		switch p.current() {
		case lexer.ASTERISK:
			p.card()
		case lexer.EOF:
			return
		case lexer.END:
			p.bump()
		case lexer.NODE, lexer.ELEMENT:
			p.builder.StartNode(lexer.GEOMETRY)
			p.bump()
			p.builder.FinishNode()
		default:
			p.builder.Error("what is?", text.PointSpan(p.currentSpan().Start), SeverityWarning)
			p.builder.StartNode(lexer.ERROR)
			p.bump()
			p.builder.FinishNode()
		}
	}
}

// card parses a CARD: a KEYWORD line followed by a DECK. A stray ASTERISK
// immediately after the keyword line means the author never supplied a
// deck; that's recovered in place and the next card is parsed recursively.
func (p *parser) card() {
	p.builder.StartNode(lexer.CARD)
	p.skipComment()
	p.nodeFromLineA(lexer.KEYWORD)

	if p.current() == lexer.ASTERISK {
		p.builder.Error("new card in card!", text.PointSpan(p.currentSpan().Start), SeverityWarning)
		p.builder.FinishNode() // CARD
		p.card()
		return
	}

	p.builder.StartNode(lexer.DECK)
	p.skipComment()
	p.nodeFromLineA(lexer.RECORD)
	p.skipComment()
	p.records()
	p.builder.FinishNode() // DECK
	p.builder.FinishNode() // CARD
}

// nodeFromLineA opens a node of kind, consumes tokens through the next
// NEWLINE (inclusive), and closes it. Reaching EOF first is not an error:
// the line is simply unterminated.
func (p *parser) nodeFromLineA(kind lexer.SyntaxKind) {
	p.builder.StartNode(kind)
	for {
		switch p.current() {
		case lexer.NEWLINE:
			p.bump()
			p.builder.FinishNode()
			return
		case lexer.EOF:
			p.builder.FinishNode()
			return
		default:
			p.bump()
		}
	}
}

// records consumes record lines until the next header, geometry block, or
// end of input.
func (p *parser) records() {
	p.builder.StartNode(lexer.RECORDS)
	p.skipComment()
	for {
		switch p.current() {
		case lexer.ASTERISK, lexer.EOF, lexer.NODE, lexer.ELEMENT, lexer.END:
			p.builder.FinishNode()
			return
		default:
			p.bump()
		}
	}
}
