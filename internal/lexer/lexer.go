package lexer

import (
	"unicode/utf8"

	"github.com/dkbb/dkbb-ls/internal/text"
)

// Token is a lexed token: a SyntaxKind paired with the byte span it covers.
// Tokens are emitted flat, in source order, with no separate trivia channel;
// the parser decides which kinds to fold into the tree as trivia.
type Token struct {
	Kind SyntaxKind
	Span text.Span
}

// Bytes returns the token's source bytes, or nil if Span is invalid for src.
func (t Token) Bytes(src []byte) []byte {
	if !t.Span.IsValid() || t.Span.End > text.ByteOffset(len(src)) {
		return nil
	}
	return src[t.Span.Start:t.Span.End]
}

// Lex tokenizes src into a flat, lossless token stream terminated by EOF.
// The lexer never fails: any byte it cannot classify becomes an ERROR token
// one byte wide (a non-ASCII rune becomes one ERROR token spanning its whole
// UTF-8 encoding), and scanning continues.
func Lex(src []byte) []Token {
	s := scanner{src: src}
	s.run()
	return s.tokens
}

type scanner struct {
	src    []byte
	i      int
	tokens []Token
}

func (s *scanner) run() {
	for !s.eof() {
		s.tokens = append(s.tokens, s.scanToken())
	}
	s.tokens = append(s.tokens, Token{Kind: EOF, Span: span(len(s.src), len(s.src))})
}

func (s *scanner) scanToken() Token {
	start := s.i
	b := s.src[s.i]

	switch {
	case b == ' ':
		for !s.eof() && s.src[s.i] == ' ' {
			s.i++
		}
		return Token{Kind: WHITESPACE, Span: span(start, s.i)}
	case b == '\n':
		s.i++
		return Token{Kind: NEWLINE, Span: span(start, s.i)}
	case b == '\r' && s.peekByte(1) == '\n':
		s.i += 2
		return Token{Kind: NEWLINE, Span: span(start, s.i)}
	case b == '*':
		return s.scanAsteriskOrGeometry()
	case b == '$':
		return s.scanComment()
	case b == '_':
		s.i++
		return Token{Kind: UNDERSCORE, Span: span(start, s.i)}
	case isWordStart(b):
		s.i++
		for !s.eof() && isWordPart(s.src[s.i]) {
			s.i++
		}
		return Token{Kind: WORD, Span: span(start, s.i)}
	case isNumberStart(b, s.peekByte(1)):
		return s.scanNumber()
	case b >= utf8.RuneSelf:
		_, size := utf8.DecodeRune(s.src[s.i:])
		if size == 0 {
			size = 1
		}
		s.i += size
		return Token{Kind: ERROR, Span: span(start, s.i)}
	default:
		s.i++
		return Token{Kind: ERROR, Span: span(start, s.i)}
	}
}

// scanAsteriskOrGeometry matches the NODE/ELEMENT/END patterns, which are
// literal "*" followed by the keyword and everything up to the next "*"
// (or EOF). Longest match wins over a lone ASTERISK.
func (s *scanner) scanAsteriskOrGeometry() Token {
	start := s.i
	switch {
	case s.hasLiteralAt(start+1, "NODE"):
		return s.scanGeometry(start, NODE)
	case s.hasLiteralAt(start+1, "ELEMENT"):
		return s.scanGeometry(start, ELEMENT)
	case s.hasLiteralAt(start+1, "END"):
		return s.scanGeometry(start, END)
	default:
		s.i++
		return Token{Kind: ASTERISK, Span: span(start, s.i)}
	}
}

func (s *scanner) scanGeometry(start int, kind SyntaxKind) Token {
	s.i = start + 1
	for !s.eof() && s.src[s.i] != '*' {
		s.i++
	}
	return Token{Kind: kind, Span: span(start, s.i)}
}

func (s *scanner) scanComment() Token {
	start := s.i
	for !s.eof() && s.src[s.i] != '\n' {
		s.i++
	}
	if !s.eof() {
		s.i++ // trailing newline is part of the comment token.
	}
	return Token{Kind: COMMENT, Span: span(start, s.i)}
}

func (s *scanner) scanNumber() Token {
	start := s.i
	if s.src[s.i] == '-' {
		s.i++
	}
	for !s.eof() && isDigit(s.src[s.i]) {
		s.i++
	}
	if s.peekByte(0) == '.' {
		s.i++
		for !s.eof() && isDigit(s.src[s.i]) {
			s.i++
		}
	}
	if !s.eof() && (s.src[s.i] == 'e' || s.src[s.i] == 'E') {
		j := s.i + 1
		if j < len(s.src) && (s.src[j] == '+' || s.src[j] == '-') {
			j++
		}
		if j < len(s.src) && isDigit(s.src[j]) {
			s.i = j
			for !s.eof() && isDigit(s.src[s.i]) {
				s.i++
			}
		}
	}
	return Token{Kind: NUMBER, Span: span(start, s.i)}
}

func (s *scanner) hasLiteralAt(at int, lit string) bool {
	end := at + len(lit)
	if end > len(s.src) {
		return false
	}
	return string(s.src[at:end]) == lit
}

func (s *scanner) eof() bool {
	return s.i >= len(s.src)
}

func (s *scanner) peekByte(delta int) byte {
	j := s.i + delta
	if j < 0 || j >= len(s.src) {
		return 0
	}
	return s.src[j]
}

func span(start, end int) text.Span {
	return text.Span{Start: text.ByteOffset(start), End: text.ByteOffset(end)}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isWordStart(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isWordPart(b byte) bool {
	switch {
	case isWordStart(b), isDigit(b):
		return true
	case b == '-' || b == '(' || b == ')' || b == '.':
		return true
	default:
		return false
	}
}

func isNumberStart(b, next byte) bool {
	if isDigit(b) {
		return true
	}
	return b == '-' && isDigit(next)
}
