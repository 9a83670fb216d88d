package syntax

import "github.com/dkbb/dkbb-ls/internal/lexer"

// The AST veneer favours tagged wrappers over virtual dispatch: each type
// is a pure witness over a *Red node, with a can-cast predicate plus a cast
// constructor, matching the "AstNode" pattern rather than a class
// hierarchy (9. Design notes).

// SourceFile wraps a ROOT node.
type SourceFile struct{ red *Red }

// Syntax returns the wrapped red node.
func (n SourceFile) Syntax() *Red { return n.red }

// CanCastSourceFile reports whether kind may be wrapped as a SourceFile.
func CanCastSourceFile(kind lexer.SyntaxKind) bool { return kind == lexer.ROOT }

// CastSourceFile wraps red as a SourceFile if its kind permits it.
func CastSourceFile(red *Red) (SourceFile, bool) {
	if !CanCastSourceFile(red.Kind()) {
		return SourceFile{}, false
	}
	return SourceFile{red: red}, true
}

// Cards returns the direct CARD children of the source file.
func (n SourceFile) Cards() []Card {
	var out []Card
	for _, c := range n.red.Children() {
		if card, ok := CastCard(c); ok {
			out = append(out, card)
		}
	}
	return out
}

// Card wraps a CARD node.
type Card struct{ red *Red }

// Syntax returns the wrapped red node.
func (c Card) Syntax() *Red { return c.red }

// CanCastCard reports whether kind may be wrapped as a Card.
func CanCastCard(kind lexer.SyntaxKind) bool { return kind == lexer.CARD }

// CastCard wraps red as a Card if its kind permits it.
func CastCard(red *Red) (Card, bool) {
	if !CanCastCard(red.Kind()) {
		return Card{}, false
	}
	return Card{red: red}, true
}

// KeyWord returns the card's KEYWORD child, if present (I4 guarantees it is).
func (c Card) KeyWord() (KeyWord, bool) {
	red, ok := c.red.FirstDescendantOfKind(lexer.KEYWORD)
	if !ok {
		return KeyWord{}, false
	}
	return CastKeyWord(red)
}

// Deck returns the card's DECK child, if present.
func (c Card) Deck() (Deck, bool) {
	red, ok := c.red.FirstChildOfKind(lexer.DECK)
	if !ok {
		return Deck{}, false
	}
	return CastDeck(red)
}

// KeyWord wraps a KEYWORD node.
type KeyWord struct{ red *Red }

// Syntax returns the wrapped red node.
func (k KeyWord) Syntax() *Red { return k.red }

// CanCastKeyWord reports whether kind may be wrapped as a KeyWord.
func CanCastKeyWord(kind lexer.SyntaxKind) bool { return kind == lexer.KEYWORD }

// CastKeyWord wraps red as a KeyWord if its kind permits it.
func CastKeyWord(red *Red) (KeyWord, bool) {
	if !CanCastKeyWord(red.Kind()) {
		return KeyWord{}, false
	}
	return KeyWord{red: red}, true
}

// Deck wraps a DECK node.
type Deck struct{ red *Red }

// Syntax returns the wrapped red node.
func (d Deck) Syntax() *Red { return d.red }

// CanCastDeck reports whether kind may be wrapped as a Deck.
func CanCastDeck(kind lexer.SyntaxKind) bool { return kind == lexer.DECK }

// CastDeck wraps red as a Deck if its kind permits it.
func CastDeck(red *Red) (Deck, bool) {
	if !CanCastDeck(red.Kind()) {
		return Deck{}, false
	}
	return Deck{red: red}, true
}

// Records returns the deck's RECORDS child, if present.
func (d Deck) Records() (*Red, bool) {
	return d.red.FirstChildOfKind(lexer.RECORDS)
}
