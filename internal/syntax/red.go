package syntax

import (
	"github.com/dkbb/dkbb-ls/internal/lexer"
	"github.com/dkbb/dkbb-ls/internal/text"
)

// Red is a positioned view over a GreenNode: it adds a parent link and an
// absolute byte offset, both computed on demand from prefix sums over
// sibling widths. Red nodes are cheap, short-lived, and never shared
// between revisions the way green nodes are.
type Red struct {
	green         *GreenNode
	parent        *Red
	indexInParent int
	offset        text.ByteOffset
}

// NewRoot builds a positioned root view over a green tree.
func NewRoot(green *GreenNode) *Red {
	return &Red{green: green}
}

// Kind returns the node's SyntaxKind.
func (r *Red) Kind() lexer.SyntaxKind { return r.green.Kind }

// Span returns the node's absolute byte range.
func (r *Red) Span() text.Span {
	return text.Span{Start: r.offset, End: r.offset + r.green.width}
}

// Text returns the node's source text.
func (r *Red) Text() string { return r.green.text }

// Green returns the underlying immutable green node.
func (r *Red) Green() *GreenNode { return r.green }

// Parent returns the parent red node, or nil at the root.
func (r *Red) Parent() *Red { return r.parent }

// Ancestors returns r and each of its ancestors, innermost first.
func (r *Red) Ancestors() []*Red {
	var out []*Red
	for cur := r; cur != nil; cur = cur.Parent() {
		out = append(out, cur)
	}
	return out
}

// Children returns the node's direct node children (tokens are skipped).
func (r *Red) Children() []*Red {
	var out []*Red
	off := r.offset
	for i, c := range r.green.Children {
		if c.IsToken {
			off += text.ByteOffset(len(c.Token.Text))
			continue
		}
		out = append(out, &Red{green: c.Node, parent: r, indexInParent: i, offset: off})
		off += c.Node.width
	}
	return out
}

// FirstChildOfKind returns the first direct node child of the given kind.
func (r *Red) FirstChildOfKind(kind lexer.SyntaxKind) (*Red, bool) {
	for _, c := range r.Children() {
		if c.Kind() == kind {
			return c, true
		}
	}
	return nil, false
}

// Descendants returns r and every node descendant, in tree pre-order.
func (r *Red) Descendants() []*Red {
	out := []*Red{r}
	for _, c := range r.Children() {
		out = append(out, c.Descendants()...)
	}
	return out
}

// FirstDescendantOfKind returns the first descendant (r included) of the
// given kind, in pre-order.
func (r *Red) FirstDescendantOfKind(kind lexer.SyntaxKind) (*Red, bool) {
	for _, d := range r.Descendants() {
		if d.Kind() == kind {
			return d, true
		}
	}
	return nil, false
}

// childSpan is a positioned view of one direct child, token or node.
type childSpan struct {
	span    text.Span
	isToken bool
	tokKind lexer.SyntaxKind
	tokText string
	node    *Red
}

func (r *Red) childSpans() []childSpan {
	out := make([]childSpan, 0, len(r.green.Children))
	off := r.offset
	for i, c := range r.green.Children {
		if c.IsToken {
			sp := text.Span{Start: off, End: off + text.ByteOffset(len(c.Token.Text))}
			out = append(out, childSpan{span: sp, isToken: true, tokKind: c.Token.Kind, tokText: c.Token.Text})
			off = sp.End
		} else {
			sp := text.Span{Start: off, End: off + c.Node.width}
			out = append(out, childSpan{span: sp, node: &Red{green: c.Node, parent: r, indexInParent: i, offset: off}})
			off = sp.End
		}
	}
	return out
}

// Covering is the result of a covering-element lookup: either a token leaf
// (with its immediate parent node) or the smallest enclosing node itself.
type Covering struct {
	Node    *Red
	IsToken bool
	TokKind lexer.SyntaxKind
	TokText string
	TokSpan text.Span
}

// CoveringElement returns the smallest syntax element (token or node) that
// fully contains rng, descending from root.
func CoveringElement(root *Red, rng text.Span) Covering {
	cur := root
	for {
		matched := false
		for _, ch := range cur.childSpans() {
			if !ch.span.ContainsSpan(rng) {
				continue
			}
			if ch.isToken {
				return Covering{Node: cur, IsToken: true, TokKind: ch.tokKind, TokText: ch.tokText, TokSpan: ch.span}
			}
			cur = ch.node
			matched = true
			break
		}
		if !matched {
			return Covering{Node: cur}
		}
	}
}

// NearestAncestorOfKind returns the first node among r and its ancestors
// that has the given kind.
func NearestAncestorOfKind(r *Red, kind lexer.SyntaxKind) (*Red, bool) {
	for _, a := range r.Ancestors() {
		if a.Kind() == kind {
			return a, true
		}
	}
	return nil, false
}
