// Package syntax implements the lossless concrete syntax tree: a
// hash-consed, immutable green tree, a positioned red view over it, the
// hand-written recursive-descent parser that builds the green tree, the
// edit-localised reparser, and a thin AST veneer over red nodes.
package syntax

import (
	"hash/fnv"
	"sync"

	"github.com/dkbb/dkbb-ls/internal/lexer"
	"github.com/dkbb/dkbb-ls/internal/text"
)

// GreenToken is a leaf: a token kind paired with its exact source text.
// Tokens are value types; they carry their own text so a green tree never
// needs to reach back into a source buffer to reconstruct itself (I1).
type GreenToken struct {
	Kind lexer.SyntaxKind
	Text string
}

// GreenChild is either a GreenToken leaf or a nested *GreenNode.
type GreenChild struct {
	IsToken bool
	Token   GreenToken
	Node    *GreenNode
}

// GreenNode is an immutable, structurally-shared tree node. It stores no
// absolute offsets; its text is the concatenation of its children's text,
// cached at construction time. Nodes with identical kind and children are
// deduplicated by the package-level interner, so two parses of identical
// input share green subtrees by pointer identity (P4).
type GreenNode struct {
	Kind     lexer.SyntaxKind
	Children []GreenChild
	text     string
	width    text.ByteOffset
	hash     uint64
}

// Text returns the node's reconstructed source text.
func (g *GreenNode) Text() string { return g.text }

// Width returns the number of bytes the node's text spans.
func (g *GreenNode) Width() text.ByteOffset { return g.width }

var interner = newGreenInterner()

type greenInterner struct {
	mu      sync.Mutex
	buckets map[uint64][]*GreenNode
}

func newGreenInterner() *greenInterner {
	return &greenInterner{buckets: make(map[uint64][]*GreenNode)}
}

func (in *greenInterner) intern(kind lexer.SyntaxKind, children []GreenChild) *GreenNode {
	h := hashGreen(kind, children)

	in.mu.Lock()
	defer in.mu.Unlock()

	for _, existing := range in.buckets[h] {
		if greenEqual(existing, kind, children) {
			return existing
		}
	}

	var textLen text.ByteOffset
	buf := make([]byte, 0, 64)
	for _, c := range children {
		if c.IsToken {
			buf = append(buf, c.Token.Text...)
			textLen += text.ByteOffset(len(c.Token.Text))
		} else {
			buf = append(buf, c.Node.text...)
			textLen += c.Node.width
		}
	}

	node := &GreenNode{
		Kind:     kind,
		Children: children,
		text:     string(buf),
		width:    textLen,
		hash:     h,
	}
	in.buckets[h] = append(in.buckets[h], node)
	return node
}

func hashGreen(kind lexer.SyntaxKind, children []GreenChild) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte{byte(kind), byte(kind >> 8)})
	for _, c := range children {
		if c.IsToken {
			_, _ = h.Write([]byte{'t', byte(c.Token.Kind), byte(c.Token.Kind >> 8)})
			_, _ = h.Write([]byte(c.Token.Text))
		} else {
			_, _ = h.Write([]byte{'n'})
			var buf [8]byte
			putUint64(buf[:], c.Node.hash)
			_, _ = h.Write(buf[:])
		}
	}
	return h.Sum64()
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func greenEqual(existing *GreenNode, kind lexer.SyntaxKind, children []GreenChild) bool {
	if existing.Kind != kind || len(existing.Children) != len(children) {
		return false
	}
	for i, c := range children {
		e := existing.Children[i]
		if e.IsToken != c.IsToken {
			return false
		}
		if c.IsToken {
			if e.Token.Kind != c.Token.Kind || e.Token.Text != c.Token.Text {
				return false
			}
		} else if e.Node != c.Node {
			// Children are always built bottom-up through the same interner,
			// so identical subtrees are already pointer-equal.
			return false
		}
	}
	return true
}

// Builder assembles a green tree bottom-up, mirroring a rowan-style
// GreenNodeBuilder: a stack of in-progress node frames, a token sink, and
// an error sink collected alongside construction.
type Builder struct {
	stack  []greenFrame
	Errors []SyntaxError
}

type greenFrame struct {
	kind     lexer.SyntaxKind
	children []GreenChild
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// StartNode opens a new node frame of the given kind.
func (b *Builder) StartNode(kind lexer.SyntaxKind) {
	b.stack = append(b.stack, greenFrame{kind: kind})
}

// Token appends a leaf token to the current frame.
func (b *Builder) Token(kind lexer.SyntaxKind, text string) {
	top := len(b.stack) - 1
	b.stack[top].children = append(b.stack[top].children, GreenChild{
		IsToken: true,
		Token:   GreenToken{Kind: kind, Text: text},
	})
}

// FinishNode closes the current frame, interns it, and, if a parent frame
// is open, appends it as that frame's next child. It returns the interned
// node either way, so the final call (for ROOT) yields the tree's root.
func (b *Builder) FinishNode() *GreenNode {
	top := len(b.stack) - 1
	frame := b.stack[top]
	b.stack = b.stack[:top]

	node := interner.intern(frame.kind, frame.children)
	if len(b.stack) > 0 {
		parent := len(b.stack) - 1
		b.stack[parent].children = append(b.stack[parent].children, GreenChild{Node: node})
	}
	return node
}

// Error records a diagnostic at the given range with the given severity.
func (b *Builder) Error(message string, rng text.Span, severity Severity) {
	b.Errors = append(b.Errors, SyntaxError{Message: message, Range: rng, Severity: severity})
}
