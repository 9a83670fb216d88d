package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Print writes an indented dump of the tree rooted at root to w, one line
// per node or token, in source order. It has no stability guarantee (6.
// External interfaces): it exists for the debug CLI, not for scripting.
func Print(w io.Writer, root *Red) {
	printNode(w, 0, root)
}

func printNode(w io.Writer, indent int, n *Red) {
	pad := strings.Repeat(" ", indent)
	fmt.Fprintf(w, "%s- %s %s\n", pad, n.Kind(), n.Span())

	for _, c := range n.childSpans() {
		if c.isToken {
			fmt.Fprintf(w, "%s  - %s %s %q\n", pad, c.tokKind, c.span, c.tokText)
			continue
		}
		printNode(w, indent+2, c.node)
	}
}
