// Package main provides the kwdeckls LSP server entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dkbb/dkbb-ls/internal/lsp"
)

func main() {
	if err := lsp.NewServer().RunStdio(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "kwdeckls:", err)
		os.Exit(1)
	}
}
