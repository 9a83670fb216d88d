// Package main implements kwdeckdump, the ancillary debug CLI promised by
// spec.md §6 ("a debug binary that parses a file and prints the CST with
// indentation; no stability guarantee"). Its output format may change at any
// time; nothing in the core depends on it.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dkbb/dkbb-ls/internal/syntax"
	"github.com/dkbb/dkbb-ls/internal/validate"
)

var verbose bool

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kwdeckdump",
		Short: "Parse a keyword-deck file and print its concrete syntax tree",
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "tag each dump with a correlation id")
	root.AddCommand(dumpCmd())
	root.AddCommand(diagnosticsCmd())
	return root
}

func dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <path>",
		Short: "Print the indented CST for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return forEachFile(args, func(path string, src []byte) error {
				p := syntax.ParseSource(src)
				if verbose {
					fmt.Fprintf(cmd.OutOrStdout(), "# %s run=%s\n", path, uuid.NewString())
				}
				syntax.Print(cmd.OutOrStdout(), p.Red())
				return nil
			})
		},
	}
}

func diagnosticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagnostics <path>...",
		Short: "Print the accumulated validator diagnostics for one or more files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return forEachFile(args, func(path string, src []byte) error {
				p := syntax.ParseSource(src)
				diags := validate.Compile(p)
				if verbose {
					fmt.Fprintf(cmd.OutOrStdout(), "# %s run=%s\n", path, uuid.NewString())
				}
				for _, d := range diags {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s: %s at %s\n", path, d.Severity, d.Message, d.Range)
				}
				return nil
			})
		},
	}
}

func forEachFile(paths []string, f func(path string, src []byte) error) error {
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := f(path, src); err != nil {
			return err
		}
	}
	return nil
}
