package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/compiler"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled graph.
type CompilationResult struct {
	Graph    string          `json:"graph"`
	Hash     string          `json:"hash"`
	Nodes    int             `json:"nodes"`
	Document json.RawMessage `json:"document,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <graph>",
		Short: "Compile a graph descriptor to canonical JSON",
		Long: `Compile a CUE graph descriptor to its canonical JSON document and
content hash.

The hash is the one recorded with every ledger run, so it identifies
which descriptor a run was produced from. With -o the canonical document
is written to a file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	g, err := compiler.LoadGraph(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	doc, err := base.GraphDocument(g)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build graph document", err)
	}
	data, err := base.MarshalCanonical(doc)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to marshal graph", err)
	}
	hash, err := base.GraphHash(g)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash graph", err)
	}

	result := CompilationResult{Graph: g.Name, Hash: hash, Nodes: len(g.Nodes)}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, data, 0644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output file", err)
		}
		formatter.VerboseLog("Wrote %s", opts.Output)
	} else {
		result.Document = data
	}

	if opts.Format == "json" {
		return formatter.JSON(CLIResponse{Data: result})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled graph %s (%d nodes)\n", result.Graph, result.Nodes)
	fmt.Fprintf(w, "Hash: %s\n", result.Hash)
	if opts.Output != "" {
		fmt.Fprintf(w, "Output: %s\n", opts.Output)
	} else {
		fmt.Fprintln(w, string(data))
	}
	return nil
}
