package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dpvalidate/internal/compiler"
	"github.com/roach88/dpvalidate/internal/engine"
)

// ErrCodeNodeFailed is reported when at least one node failed to propagate.
const ErrCodeNodeFailed = "E_NODE_FAILED"

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool                       `json:"valid"`
	Graph     string                     `json:"graph,omitempty"`
	GraphHash string                     `json:"graph_hash,omitempty"`
	RunID     string                     `json:"run_id,omitempty"`
	Nodes     []NodeOutput               `json:"nodes,omitempty"`
	Errors    []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <graph>",
		Short: "Propagate properties through a graph",
		Long: `Load a CUE graph descriptor, lint it and propagate properties through
every node in deterministic topological order.

A node failure does not stop the pass: nodes depending on it are reported as
upstream_failed and independent nodes are still evaluated. With --db the run
is recorded in the ledger.

Exit codes:
  0 - Every node propagated
  1 - Lint errors or failed nodes
  2 - Command error (graph not found, invalid CUE, ledger errors)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg, err := opts.settings()
	if err != nil {
		return err
	}

	g, err := compiler.LoadGraph(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Loaded graph %s with %d node(s)", g.Name, len(g.Nodes))

	if lint := compiler.Validate(g); len(lint) > 0 {
		return outputValidationErrors(formatter, lint)
	}

	engineOpts := []engine.Option{
		engine.WithLogger(opts.logger()),
		engine.WithPrivacy(cfg.Privacy.Definition()),
	}
	if cfg.Store.Path != "" {
		st, err := openLedger(cfg.Store.Path, false, opts.logger())
		if err != nil {
			return err
		}
		defer st.Close()
		engineOpts = append(engineOpts, engine.WithRecorder(st))
	}

	report, err := engine.New(engineOpts...).Validate(cmd.Context(), g)
	if err != nil {
		_ = formatter.Error("E_ENGINE", err.Error(), nil)
		return WrapExitError(ExitCommandError, "validation aborted", err)
	}

	result := ValidationResult{
		Valid:     report.OK(),
		Graph:     report.Graph,
		GraphHash: report.GraphHash,
		RunID:     report.RunID,
	}
	for _, res := range report.Results {
		node, err := nodeFromResult(res)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to render result", err)
		}
		result.Nodes = append(result.Nodes, node)
	}

	return outputValidateResult(formatter, result, len(report.Failed()))
}

// outputLoadError reports a descriptor that could not be loaded.
func outputLoadError(formatter *OutputFormatter, err error) error {
	code, message := compiler.ErrCodeGeneric, err.Error()
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		code, message = loadErr.Code, loadErr.Message
	}
	_ = formatter.Error(code, message, nil)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs lint errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		err := formatter.JSON(CLIResponse{
			Data: ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		})
		if err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s\n", err.Error())
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

// outputValidateResult outputs the propagated nodes.
func outputValidateResult(formatter *OutputFormatter, result ValidationResult, failed int) error {
	if formatter.Format == "json" {
		resp := CLIResponse{Data: result, RunID: result.RunID}
		if failed > 0 {
			resp.Error = &CLIError{
				Code:    ErrCodeNodeFailed,
				Message: fmt.Sprintf("%d node(s) failed", failed),
			}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		fmt.Fprintf(w, "Graph %s (%d nodes)\n", result.Graph, len(result.Nodes))
		for _, node := range result.Nodes {
			fmt.Fprintf(w, "  %s [%d] %s (%s): %s", statusMark(node.Status), node.Seq, node.Node, node.Component, node.Status)
			if node.Error != "" {
				fmt.Fprintf(w, ": %s", node.Error)
			}
			fmt.Fprintln(w)
			if formatter.Verbose && node.Properties != nil {
				fmt.Fprintf(w, "      %s\n", node.Properties)
			}
		}
		if result.RunID != "" {
			fmt.Fprintf(w, "Recorded run %s\n", result.RunID)
		}
		if failed == 0 {
			fmt.Fprintln(w, "✓ All nodes propagated")
		} else {
			fmt.Fprintf(w, "✗ %d node(s) failed\n", failed)
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d node(s) failed", failed))
	}
	return nil
}
