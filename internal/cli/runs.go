package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dpvalidate/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	GraphHash string // optional - filter to one graph descriptor
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded validation runs",
		Long: `List the runs recorded in the ledger, oldest first, with node and
failure counts.

Examples:
  dpvalidate runs --db ./ledger.db
  dpvalidate runs --db ./ledger.db --graph-hash <hash>
  dpvalidate runs --db ./ledger.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.GraphHash, "graph-hash", "", "only list runs of this graph hash")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg, err := opts.settings()
	if err != nil {
		return err
	}

	st, err := openLedger(cfg.Store.Path, true, opts.logger())
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), opts.GraphHash)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}

	if opts.Format == "json" {
		return formatter.JSON(CLIResponse{Data: runs})
	}

	w := formatter.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, run := range runs {
		mark := "✓"
		if run.Failed > 0 {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s  %s  %d node(s), %d failed\n", mark, run.ID, run.Graph, run.Nodes, run.Failed)
		formatter.VerboseLog("  graph hash %s", run.GraphHash)
	}
	return nil
}
