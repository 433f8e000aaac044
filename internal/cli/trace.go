package cli

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dpvalidate/internal/engine"
	"github.com/roach88/dpvalidate/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Node string // optional - filter to one node
}

// TraceResult holds a recorded run and its timeline.
type TraceResult struct {
	Run      store.Run    `json:"run"`
	Timeline []NodeOutput `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the run.
type TraceStats struct {
	Nodes          int `json:"nodes"`
	OK             int `json:"ok"`
	Failed         int `json:"failed"`
	UpstreamFailed int `json:"upstream_failed"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <run-id>",
		Short: "Show the node timeline of a recorded run",
		Long: `Show every node of a recorded run in evaluation order, with its
status, stored properties and error.

Examples:
  dpvalidate trace --db ./ledger.db <run-id>
  dpvalidate trace --db ./ledger.db <run-id> --node binned
  dpvalidate trace --db ./ledger.db <run-id> --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Node, "node", "", "filter to one node")

	return cmd
}

func runTrace(opts *TraceOptions, runID string, cmd *cobra.Command) error {
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

	run, records, err := st.ReadRun(cmd.Context(), runID)
	if errors.Is(err, sql.ErrNoRows) {
		_ = formatter.Error("E_RUN_NOT_FOUND", fmt.Sprintf("run not found: %s", runID), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", runID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	result := TraceResult{Run: run, Timeline: []NodeOutput{}}
	for _, rec := range records {
		if opts.Node != "" && rec.Node != opts.Node {
			continue
		}
		result.Timeline = append(result.Timeline, nodeFromRecord(rec))
		result.Stats.Nodes++
		switch engine.Status(rec.Status) {
		case engine.StatusOK:
			result.Stats.OK++
		case engine.StatusFailed:
			result.Stats.Failed++
		case engine.StatusUpstreamFailed:
			result.Stats.UpstreamFailed++
		}
	}

	if opts.Node != "" && len(result.Timeline) == 0 {
		_ = formatter.Error("E_NODE_NOT_FOUND", fmt.Sprintf("node %s not in run %s", opts.Node, runID), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("node %s not in run %s", opts.Node, runID))
	}

	if opts.Format == "json" {
		return formatter.JSON(CLIResponse{Data: result, RunID: run.ID})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s: graph %s\n", run.ID, run.Graph)
	formatter.VerboseLog("Graph hash: %s", run.GraphHash)
	fmt.Fprintln(w)
	for _, node := range result.Timeline {
		fmt.Fprintf(w, "[%d] %s %s (%s): %s\n", node.Seq, statusMark(node.Status), node.Node, node.Component, node.Status)
		if node.Properties != nil {
			fmt.Fprintf(w, "    properties: %s\n", node.Properties)
		}
		if node.Error != "" {
			fmt.Fprintf(w, "    error: %s %s: %s\n", node.ErrorCode, node.ErrorKind, node.Error)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stats: %d nodes, %d ok, %d failed, %d upstream failed\n",
		result.Stats.Nodes, result.Stats.OK, result.Stats.Failed, result.Stats.UpstreamFailed)
	return nil
}
