package cli

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/compiler"
	"github.com/roach88/dpvalidate/internal/engine"
	"github.com/roach88/dpvalidate/internal/store"
)

// ReplayResult holds the outcome of re-evaluating a recorded run.
type ReplayResult struct {
	RunID         string   `json:"run_id"`
	Graph         string   `json:"graph"`
	GraphHash     string   `json:"graph_hash"`
	Nodes         int      `json:"nodes"`
	Deterministic bool     `json:"deterministic"`
	Differences   []string `json:"differences,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <graph> <run-id>",
		Short: "Re-evaluate a graph and verify a recorded run",
		Long: `Re-evaluate a graph descriptor and compare every node against a run
recorded in the ledger: evaluation order, status, error code and the
hash of the propagated properties must all match.

The descriptor must have the same content hash as the recorded run.

Exit codes:
  0 - The run is reproduced exactly
  1 - Differences detected
  2 - Command error (graph or run not found, ledger errors)`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runReplay(opts *RootOptions, path, runID string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg, err := opts.settings()
	if err != nil {
		return err
	}

	g, err := compiler.LoadGraph(path)
	if err != nil {
		return outputLoadError(formatter, err)
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

	result := ReplayResult{RunID: run.ID, Graph: run.Graph, GraphHash: run.GraphHash, Nodes: len(records)}

	hash, err := base.GraphHash(g)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash graph", err)
	}
	if hash != run.GraphHash {
		result.Differences = append(result.Differences,
			fmt.Sprintf("graph hash %s does not match recorded %s", hash, run.GraphHash))
	} else {
		eng := engine.New(
			engine.WithLogger(opts.logger()),
			engine.WithPrivacy(cfg.Privacy.Definition()),
		)
		report, err := eng.Validate(cmd.Context(), g)
		if err != nil {
			return WrapExitError(ExitCommandError, "re-evaluation aborted", err)
		}
		diffs, err := compareRun(records, report.Results)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to compare run", err)
		}
		result.Differences = diffs
	}
	result.Deterministic = len(result.Differences) == 0

	return outputReplay(formatter, result)
}

// compareRun compares recorded nodes with fresh results position by position.
func compareRun(records []store.NodeRecord, results []engine.NodeResult) ([]string, error) {
	var diffs []string
	if len(records) != len(results) {
		diffs = append(diffs, fmt.Sprintf("recorded %d node(s), evaluated %d", len(records), len(results)))
	}

	for i := range min(len(records), len(results)) {
		rec, res := records[i], results[i]
		if rec.Node != res.Node || rec.Seq != res.Seq {
			diffs = append(diffs, fmt.Sprintf("position %d: recorded %s (seq %d), evaluated %s (seq %d)",
				i, rec.Node, rec.Seq, res.Node, res.Seq))
			continue
		}
		if rec.Status != string(res.Status) {
			diffs = append(diffs, fmt.Sprintf("%s: status recorded %s, evaluated %s", rec.Node, rec.Status, res.Status))
			continue
		}

		var hash string
		if res.Properties != nil {
			h, err := base.PropertiesHash(res.Properties)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", res.Node, err)
			}
			hash = h
		}
		if rec.PropertiesHash != hash {
			diffs = append(diffs, fmt.Sprintf("%s: properties hash recorded %q, evaluated %q", rec.Node, rec.PropertiesHash, hash))
		}

		var code string
		var ne *engine.NodeError
		if errors.As(res.Err, &ne) {
			code = string(ne.Code)
		}
		if rec.ErrorCode != code {
			diffs = append(diffs, fmt.Sprintf("%s: error code recorded %q, evaluated %q", rec.Node, rec.ErrorCode, code))
		}
	}
	return diffs, nil
}

func outputReplay(formatter *OutputFormatter, result ReplayResult) error {
	if formatter.Format == "json" {
		resp := CLIResponse{Data: result, RunID: result.RunID}
		if !result.Deterministic {
			resp.Error = &CLIError{
				Code:    "E_DETERMINISM",
				Message: "replay does not match the recorded run",
			}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		fmt.Fprintf(w, "Replay of run %s: graph %s, %d node(s)\n", result.RunID, result.Graph, result.Nodes)
		for _, diff := range result.Differences {
			fmt.Fprintf(w, "  %s\n", diff)
		}
		if result.Deterministic {
			fmt.Fprintln(w, "✓ Run reproduced exactly")
		} else {
			fmt.Fprintln(w, "✗ Replay does not match the recorded run")
		}
	}

	if !result.Deterministic {
		// Determinism failure = exit code 1
		return NewExitError(ExitFailure, "replay does not match the recorded run")
	}
	return nil
}
