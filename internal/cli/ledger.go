package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/engine"
	"github.com/roach88/dpvalidate/internal/errs"
	"github.com/roach88/dpvalidate/internal/store"
)

// ErrCodeNoLedger is reported when a command needs a ledger and none is
// configured or the file does not exist.
const ErrCodeNoLedger = "E_NO_LEDGER"

// openLedger opens the run ledger at path. Reading commands set mustExist
// so a mistyped path is reported instead of creating an empty ledger.
func openLedger(path string, mustExist bool, logger *slog.Logger) (*store.Store, error) {
	if path == "" {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("%s: no ledger configured, use --db or DPVALIDATE_STORE_PATH", ErrCodeNoLedger))
	}
	if mustExist && path != ":memory:" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("%s: ledger not found: %s", ErrCodeNoLedger, path))
		}
	}
	st, err := store.Open(path, store.WithLogger(logger))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open ledger", err)
	}
	return st, nil
}

// NodeOutput is the CLI view of one evaluated node.
type NodeOutput struct {
	Node       string          `json:"node"`
	Component  string          `json:"component"`
	Seq        int64           `json:"seq"`
	Status     string          `json:"status"`
	Properties json.RawMessage `json:"properties,omitempty"`
	ErrorCode  string          `json:"error_code,omitempty"`
	ErrorKind  string          `json:"error_kind,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// nodeFromResult converts an engine result.
func nodeFromResult(res engine.NodeResult) (NodeOutput, error) {
	out := NodeOutput{
		Node:      res.Node,
		Component: res.Component,
		Seq:       res.Seq,
		Status:    string(res.Status),
	}
	if res.Properties != nil {
		data, err := base.CanonicalProperties(res.Properties)
		if err != nil {
			return NodeOutput{}, fmt.Errorf("node %s: %w", res.Node, err)
		}
		out.Properties = data
	}
	if res.Err != nil {
		out.ErrorKind = string(errs.KindOf(res.Err))
		out.Error = res.Err.Error()
		var ne *engine.NodeError
		if errors.As(res.Err, &ne) {
			out.ErrorCode = string(ne.Code)
			out.Error = ne.Message
			if ne.Err != nil {
				out.Error = ne.Err.Error()
			}
		}
	}
	return out, nil
}

// nodeFromRecord converts a ledger record.
func nodeFromRecord(rec store.NodeRecord) NodeOutput {
	out := NodeOutput{
		Node:      rec.Node,
		Component: rec.Component,
		Seq:       rec.Seq,
		Status:    rec.Status,
		ErrorCode: rec.ErrorCode,
		ErrorKind: rec.ErrorKind,
		Error:     rec.Error,
	}
	if rec.Properties != "" {
		out.Properties = json.RawMessage(rec.Properties)
	}
	return out
}

// statusMark is the text-mode prefix of a node line.
func statusMark(status string) string {
	if status == string(engine.StatusOK) {
		return "✓"
	}
	return "✗"
}
