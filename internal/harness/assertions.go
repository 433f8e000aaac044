package harness

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/dpvalidate/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s (%s) %s\n", event.Seq, event.Node, event.Component, event.Status)
	}

	return buf.String()
}

// assertContains checks that a node appears in the trace, with the
// given status when one is specified.
func assertContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Node != assertion.Node {
			continue
		}
		if assertion.Status == "" || event.Status == assertion.Status {
			return nil
		}
		return &AssertionError{
			Type:     AssertContains,
			Expected: fmt.Sprintf("node %s with status %s", assertion.Node, assertion.Status),
			Actual:   fmt.Sprintf("status %s", event.Status),
			Trace:    trace,
		}
	}

	return &AssertionError{
		Type:     AssertContains,
		Expected: fmt.Sprintf("node %s", assertion.Node),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertOrder checks that nodes were evaluated in the specified order.
// Nodes don't need to be consecutive.
func assertOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int, len(trace))
	for i, event := range trace {
		positions[event.Node] = i + 1 // 1-indexed for readability
	}

	for _, node := range assertion.Nodes {
		if positions[node] == 0 {
			return &AssertionError{
				Type:     AssertOrder,
				Expected: fmt.Sprintf("all nodes present: %v", assertion.Nodes),
				Actual:   fmt.Sprintf("missing node: %s", node),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Nodes); i++ {
		prev := assertion.Nodes[i-1]
		curr := assertion.Nodes[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertOrder,
				Expected: fmt.Sprintf("nodes in order: %v", assertion.Nodes),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertStatusCount checks that exactly Count nodes finished with Status.
func assertStatusCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Status == assertion.Status {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertStatusCount,
			Expected: fmt.Sprintf("%d nodes with status %s", assertion.Count, assertion.Status),
			Actual:   fmt.Sprintf("%d nodes", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertLedger reads the stored record of a node and compares the
// expected columns (subset match).
func assertLedger(ctx context.Context, st *store.Store, runID string, assertion Assertion) error {
	rec, err := st.ReadNode(ctx, runID, assertion.Node)
	if errors.Is(err, sql.ErrNoRows) {
		return &AssertionError{
			Type:     AssertLedger,
			Expected: fmt.Sprintf("record for node %s", assertion.Node),
			Actual:   "no record in ledger",
		}
	}
	if err != nil {
		return fmt.Errorf("ledger assertion: read node %s: %w", assertion.Node, err)
	}

	columns := recordColumns(rec)

	keys := make([]string, 0, len(assertion.Expect))
	for k := range assertion.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		actual, ok := columns[key]
		if !ok {
			return &AssertionError{
				Type:     AssertLedger,
				Expected: fmt.Sprintf("column %s", key),
				Actual:   "unknown column",
			}
		}
		expected := fmt.Sprint(assertion.Expect[key])
		if expected != actual {
			return &AssertionError{
				Type:     AssertLedger,
				Expected: fmt.Sprintf("%s.%s = %s", assertion.Node, key, expected),
				Actual:   fmt.Sprintf("%s.%s = %s", assertion.Node, key, actual),
			}
		}
	}

	return nil
}

// recordColumns renders the comparable columns of a node record.
func recordColumns(rec store.NodeRecord) map[string]string {
	return map[string]string{
		"component":  rec.Component,
		"seq":        fmt.Sprint(rec.Seq),
		"status":     rec.Status,
		"properties": rec.Properties,
		"error_code": rec.ErrorCode,
		"error_kind": rec.ErrorKind,
		"error":      rec.Error,
	}
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
	RunID string
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides ledger access for ledger assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertContains:
			err = assertContains(result.Trace, assertion)
		case AssertOrder:
			err = assertOrder(result.Trace, assertion)
		case AssertStatusCount:
			err = assertStatusCount(result.Trace, assertion)
		case AssertLedger:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: ledger requires a store", i)
			} else {
				err = assertLedger(actx.Ctx, actx.Store, actx.RunID, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
