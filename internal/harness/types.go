package harness

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/dpvalidate/internal/store"
)

// TraceEvent is one evaluated node, as read back from the ledger.
type TraceEvent struct {
	Node      string `json:"node"`
	Component string `json:"component"`
	Seq       int64  `json:"seq"`
	Status    string `json:"status"`

	// Properties is the decoded canonical properties document, nil for
	// failed nodes.
	Properties any `json:"properties,omitempty"`

	ErrorCode string `json:"error_code,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expectations and assertions hold.
	Pass bool `json:"pass"`

	// Graph is the name of the evaluated graph.
	Graph string `json:"graph"`

	// RunID identifies the run in the ledger.
	RunID string `json:"run_id,omitempty"`

	// Trace contains every evaluated node in evaluation order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Event returns the trace event of a node.
func (r *Result) Event(node string) (TraceEvent, bool) {
	for _, ev := range r.Trace {
		if ev.Node == node {
			return ev, true
		}
	}
	return TraceEvent{}, false
}

// traceEvent converts a ledger record to a trace event.
func traceEvent(rec store.NodeRecord) (TraceEvent, error) {
	ev := TraceEvent{
		Node:      rec.Node,
		Component: rec.Component,
		Seq:       rec.Seq,
		Status:    rec.Status,
		ErrorCode: rec.ErrorCode,
		ErrorKind: rec.ErrorKind,
		Error:     rec.Error,
	}
	if rec.Properties != "" {
		if err := json.Unmarshal([]byte(rec.Properties), &ev.Properties); err != nil {
			return TraceEvent{}, fmt.Errorf("decode properties of %s: %w", rec.Node, err)
		}
	}
	return ev, nil
}

// field returns a top-level field of the properties document.
func (e TraceEvent) field(name string) (any, bool) {
	doc, ok := e.Properties.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := doc[name]
	return v, ok
}

// categories returns the categories of a categorical nature.
func (e TraceEvent) categories() (any, bool) {
	nature, ok := e.field("nature")
	if !ok {
		return nil, false
	}
	n, ok := nature.(map[string]any)
	if !ok {
		return nil, false
	}
	cat, ok := n["categorical"].(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := cat["categories"]
	return v, ok
}
