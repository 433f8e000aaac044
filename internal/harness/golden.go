package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/dpvalidate/internal/base"
)

// TraceSnapshot captures the trace of a scenario execution.
// The run ID is excluded so snapshots are stable across runs.
type TraceSnapshot struct {
	Scenario string
	Graph    string
	Trace    []TraceEvent
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical
// JSON serialization.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	nodes := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		m := map[string]any{
			"node":      event.Node,
			"component": event.Component,
			"seq":       event.Seq,
			"status":    event.Status,
		}
		if event.Properties != nil {
			m["properties"] = event.Properties
		}
		if event.ErrorCode != "" {
			m["error_code"] = event.ErrorCode
		}
		if event.ErrorKind != "" {
			m["error_kind"] = event.ErrorKind
		}
		if event.Error != "" {
			m["error"] = event.Error
		}
		nodes[i] = m
	}

	return map[string]any{
		"scenario": s.Scenario,
		"graph":    s.Graph,
		"nodes":    nodes,
	}
}

// MarshalSnapshot returns the canonical JSON snapshot of a result.
func MarshalSnapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		Scenario: scenarioName,
		Graph:    result.Graph,
		Trace:    result.Trace,
	}
	return base.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
