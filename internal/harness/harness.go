package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/compiler"
	"github.com/roach88/dpvalidate/internal/component"
	"github.com/roach88/dpvalidate/internal/engine"
	"github.com/roach88/dpvalidate/internal/store"
)

// Harness is the scenario execution engine.
type Harness struct {
	logger  *slog.Logger
	privacy *component.PrivacyDefinition
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger passed to the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// WithPrivacy sets the privacy definition passed to every component.
func WithPrivacy(p *component.PrivacyDefinition) Option {
	return func(h *Harness) {
		h.privacy = p
	}
}

// New creates a Harness. Logs are discarded unless WithLogger is given.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		privacy: &component.PrivacyDefinition{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(context.Background(), scenario)
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory ledger for isolation.
//
// Execution flow:
// 1. Load and compile the graph descriptor
// 2. Validate the graph with the engine, recording into the ledger
// 3. Read the trace back from the ledger
// 4. Check node expectations and assertions
//
// The returned error covers setup failures only; scenario failures are
// reported through Result.Pass and Result.Errors.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	g, err := compiler.LoadGraph(scenario.Graph)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	eng := engine.New(
		engine.WithRecorder(st),
		engine.WithLogger(h.logger),
		engine.WithPrivacy(h.privacy),
	)

	result := NewResult()
	result.Graph = g.Name

	report, err := eng.Validate(ctx, g)
	if scenario.ExpectError != "" {
		switch {
		case err == nil:
			result.AddError(fmt.Sprintf("expected graph error containing %q, graph validated", scenario.ExpectError))
		case !strings.Contains(err.Error(), scenario.ExpectError):
			result.AddError(fmt.Sprintf("expected graph error containing %q, got %q", scenario.ExpectError, err.Error()))
		}
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to validate graph: %w", err)
	}
	result.RunID = report.RunID

	_, records, err := st.ReadRun(ctx, report.RunID)
	if err != nil {
		return nil, fmt.Errorf("failed to read run %s: %w", report.RunID, err)
	}
	for _, rec := range records {
		ev, err := traceEvent(rec)
		if err != nil {
			return nil, err
		}
		result.Trace = append(result.Trace, ev)
	}

	h.logger.Info("scenario evaluated",
		"scenario", scenario.Name,
		"graph", g.Name,
		"run", report.RunID,
		"nodes", len(result.Trace),
	)

	for _, msg := range checkExpectations(result, scenario.Expect) {
		result.AddError(msg)
	}

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
		RunID: report.RunID,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// checkExpectations compares each node expectation with the trace.
func checkExpectations(result *Result, expect []NodeExpectation) []string {
	var errors []string
	for i, e := range expect {
		ev, ok := result.Event(e.Node)
		if !ok {
			errors = append(errors, fmt.Sprintf("expect[%d]: node %s not in trace", i, e.Node))
			continue
		}
		if ev.Status != e.Status {
			errors = append(errors, fmt.Sprintf("expect[%d]: node %s status: expected %s, got %s", i, e.Node, e.Status, ev.Status))
		}
		if e.ErrorKind != "" && ev.ErrorKind != e.ErrorKind {
			errors = append(errors, fmt.Sprintf("expect[%d]: node %s error kind: expected %s, got %q", i, e.Node, e.ErrorKind, ev.ErrorKind))
		}
		if e.ErrorContains != "" && !strings.Contains(ev.Error, e.ErrorContains) {
			errors = append(errors, fmt.Sprintf("expect[%d]: node %s error: expected to contain %q, got %q", i, e.Node, e.ErrorContains, ev.Error))
		}
		if e.DataType != "" {
			if got, _ := ev.field("data_type"); got != e.DataType {
				errors = append(errors, fmt.Sprintf("expect[%d]: node %s data_type: expected %s, got %v", i, e.Node, e.DataType, got))
			}
		}
		if e.Categories != nil {
			if msg := compareCategories(ev, e.Categories); msg != "" {
				errors = append(errors, fmt.Sprintf("expect[%d]: node %s categories: %s", i, e.Node, msg))
			}
		}
	}
	return errors
}

// compareCategories compares categories in canonical form, so YAML
// integers match the decoded JSON numbers of the ledger.
func compareCategories(ev TraceEvent, expected any) string {
	got, ok := ev.categories()
	if !ok {
		return "nature is not categorical"
	}
	want, err := base.MarshalCanonical(expected)
	if err != nil {
		return fmt.Sprintf("invalid expectation: %v", err)
	}
	have, err := base.MarshalCanonical(got)
	if err != nil {
		return fmt.Sprintf("invalid trace: %v", err)
	}
	if string(want) != string(have) {
		return fmt.Sprintf("expected %s, got %s", want, have)
	}
	return ""
}
