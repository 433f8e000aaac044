package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/component"
)

// Status is the outcome of evaluating one node.
type Status string

const (
	StatusOK             Status = "ok"
	StatusFailed         Status = "failed"
	StatusUpstreamFailed Status = "upstream_failed"
)

// NodeResult is the recorded outcome of one node evaluation.
type NodeResult struct {
	Node      string
	Component string

	// Seq is the logical clock stamp of the evaluation.
	Seq    int64
	Status Status

	// Properties is set only when Status is StatusOK.
	Properties base.ValueProperties

	// Err is a *NodeError when Status is not StatusOK.
	Err error
}

// Report collects the results of one pass over a graph, in evaluation order.
type Report struct {
	Graph     string
	GraphHash string
	RunID     string
	Results   []NodeResult
}

// Result returns the result for a node.
func (r *Report) Result(node string) (NodeResult, bool) {
	for _, res := range r.Results {
		if res.Node == node {
			return res, true
		}
	}
	return NodeResult{}, false
}

// Failed returns every result whose status is not ok.
func (r *Report) Failed() []NodeResult {
	var out []NodeResult
	for _, res := range r.Results {
		if res.Status != StatusOK {
			out = append(out, res)
		}
	}
	return out
}

// OK reports whether every node propagated successfully.
func (r *Report) OK() bool {
	return len(r.Failed()) == 0
}

// Recorder persists the results of a run.
// Implemented by store.Store.
type Recorder interface {
	BeginRun(ctx context.Context, graph, graphHash string) (string, error)
	RecordNode(ctx context.Context, runID string, result NodeResult) error
}

// Engine evaluates graphs node by node.
//
// Thread-safety model:
//   - Validate(): one call at a time per Engine; the clock is shared across
//     calls so seq values keep increasing between runs
type Engine struct {
	clock    *Clock
	logger   *slog.Logger
	recorder Recorder
	privacy  *component.PrivacyDefinition
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithLogger sets the logger. Default: discard.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRecorder persists every node result.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithClock sets a pre-configured clock.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithPrivacy sets the privacy definition passed to every component.
func WithPrivacy(p *component.PrivacyDefinition) Option {
	return func(e *Engine) {
		e.privacy = p
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:   NewClock(0),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		privacy: &component.PrivacyDefinition{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Clock returns the engine's logical clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// Validate propagates properties through every node of g.
//
// Node failures do not stop the pass; they are reported per node. The
// returned error is reserved for graphs that cannot be evaluated at all
// (unknown argument targets, cycles), cancellation and recorder failures.
// On cancellation the partial report is returned with the error.
func (e *Engine) Validate(ctx context.Context, g *base.GraphSpec) (*Report, error) {
	order, err := Order(g)
	if err != nil {
		return nil, err
	}
	hash, err := base.GraphHash(g)
	if err != nil {
		return nil, fmt.Errorf("hash graph %s: %w", g.Name, err)
	}

	report := &Report{Graph: g.Name, GraphHash: hash}
	if e.recorder != nil {
		report.RunID, err = e.recorder.BeginRun(ctx, g.Name, hash)
		if err != nil {
			return nil, fmt.Errorf("begin run: %w", err)
		}
	}

	e.logger.Info("validating graph", "graph", g.Name, "nodes", len(order), "run", report.RunID)

	outputs := make(map[string]NodeResult, len(order))
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := e.evaluate(g, id, outputs)
		outputs[id] = res
		report.Results = append(report.Results, res)

		if res.Status == StatusFailed {
			e.logger.Warn("node failed", "node", id, "component", res.Component, "error", res.Err)
		}
		e.logger.Debug("node evaluated", "node", id, "component", res.Component, "status", res.Status, "seq", res.Seq)

		if e.recorder != nil {
			if err := e.recorder.RecordNode(ctx, report.RunID, res); err != nil {
				return report, fmt.Errorf("record node %s: %w", id, err)
			}
		}
	}

	return report, nil
}

// evaluate runs the component of one node. Every upstream node has already
// been evaluated.
func (e *Engine) evaluate(g *base.GraphSpec, id string, outputs map[string]NodeResult) NodeResult {
	node := g.Nodes[id]
	res := NodeResult{Node: id, Component: node.Component, Seq: e.clock.Next()}

	var failed []string
	for _, up := range node.Upstream() {
		if outputs[up].Status != StatusOK {
			failed = append(failed, up)
		}
	}
	if len(failed) > 0 {
		res.Status = StatusUpstreamFailed
		res.Err = NewUpstreamError(id, failed)
		return res
	}

	comp, err := component.New(node)
	if err != nil {
		res.Status = StatusFailed
		res.Err = NewPropagationError(id, err)
		return res
	}

	public := make(map[string]base.Value)
	properties := make(component.NodeProperties, len(node.Args))
	for _, arg := range node.SortedArgs() {
		up := g.Nodes[node.Args[arg]]
		properties[arg] = outputs[node.Args[arg]].Properties
		if up.Component == component.NameLiteral {
			public[arg] = up.Value
		}
	}

	props, err := comp.PropagateProperty(e.privacy, public, properties)
	if err != nil {
		res.Status = StatusFailed
		res.Err = NewPropagationError(id, err)
		return res
	}
	res.Status = StatusOK
	res.Properties = props
	return res
}
