package engine

import (
	"errors"
	"fmt"
	"strings"
)

// NodeError represents an error detected while driving a graph.
//
// Node errors include:
//   - Cycle detection: the graph cannot be ordered
//   - Unknown node: an argument names a node that does not exist
//   - Upstream failure: a node was skipped because an ancestor failed
//   - Propagation failure: the node's component returned an error
type NodeError struct {
	// Code identifies the error category.
	Code NodeErrorCode

	// Node identifies the affected node, if any.
	Node string

	// Message is a human-readable description.
	Message string

	// Upstream lists the failed upstream nodes (for upstream failures) or
	// the nodes left on a cycle (for cycle errors).
	Upstream []string

	// Err is the underlying component error (for propagation failures).
	Err error
}

// NodeErrorCode categorizes node errors.
type NodeErrorCode string

const (
	// ErrCodeCycleDetected indicates the graph has no topological order.
	ErrCodeCycleDetected NodeErrorCode = "CYCLE_DETECTED"

	// ErrCodeUnknownNode indicates an argument names a missing node.
	ErrCodeUnknownNode NodeErrorCode = "UNKNOWN_NODE"

	// ErrCodeUpstreamFailed indicates an ancestor of the node failed.
	ErrCodeUpstreamFailed NodeErrorCode = "UPSTREAM_FAILED"

	// ErrCodePropagationFailed indicates the component itself failed.
	ErrCodePropagationFailed NodeErrorCode = "PROPAGATION_FAILED"
)

// Error implements the error interface.
func (e *NodeError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Node != "" {
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, msg, e.Node)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying component error.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// IsUpstreamFailure returns true if the error marks a skipped node.
// Uses errors.As to handle wrapped errors.
func IsUpstreamFailure(err error) bool {
	var ne *NodeError
	if errors.As(err, &ne) {
		return ne.Code == ErrCodeUpstreamFailed
	}
	return false
}

// IsPropagationFailure returns true if a component returned the error.
// Uses errors.As to handle wrapped errors.
func IsPropagationFailure(err error) bool {
	var ne *NodeError
	if errors.As(err, &ne) {
		return ne.Code == ErrCodePropagationFailed
	}
	return false
}

// IsCycleError returns true if the error is a cycle detection error.
func IsCycleError(err error) bool {
	var ne *NodeError
	if errors.As(err, &ne) {
		return ne.Code == ErrCodeCycleDetected
	}
	return false
}

// NewCycleError creates a NodeError for a graph that cannot be ordered.
func NewCycleError(remaining []string) *NodeError {
	return &NodeError{
		Code:     ErrCodeCycleDetected,
		Message:  fmt.Sprintf("graph contains a cycle, cannot order %s", strings.Join(remaining, ", ")),
		Upstream: remaining,
	}
}

// NewUnknownNodeError creates a NodeError for a dangling argument.
func NewUnknownNodeError(node, arg, target string) *NodeError {
	return &NodeError{
		Code:    ErrCodeUnknownNode,
		Node:    node,
		Message: fmt.Sprintf("argument %q names unknown node %q", arg, target),
	}
}

// NewUpstreamError creates a NodeError for a node skipped because of failed
// ancestors.
func NewUpstreamError(node string, failed []string) *NodeError {
	return &NodeError{
		Code:     ErrCodeUpstreamFailed,
		Node:     node,
		Message:  fmt.Sprintf("upstream %s failed", strings.Join(failed, ", ")),
		Upstream: failed,
	}
}

// NewPropagationError wraps a component error.
func NewPropagationError(node string, err error) *NodeError {
	return &NodeError{
		Code: ErrCodePropagationFailed,
		Node: node,
		Err:  err,
	}
}
