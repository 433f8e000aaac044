// Package engine drives property propagation over a compiled graph.
//
// The engine is a deterministic, single-pass driver: it orders the nodes of a
// GraphSpec topologically, evaluates each node's component once, and records
// one NodeResult per node.
//
// Evaluation Flow:
//  1. Order nodes with Kahn's algorithm; ties are broken by node ID
//  2. For each node, collect public arguments (values of upstream literal
//     nodes) and the propagated properties of every upstream node
//  3. Call the component and stamp the result with the logical clock
//  4. Hand the result to the Recorder, if one is configured
//
// A node whose component fails is marked failed. Its descendants are marked
// upstream_failed without being called, and evaluation continues for every
// independent subgraph.
//
// DETERMINISM:
//
// Logical Clock:
// Every evaluation is stamped with a monotonic seq from Clock.Next().
// Wall-clock time is never used for ordering.
//
// Scheduling:
// Nodes are evaluated in a single goroutine in topological order with
// ascending node IDs among ready nodes. The same graph always yields the same
// sequence of results.
package engine
