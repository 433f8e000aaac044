// Package harness runs conformance scenarios against the validation engine.
//
// A scenario names a graph descriptor, the per-node outcomes it expects and
// assertions over the evaluation trace. Each scenario runs the real engine
// with a fresh in-memory ledger, and the trace is read back from the ledger
// so the recording path is exercised too.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: income_left
//	description: "Left-edge binning of one float column"
//	graph: ../graphs/income.cue
//	expect:
//	  - node: binned
//	    status: ok
//	    data_type: float
//	    categories: [[0, 5, -1]]
//	assertions:
//	  - type: order
//	    nodes: [raw, binned]
//	  - type: status_count
//	    status: ok
//	    count: 4
//
// The graph path is resolved relative to the scenario file. A scenario
// whose graph cannot be evaluated at all sets expect_error instead of
// expect.
//
// # Assertion Types
//
//   - contains: a node appears in the trace, optionally with a status
//   - order: nodes were evaluated in the given order
//   - status_count: exactly count nodes finished with status
//   - ledger: the stored record of a node has the expected columns
//
// # Deterministic Testing
//
// Evaluation order and sequence numbers are fully determined by the graph,
// so traces can be compared against golden snapshots with RunWithGolden.
package harness
