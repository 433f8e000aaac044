package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/dpvalidate/internal/base"
)

// CycleError describes a cycle in a computation graph.
type CycleError struct {
	Path    []string `json:"path"`    // Cycle path: ["a", "b", "a"]
	Message string   `json:"message"` // Human-readable description
}

// AnalyzeCycles finds every cycle in a graph.
//
// Propagation needs a DAG, so any strongly connected component with more
// than one node, or a node that feeds itself, is reported. Results are
// deterministic: components are ordered by their smallest node ID and paths
// start at that node.
//
// The algorithm:
//  1. Build the upstream → downstream dependency graph from node arguments
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a cycle
//
// A DAG returns an empty list.
func AnalyzeCycles(g *base.GraphSpec) []CycleError {
	graph := buildDependencyGraph(g)
	sccs := tarjanSCC(graph)

	var cycles []CycleError
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			cycles = append(cycles, cycleFromSCC(scc, graph))
		}
	}
	slices.SortFunc(cycles, func(a, b CycleError) int {
		return strings.Compare(a.Path[0], b.Path[0])
	})
	return cycles
}

// dependencyGraph maps node ID → downstream node IDs, sorted.
type dependencyGraph map[string][]string

// buildDependencyGraph adds an edge upstream → node for every argument.
// Arguments naming unknown nodes are skipped.
func buildDependencyGraph(g *base.GraphSpec) dependencyGraph {
	graph := make(dependencyGraph, len(g.Nodes))
	for _, id := range g.SortedIDs() {
		if graph[id] == nil {
			graph[id] = []string{}
		}
		for _, up := range g.Nodes[id].Upstream() {
			if _, ok := g.Nodes[up]; ok {
				graph[up] = append(graph[up], id)
			}
		}
	}
	for id := range graph {
		slices.Sort(graph[id])
		graph[id] = slices.Compact(graph[id])
	}
	return graph
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph dependencyGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjan holds the traversal state of Tarjan's SCC algorithm.
type tarjan struct {
	graph   dependencyGraph
	next    int
	index   map[string]int
	low     map[string]int
	stack   []string
	onStack map[string]bool
	sccs    [][]string
}

// tarjanSCC returns the strongly connected components of graph, each sorted.
// Roots are visited in sorted order so the result is deterministic.
func tarjanSCC(graph dependencyGraph) [][]string {
	t := &tarjan{
		graph:   graph,
		index:   make(map[string]int, len(graph)),
		low:     make(map[string]int, len(graph)),
		onStack: make(map[string]bool, len(graph)),
	}
	roots := make([]string, 0, len(graph))
	for node := range graph {
		roots = append(roots, node)
	}
	slices.Sort(roots)
	for _, node := range roots {
		if _, seen := t.index[node]; !seen {
			t.visit(node)
		}
	}
	return t.sccs
}

func (t *tarjan) visit(v string) {
	t.index[v], t.low[v] = t.next, t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.graph[v] {
		if _, seen := t.index[w]; !seen {
			t.visit(w)
			t.low[v] = min(t.low[v], t.low[w])
		} else if t.onStack[w] {
			t.low[v] = min(t.low[v], t.index[w])
		}
	}

	if t.low[v] != t.index[v] {
		return
	}
	// v roots a component: everything above it on the stack belongs to it
	i := slices.Index(t.stack, v)
	scc := slices.Clone(t.stack[i:])
	t.stack = t.stack[:i]
	for _, w := range scc {
		t.onStack[w] = false
	}
	slices.Sort(scc)
	t.sccs = append(t.sccs, scc)
}

// cycleFromSCC converts an SCC to a CycleError.
// For self-loops, the path is [id, id].
func cycleFromSCC(scc []string, graph dependencyGraph) CycleError {
	if len(scc) == 1 {
		id := scc[0]
		return CycleError{
			Path:    []string{id, id},
			Message: fmt.Sprintf("node %s depends on itself", id),
		}
	}

	path := cyclePath(scc, graph)
	return CycleError{
		Path:    path,
		Message: fmt.Sprintf("cycle detected: %s", strings.Join(path, " -> ")),
	}
}

// cyclePath walks from the smallest member of an SCC along the first
// unvisited member edge until it can return to the start.
func cyclePath(scc []string, graph dependencyGraph) []string {
	start := scc[0]
	path := []string{start}
	visited := map[string]bool{start: true}

	for current := start; ; {
		next := ""
		for _, w := range graph[current] {
			if w == start || (slices.Contains(scc, w) && !visited[w]) {
				next = w
				break
			}
		}
		if next == "" {
			return path
		}
		path = append(path, next)
		if next == start {
			return path
		}
		visited[next] = true
		current = next
	}
}
