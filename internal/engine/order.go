package engine

import (
	"slices"

	"github.com/roach88/dpvalidate/internal/base"
)

// Order returns the node IDs of g in topological order.
//
// Kahn's algorithm with a sorted ready set: among nodes whose upstream nodes
// are all ordered, the smallest ID goes first. Arguments naming unknown
// nodes return an UNKNOWN_NODE error; nodes that can never become ready are
// reported as a CYCLE_DETECTED error.
func Order(g *base.GraphSpec) ([]string, error) {
	ids := g.SortedIDs()
	indegree := make(map[string]int, len(ids))
	downstream := make(map[string][]string, len(ids))

	for _, id := range ids {
		node := g.Nodes[id]
		for _, arg := range node.SortedArgs() {
			if _, ok := g.Nodes[node.Args[arg]]; !ok {
				return nil, NewUnknownNodeError(id, arg, node.Args[arg])
			}
		}
		for _, up := range node.Upstream() {
			indegree[id]++
			downstream[up] = append(downstream[up], id)
		}
	}

	var ready []string
	for _, id := range ids {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(ids))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for _, next := range downstream[id] {
			indegree[next]--
			if indegree[next] == 0 {
				pos, _ := slices.BinarySearch(ready, next)
				ready = slices.Insert(ready, pos, next)
			}
		}
	}

	if len(order) != len(ids) {
		var remaining []string
		for _, id := range ids {
			if indegree[id] > 0 {
				remaining = append(remaining, id)
			}
		}
		return nil, NewCycleError(remaining)
	}
	return order, nil
}
