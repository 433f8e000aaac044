package base

import (
	"slices"
)

// GraphSpec is a compiled computation graph.
type GraphSpec struct {
	Name  string
	Nodes map[string]*NodeSpec
}

// NodeSpec describes one operator instance in a graph.
type NodeSpec struct {
	ID        string
	Component string

	// Params holds scalar operator parameters such as the bin side.
	Params map[string]string

	// Args maps argument names to the upstream node that supplies them.
	Args map[string]string

	// Value is set for literal nodes.
	Value Value

	// Properties is set for source nodes.
	Properties ValueProperties
}

// SortedIDs returns node IDs in ascending order.
func (g *GraphSpec) SortedIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SortedArgs returns argument names in ascending order.
func (n *NodeSpec) SortedArgs() []string {
	names := make([]string, 0, len(n.Args))
	for name := range n.Args {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Upstream returns the distinct upstream node IDs in ascending order.
func (n *NodeSpec) Upstream() []string {
	ids := make([]string, 0, len(n.Args))
	for _, id := range n.Args {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}
