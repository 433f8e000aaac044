package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/dpvalidate/internal/base"
)

// Reserved node fields. Any other string field of a node is an operator
// parameter.
const (
	fieldComponent  = "component"
	fieldArgs       = "args"
	fieldValue      = "value"
	fieldProperties = "properties"
)

// CompileGraph parses a CUE value into a GraphSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value is the whole descriptor:
//
//	name: "income"
//	node: raw: { component: "source", properties: {...} }
//	node: edges: { component: "literal", value: { type: "float", jagged: [[0, 5, 10]] } }
//	node: binned: { component: "bin", side: "left", args: { data: "raw", edges: "edges", null: "nulls" } }
func CompileGraph(v cue.Value) (*base.GraphSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	g := &base.GraphSpec{Nodes: make(map[string]*base.NodeSpec)}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		g.Name = name
	}

	nodesVal := v.LookupPath(cue.ParsePath("node"))
	if !nodesVal.Exists() {
		return nil, fieldError("node", "at least one node is required", v.Pos())
	}
	iter, err := nodesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		node, err := CompileNode(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", iter.Label(), err)
		}
		node.ID = iter.Label()
		g.Nodes[node.ID] = node
	}
	if len(g.Nodes) == 0 {
		return nil, fieldError("node", "at least one node is required", nodesVal.Pos())
	}

	return g, nil
}

// CompileNode parses a single node struct. The node ID is the struct label.
func CompileNode(v cue.Value) (*base.NodeSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	node := &base.NodeSpec{
		Params: make(map[string]string),
		Args:   make(map[string]string),
	}
	componentVal := v.LookupPath(cue.ParsePath(fieldComponent))
	if !componentVal.Exists() {
		return nil, fieldError(fieldComponent, "component is required", v.Pos())
	}
	component, err := componentVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	node.Component = component

	argsVal := v.LookupPath(cue.ParsePath(fieldArgs))
	if argsVal.Exists() {
		iter, err := argsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			target, err := iter.Value().String()
			if err != nil {
				return nil, fieldError(fieldArgs+"."+iter.Label(), "argument must name an upstream node", iter.Value().Pos())
			}
			node.Args[iter.Label()] = target
		}
	}

	valueVal := v.LookupPath(cue.ParsePath(fieldValue))
	if valueVal.Exists() {
		node.Value, err = CompileValue(valueVal)
		if err != nil {
			return nil, err
		}
	}

	propsVal := v.LookupPath(cue.ParsePath(fieldProperties))
	if propsVal.Exists() {
		node.Properties, err = CompileProperties(propsVal)
		if err != nil {
			return nil, err
		}
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		switch iter.Label() {
		case fieldComponent, fieldArgs, fieldValue, fieldProperties:
			continue
		}
		param, err := iter.Value().String()
		if err != nil {
			return nil, fieldError(iter.Label(), "operator parameters must be strings", iter.Value().Pos())
		}
		node.Params[iter.Label()] = param
	}

	return node, nil
}
