// Package component implements per-operator property propagation.
//
// Every operator follows the same pattern: validate its arguments, derive
// the new facts, then clone the data properties and patch only the fields it
// changes. Components hold no mutable state and are safe for concurrent use.
package component

import (
	"fmt"
	"slices"

	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/errs"
)

// NodeProperties maps argument names to the properties of upstream nodes.
type NodeProperties map[string]base.ValueProperties

// PrivacyDefinition is the read-only privacy context passed to every
// propagation call. Operators that do not account for privacy ignore it.
type PrivacyDefinition struct {
	Neighboring           string
	GroupSize             int64
	StrictParameterChecks bool
	ProtectFloatingPoint  bool
}

// Component propagates properties through one operator.
type Component interface {
	// PropagateProperty derives the output properties of the operator from
	// its public arguments and the properties of its data arguments.
	PropagateProperty(privacy *PrivacyDefinition, public map[string]base.Value, properties NodeProperties) (base.ValueProperties, error)

	// GetNames returns the column names of the operator output.
	GetNames(properties NodeProperties) ([]string, error)
}

// Component names accepted in graph descriptors.
const (
	NameBin     = "bin"
	NameLiteral = "literal"
	NameSource  = "source"
)

// Bin sides.
const (
	SideLeft   = "left"
	SideCenter = "center"
	SideRight  = "right"
)

// Names returns every known component name in ascending order.
func Names() []string {
	names := []string{NameBin, NameLiteral, NameSource}
	slices.Sort(names)
	return names
}

// Known reports whether name is a registered component.
func Known(name string) bool {
	return slices.Contains(Names(), name)
}

// New builds the component described by a node.
func New(node *base.NodeSpec) (Component, error) {
	switch node.Component {
	case NameBin:
		return &Bin{Side: node.Params["side"]}, nil
	case NameLiteral:
		if node.Value == nil {
			return nil, fmt.Errorf("literal node %q has no value", node.ID)
		}
		return &Literal{Value: node.Value}, nil
	case NameSource:
		if node.Properties == nil {
			return nil, fmt.Errorf("source node %q has no properties", node.ID)
		}
		return &Source{Properties: node.Properties}, nil
	default:
		return nil, fmt.Errorf("unknown component %q", node.Component)
	}
}

// dataProperties fetches the "data" argument as array properties.
func dataProperties(properties NodeProperties) (*base.ArrayProperties, error) {
	p, ok := properties["data"]
	if !ok || p == nil {
		return nil, errs.Missing("data")
	}
	arr, err := base.AsArray(p)
	if err != nil {
		return nil, errs.Prepend("data", err)
	}
	return arr, nil
}
