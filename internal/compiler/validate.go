package compiler

import (
	"fmt"
	"slices"

	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/component"
)

// Validation error codes (E100-E199)
const (
	ErrUnknownComponent     = "E101" // component is not registered
	ErrMissingArgTarget     = "E102" // argument names a node that does not exist
	ErrInvalidSide          = "E103" // bin side is not left, center or right
	ErrLiteralWithoutValue  = "E104" // literal node has no value
	ErrSourceWithoutProps   = "E105" // source node has no declared properties
	ErrCycle                = "E106" // graph contains a cycle
	ErrPublicArgNotLiteral  = "E107" // bin edges/null must come from a literal node
	ErrUnexpectedDefinition = "E108" // value or properties on a node that derives them
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled graph against structural rules.
// Returns all errors found (does not fail-fast), ordered by node ID.
//
// Validate is a static lint. Argument types, shapes and column counts are
// checked during propagation, where the failing node is reported with its
// full error context.
func Validate(g *base.GraphSpec) []ValidationError {
	var errs []ValidationError

	for _, id := range g.SortedIDs() {
		node := g.Nodes[id]
		field := "node." + id

		if !component.Known(node.Component) {
			errs = append(errs, ValidationError{
				Field:   field + ".component",
				Message: fmt.Sprintf("unknown component %q, must be one of %v", node.Component, component.Names()),
				Code:    ErrUnknownComponent,
			})
		}

		for _, arg := range node.SortedArgs() {
			if _, ok := g.Nodes[node.Args[arg]]; !ok {
				errs = append(errs, ValidationError{
					Field:   field + ".args." + arg,
					Message: fmt.Sprintf("argument %q names unknown node %q", arg, node.Args[arg]),
					Code:    ErrMissingArgTarget,
				})
			}
		}

		switch node.Component {
		case component.NameBin:
			errs = append(errs, validateBin(g, node, field)...)
		case component.NameLiteral:
			if node.Value == nil {
				errs = append(errs, ValidationError{
					Field:   field + ".value",
					Message: "literal nodes require a value",
					Code:    ErrLiteralWithoutValue,
				})
			}
		case component.NameSource:
			if node.Properties == nil {
				errs = append(errs, ValidationError{
					Field:   field + ".properties",
					Message: "source nodes require declared properties",
					Code:    ErrSourceWithoutProps,
				})
			}
		}
	}

	for _, c := range AnalyzeCycles(g) {
		errs = append(errs, ValidationError{
			Field:   "node." + c.Path[0],
			Message: c.Message,
			Code:    ErrCycle,
		})
	}

	return errs
}

func validateBin(g *base.GraphSpec, node *base.NodeSpec, field string) []ValidationError {
	var errs []ValidationError

	side := node.Params["side"]
	if !slices.Contains([]string{component.SideLeft, component.SideCenter, component.SideRight}, side) {
		errs = append(errs, ValidationError{
			Field:   field + ".side",
			Message: fmt.Sprintf("side %q must be left, center or right", side),
			Code:    ErrInvalidSide,
		})
	}

	for _, arg := range []string{"edges", "null"} {
		target, ok := g.Nodes[node.Args[arg]]
		if ok && target.Component != component.NameLiteral {
			errs = append(errs, ValidationError{
				Field:   field + ".args." + arg,
				Message: fmt.Sprintf("argument %q must be public, node %q is a %s", arg, target.ID, target.Component),
				Code:    ErrPublicArgNotLiteral,
			})
		}
	}

	if node.Value != nil || node.Properties != nil {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: "bin derives its properties and must not declare a value or properties",
			Code:    ErrUnexpectedDefinition,
		})
	}

	return errs
}
