package component

import (
	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/errs"
	"github.com/roach88/dpvalidate/internal/infer"
)

// Literal is a public constant. Its properties are inferred from its value,
// and downstream operators receive the value itself as a public argument.
type Literal struct {
	Value base.Value
}

// PropagateProperty implements Component.
func (l *Literal) PropagateProperty(_ *PrivacyDefinition, _ map[string]base.Value, _ NodeProperties) (base.ValueProperties, error) {
	p, err := infer.Properties(l.Value)
	if err != nil {
		return nil, errs.Prepend("value", err)
	}
	return p, nil
}

// GetNames implements Component.
func (l *Literal) GetNames(NodeProperties) ([]string, error) {
	return nil, errs.NotImplemented("get_names for literal")
}

// Source is private data described only by declared properties.
type Source struct {
	Properties base.ValueProperties
}

// PropagateProperty implements Component. The declared properties are
// returned as a copy so downstream patching never reaches the declaration.
func (s *Source) PropagateProperty(_ *PrivacyDefinition, _ map[string]base.Value, _ NodeProperties) (base.ValueProperties, error) {
	switch p := s.Properties.(type) {
	case *base.ArrayProperties:
		return p.Clone(), nil
	case *base.JaggedProperties:
		return &base.JaggedProperties{}, nil
	case *base.HashmapProperties:
		out := *p
		return &out, nil
	default:
		return nil, errs.Type("source properties must be declared")
	}
}

// GetNames implements Component.
func (s *Source) GetNames(NodeProperties) ([]string, error) {
	return nil, errs.NotImplemented("get_names for source")
}
