package base

import "slices"

// Nature is the sealed interface describing the domain of each column.
// Exactly one of *NatureContinuous or *NatureCategorical.
type Nature interface {
	isNature()
}

// NatureContinuous holds per-column bounds. A nil entry means the bound is
// unknown, not unbounded.
type NatureContinuous struct {
	Min []*float64
	Max []*float64
}

// NatureCategorical holds the per-column category sets. A nil column means
// the categories of that column are unknown.
type NatureCategorical struct {
	Categories Jagged
}

func (*NatureContinuous) isNature()  {}
func (*NatureCategorical) isNature() {}

func cloneNature(n Nature) Nature {
	switch n := n.(type) {
	case *NatureContinuous:
		return &NatureContinuous{Min: slices.Clone(n.Min), Max: slices.Clone(n.Max)}
	case *NatureCategorical:
		return &NatureCategorical{Categories: n.Categories}
	default:
		return nil
	}
}
