package component

import (
	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/errs"
	"github.com/roach88/dpvalidate/internal/standardize"
)

// Bin maps each value of every column to the edge interval it falls in.
//
// Side chooses the representative of each interval: "left" keeps the lower
// edge, "right" the upper edge and "center" the midpoint. Values outside all
// intervals map to the per-column null sentinel, which is appended to the
// category set.
type Bin struct {
	Side string
}

// PropagateProperty implements Component.
//
// The output keeps every data property except Nature, which becomes the
// categorical set of bin representatives, and DataType, which becomes float.
// The categories keep the element type of the edges.
func (b *Bin) PropagateProperty(_ *PrivacyDefinition, public map[string]base.Value, properties NodeProperties) (base.ValueProperties, error) {
	data, err := dataProperties(properties)
	if err != nil {
		return nil, err
	}
	numColumns, err := data.NumColumnsOrErr()
	if err != nil {
		return nil, errs.Prepend("data", err)
	}

	nullValue, ok := public["null"]
	if !ok || nullValue == nil {
		return nil, errs.MissingPublic("null")
	}
	null, err := base.AsArrayND(nullValue)
	if err != nil {
		return nil, errs.Prepend("null", err)
	}
	edgesValue, ok := public["edges"]
	if !ok || edgesValue == nil {
		return nil, errs.MissingPublic("edges")
	}
	edges, err := base.AsJagged(edgesValue)
	if err != nil {
		return nil, errs.Prepend("edges", err)
	}

	var categories base.Jagged
	switch e := edges.(type) {
	case *base.JaggedOf[float64]:
		n, ok := null.(*base.Array[float64])
		if !ok {
			return nil, errs.Prepend("edges", errs.Type("must be numeric"))
		}
		categories, err = binCategories(b.Side, e, n, numColumns, midpointFloat)
	case *base.JaggedOf[int64]:
		n, ok := null.(*base.Array[int64])
		if !ok {
			return nil, errs.Prepend("edges", errs.Type("must be numeric"))
		}
		categories, err = binCategories(b.Side, e, n, numColumns, midpointInt)
	default:
		return nil, errs.Prepend("edges", errs.Type("must be numeric"))
	}
	if err != nil {
		return nil, err
	}

	out := data.Clone()
	out.Nature = &base.NatureCategorical{Categories: categories}
	out.DataType = base.F64
	return out, nil
}

// GetNames implements Component.
func (b *Bin) GetNames(NodeProperties) ([]string, error) {
	return nil, errs.NotImplemented("get_names for bin")
}

type edge interface {
	float64 | int64
}

func midpointFloat(a, b float64) float64 { return (a + b) / 2 }

// midpointInt truncates toward zero.
func midpointInt(a, b int64) int64 { return (a + b) / 2 }

func binCategories[T edge](side string, edges *base.JaggedOf[T], null *base.Array[T], numColumns int64, midpoint func(a, b T) T) (*base.JaggedOf[T], error) {
	nulls, err := standardize.NullTargetArgument(null, numColumns)
	if err != nil {
		return nil, errs.Prepend("null", err)
	}
	cols, err := standardize.CategoricalArgument(edges, numColumns)
	if err != nil {
		return nil, errs.Prepend("edges", err)
	}
	reps, err := representatives(side, cols, midpoint)
	if err != nil {
		return nil, err
	}
	for i := range reps {
		reps[i] = append(reps[i], nulls[i])
	}
	return &base.JaggedOf[T]{Columns: reps}, nil
}

// representatives applies the side transform to every edge column.
// A column with fewer than two edges has no intervals under any side.
func representatives[T edge](side string, cols [][]T, midpoint func(a, b T) T) ([][]T, error) {
	switch side {
	case SideLeft, SideCenter, SideRight:
	default:
		return nil, errs.Prepend("side", errs.Invalid("must be left, center or right"))
	}

	out := make([][]T, len(cols))
	for i, col := range cols {
		reps := make([]T, 0, len(col))
		switch {
		case len(col) < 2:
		case side == SideLeft:
			reps = append(reps, col[:len(col)-1]...)
		case side == SideRight:
			reps = append(reps, col[1:]...)
		default:
			for j := 0; j+1 < len(col); j++ {
				reps = append(reps, midpoint(col[j], col[j+1]))
			}
		}
		out[i] = reps
	}
	return out, nil
}
