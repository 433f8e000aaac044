package infer

import (
	"math"

	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/errs"
)

type number interface {
	float64 | int64
}

type reducer func(a, b float64) float64

// minOf and maxOf skip NaN operands; a column of only NaN reduces to NaN.
func minOf(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	default:
		return math.Min(a, b)
	}
}

func maxOf(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	default:
		return math.Max(a, b)
	}
}

// Min returns the per-column lower bound of a numeric value.
//
// Rank-0 and rank-1 arrays are one column and yield a single entry. Rank-2
// arrays reduce each column along the row axis with the maximum, matching the
// behavior existing validators depend on. Jagged columns fold to their
// minimum; absent or empty columns yield a nil entry.
func Min(v base.Value) ([]*float64, error) {
	return bounds(v, "min", minOf, maxOf)
}

// Max returns the per-column upper bound of a numeric value.
func Max(v base.Value) ([]*float64, error) {
	return bounds(v, "max", maxOf, maxOf)
}

// bounds dispatches on the value variant. flat reduces single-column arrays
// and jagged columns; columnar reduces the columns of rank-2 arrays.
func bounds(v base.Value, name string, flat, columnar reducer) ([]*float64, error) {
	switch val := v.(type) {
	case *base.Array[float64]:
		return denseBounds(val, flat, columnar)
	case *base.Array[int64]:
		return denseBounds(val, flat, columnar)
	case *base.JaggedOf[float64]:
		return jaggedBounds(val.Columns, flat), nil
	case *base.JaggedOf[int64]:
		return jaggedBounds(val.Columns, flat), nil
	case base.ArrayND, base.Jagged:
		return nil, errs.Type("cannot infer numeric %s on a non-numeric vector", name)
	case base.Hashmap:
		return nil, errs.Type("%s inference is not compatible with a hashmap", name)
	default:
		return nil, errs.Type("unsupported value %T", v)
	}
}

func denseBounds[T number](a *base.Array[T], flat, columnar reducer) ([]*float64, error) {
	switch a.Rank() {
	case 0, 1:
		return []*float64{reduce(a.Data, flat)}, nil
	case 2:
		cols, err := a.Columns()
		if err != nil {
			return nil, err
		}
		out := make([]*float64, len(cols))
		for i, col := range cols {
			out[i] = reduce(col, columnar)
		}
		return out, nil
	default:
		return nil, rankError(a.Rank())
	}
}

func jaggedBounds[T number](cols [][]T, fn reducer) []*float64 {
	out := make([]*float64, len(cols))
	for i, col := range cols {
		out[i] = reduce(col, fn)
	}
	return out
}

func reduce[T number](col []T, fn reducer) *float64 {
	if len(col) == 0 {
		return nil
	}
	acc := float64(col[0])
	for _, x := range col[1:] {
		acc = fn(acc, float64(x))
	}
	return &acc
}
