// Package infer derives properties from public values.
//
// When a public argument is known statically, its properties are computed
// here rather than declared. Every function fails fast and returns no
// partial result; callers prefix the argument name with errs.Prepend.
//
// Known quirks kept for compatibility with existing validators:
//   - the rank-2 Min reduction computes the column maximum
//   - Nullity is always true
//   - dense-array categories are not deduplicated
//   - string dense arrays carry no nature
package infer

import (
	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/errs"
)

const maxRank = 2

func rankError(rank int) error {
	return errs.Shape("arrays may have max dimensionality of %d, got %d", maxRank, rank)
}

// Shape returns the dimension sizes of a dense array. A scalar has shape [].
func Shape(a base.ArrayND) []int64 {
	dims := a.Dims()
	out := make([]int64, len(dims))
	for i, d := range dims {
		out[i] = int64(d)
	}
	return out
}

// NumColumns returns the number of columns of a value.
func NumColumns(v base.Value) (int64, error) {
	switch val := v.(type) {
	case base.ArrayND:
		shape := Shape(val)
		switch len(shape) {
		case 0, 1:
			return 1, nil
		case 2:
			return shape[1], nil
		default:
			return 0, rankError(len(shape))
		}
	case base.Jagged:
		return int64(val.NumColumns()), nil
	case base.Hashmap:
		return 0, errs.Shape("cannot infer number of columns on a hashmap")
	default:
		return 0, errs.Type("unsupported value %T", v)
	}
}

// NumRows returns the number of rows of a dense array. A scalar has one row.
func NumRows(a base.ArrayND) (int64, error) {
	shape := Shape(a)
	switch len(shape) {
	case 0:
		return 1, nil
	case 1, 2:
		return shape[0], nil
	default:
		return 0, rankError(len(shape))
	}
}

// Nullity reports whether a value may contain nulls. Always true: nullity is
// not derived from content.
func Nullity(base.Value) bool {
	return true
}

// CStability returns one stability constant of 1 per column.
func CStability(v base.Value) ([]float64, error) {
	n, err := NumColumns(v)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out, nil
}
