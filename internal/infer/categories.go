package infer

import (
	"cmp"
	"math"
	"slices"

	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/errs"
)

// Categories returns the per-column category sets of a value.
//
// Dense arrays yield every column's raw values in their original order,
// duplicates included. Jagged columns are sorted and deduplicated; an absent
// column stays absent. Hashmaps are not supported.
func Categories(v base.Value) (base.Jagged, error) {
	switch val := v.(type) {
	case *base.Array[bool]:
		return denseCategories(val)
	case *base.Array[float64]:
		return denseCategories(val)
	case *base.Array[int64]:
		return denseCategories(val)
	case *base.Array[string]:
		return denseCategories(val)
	case *base.JaggedOf[bool]:
		return sortedCategories(val.Columns, compareBool), nil
	case *base.JaggedOf[float64]:
		return sortedCategories(val.Columns, compareFloatPartial), nil
	case *base.JaggedOf[int64]:
		return sortedCategories(val.Columns, cmp.Compare[int64]), nil
	case *base.JaggedOf[string]:
		return sortedCategories(val.Columns, cmp.Compare[string]), nil
	case base.Hashmap:
		return nil, errs.NotImplemented("category inference for hashmaps")
	default:
		return nil, errs.Type("unsupported value %T", v)
	}
}

func denseCategories[T base.Element](a *base.Array[T]) (*base.JaggedOf[T], error) {
	cols, err := a.Columns()
	if err != nil {
		return nil, err
	}
	return &base.JaggedOf[T]{Columns: cols}, nil
}

func sortedCategories[T base.Element](cols [][]T, compare func(a, b T) int) *base.JaggedOf[T] {
	out := make([][]T, len(cols))
	for i, col := range cols {
		if col == nil {
			continue
		}
		sorted := slices.Clone(col)
		slices.SortStableFunc(sorted, compare)
		out[i] = slices.Compact(sorted)
	}
	return &base.JaggedOf[T]{Columns: out}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// compareFloatPartial orders floats numerically and treats NaN as equal to
// everything, so NaN entries keep their relative position.
func compareFloatPartial(a, b float64) int {
	if math.IsNaN(a) || math.IsNaN(b) {
		return 0
	}
	return cmp.Compare(a, b)
}

// Nature returns the nature of a value.
//
// Numeric values are continuous with Min and Max bounds. Bool values and
// string jagged values are categorical. String dense arrays and hashmaps
// have no nature and yield nil without error.
func Nature(v base.Value) (base.Nature, error) {
	switch v.(type) {
	case *base.Array[float64], *base.Array[int64], *base.JaggedOf[float64], *base.JaggedOf[int64]:
		lo, err := Min(v)
		if err != nil {
			return nil, err
		}
		hi, err := Max(v)
		if err != nil {
			return nil, err
		}
		return &base.NatureContinuous{Min: lo, Max: hi}, nil
	case *base.Array[bool], *base.JaggedOf[bool], *base.JaggedOf[string]:
		cats, err := Categories(v)
		if err != nil {
			return nil, err
		}
		return &base.NatureCategorical{Categories: cats}, nil
	default:
		return nil, nil
	}
}
