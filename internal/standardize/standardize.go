// Package standardize broadcasts per-column operator arguments to a target
// column count.
//
// An argument supplied once applies to every column. An argument supplied
// per column must match the column count exactly. Results are deep copies;
// inputs are never mutated.
package standardize

import (
	"slices"

	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/errs"
)

// CategoricalArgument returns one category vector per column.
//
// A single vector is replicated numColumns times. Otherwise the argument must
// have exactly numColumns vectors, and every vector must be present.
func CategoricalArgument[T base.Element](arg *base.JaggedOf[T], numColumns int64) ([][]T, error) {
	if numColumns < 0 {
		return nil, errs.Shape("number of columns must be non-negative, got %d", numColumns)
	}
	cols := arg.Columns
	for i, col := range cols {
		if col == nil {
			return nil, errs.Shape("categories must be defined for all columns, column %d is missing", i)
		}
	}

	switch {
	case len(cols) == 1:
		out := make([][]T, numColumns)
		for i := range out {
			out[i] = slices.Clone(cols[0])
		}
		return out, nil
	case int64(len(cols)) == numColumns:
		out := make([][]T, numColumns)
		for i, col := range cols {
			out[i] = slices.Clone(col)
		}
		return out, nil
	default:
		return nil, errs.Shape("column count %d does not match %d columns", len(cols), numColumns)
	}
}

// NullTargetArgument returns one null sentinel per column.
//
// The array is flattened in row-major order. A single value is replicated
// numColumns times; otherwise the flattened length must equal numColumns.
func NullTargetArgument[T base.Element](arg *base.Array[T], numColumns int64) ([]T, error) {
	if numColumns < 0 {
		return nil, errs.Shape("number of columns must be non-negative, got %d", numColumns)
	}
	switch {
	case len(arg.Data) == 1:
		out := make([]T, numColumns)
		for i := range out {
			out[i] = arg.Data[0]
		}
		return out, nil
	case int64(len(arg.Data)) == numColumns:
		return slices.Clone(arg.Data), nil
	default:
		return nil, errs.Shape("null value count %d does not match %d columns", len(arg.Data), numColumns)
	}
}
