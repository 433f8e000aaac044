package base

import (
	"cmp"
	"slices"

	"github.com/roach88/dpvalidate/internal/errs"
)

// Value is the sealed interface for public data values.
// Only *Array[T], *JaggedOf[T] and HashmapOf[K] implement it.
type Value interface {
	isValue()
}

// ArrayND is a homogeneous dense array of rank 0, 1 or 2.
type ArrayND interface {
	Value
	isArrayND()
	DataType() DataType
	Dims() []int
}

// Jagged holds one variable-length vector per column.
type Jagged interface {
	Value
	isJagged()
	DataType() DataType
	NumColumns() int
}

// Hashmap maps keys of a single key type to nested values.
type Hashmap interface {
	Value
	isHashmap()
	KeyType() DataType
	Len() int
}

// Array is a dense row-major array.
//
// Shape has length 0 (scalar), 1 (single column) or 2 (rows x columns).
// len(Data) equals the product of Shape.
type Array[T Element] struct {
	Shape []int
	Data  []T
}

func (*Array[T]) isValue()   {}
func (*Array[T]) isArrayND() {}

// DataType returns the element type.
func (a *Array[T]) DataType() DataType { return DataTypeOf[T]() }

// Dims returns a copy of the shape.
func (a *Array[T]) Dims() []int { return slices.Clone(a.Shape) }

// Rank returns the number of dimensions.
func (a *Array[T]) Rank() int { return len(a.Shape) }

// Columns splits the array into columns.
// Rank 0 and rank 1 arrays are a single column.
func (a *Array[T]) Columns() ([][]T, error) {
	switch len(a.Shape) {
	case 0, 1:
		return [][]T{slices.Clone(a.Data)}, nil
	case 2:
		rows, cols := a.Shape[0], a.Shape[1]
		out := make([][]T, cols)
		for j := range cols {
			col := make([]T, rows)
			for i := range rows {
				col[i] = a.Data[i*cols+j]
			}
			out[j] = col
		}
		return out, nil
	default:
		return nil, errs.Shape("arrays may have max dimensionality of 2, got %d", len(a.Shape))
	}
}

// Scalar returns a rank-0 array.
func Scalar[T Element](v T) *Array[T] {
	return &Array[T]{Shape: []int{}, Data: []T{v}}
}

// Vector returns a rank-1 array.
func Vector[T Element](vals ...T) *Array[T] {
	return &Array[T]{Shape: []int{len(vals)}, Data: append([]T{}, vals...)}
}

// NewMatrix builds a rank-2 array from rows. All rows must have equal length.
func NewMatrix[T Element](rows [][]T) (*Array[T], error) {
	if len(rows) == 0 {
		return &Array[T]{Shape: []int{0, 0}, Data: []T{}}, nil
	}
	cols := len(rows[0])
	data := make([]T, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errs.Shape("row %d has %d elements, expected %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return &Array[T]{Shape: []int{len(rows), cols}, Data: data}, nil
}

// MustMatrix is like NewMatrix but panics on error.
// Use only in tests or with known-valid input.
func MustMatrix[T Element](rows [][]T) *Array[T] {
	a, err := NewMatrix(rows)
	if err != nil {
		panic(err)
	}
	return a
}

// NewArray builds an array from an explicit shape and row-major data.
func NewArray[T Element](shape []int, data []T) (*Array[T], error) {
	if len(shape) > 2 {
		return nil, errs.Shape("arrays may have max dimensionality of 2, got %d", len(shape))
	}
	size := 1
	for _, d := range shape {
		if d < 0 {
			return nil, errs.Shape("negative dimension %d", d)
		}
		size *= d
	}
	if size != len(data) {
		return nil, errs.Shape("shape %v needs %d elements, got %d", shape, size, len(data))
	}
	return &Array[T]{Shape: slices.Clone(shape), Data: slices.Clone(data)}, nil
}

// JaggedOf is a per-column vector container. A nil column means no data is
// known for that column; an empty non-nil column is a known empty vector.
type JaggedOf[T Element] struct {
	Columns [][]T
}

func (*JaggedOf[T]) isValue()  {}
func (*JaggedOf[T]) isJagged() {}

// DataType returns the element type.
func (j *JaggedOf[T]) DataType() DataType { return DataTypeOf[T]() }

// NumColumns returns the number of columns, including absent ones.
func (j *JaggedOf[T]) NumColumns() int { return len(j.Columns) }

// NewJagged returns a jagged value with the given columns.
func NewJagged[T Element](cols ...[]T) *JaggedOf[T] {
	return &JaggedOf[T]{Columns: cols}
}

// HashmapOf maps keys to nested values.
type HashmapOf[K Key] map[K]Value

func (HashmapOf[K]) isValue()   {}
func (HashmapOf[K]) isHashmap() {}

// KeyType returns the key type.
func (h HashmapOf[K]) KeyType() DataType {
	var zero K
	switch any(zero).(type) {
	case bool:
		return Bool
	case int64:
		return I64
	default:
		return Str
	}
}

// Len returns the number of entries.
func (h HashmapOf[K]) Len() int { return len(h) }

// SortedKeys returns keys in ascending order (false before true for bool keys).
// Use for deterministic iteration.
func (h HashmapOf[K]) SortedKeys() []K {
	keys := make([]K, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys[K])
	return keys
}

func compareKeys[K Key](a, b K) int {
	switch av := any(a).(type) {
	case string:
		return cmp.Compare(av, any(b).(string))
	case int64:
		return cmp.Compare(av, any(b).(int64))
	case bool:
		bv := any(b).(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	}
	return 0
}

// AsArrayND returns v as a dense array or a TypeError.
func AsArrayND(v Value) (ArrayND, error) {
	a, ok := v.(ArrayND)
	if !ok {
		return nil, errs.Type("value must be an array")
	}
	return a, nil
}

// AsJagged returns v as a jagged value or a TypeError.
func AsJagged(v Value) (Jagged, error) {
	j, ok := v.(Jagged)
	if !ok {
		return nil, errs.Type("value must be jagged")
	}
	return j, nil
}

// AsHashmap returns v as a hashmap or a TypeError.
func AsHashmap(v Value) (Hashmap, error) {
	h, ok := v.(Hashmap)
	if !ok {
		return nil, errs.Type("value must be a hashmap")
	}
	return h, nil
}
