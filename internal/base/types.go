package base

import (
	"github.com/roach88/dpvalidate/internal/errs"
)

// DataType is the atomic element type of a value.
type DataType string

const (
	Bool DataType = "bool"
	F64  DataType = "float"
	I64  DataType = "int"
	Str  DataType = "string"
)

// Element is the set of atomic element types a Value may hold.
type Element interface {
	bool | float64 | int64 | string
}

// Key is the set of key types a Hashmap may use.
type Key interface {
	string | int64 | bool
}

// ParseDataType converts a text name to a DataType.
func ParseDataType(s string) (DataType, error) {
	switch DataType(s) {
	case Bool, F64, I64, Str:
		return DataType(s), nil
	default:
		return "", errs.Invalid("unknown data type %q, must be bool, float, int or string", s)
	}
}

// IsNumeric reports whether d is F64 or I64.
func (d DataType) IsNumeric() bool {
	return d == F64 || d == I64
}

// DataTypeOf returns the DataType of the element type T.
func DataTypeOf[T Element]() DataType {
	var zero T
	switch any(zero).(type) {
	case bool:
		return Bool
	case float64:
		return F64
	case int64:
		return I64
	default:
		return Str
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
