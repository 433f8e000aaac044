package compiler

import (
	"strconv"

	"cuelang.org/go/cue"

	"github.com/roach88/dpvalidate/internal/base"
)

// CompileValue parses a literal value.
//
//	{ type: "float", array: 1.5 }               // scalar
//	{ type: "int", array: [1, 2, 3] }           // single column
//	{ type: "bool", array: [[true], [false]] }  // rows x columns
//	{ type: "float", jagged: [[0, 5], null] }   // per-column vectors
//	{ hashmap: { key_type: "string", entries: { a: {...} } } }
func CompileValue(v cue.Value) (base.Value, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	if hm := v.LookupPath(cue.ParsePath("hashmap")); hm.Exists() {
		return compileHashmap(hm)
	}

	dt, err := dataTypeField(v, "type")
	if err != nil {
		return nil, err
	}

	if arr := v.LookupPath(cue.ParsePath("array")); arr.Exists() {
		switch dt {
		case base.Bool:
			return compileArray[bool](arr)
		case base.F64:
			return compileArray[float64](arr)
		case base.I64:
			return compileArray[int64](arr)
		default:
			return compileArray[string](arr)
		}
	}

	if jag := v.LookupPath(cue.ParsePath("jagged")); jag.Exists() {
		return compileJaggedAs(dt, jag)
	}

	return nil, fieldError("value", "one of array, jagged or hashmap is required", v.Pos())
}

func dataTypeField(v cue.Value, field string) (base.DataType, error) {
	typeVal := v.LookupPath(cue.ParsePath(field))
	if !typeVal.Exists() {
		return "", fieldError(field, field+" is required", v.Pos())
	}
	s, err := typeVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	dt, err := base.ParseDataType(s)
	if err != nil {
		return "", fieldError(field, err.Error(), typeVal.Pos())
	}
	return dt, nil
}

func compileJaggedAs(dt base.DataType, v cue.Value) (base.Jagged, error) {
	switch dt {
	case base.Bool:
		return compileJagged[bool](v)
	case base.F64:
		return compileJagged[float64](v)
	case base.I64:
		return compileJagged[int64](v)
	default:
		return compileJagged[string](v)
	}
}

func compileArray[T base.Element](v cue.Value) (*base.Array[T], error) {
	if v.Kind() != cue.ListKind {
		x, err := element[T](v)
		if err != nil {
			return nil, err
		}
		return base.Scalar(x), nil
	}

	items, err := listValues(v)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 && items[0].Kind() == cue.ListKind {
		rows := make([][]T, len(items))
		for i, item := range items {
			rows[i], err = elements[T](item)
			if err != nil {
				return nil, err
			}
		}
		arr, err := base.NewMatrix(rows)
		if err != nil {
			return nil, fieldError("array", err.Error(), v.Pos())
		}
		return arr, nil
	}

	data := make([]T, len(items))
	for i, item := range items {
		data[i], err = element[T](item)
		if err != nil {
			return nil, err
		}
	}
	return base.Vector(data...), nil
}

func compileJagged[T base.Element](v cue.Value) (*base.JaggedOf[T], error) {
	items, err := listValues(v)
	if err != nil {
		return nil, err
	}
	cols := make([][]T, len(items))
	for i, item := range items {
		if item.IsNull() {
			continue
		}
		cols[i], err = elements[T](item)
		if err != nil {
			return nil, err
		}
	}
	return &base.JaggedOf[T]{Columns: cols}, nil
}

func compileHashmap(v cue.Value) (base.Value, error) {
	kt, err := dataTypeField(v, "key_type")
	if err != nil {
		return nil, err
	}
	entries := v.LookupPath(cue.ParsePath("entries"))
	switch kt {
	case base.Str:
		return compileEntries(entries, func(s string) (string, error) { return s, nil })
	case base.I64:
		return compileEntries(entries, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
	case base.Bool:
		return compileEntries(entries, strconv.ParseBool)
	default:
		return nil, fieldError("key_type", "hashmap keys must be string, int or bool", v.Pos())
	}
}

func compileEntries[K base.Key](v cue.Value, parseKey func(string) (K, error)) (base.HashmapOf[K], error) {
	out := base.HashmapOf[K]{}
	if !v.Exists() {
		return out, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		key, err := parseKey(iter.Label())
		if err != nil {
			return nil, fieldError("entries."+iter.Label(), "invalid key: "+err.Error(), iter.Value().Pos())
		}
		val, err := CompileValue(iter.Value())
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}

func listValues(v cue.Value) ([]cue.Value, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []cue.Value
	for iter.Next() {
		out = append(out, iter.Value())
	}
	return out, nil
}

func elements[T base.Element](v cue.Value) ([]T, error) {
	items, err := listValues(v)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i], err = element[T](item)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// element decodes one atom. Integer literals are accepted where floats are
// expected; floats are rejected where integers are expected.
func element[T base.Element](v cue.Value) (T, error) {
	var out T
	var err error
	switch p := any(&out).(type) {
	case *bool:
		*p, err = v.Bool()
	case *float64:
		*p, err = v.Float64()
	case *int64:
		*p, err = v.Int64()
	case *string:
		*p, err = v.String()
	}
	if err != nil {
		return out, fieldError(string(base.DataTypeOf[T]()), "element has the wrong type", v.Pos())
	}
	return out, nil
}
