package compiler

import (
	"strconv"

	"cuelang.org/go/cue"

	"github.com/roach88/dpvalidate/internal/base"
)

// CompileProperties parses declared properties.
//
// kind defaults to "array":
//
//	{
//	    data_type: "float"
//	    nullity: false
//	    releasable: false
//	    c_stability: [1, 1]
//	    num_columns: 2
//	    num_records: 100
//	    nature: continuous: { min: [0, null], max: [10, 10] }
//	    aggregator: { component: "sum" }
//	}
//
// Categorical natures name their element type:
//
//	nature: categorical: { data_type: "string", categories: [["a", "b"], null] }
//
// Hashmaps nest properties per key:
//
//	{ kind: "hashmap", key_type: "string", disjoint: true, properties: { a: {...} } }
func CompileProperties(v cue.Value) (base.ValueProperties, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	kind := "array"
	if kv := v.LookupPath(cue.ParsePath("kind")); kv.Exists() {
		s, err := kv.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		kind = s
	}

	switch kind {
	case "array":
		return compileArrayProperties(v)
	case "jagged":
		return &base.JaggedProperties{}, nil
	case "hashmap":
		return compileHashmapProperties(v)
	default:
		return nil, fieldError("kind", "kind must be array, jagged or hashmap", v.Pos())
	}
}

func compileArrayProperties(v cue.Value) (*base.ArrayProperties, error) {
	dt, err := dataTypeField(v, "data_type")
	if err != nil {
		return nil, err
	}
	p := &base.ArrayProperties{DataType: dt}

	if p.Nullity, err = optionalBool(v, "nullity"); err != nil {
		return nil, err
	}
	if p.Releasable, err = optionalBool(v, "releasable"); err != nil {
		return nil, err
	}
	if p.NumColumns, err = optionalInt(v, "num_columns"); err != nil {
		return nil, err
	}
	if p.NumRecords, err = optionalInt(v, "num_records"); err != nil {
		return nil, err
	}

	if cs := v.LookupPath(cue.ParsePath("c_stability")); cs.Exists() {
		if p.CStability, err = elements[float64](cs); err != nil {
			return nil, err
		}
		for _, c := range p.CStability {
			if c < 0 {
				return nil, fieldError("c_stability", "stability values must be non-negative", cs.Pos())
			}
		}
	}

	if nat := v.LookupPath(cue.ParsePath("nature")); nat.Exists() && !nat.IsNull() {
		if p.Nature, err = compileNature(nat); err != nil {
			return nil, err
		}
	}

	if agg := v.LookupPath(cue.ParsePath("aggregator")); agg.Exists() && !agg.IsNull() {
		name, err := agg.LookupPath(cue.ParsePath("component")).String()
		if err != nil {
			return nil, fieldError("aggregator.component", "aggregator component is required", agg.Pos())
		}
		p.Aggregator = &base.AggregatorProperties{
			Component:  name,
			Properties: map[string]base.ValueProperties{},
		}
	}

	return p, nil
}

func compileNature(v cue.Value) (base.Nature, error) {
	if cont := v.LookupPath(cue.ParsePath("continuous")); cont.Exists() {
		lo, err := optionalBounds(cont, "min")
		if err != nil {
			return nil, err
		}
		hi, err := optionalBounds(cont, "max")
		if err != nil {
			return nil, err
		}
		return &base.NatureContinuous{Min: lo, Max: hi}, nil
	}
	if cat := v.LookupPath(cue.ParsePath("categorical")); cat.Exists() {
		dt, err := dataTypeField(cat, "data_type")
		if err != nil {
			return nil, err
		}
		cats, err := compileJaggedAs(dt, cat.LookupPath(cue.ParsePath("categories")))
		if err != nil {
			return nil, err
		}
		return &base.NatureCategorical{Categories: cats}, nil
	}
	return nil, fieldError("nature", "nature must be continuous or categorical", v.Pos())
}

func compileHashmapProperties(v cue.Value) (*base.HashmapProperties, error) {
	p := &base.HashmapProperties{}
	var err error
	if p.Disjoint, err = optionalBool(v, "disjoint"); err != nil {
		return nil, err
	}
	if p.NumRecords, err = optionalInt(v, "num_records"); err != nil {
		return nil, err
	}

	kt, err := dataTypeField(v, "key_type")
	if err != nil {
		return nil, err
	}
	props := v.LookupPath(cue.ParsePath("properties"))
	switch kt {
	case base.Str:
		p.Properties, err = compileKeyed(props, func(s string) (string, error) { return s, nil })
	case base.I64:
		p.Properties, err = compileKeyed(props, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
	case base.Bool:
		p.Properties, err = compileKeyed(props, strconv.ParseBool)
	default:
		return nil, fieldError("key_type", "hashmap keys must be string, int or bool", v.Pos())
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func compileKeyed[K base.Key](v cue.Value, parseKey func(string) (K, error)) (base.KeyedProperties[K], error) {
	out := base.KeyedProperties[K]{}
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
			return nil, fieldError("properties."+iter.Label(), "invalid key: "+err.Error(), iter.Value().Pos())
		}
		sub, err := CompileProperties(iter.Value())
		if err != nil {
			return nil, err
		}
		out[key] = sub
	}
	return out, nil
}

func optionalBool(v cue.Value, field string) (bool, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return false, nil
	}
	b, err := f.Bool()
	if err != nil {
		return false, fieldError(field, "must be a bool", f.Pos())
	}
	return b, nil
}

func optionalInt(v cue.Value, field string) (*int64, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() || f.IsNull() {
		return nil, nil
	}
	n, err := f.Int64()
	if err != nil {
		return nil, fieldError(field, "must be an int", f.Pos())
	}
	return &n, nil
}

func optionalBounds(v cue.Value, field string) ([]*float64, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return nil, nil
	}
	items, err := listValues(f)
	if err != nil {
		return nil, err
	}
	out := make([]*float64, len(items))
	for i, item := range items {
		if item.IsNull() {
			continue
		}
		x, err := item.Float64()
		if err != nil {
			return nil, fieldError(field, "bounds must be numbers or null", item.Pos())
		}
		out[i] = &x
	}
	return out, nil
}
