package base

import (
	"fmt"
	"strconv"
)

// ValueDocument converts a Value to a JSON-shaped document suitable for
// MarshalCanonical.
//
//	array:   {"kind":"array","data_type":"float","shape":[2],"data":[0,1]}
//	jagged:  {"kind":"jagged","data_type":"int","columns":[[1,2],null]}
//	hashmap: {"kind":"hashmap","key_type":"string","entries":{"a":{...}}}
func ValueDocument(v Value) (map[string]any, error) {
	switch val := v.(type) {
	case *Array[bool]:
		return arrayDocument(val), nil
	case *Array[float64]:
		return arrayDocument(val), nil
	case *Array[int64]:
		return arrayDocument(val), nil
	case *Array[string]:
		return arrayDocument(val), nil
	case Jagged:
		return map[string]any{
			"kind":      "jagged",
			"data_type": string(val.DataType()),
			"columns":   jaggedColumns(val),
		}, nil
	case HashmapOf[string]:
		return hashmapDocument(val)
	case HashmapOf[int64]:
		return hashmapDocument(val)
	case HashmapOf[bool]:
		return hashmapDocument(val)
	case nil:
		return nil, fmt.Errorf("nil value")
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func arrayDocument[T Element](a *Array[T]) map[string]any {
	shape := make([]any, len(a.Shape))
	for i, d := range a.Shape {
		shape[i] = int64(d)
	}
	return map[string]any{
		"kind":      "array",
		"data_type": string(a.DataType()),
		"shape":     shape,
		"data":      elements(a.Data),
	}
}

func hashmapDocument[K Key](h HashmapOf[K]) (map[string]any, error) {
	entries := make(map[string]any, len(h))
	for _, k := range h.SortedKeys() {
		doc, err := ValueDocument(h[k])
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", keyString(k), err)
		}
		entries[keyString(k)] = doc
	}
	return map[string]any{
		"kind":     "hashmap",
		"key_type": string(h.KeyType()),
		"entries":  entries,
	}, nil
}

// PropertiesDocument converts properties to a JSON-shaped document suitable
// for MarshalCanonical. Unknown optional fields become null.
func PropertiesDocument(p ValueProperties) (map[string]any, error) {
	switch props := p.(type) {
	case *ArrayProperties:
		return arrayPropertiesDocument(props)
	case *JaggedProperties:
		return map[string]any{"kind": "jagged"}, nil
	case *HashmapProperties:
		return hashmapPropertiesDocument(props)
	case nil:
		return nil, fmt.Errorf("nil properties")
	default:
		return nil, fmt.Errorf("unsupported properties type %T", p)
	}
}

func arrayPropertiesDocument(p *ArrayProperties) (map[string]any, error) {
	stability := make([]any, len(p.CStability))
	for i, c := range p.CStability {
		stability[i] = c
	}
	doc := map[string]any{
		"kind":        "array",
		"data_type":   string(p.DataType),
		"nullity":     p.Nullity,
		"releasable":  p.Releasable,
		"c_stability": stability,
		"num_columns": optionalInt(p.NumColumns),
		"num_records": optionalInt(p.NumRecords),
		"nature":      natureDocument(p.Nature),
		"aggregator":  nil,
	}
	if p.Aggregator != nil {
		inner := make(map[string]any, len(p.Aggregator.Properties))
		for name, sub := range p.Aggregator.Properties {
			subDoc, err := PropertiesDocument(sub)
			if err != nil {
				return nil, fmt.Errorf("aggregator %s: %w", name, err)
			}
			inner[name] = subDoc
		}
		doc["aggregator"] = map[string]any{
			"component":  p.Aggregator.Component,
			"properties": inner,
		}
	}
	return doc, nil
}

func hashmapPropertiesDocument(p *HashmapProperties) (map[string]any, error) {
	doc := map[string]any{
		"kind":        "hashmap",
		"num_records": optionalInt(p.NumRecords),
		"disjoint":    p.Disjoint,
		"key_type":    nil,
		"properties":  map[string]any{},
	}
	var err error
	switch m := p.Properties.(type) {
	case KeyedProperties[string]:
		doc["key_type"] = string(Str)
		doc["properties"], err = keyedDocument(m)
	case KeyedProperties[int64]:
		doc["key_type"] = string(I64)
		doc["properties"], err = keyedDocument(m)
	case KeyedProperties[bool]:
		doc["key_type"] = string(Bool)
		doc["properties"], err = keyedDocument(m)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func keyedDocument[K Key](m KeyedProperties[K]) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for _, k := range m.SortedKeys() {
		doc, err := PropertiesDocument(m[k])
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", keyString(k), err)
		}
		out[keyString(k)] = doc
	}
	return out, nil
}

func natureDocument(n Nature) any {
	switch nat := n.(type) {
	case *NatureContinuous:
		return map[string]any{
			"continuous": map[string]any{
				"min": bounds(nat.Min),
				"max": bounds(nat.Max),
			},
		}
	case *NatureCategorical:
		var cats any
		dataType := any(nil)
		if nat.Categories != nil {
			cats = jaggedColumns(nat.Categories)
			dataType = string(nat.Categories.DataType())
		}
		return map[string]any{
			"categorical": map[string]any{
				"categories": cats,
				"data_type":  dataType,
			},
		}
	default:
		return nil
	}
}

func jaggedColumns(j Jagged) []any {
	switch val := j.(type) {
	case *JaggedOf[bool]:
		return columnsDocument(val.Columns)
	case *JaggedOf[float64]:
		return columnsDocument(val.Columns)
	case *JaggedOf[int64]:
		return columnsDocument(val.Columns)
	case *JaggedOf[string]:
		return columnsDocument(val.Columns)
	default:
		return nil
	}
}

func columnsDocument[T Element](cols [][]T) []any {
	out := make([]any, len(cols))
	for i, col := range cols {
		if col == nil {
			out[i] = nil
			continue
		}
		out[i] = elements(col)
	}
	return out
}

func elements[T Element](data []T) []any {
	out := make([]any, len(data))
	for i, v := range data {
		out[i] = v
	}
	return out
}

func bounds(vals []*float64) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		if v != nil {
			out[i] = *v
		}
	}
	return out
}

func optionalInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func keyString[K Key](k K) string {
	switch v := any(k).(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}
