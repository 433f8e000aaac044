package infer

import (
	"fmt"

	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/errs"
)

// Properties derives the properties of a public value.
//
// Dense arrays are releasable with a known record count and no aggregator.
// Hashmaps recurse per key with an unknown record count and are not
// disjoint. Jagged values yield the unit marker. Identical values always
// yield identical properties.
func Properties(v base.Value) (base.ValueProperties, error) {
	switch val := v.(type) {
	case base.ArrayND:
		return arrayProperties(val)
	case base.Jagged:
		return &base.JaggedProperties{}, nil
	case base.HashmapOf[string]:
		return hashmapProperties(val)
	case base.HashmapOf[int64]:
		return hashmapProperties(val)
	case base.HashmapOf[bool]:
		return hashmapProperties(val)
	default:
		return nil, errs.Type("unsupported value %T", v)
	}
}

func arrayProperties(a base.ArrayND) (*base.ArrayProperties, error) {
	nature, err := Nature(a)
	if err != nil {
		return nil, err
	}
	stability, err := CStability(a)
	if err != nil {
		return nil, err
	}
	cols, err := NumColumns(a)
	if err != nil {
		return nil, err
	}
	rows, err := NumRows(a)
	if err != nil {
		return nil, err
	}
	return &base.ArrayProperties{
		DataType:   a.DataType(),
		Nullity:    Nullity(a),
		Releasable: true,
		Nature:     nature,
		CStability: stability,
		NumColumns: base.Ptr(cols),
		NumRecords: base.Ptr(rows),
	}, nil
}

func hashmapProperties[K base.Key](h base.HashmapOf[K]) (*base.HashmapProperties, error) {
	props := make(base.KeyedProperties[K], len(h))
	for _, k := range h.SortedKeys() {
		p, err := Properties(h[k])
		if err != nil {
			return nil, errs.Prepend(fmt.Sprint(k), err)
		}
		props[k] = p
	}
	return &base.HashmapProperties{
		Disjoint:   false,
		Properties: props,
	}, nil
}
