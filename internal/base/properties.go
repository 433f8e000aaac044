package base

import (
	"maps"
	"slices"

	"github.com/roach88/dpvalidate/internal/errs"
)

// ValueProperties is the sealed interface for statically derived facts about
// a value. Only *ArrayProperties, *JaggedProperties and *HashmapProperties
// implement it.
type ValueProperties interface {
	isProperties()
}

// ArrayProperties describes a dense array.
type ArrayProperties struct {
	DataType   DataType
	Nullity    bool
	Releasable bool
	// Nature is nil when no nature is known.
	Nature     Nature
	CStability []float64
	NumColumns *int64
	NumRecords *int64
	Aggregator *AggregatorProperties
}

// AggregatorProperties records the aggregating component that produced an
// array. Its contents are opaque to propagation.
type AggregatorProperties struct {
	Component  string
	Properties map[string]ValueProperties
}

func (*ArrayProperties) isProperties() {}

// NumColumnsOrErr returns the column count or a ShapeError when unknown.
func (p *ArrayProperties) NumColumnsOrErr() (int64, error) {
	if p.NumColumns == nil {
		return 0, errs.Shape("number of columns is not known")
	}
	return *p.NumColumns, nil
}

// Clone returns a deep copy. Nature values and aggregator properties are
// immutable and shared by reference inside their new containers.
func (p *ArrayProperties) Clone() *ArrayProperties {
	out := *p
	out.CStability = slices.Clone(p.CStability)
	if p.NumColumns != nil {
		out.NumColumns = Ptr(*p.NumColumns)
	}
	if p.NumRecords != nil {
		out.NumRecords = Ptr(*p.NumRecords)
	}
	out.Nature = cloneNature(p.Nature)
	if p.Aggregator != nil {
		out.Aggregator = &AggregatorProperties{
			Component:  p.Aggregator.Component,
			Properties: maps.Clone(p.Aggregator.Properties),
		}
	}
	return &out
}

// JaggedProperties marks a jagged value. Per-column facts are not tracked.
type JaggedProperties struct{}

func (*JaggedProperties) isProperties() {}

// HashmapProperties describes a keyed collection of sub-values.
type HashmapProperties struct {
	NumRecords *int64
	Disjoint   bool
	Properties PropertiesMap
}

func (*HashmapProperties) isProperties() {}

// PropertiesMap holds one properties entry per key of a hashmap.
// Only KeyedProperties[K] implements it.
type PropertiesMap interface {
	isPropertiesMap()
	KeyType() DataType
	Len() int
}

// KeyedProperties maps hashmap keys to their properties.
type KeyedProperties[K Key] map[K]ValueProperties

func (KeyedProperties[K]) isPropertiesMap() {}

// KeyType returns the key type.
func (m KeyedProperties[K]) KeyType() DataType {
	return HashmapOf[K](nil).KeyType()
}

// Len returns the number of entries.
func (m KeyedProperties[K]) Len() int { return len(m) }

// SortedKeys returns keys in ascending order.
func (m KeyedProperties[K]) SortedKeys() []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys[K])
	return keys
}

// AsArray returns p as array properties or a TypeError.
func AsArray(p ValueProperties) (*ArrayProperties, error) {
	a, ok := p.(*ArrayProperties)
	if !ok {
		return nil, errs.Type("properties must be an array")
	}
	return a, nil
}

// AsHashmapProperties returns p as hashmap properties or a TypeError.
func AsHashmapProperties(p ValueProperties) (*HashmapProperties, error) {
	h, ok := p.(*HashmapProperties)
	if !ok {
		return nil, errs.Type("properties must be a hashmap")
	}
	return h, nil
}
