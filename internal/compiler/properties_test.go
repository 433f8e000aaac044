package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dpvalidate/internal/base"
)

func compilePropertiesString(t *testing.T, src string) (base.ValueProperties, error) {
	t.Helper()
	return CompileProperties(compileString(t, src).LookupPath(cue.ParsePath("properties")))
}

func TestCompileArrayProperties(t *testing.T) {
	src := `properties: {
		data_type: "int"
		nullity: true
		releasable: false
		c_stability: [1, 2]
		num_columns: 2
		num_records: 50
		nature: continuous: { min: [0, null], max: [10, 20.5] }
		aggregator: { component: "sum" }
	}`
	p, err := compilePropertiesString(t, src)
	require.NoError(t, err)

	arr, ok := p.(*base.ArrayProperties)
	require.True(t, ok)
	assert.Equal(t, base.I64, arr.DataType)
	assert.True(t, arr.Nullity)
	assert.False(t, arr.Releasable)
	assert.Equal(t, []float64{1, 2}, arr.CStability)
	assert.Equal(t, int64(2), *arr.NumColumns)
	assert.Equal(t, int64(50), *arr.NumRecords)
	assert.Equal(t, "sum", arr.Aggregator.Component)

	nat, ok := arr.Nature.(*base.NatureContinuous)
	require.True(t, ok)
	require.Len(t, nat.Min, 2)
	assert.Equal(t, 0.0, *nat.Min[0])
	assert.Nil(t, nat.Min[1])
	assert.Equal(t, 20.5, *nat.Max[1])
}

func TestCompileArrayPropertiesDefaults(t *testing.T) {
	p, err := compilePropertiesString(t, `properties: data_type: "string"`)
	require.NoError(t, err)

	arr := p.(*base.ArrayProperties)
	assert.Equal(t, &base.ArrayProperties{DataType: base.Str}, arr)
}

func TestCompileCategoricalNature(t *testing.T) {
	src := `properties: {
		data_type: "string"
		num_columns: 2
		nature: categorical: { data_type: "string", categories: [["a", "b"], null] }
	}`
	p, err := compilePropertiesString(t, src)
	require.NoError(t, err)

	nat, ok := p.(*base.ArrayProperties).Nature.(*base.NatureCategorical)
	require.True(t, ok)
	cats := nat.Categories.(*base.JaggedOf[string])
	assert.Equal(t, []string{"a", "b"}, cats.Columns[0])
	assert.Nil(t, cats.Columns[1])
}

func TestCompileHashmapProperties(t *testing.T) {
	src := `properties: {
		kind: "hashmap"
		key_type: "string"
		disjoint: true
		num_records: 10
		properties: {
			a: { data_type: "float", num_columns: 1 }
			b: { kind: "jagged" }
		}
	}`
	p, err := compilePropertiesString(t, src)
	require.NoError(t, err)

	hm, ok := p.(*base.HashmapProperties)
	require.True(t, ok)
	assert.True(t, hm.Disjoint)
	assert.Equal(t, int64(10), *hm.NumRecords)

	keyed := hm.Properties.(base.KeyedProperties[string])
	assert.Equal(t, []string{"a", "b"}, keyed.SortedKeys())
	assert.IsType(t, &base.JaggedProperties{}, keyed["b"])
}

func TestCompilePropertiesErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing data type", `properties: { num_columns: 1 }`},
		{"unknown kind", `properties: { kind: "tensor" }`},
		{"negative stability", `properties: { data_type: "float", c_stability: [-1] }`},
		{"bad nature", `properties: { data_type: "float", nature: { discrete: {} } }`},
		{"non-int columns", `properties: { data_type: "float", num_columns: 1.5 }`},
		{"non-bool nullity", `properties: { data_type: "float", nullity: "yes" }`},
		{"aggregator without component", `properties: { data_type: "float", aggregator: {} }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compilePropertiesString(t, tt.src)
			assert.Error(t, err)
		})
	}
}
