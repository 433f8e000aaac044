package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dpvalidate/internal/base"
)

func compileValueString(t *testing.T, src string) (base.Value, error) {
	t.Helper()
	return CompileValue(compileString(t, src).LookupPath(cue.ParsePath("value")))
}

func TestCompileValueArrays(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want base.Value
	}{
		{"float scalar", `value: { type: "float", array: 1.5 }`, base.Scalar(1.5)},
		{"int literal as float", `value: { type: "float", array: [1, 2] }`, base.Vector(1.0, 2.0)},
		{"int vector", `value: { type: "int", array: [3, -1] }`, base.Vector[int64](3, -1)},
		{"bool matrix", `value: { type: "bool", array: [[true, false], [false, true]] }`,
			base.MustMatrix([][]bool{{true, false}, {false, true}})},
		{"string vector", `value: { type: "string", array: ["a", "b"] }`, base.Vector("a", "b")},
		{"empty vector", `value: { type: "int", array: [] }`, base.Vector[int64]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compileValueString(t, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileValueJagged(t *testing.T) {
	got, err := compileValueString(t, `value: { type: "int", jagged: [[1, 2], null, []] }`)
	require.NoError(t, err)

	j, ok := got.(*base.JaggedOf[int64])
	require.True(t, ok)
	require.Len(t, j.Columns, 3)
	assert.Equal(t, []int64{1, 2}, j.Columns[0])
	assert.Nil(t, j.Columns[1])
	assert.NotNil(t, j.Columns[2])
}

func TestCompileValueHashmap(t *testing.T) {
	src := `value: hashmap: {
		key_type: "int"
		entries: {
			"1": { type: "float", array: [1] }
			"2": { hashmap: { key_type: "bool", entries: "true": { type: "string", array: "x" } } }
		}
	}`
	got, err := compileValueString(t, src)
	require.NoError(t, err)

	h, ok := got.(base.HashmapOf[int64])
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2}, h.SortedKeys())

	inner, ok := h[2].(base.HashmapOf[bool])
	require.True(t, ok)
	assert.Equal(t, base.Scalar("x"), inner[true])
}

func TestCompileValueErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing type", `value: { array: [1] }`},
		{"unknown type", `value: { type: "f64", array: [1] }`},
		{"float for int", `value: { type: "int", array: [1.5] }`},
		{"ragged matrix", `value: { type: "int", array: [[1, 2], [3]] }`},
		{"no payload", `value: { type: "int" }`},
		{"bad hashmap key", `value: hashmap: { key_type: "int", entries: { x: { type: "int", array: 1 } } }`},
		{"bad hashmap key type", `value: hashmap: { key_type: "float", entries: {} }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileValueString(t, tt.src)
			assert.Error(t, err)
		})
	}
}
