package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dpvalidate/internal/base"
)

func compileString(t *testing.T, src string) cue.Value {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return v
}

const binGraph = `
name: "income"
node: raw: {
	component: "source"
	properties: {
		data_type: "float"
		num_columns: 1
		num_records: 100
		c_stability: [1]
		nature: continuous: { min: [0], max: [10] }
	}
}
node: edges: { component: "literal", value: { type: "float", jagged: [[0, 5, 10]] } }
node: nulls: { component: "literal", value: { type: "float", array: [-1] } }
node: binned: {
	component: "bin"
	side: "left"
	args: { data: "raw", edges: "edges", null: "nulls" }
}
`

func TestCompileGraph(t *testing.T) {
	g, err := CompileGraph(compileString(t, binGraph))
	require.NoError(t, err)

	assert.Equal(t, "income", g.Name)
	assert.Equal(t, []string{"binned", "edges", "nulls", "raw"}, g.SortedIDs())

	binned := g.Nodes["binned"]
	assert.Equal(t, "binned", binned.ID)
	assert.Equal(t, "bin", binned.Component)
	assert.Equal(t, map[string]string{"side": "left"}, binned.Params)
	assert.Equal(t, map[string]string{"data": "raw", "edges": "edges", "null": "nulls"}, binned.Args)
	assert.Nil(t, binned.Value)
	assert.Nil(t, binned.Properties)

	edges, ok := g.Nodes["edges"].Value.(*base.JaggedOf[float64])
	require.True(t, ok)
	assert.Equal(t, [][]float64{{0, 5, 10}}, edges.Columns)

	nulls, ok := g.Nodes["nulls"].Value.(*base.Array[float64])
	require.True(t, ok)
	assert.Equal(t, []float64{-1}, nulls.Data)

	raw, ok := g.Nodes["raw"].Properties.(*base.ArrayProperties)
	require.True(t, ok)
	assert.Equal(t, int64(1), *raw.NumColumns)
}

func TestCompileGraphQuotedNodeID(t *testing.T) {
	g, err := CompileGraph(compileString(t, `node: "raw-data": { component: "source", properties: kind: "jagged" }`))
	require.NoError(t, err)
	require.Contains(t, g.Nodes, "raw-data")
	assert.Equal(t, "raw-data", g.Nodes["raw-data"].ID)
}

func TestCompileGraphErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"no nodes", `name: "empty"`, "at least one node is required"},
		{"missing component", `node: a: { side: "left" }`, "component is required"},
		{"non-string param", `node: a: { component: "bin", side: 3 }`, "operator parameters must be strings"},
		{"non-string arg", `node: a: { component: "bin", args: data: 1 }`, "argument must name an upstream node"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileGraph(compileString(t, tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "side", Message: "bad"}
	assert.Equal(t, "side: bad", err.Error())
}
