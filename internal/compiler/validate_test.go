package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dpvalidate/internal/base"
)

func validGraph() *base.GraphSpec {
	return &base.GraphSpec{
		Name: "income",
		Nodes: map[string]*base.NodeSpec{
			"raw": {
				ID:         "raw",
				Component:  "source",
				Properties: &base.ArrayProperties{DataType: base.F64, NumColumns: base.Ptr(int64(1))},
			},
			"edges": {ID: "edges", Component: "literal", Value: base.NewJagged([]float64{0, 5, 10})},
			"nulls": {ID: "nulls", Component: "literal", Value: base.Scalar(-1.0)},
			"binned": {
				ID:        "binned",
				Component: "bin",
				Params:    map[string]string{"side": "left"},
				Args:      map[string]string{"data": "raw", "edges": "edges", "null": "nulls"},
			},
		},
	}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateValidGraph(t *testing.T) {
	assert.Empty(t, Validate(validGraph()))
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *base.GraphSpec)
		want   []string
	}{
		{
			name:   "unknown component",
			mutate: func(g *base.GraphSpec) { g.Nodes["raw"].Component = "csv" },
			want:   []string{ErrUnknownComponent},
		},
		{
			name:   "missing argument target",
			mutate: func(g *base.GraphSpec) { g.Nodes["binned"].Args["data"] = "nowhere" },
			want:   []string{ErrMissingArgTarget},
		},
		{
			name:   "invalid side",
			mutate: func(g *base.GraphSpec) { g.Nodes["binned"].Params["side"] = "top" },
			want:   []string{ErrInvalidSide},
		},
		{
			name:   "missing side",
			mutate: func(g *base.GraphSpec) { delete(g.Nodes["binned"].Params, "side") },
			want:   []string{ErrInvalidSide},
		},
		{
			name:   "literal without value",
			mutate: func(g *base.GraphSpec) { g.Nodes["edges"].Value = nil },
			want:   []string{ErrLiteralWithoutValue},
		},
		{
			name:   "source without properties",
			mutate: func(g *base.GraphSpec) { g.Nodes["raw"].Properties = nil },
			want:   []string{ErrSourceWithoutProps},
		},
		{
			name:   "edges from private source",
			mutate: func(g *base.GraphSpec) { g.Nodes["binned"].Args["edges"] = "raw" },
			want:   []string{ErrPublicArgNotLiteral},
		},
		{
			name:   "bin declares a value",
			mutate: func(g *base.GraphSpec) { g.Nodes["binned"].Value = base.Scalar(1.0) },
			want:   []string{ErrUnexpectedDefinition},
		},
		{
			name: "cycle",
			mutate: func(g *base.GraphSpec) {
				g.Nodes["loop"] = &base.NodeSpec{
					ID:        "loop",
					Component: "bin",
					Params:    map[string]string{"side": "left"},
					Args:      map[string]string{"data": "loop", "edges": "edges", "null": "nulls"},
				}
			},
			want: []string{ErrCycle},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGraph()
			tt.mutate(g)
			assert.Equal(t, tt.want, codes(Validate(g)))
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	g := validGraph()
	g.Nodes["binned"].Params["side"] = "top"
	g.Nodes["edges"].Value = nil
	g.Nodes["raw"].Component = "csv"

	errs := Validate(g)
	require.Len(t, errs, 3)
	// ordered by node ID: binned, edges, raw
	assert.Equal(t, []string{ErrInvalidSide, ErrLiteralWithoutValue, ErrUnknownComponent}, codes(errs))
	assert.Equal(t, "node.binned.side", errs[0].Field)
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Field: "node.a.side", Message: "bad", Code: ErrInvalidSide}
	assert.Equal(t, "[E103] node.a.side: bad", e.Error())

	e.Line = 4
	assert.Equal(t, "[E103] line 4: node.a.side: bad", e.Error())
}
