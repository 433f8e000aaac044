package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/errs"
)

func dataProps(numColumns int64) *base.ArrayProperties {
	lo := make([]*float64, numColumns)
	hi := make([]*float64, numColumns)
	stability := make([]float64, numColumns)
	for i := range lo {
		lo[i] = base.Ptr(0.0)
		hi[i] = base.Ptr(10.0)
		stability[i] = 1
	}
	return &base.ArrayProperties{
		DataType:   base.F64,
		Nullity:    false,
		Releasable: false,
		Nature:     &base.NatureContinuous{Min: lo, Max: hi},
		CStability: stability,
		NumColumns: base.Ptr(numColumns),
		NumRecords: base.Ptr(int64(100)),
	}
}

func propagate(t *testing.T, side string, public map[string]base.Value, data base.ValueProperties) (base.ValueProperties, error) {
	t.Helper()
	props := NodeProperties{}
	if data != nil {
		props["data"] = data
	}
	return (&Bin{Side: side}).PropagateProperty(&PrivacyDefinition{}, public, props)
}

func categoriesOf[T base.Element](t *testing.T, p base.ValueProperties) [][]T {
	t.Helper()
	arr, ok := p.(*base.ArrayProperties)
	require.True(t, ok)
	nat, ok := arr.Nature.(*base.NatureCategorical)
	require.True(t, ok, "nature must be categorical, got %T", arr.Nature)
	cats, ok := nat.Categories.(*base.JaggedOf[T])
	require.True(t, ok, "categories have type %T", nat.Categories)
	return cats.Columns
}

func TestBinSides(t *testing.T) {
	tests := []struct {
		side string
		want []float64
	}{
		{SideLeft, []float64{0, 1, 2, -1}},
		{SideCenter, []float64{0.5, 1.5, 2.5, -1}},
		{SideRight, []float64{1, 2, 3, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.side, func(t *testing.T) {
			public := map[string]base.Value{
				"edges": base.NewJagged([]float64{0, 1, 2, 3}),
				"null":  base.Scalar(-1.0),
			}
			out, err := propagate(t, tt.side, public, dataProps(1))
			require.NoError(t, err)
			assert.Equal(t, [][]float64{tt.want}, categoriesOf[float64](t, out))
		})
	}
}

func TestBinPatchesOnlyNatureAndDataType(t *testing.T) {
	data := dataProps(1)
	data.DataType = base.I64
	data.Aggregator = &base.AggregatorProperties{Component: "sum"}
	public := map[string]base.Value{
		"edges": base.NewJagged([]float64{0, 5, 10}),
		"null":  base.Scalar(-1.0),
	}

	out, err := propagate(t, SideLeft, public, data)
	require.NoError(t, err)

	arr := out.(*base.ArrayProperties)
	assert.Equal(t, base.F64, arr.DataType)
	assert.Equal(t, data.Nullity, arr.Nullity)
	assert.Equal(t, data.Releasable, arr.Releasable)
	assert.Equal(t, data.CStability, arr.CStability)
	assert.Equal(t, *data.NumColumns, *arr.NumColumns)
	assert.Equal(t, *data.NumRecords, *arr.NumRecords)
	assert.Equal(t, "sum", arr.Aggregator.Component)

	assert.Equal(t, base.I64, data.DataType, "input properties are not mutated")
	assert.IsType(t, &base.NatureContinuous{}, data.Nature)
}

func TestBinIntegerEdges(t *testing.T) {
	public := map[string]base.Value{
		"edges": base.NewJagged([]int64{0, 3, 6}),
		"null":  base.Scalar(int64(-1)),
	}

	out, err := propagate(t, SideCenter, public, dataProps(1))
	require.NoError(t, err)

	assert.Equal(t, [][]int64{{1, 4, -1}}, categoriesOf[int64](t, out))
	assert.Equal(t, base.F64, out.(*base.ArrayProperties).DataType)
}

func TestBinBroadcastsSharedEdges(t *testing.T) {
	public := map[string]base.Value{
		"edges": base.NewJagged([]float64{0, 1, 2}),
		"null":  base.Scalar(-1.0),
	}

	out, err := propagate(t, SideLeft, public, dataProps(3))
	require.NoError(t, err)

	cats := categoriesOf[float64](t, out)
	require.Len(t, cats, 3)
	for _, col := range cats {
		assert.Equal(t, []float64{0, 1, -1}, col)
	}
}

func TestBinPerColumnNulls(t *testing.T) {
	public := map[string]base.Value{
		"edges": base.NewJagged([]int64{0, 10}, []int64{5, 6, 7}),
		"null":  base.Vector[int64](-1, -2),
	}

	out, err := propagate(t, SideRight, public, dataProps(2))
	require.NoError(t, err)
	assert.Equal(t, [][]int64{{10, -1}, {6, 7, -2}}, categoriesOf[int64](t, out))
}

func TestBinCenterWithSingleEdge(t *testing.T) {
	public := map[string]base.Value{
		"edges": base.NewJagged([]float64{4}),
		"null":  base.Scalar(-1.0),
	}

	out, err := propagate(t, SideCenter, public, dataProps(1))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{-1}}, categoriesOf[float64](t, out))
}

func TestBinEmptyEdgeColumn(t *testing.T) {
	public := map[string]base.Value{
		"edges": base.NewJagged([]float64{}),
		"null":  base.Scalar(-1.0),
	}

	for _, side := range []string{SideLeft, SideCenter, SideRight} {
		out, err := propagate(t, side, public, dataProps(1))
		require.NoError(t, err, side)
		assert.Equal(t, [][]float64{{-1}}, categoriesOf[float64](t, out), side)
	}
}

func TestBinErrors(t *testing.T) {
	floatEdges := base.NewJagged([]float64{0, 1, 2, 3})
	floatNull := base.Scalar(-1.0)

	tests := []struct {
		name    string
		side    string
		public  map[string]base.Value
		data    base.ValueProperties
		kind    errs.Kind
		message string
	}{
		{
			name:    "missing data",
			side:    SideLeft,
			public:  map[string]base.Value{"edges": floatEdges, "null": floatNull},
			kind:    errs.KindMissingArgument,
			message: "data: missing",
		},
		{
			name:    "data not an array",
			side:    SideLeft,
			public:  map[string]base.Value{"edges": floatEdges, "null": floatNull},
			data:    &base.JaggedProperties{},
			kind:    errs.KindTypeError,
			message: "data: properties must be an array",
		},
		{
			name:    "unknown column count",
			side:    SideLeft,
			public:  map[string]base.Value{"edges": floatEdges, "null": floatNull},
			data:    &base.ArrayProperties{DataType: base.F64},
			kind:    errs.KindShapeError,
			message: "data: number of columns is not known",
		},
		{
			name:    "missing null",
			side:    SideLeft,
			public:  map[string]base.Value{"edges": floatEdges},
			data:    dataProps(1),
			kind:    errs.KindMissingArgument,
			message: "null: missing, must be public",
		},
		{
			name:    "missing edges",
			side:    SideLeft,
			public:  map[string]base.Value{"null": floatNull},
			data:    dataProps(1),
			kind:    errs.KindMissingArgument,
			message: "edges: missing, must be public",
		},
		{
			name:    "edges not jagged",
			side:    SideLeft,
			public:  map[string]base.Value{"edges": base.Vector(0.0, 1.0), "null": floatNull},
			data:    dataProps(1),
			kind:    errs.KindTypeError,
			message: "edges: value must be jagged",
		},
		{
			name:    "float edges with int null",
			side:    SideLeft,
			public:  map[string]base.Value{"edges": floatEdges, "null": base.Scalar(int64(-1))},
			data:    dataProps(1),
			kind:    errs.KindTypeError,
			message: "edges: must be numeric",
		},
		{
			name:    "int edges with float null",
			side:    SideLeft,
			public:  map[string]base.Value{"edges": base.NewJagged([]int64{0, 1}), "null": floatNull},
			data:    dataProps(1),
			kind:    errs.KindTypeError,
			message: "edges: must be numeric",
		},
		{
			name:    "string edges",
			side:    SideLeft,
			public:  map[string]base.Value{"edges": base.NewJagged([]string{"a"}), "null": base.Scalar("z")},
			data:    dataProps(1),
			kind:    errs.KindTypeError,
			message: "edges: must be numeric",
		},
		{
			name:   "edge lists do not match columns",
			side:   SideLeft,
			public: map[string]base.Value{"edges": base.NewJagged([]float64{0, 1}, []float64{2, 3}), "null": floatNull},
			data:   dataProps(3),
			kind:   errs.KindShapeError,
		},
		{
			name:   "null count does not match columns",
			side:   SideLeft,
			public: map[string]base.Value{"edges": floatEdges, "null": base.Vector(-1.0, -2.0)},
			data:   dataProps(3),
			kind:   errs.KindShapeError,
		},
		{
			name:    "invalid side",
			side:    "top",
			public:  map[string]base.Value{"edges": floatEdges, "null": floatNull},
			data:    dataProps(1),
			kind:    errs.KindInvalidArgument,
			message: "side: must be left, center or right",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := propagate(t, tt.side, tt.public, tt.data)
			require.Error(t, err)
			assert.Nil(t, out, "no partial properties on failure")
			assert.Equal(t, tt.kind, errs.KindOf(err), "error: %v", err)
			if tt.message != "" {
				assert.Equal(t, tt.message, err.Error())
			}
		})
	}
}

func TestBinShapeErrorNamesArgument(t *testing.T) {
	public := map[string]base.Value{
		"edges": base.NewJagged([]float64{0, 1}, []float64{2, 3}),
		"null":  base.Scalar(-1.0),
	}

	_, err := propagate(t, SideLeft, public, dataProps(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edges: ")
}

func TestBinGetNames(t *testing.T) {
	_, err := (&Bin{Side: SideLeft}).GetNames(NodeProperties{})
	assert.True(t, errs.Is(err, errs.KindNotImplemented))
}
