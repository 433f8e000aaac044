package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/engine"
)

const okProperties = `{"aggregator":null,"c_stability":[],"data_type":"float","kind":"array",` +
	`"nature":null,"nullity":false,"num_columns":1,"num_records":null,"releasable":false}`

func TestBeginRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := createTestRun(t, s, "income")
	second := createTestRun(t, s, "income")
	assert.NotEqual(t, first, second)
	assert.Len(t, first, 36)

	run, records, err := s.ReadRun(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "income", run.Graph)
	assert.Equal(t, "hash-income", run.GraphHash)
	assert.Equal(t, int64(1), run.Seq)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestRecordNode_OK(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	runID := createTestRun(t, s, "income")

	res := okResult("raw", 3)
	require.NoError(t, s.RecordNode(ctx, runID, res))

	rec, err := s.ReadNode(ctx, runID, "raw")
	require.NoError(t, err)
	assert.Equal(t, NodeRecord{
		RunID:          runID,
		Node:           "raw",
		Component:      "source",
		Seq:            3,
		Status:         "ok",
		Properties:     okProperties,
		PropertiesHash: base.MustPropertiesHash(res.Properties),
	}, rec)
}

func TestRecordNode_Failed(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	runID := createTestRun(t, s, "income")

	require.NoError(t, s.RecordNode(ctx, runID, failedResult("binned", 1)))
	require.NoError(t, s.RecordNode(ctx, runID, engine.NodeResult{
		Node:      "after",
		Component: "bin",
		Seq:       2,
		Status:    engine.StatusUpstreamFailed,
		Err:       engine.NewUpstreamError("after", []string{"binned"}),
	}))

	rec, err := s.ReadNode(ctx, runID, "binned")
	require.NoError(t, err)
	assert.Equal(t, "failed", rec.Status)
	assert.Equal(t, "PROPAGATION_FAILED", rec.ErrorCode)
	assert.Equal(t, "INVALID_ARGUMENT", rec.ErrorKind)
	assert.Equal(t, "side: must be left, center or right", rec.Error)
	assert.Empty(t, rec.Properties)
	assert.Empty(t, rec.PropertiesHash)

	rec, err = s.ReadNode(ctx, runID, "after")
	require.NoError(t, err)
	assert.Equal(t, "upstream_failed", rec.Status)
	assert.Equal(t, "UPSTREAM_FAILED", rec.ErrorCode)
	assert.Empty(t, rec.ErrorKind)
	assert.Equal(t, "upstream binned failed", rec.Error)
}

func TestRecordNode_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	runID := createTestRun(t, s, "income")

	require.NoError(t, s.RecordNode(ctx, runID, okResult("raw", 1)))
	require.NoError(t, s.RecordNode(ctx, runID, failedResult("raw", 2)))

	rec, err := s.ReadNode(ctx, runID, "raw")
	require.NoError(t, err)
	assert.Equal(t, "ok", rec.Status)
	assert.Equal(t, int64(1), rec.Seq)
}

func TestRecordNode_UnknownRun(t *testing.T) {
	s := createTestStore(t)
	err := s.RecordNode(context.Background(), "no-such-run", okResult("raw", 1))
	assert.Error(t, err)
}

func TestReadRun_Ordering(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	runID := createTestRun(t, s, "income")

	// inserted out of order; equal seqs tie-break on node bytes
	require.NoError(t, s.RecordNode(ctx, runID, okResult("z", 2)))
	require.NoError(t, s.RecordNode(ctx, runID, okResult("b", 1)))
	require.NoError(t, s.RecordNode(ctx, runID, okResult("B", 1)))
	require.NoError(t, s.RecordNode(ctx, runID, okResult("a", 3)))

	_, records, err := s.ReadRun(ctx, runID)
	require.NoError(t, err)

	var nodes []string
	for _, rec := range records {
		nodes = append(nodes, rec.Node)
	}
	assert.Equal(t, []string{"B", "b", "z", "a"}, nodes)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, _, err := s.ReadRun(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = s.ReadNode(context.Background(), "missing", "raw")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := createTestRun(t, s, "income")
	require.NoError(t, s.RecordNode(ctx, first, okResult("raw", 1)))
	require.NoError(t, s.RecordNode(ctx, first, failedResult("binned", 2)))
	second := createTestRun(t, s, "ages")

	runs, err := s.ListRuns(ctx, "")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)
	assert.Equal(t, 2, runs[0].Nodes)
	assert.Equal(t, 1, runs[0].Failed)
	assert.Equal(t, second, runs[1].ID)
	assert.Equal(t, 0, runs[1].Nodes)

	runs, err = s.ListRuns(ctx, "hash-ages")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "ages", runs[0].Graph)
}

func TestEngineRecordsIntoStore(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	g := &base.GraphSpec{
		Name: "ages",
		Nodes: map[string]*base.NodeSpec{
			"ages": {ID: "ages", Component: "literal", Value: base.NewJagged([]int64{18, 40, 65})},
			"raw": {
				ID:         "raw",
				Component:  "source",
				Properties: &base.ArrayProperties{DataType: base.I64, NumColumns: base.Ptr(int64(1))},
			},
			"nulls": {ID: "nulls", Component: "literal", Value: base.Scalar(int64(0))},
			"binned": {
				ID:        "binned",
				Component: "bin",
				Params:    map[string]string{"side": "right"},
				Args:      map[string]string{"data": "raw", "edges": "ages", "null": "nulls"},
			},
		},
	}

	report, err := engine.New(engine.WithRecorder(s)).Validate(ctx, g)
	require.NoError(t, err)
	require.True(t, report.OK())

	run, records, err := s.ReadRun(ctx, report.RunID)
	require.NoError(t, err)
	assert.Equal(t, report.GraphHash, run.GraphHash)
	require.Len(t, records, 4)

	for i, res := range report.Results {
		assert.Equal(t, res.Node, records[i].Node)
		assert.Equal(t, res.Seq, records[i].Seq)
		assert.Equal(t, base.MustPropertiesHash(res.Properties), records[i].PropertiesHash)
	}

	binned, err := s.ReadNode(ctx, report.RunID, "binned")
	require.NoError(t, err)
	assert.Contains(t, binned.Properties, `"categories":[[40,65,0]]`)
}
