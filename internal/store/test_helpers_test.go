package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/engine"
	"github.com/roach88/dpvalidate/internal/errs"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun inserts a run and returns its ID.
func createTestRun(t *testing.T, s *Store, graph string) string {
	t.Helper()
	id, err := s.BeginRun(context.Background(), graph, "hash-"+graph)
	if err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}
	return id
}

// okResult creates a successful node result with float array properties.
func okResult(node string, seq int64) engine.NodeResult {
	return engine.NodeResult{
		Node:      node,
		Component: "source",
		Seq:       seq,
		Status:    engine.StatusOK,
		Properties: &base.ArrayProperties{
			DataType:   base.F64,
			NumColumns: base.Ptr(int64(1)),
		},
	}
}

// failedResult creates a failed node result wrapping an invalid-argument error.
func failedResult(node string, seq int64) engine.NodeResult {
	return engine.NodeResult{
		Node:      node,
		Component: "bin",
		Seq:       seq,
		Status:    engine.StatusFailed,
		Err:       engine.NewPropagationError(node, errs.Prepend("side", errs.Invalid("must be left, center or right"))),
	}
}
