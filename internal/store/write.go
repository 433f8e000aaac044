package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/dpvalidate/internal/engine"
)

// BeginRun inserts a run record and returns its ID.
//
// Run IDs are UUIDv7, so they sort by creation time; the seq column is the
// authoritative order.
func (s *Store) BeginRun(ctx context.Context, graph, graphHash string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, graph, graph_hash)
		VALUES (?, ?, ?)
	`, id.String(), graph, graphHash)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}

	return id.String(), nil
}

// RecordNode inserts a node result into the store.
// Uses ON CONFLICT DO NOTHING for idempotency - a node is recorded once per run.
//
// Properties are serialized to canonical JSON per RFC 8785 and stored with
// their content hash.
//
// Note: The run referenced by runID must exist (foreign key constraint).
func (s *Store) RecordNode(ctx context.Context, runID string, res engine.NodeResult) error {
	props, hash, err := marshalProperties(res.Properties)
	if err != nil {
		return fmt.Errorf("record node: %w", err)
	}
	code, kind, message := errorColumns(res.Err)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO node_results
		(run_id, node, component, seq, status, properties, properties_hash, error_code, error_kind, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, node) DO NOTHING
	`,
		runID,
		res.Node,
		res.Component,
		res.Seq,
		string(res.Status),
		props,
		hash,
		code,
		kind,
		message,
	)
	if err != nil {
		return fmt.Errorf("record node: %w", err)
	}

	return nil
}

var _ engine.Recorder = (*Store)(nil)
