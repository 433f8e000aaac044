package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Run is a stored validation run.
type Run struct {
	ID        string `json:"id"`
	Seq       int64  `json:"seq"`
	Graph     string `json:"graph"`
	GraphHash string `json:"graph_hash"`
}

// RunSummary is a run with node counts.
type RunSummary struct {
	Run
	Nodes  int `json:"nodes"`
	Failed int `json:"failed"`
}

// NodeRecord is a stored node result.
type NodeRecord struct {
	RunID     string `json:"run_id"`
	Node      string `json:"node"`
	Component string `json:"component"`
	Seq       int64  `json:"seq"`
	Status    string `json:"status"`

	// Properties is canonical JSON, empty for failed nodes.
	Properties     string `json:"properties,omitempty"`
	PropertiesHash string `json:"properties_hash,omitempty"`

	ErrorCode string `json:"error_code,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ReadRun returns a run and its node results.
// Nodes are ordered deterministically: ORDER BY seq ASC, node COLLATE BINARY ASC.
//
// Returns sql.ErrNoRows if the run does not exist.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, []NodeRecord, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, graph, graph_hash
		FROM runs
		WHERE id = ?
	`, runID).Scan(&run.ID, &run.Seq, &run.Graph, &run.GraphHash)
	if err != nil {
		return Run{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, node, component, seq, status, properties, properties_hash, error_code, error_kind, error
		FROM node_results
		WHERE run_id = ?
		ORDER BY seq ASC, node COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return Run{}, nil, fmt.Errorf("query node results: %w", err)
	}
	defer rows.Close()

	records := []NodeRecord{}
	for rows.Next() {
		rec, err := scanNodeRecord(rows)
		if err != nil {
			return Run{}, nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("iterate node results: %w", err)
	}

	return run, records, nil
}

// ReadNode retrieves a single node result.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadNode(ctx context.Context, runID, node string) (NodeRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, node, component, seq, status, properties, properties_hash, error_code, error_kind, error
		FROM node_results
		WHERE run_id = ? AND node = ?
	`, runID, node)
	return scanNodeRecord(row)
}

// ListRuns returns runs in creation order with node counts.
// An empty graphHash lists every run.
func (s *Store) ListRuns(ctx context.Context, graphHash string) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.seq, r.graph, r.graph_hash,
		       COUNT(n.node),
		       COALESCE(SUM(CASE WHEN n.status != 'ok' THEN 1 ELSE 0 END), 0)
		FROM runs r
		LEFT JOIN node_results n ON n.run_id = r.id
		WHERE ? = '' OR r.graph_hash = ?
		GROUP BY r.seq
		ORDER BY r.seq ASC
	`, graphHash, graphHash)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		var sum RunSummary
		if err := rows.Scan(&sum.ID, &sum.Seq, &sum.Graph, &sum.GraphHash, &sum.Nodes, &sum.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanNodeRecord(row scanner) (NodeRecord, error) {
	var rec NodeRecord
	var props, hash sql.NullString
	err := row.Scan(
		&rec.RunID,
		&rec.Node,
		&rec.Component,
		&rec.Seq,
		&rec.Status,
		&props,
		&hash,
		&rec.ErrorCode,
		&rec.ErrorKind,
		&rec.Error,
	)
	if err != nil {
		return NodeRecord{}, err
	}
	rec.Properties = props.String
	rec.PropertiesHash = hash.String
	return rec, nil
}
