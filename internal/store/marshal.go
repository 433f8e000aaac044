package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/dpvalidate/internal/base"
	"github.com/roach88/dpvalidate/internal/engine"
	"github.com/roach88/dpvalidate/internal/errs"
)

// marshalProperties converts properties to canonical JSON TEXT and its
// content hash. Nil properties (failed nodes) are stored as NULL.
func marshalProperties(p base.ValueProperties) (sql.NullString, sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, sql.NullString{}, nil
	}
	data, err := base.CanonicalProperties(p)
	if err != nil {
		return sql.NullString{}, sql.NullString{}, fmt.Errorf("marshal properties: %w", err)
	}
	hash, err := base.PropertiesHash(p)
	if err != nil {
		return sql.NullString{}, sql.NullString{}, fmt.Errorf("hash properties: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, sql.NullString{String: hash, Valid: true}, nil
}

// errorColumns splits a node error into its stored columns: the engine
// code, the propagation error kind and the message without the code prefix.
func errorColumns(err error) (code, kind, message string) {
	if err == nil {
		return "", "", ""
	}
	kind = string(errs.KindOf(err))

	var ne *engine.NodeError
	if !errors.As(err, &ne) {
		return "", kind, err.Error()
	}
	message = ne.Message
	if ne.Err != nil {
		message = ne.Err.Error()
	}
	return string(ne.Code), kind, message
}
