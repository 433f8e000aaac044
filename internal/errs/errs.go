// Package errs defines the typed failures raised while inferring and
// propagating properties.
//
// Every failure carries a Kind and a growable list of context frames. Each
// fallible layer pushes the name of the argument it was handling with Prepend
// before returning, so a driver-level message always names the offending
// input:
//
//	data: edges: column count 2 does not match 3 columns
//
// A failure is terminal for the node that raised it. Nothing in this module
// retries or suppresses an error.
package errs

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Kind categorizes a propagation failure.
type Kind string

const (
	// KindMissingArgument indicates a required public or data argument is absent.
	KindMissingArgument Kind = "MISSING_ARGUMENT"

	// KindTypeError indicates a base-type mismatch.
	KindTypeError Kind = "TYPE_ERROR"

	// KindShapeError indicates a rank, column-count or record-count problem.
	KindShapeError Kind = "SHAPE_ERROR"

	// KindInvalidArgument indicates an operator parameter outside its domain.
	KindInvalidArgument Kind = "INVALID_ARGUMENT"

	// KindNotImplemented indicates an unsupported capability.
	KindNotImplemented Kind = "NOT_IMPLEMENTED"
)

// Error is a propagation failure with context frames.
// Context is ordered outermost first.
type Error struct {
	Kind    Kind
	Context []string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return strings.Join(e.Context, ": ") + ": " + e.Message
}

// Missing reports that the named argument is absent.
func Missing(name string) *Error {
	return &Error{Kind: KindMissingArgument, Context: []string{name}, Message: "missing"}
}

// MissingPublic reports that the named argument is absent from the public arguments.
func MissingPublic(name string) *Error {
	return &Error{Kind: KindMissingArgument, Context: []string{name}, Message: "missing, must be public"}
}

// Type creates a KindTypeError.
func Type(format string, args ...any) *Error {
	return &Error{Kind: KindTypeError, Message: fmt.Sprintf(format, args...)}
}

// Shape creates a KindShapeError.
func Shape(format string, args ...any) *Error {
	return &Error{Kind: KindShapeError, Message: fmt.Sprintf(format, args...)}
}

// Invalid creates a KindInvalidArgument.
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NotImplemented creates a KindNotImplemented for the named operation.
func NotImplemented(operation string) *Error {
	return &Error{Kind: KindNotImplemented, Message: operation + " is not implemented"}
}

// Prepend pushes frame onto the context of err and returns the result.
//
// The input error is never mutated. Errors that are not *Error are wrapped
// with fmt.Errorf so errors.Is/As still reach them. Prepend(frame, nil)
// returns nil.
func Prepend(frame string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		return fmt.Errorf("%s: %w", frame, err)
	}
	return &Error{
		Kind:    e.Kind,
		Context: append([]string{frame}, slices.Clone(e.Context)...),
		Message: e.Message,
	}
}

// KindOf returns the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
