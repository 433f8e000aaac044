package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessageWithoutContext(t *testing.T) {
	err := Type("cannot infer numeric min on a non-numeric vector")
	assert.Equal(t, "cannot infer numeric min on a non-numeric vector", err.Error())
	assert.Equal(t, KindTypeError, err.Kind)
}

func TestMissingNamesArgument(t *testing.T) {
	assert.Equal(t, "data: missing", Missing("data").Error())
	assert.Equal(t, "null: missing, must be public", MissingPublic("null").Error())
	assert.True(t, Is(MissingPublic("edges"), KindMissingArgument))
}

func TestPrependStacksFramesOutermostFirst(t *testing.T) {
	inner := Shape("column count 2 does not match 3 columns")
	err := Prepend("data", Prepend("edges", inner))

	assert.Equal(t, "data: edges: column count 2 does not match 3 columns", err.Error())
	assert.Equal(t, KindShapeError, KindOf(err))
}

func TestPrependDoesNotMutateInput(t *testing.T) {
	inner := Invalid("must be left, center or right")
	_ = Prepend("side", inner)
	_ = Prepend("other", inner)

	assert.Empty(t, inner.Context)
	assert.Equal(t, "must be left, center or right", inner.Error())
}

func TestPrependNil(t *testing.T) {
	assert.NoError(t, Prepend("data", nil))
}

func TestPrependWrapsForeignErrors(t *testing.T) {
	sentinel := errors.New("boom")
	err := Prepend("value", sentinel)

	require.Error(t, err)
	assert.Equal(t, "value: boom", err.Error())
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, Kind(""), KindOf(err))
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("node %q: %w", "binned", NotImplemented("get_names for bin"))

	assert.Equal(t, KindNotImplemented, KindOf(err))
	assert.True(t, Is(err, KindNotImplemented))
	assert.False(t, Is(err, KindTypeError))
}

func TestKindOfNil(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
}
