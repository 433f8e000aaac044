package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dpvalidate/internal/base"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func loadErrorCode(t *testing.T, err error) string {
	t.Helper()
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr), "expected *LoadError, got %T", err)
	return loadErr.Code
}

func TestLoadGraphFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "income.cue", binGraph)

	g, err := LoadGraph(path)
	require.NoError(t, err)
	assert.Equal(t, "income", g.Name)
	assert.Len(t, g.Nodes, 4)
}

func TestLoadGraphDefaultsNameToFile(t *testing.T) {
	src := `node: edges: { component: "literal", value: { type: "int", jagged: [[1, 2]] } }`
	path := writeFile(t, t.TempDir(), "ages.cue", src)

	g, err := LoadGraph(path)
	require.NoError(t, err)
	assert.Equal(t, "ages", g.Name)
}

func TestLoadGraphDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sources.cue", `
package income

node: raw: {
	component: "source"
	properties: { data_type: "float", num_columns: 1 }
}
`)
	writeFile(t, dir, "bins.cue", `
package income

node: edges: { component: "literal", value: { type: "float", jagged: [[0, 5, 10]] } }
node: nulls: { component: "literal", value: { type: "float", array: -1 } }
node: binned: {
	component: "bin"
	side: "right"
	args: { data: "raw", edges: "edges", null: "nulls" }
}
`)

	g, err := LoadGraph(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), g.Name)
	assert.Equal(t, []string{"binned", "edges", "nulls", "raw"}, g.SortedIDs())
}

func TestLoadGraphErrors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		_, err := LoadGraph(filepath.Join(t.TempDir(), "missing.cue"))
		assert.Equal(t, ErrCodeNotFound, loadErrorCode(t, err))
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := LoadGraph(t.TempDir())
		assert.Equal(t, ErrCodeNoFiles, loadErrorCode(t, err))
	})

	t.Run("invalid CUE", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "bad.cue", `node: { raw: `)
		_, err := LoadGraph(path)
		assert.Equal(t, ErrCodeBuildFailed, loadErrorCode(t, err))
	})

	t.Run("missing component", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "bad.cue", `node: raw: { properties: { data_type: "float" } }`)
		_, err := LoadGraph(path)
		assert.Equal(t, ErrCodeCompile, loadErrorCode(t, err))
		assert.Contains(t, err.Error(), "component")
	})
}

func TestFindCUEFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0755))
	writeFile(t, dir, "a.cue", "")
	writeFile(t, sub, "b.cue", "")
	writeFile(t, dir, "notes.txt", "")

	files, err := FindCUEFiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.cue"), filepath.Join(sub, "b.cue")}, files)
}

func TestLoadValues(t *testing.T) {
	src := `
ages: { type: "int", array: [31, 45, 27] }
edges: { type: "float", jagged: [[0, 5, 10]] }
`
	values, err := LoadValues(writeFile(t, t.TempDir(), "values.cue", src))
	require.NoError(t, err)
	require.Len(t, values, 2)

	ages, ok := values["ages"].(*base.Array[int64])
	require.True(t, ok)
	assert.Equal(t, []int64{31, 45, 27}, ages.Data)

	edges, ok := values["edges"].(*base.JaggedOf[float64])
	require.True(t, ok)
	assert.Equal(t, [][]float64{{0, 5, 10}}, edges.Columns)
}

func TestLoadValuesErrors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		_, err := LoadValues(filepath.Join(t.TempDir(), "missing.cue"))
		assert.Equal(t, ErrCodeNotFound, loadErrorCode(t, err))
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := LoadValues(writeFile(t, t.TempDir(), "empty.cue", ""))
		assert.Equal(t, ErrCodeCompile, loadErrorCode(t, err))
	})

	t.Run("missing type", func(t *testing.T) {
		_, err := LoadValues(writeFile(t, t.TempDir(), "bad.cue", `ages: { array: [1] }`))
		assert.Equal(t, ErrCodeCompile, loadErrorCode(t, err))
		assert.Contains(t, err.Error(), "ages: ")
	})
}
