package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes a scenario file into a temp dir.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func incomeGraphPath(t *testing.T) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("testdata", "graphs", "income.cue"))
	require.NoError(t, err)
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "income_left.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "income_left", s.Name)
	assert.Equal(t, filepath.Join("testdata", "graphs", "income.cue"), s.Graph)
	require.Len(t, s.Expect, 2)
	assert.Equal(t, "binned", s.Expect[0].Node)
	assert.Equal(t, "ok", s.Expect[0].Status)
	require.Len(t, s.Assertions, 3)
	assert.Equal(t, AssertOrder, s.Assertions[0].Type)
	assert.Equal(t, []string{"edges", "nulls", "raw", "binned"}, s.Assertions[0].Nodes)
}

func TestLoadScenarioAbsoluteGraph(t *testing.T) {
	graph := incomeGraphPath(t)
	path := writeScenario(t, `
name: abs
description: "absolute graph path"
graph: `+graph+`
expect:
  - node: raw
    status: ok
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, graph, s.Graph)
}

func TestLoadScenarioErrors(t *testing.T) {
	graph := incomeGraphPath(t)

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "unknown field",
			content: "name: x\ndescription: d\ngraph: " + graph + "\nassertion: []\n",
			want:    "failed to parse YAML",
		},
		{
			name:    "missing name",
			content: "description: d\ngraph: " + graph + "\nexpect: [{node: raw, status: ok}]\n",
			want:    "name is required",
		},
		{
			name:    "missing description",
			content: "name: x\ngraph: " + graph + "\nexpect: [{node: raw, status: ok}]\n",
			want:    "description is required",
		},
		{
			name:    "missing graph",
			content: "name: x\ndescription: d\nexpect: [{node: raw, status: ok}]\n",
			want:    "graph is required",
		},
		{
			name:    "graph not found",
			content: "name: x\ndescription: d\ngraph: nowhere.cue\nexpect: [{node: raw, status: ok}]\n",
			want:    "graph not found",
		},
		{
			name:    "nothing to check",
			content: "name: x\ndescription: d\ngraph: " + graph + "\n",
			want:    "at least one expectation or assertion",
		},
		{
			name:    "bad status",
			content: "name: x\ndescription: d\ngraph: " + graph + "\nexpect: [{node: raw, status: done}]\n",
			want:    "expect[0]: status must be",
		},
		{
			name:    "expectation without node",
			content: "name: x\ndescription: d\ngraph: " + graph + "\nexpect: [{status: ok}]\n",
			want:    "expect[0]: node is required",
		},
		{
			name:    "unknown assertion",
			content: "name: x\ndescription: d\ngraph: " + graph + "\nassertions: [{type: final_state}]\n",
			want:    `unknown assertion type "final_state"`,
		},
		{
			name:    "order without nodes",
			content: "name: x\ndescription: d\ngraph: " + graph + "\nassertions: [{type: order}]\n",
			want:    "nodes list is required",
		},
		{
			name:    "ledger without expect",
			content: "name: x\ndescription: d\ngraph: " + graph + "\nassertions: [{type: ledger, node: raw}]\n",
			want:    "expect is required for ledger",
		},
		{
			name:    "status_count without status",
			content: "name: x\ndescription: d\ngraph: " + graph + "\nassertions: [{type: status_count, count: 1}]\n",
			want:    "status is required for status_count",
		},
		{
			name:    "expect_error with expectations",
			content: "name: x\ndescription: d\ngraph: " + graph + "\nexpect_error: cycle\nexpect: [{node: raw, status: ok}]\n",
			want:    "expect_error cannot be combined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestFindScenarios(t *testing.T) {
	files, err := FindScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{"ages_failures.yaml", "cyclic.yaml", "income_left.yaml"}, names)
}
