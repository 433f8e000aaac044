package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dpvalidate/internal/engine"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Graph is the path of the CUE graph descriptor, file or directory.
	// Relative paths are resolved against the scenario file location.
	Graph string `yaml:"graph"`

	// ExpectError, when set, requires the graph to be rejected as a whole
	// with an error containing this text.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Expect lists per-node outcomes. Nodes not listed are not checked.
	Expect []NodeExpectation `yaml:"expect,omitempty"`

	// Assertions validate the trace and the ledger.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// NodeExpectation specifies the expected outcome of one node.
// Empty fields are not checked.
type NodeExpectation struct {
	Node   string `yaml:"node"`
	Status string `yaml:"status"`

	// ErrorKind is the propagation error kind, e.g. TYPE_ERROR.
	ErrorKind string `yaml:"error_kind,omitempty"`

	// ErrorContains must be a substring of the node error.
	ErrorContains string `yaml:"error_contains,omitempty"`

	// DataType is the data_type of the output properties.
	DataType string `yaml:"data_type,omitempty"`

	// Categories are the per-column categories of a categorical nature.
	Categories any `yaml:"categories,omitempty"`
}

// Assertion validates the trace or the ledger.
type Assertion struct {
	// Type specifies the assertion type:
	// - "contains": node appears in the trace, with Status if set
	// - "order": Nodes were evaluated in order
	// - "status_count": exactly Count nodes finished with Status
	// - "ledger": the stored record of Node matches Expect
	Type string `yaml:"type"`

	// Node is the node ID (used by contains and ledger).
	Node string `yaml:"node,omitempty"`

	// Nodes is the expected evaluation order (used by order).
	Nodes []string `yaml:"nodes,omitempty"`

	// Status is the node status (used by contains and status_count).
	Status string `yaml:"status,omitempty"`

	// Count is the expected number of nodes (used by status_count).
	Count int `yaml:"count,omitempty"`

	// Expect contains expected record columns (used by ledger).
	// Subset match - only specified columns are validated.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertContains    = "contains"
	AssertOrder       = "order"
	AssertStatusCount = "status_count"
	AssertLedger      = "ledger"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Reject unknown fields so typos like "assertion:" fail loudly
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Graph != "" && !filepath.IsAbs(scenario.Graph) {
		scenario.Graph = filepath.Join(filepath.Dir(path), scenario.Graph)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the YAML scenario files directly under dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Graph == "" {
		return fmt.Errorf("graph is required")
	}
	if _, err := os.Stat(s.Graph); os.IsNotExist(err) {
		return fmt.Errorf("graph not found: %s", s.Graph)
	}

	if s.ExpectError != "" {
		if len(s.Expect) > 0 || len(s.Assertions) > 0 {
			return fmt.Errorf("expect_error cannot be combined with expect or assertions")
		}
		return nil
	}

	if len(s.Expect) == 0 && len(s.Assertions) == 0 {
		return fmt.Errorf("at least one expectation or assertion is required")
	}

	for i, e := range s.Expect {
		if e.Node == "" {
			return fmt.Errorf("expect[%d]: node is required", i)
		}
		if !validStatus(e.Status) {
			return fmt.Errorf("expect[%d]: status must be ok, failed or upstream_failed, got %q", i, e.Status)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertContains:
		if a.Node == "" {
			return fmt.Errorf("assertions[%d]: node is required for contains", index)
		}
		if a.Status != "" && !validStatus(a.Status) {
			return fmt.Errorf("assertions[%d]: unknown status %q", index, a.Status)
		}
	case AssertOrder:
		if len(a.Nodes) == 0 {
			return fmt.Errorf("assertions[%d]: nodes list is required for order", index)
		}
	case AssertStatusCount:
		if !validStatus(a.Status) {
			return fmt.Errorf("assertions[%d]: status is required for status_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for status_count", index)
		}
	case AssertLedger:
		if a.Node == "" {
			return fmt.Errorf("assertions[%d]: node is required for ledger", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for ledger", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func validStatus(s string) bool {
	switch engine.Status(s) {
	case engine.StatusOK, engine.StatusFailed, engine.StatusUpstreamFailed:
		return true
	}
	return false
}
