package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sparcsched/internal/config"
)

// Scenario is one ordering test over one routine.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Routine is the path of the routine description. Relative paths are
	// resolved against the scenario file's directory by LoadScenario.
	Routine string `yaml:"routine"`

	// Scheduler is the registered scheduler name. Empty means "sparc".
	Scheduler string `yaml:"scheduler,omitempty"`

	// Policy is the selection policy. Empty means filter.
	Policy config.Policy `yaml:"policy,omitempty"`

	// ResetPerBlock clears hazard trackers at every block start.
	ResetPerBlock bool `yaml:"reset_per_block,omitempty"`

	// SessionID fixes the trace session ID. Empty uses the test default.
	SessionID string `yaml:"session_id,omitempty"`

	Assertions []Assertion `yaml:"assertions"`
}

// Assertion checks the final schedule.
type Assertion struct {
	// Type is one of before, not_adjacent, last, count.
	Type string `yaml:"type"`

	// First and Then name nodes (before, not_adjacent).
	First string `yaml:"first,omitempty"`
	Then  string `yaml:"then,omitempty"`

	// Node names a node (last).
	Node string `yaml:"node,omitempty"`

	// Block names a block (count).
	Block string `yaml:"block,omitempty"`

	// Count is the expected number of scheduled nodes (count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertBefore      = "before"
	AssertNotAdjacent = "not_adjacent"
	AssertLast        = "last"
	AssertCount       = "count"
)

// LoadScenario reads and parses a scenario YAML file, resolving the
// routine path relative to the file. Unknown fields (typos) and missing
// required fields are errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Routine != "" && !filepath.IsAbs(scenario.Routine) {
		scenario.Routine = filepath.Join(filepath.Dir(path), scenario.Routine)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Routine == "" {
		return fmt.Errorf("routine is required")
	}
	if _, err := os.Stat(s.Routine); os.IsNotExist(err) {
		return fmt.Errorf("routine file not found: %s", s.Routine)
	}
	if s.Policy != "" && !config.IsValidPolicy(s.Policy) {
		return fmt.Errorf("invalid policy %q", s.Policy)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertBefore, AssertNotAdjacent:
		if a.First == "" || a.Then == "" {
			return fmt.Errorf("assertions[%d]: first and then are required for %s", index, a.Type)
		}
	case AssertLast:
		if a.Node == "" {
			return fmt.Errorf("assertions[%d]: node is required for last", index)
		}
	case AssertCount:
		if a.Block == "" {
			return fmt.Errorf("assertions[%d]: block is required for count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
