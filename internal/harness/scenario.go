package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a named list of translation cases.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what this scenario covers.
	Description string `yaml:"description"`

	// Cases run independently; their order is kept in reports.
	Cases []Case `yaml:"cases"`
}

// Case is one input and its expected outcome.
type Case struct {
	Name string `yaml:"name"`

	// Query is a full request (entity set plus options). Exclusive with Filter.
	Query string `yaml:"query,omitempty"`

	// Filter is a bare $filter expression. Exclusive with Query.
	Filter string `yaml:"filter,omitempty"`

	// Expect is the expected output document.
	Expect map[string]any `yaml:"expect,omitempty"`

	// ExpectError is the expected error code instead of an output.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Error codes accepted by expect_error.
const (
	ErrorParse             = "parse"
	ErrorUnsupportedMethod = "unsupported_method"
	ErrorTooComplex        = "too_complex"
)

// Mode returns "query" or "filter".
func (c Case) Mode() string {
	if c.Query != "" {
		return "query"
	}
	return "filter"
}

// Input returns the query or filter text.
func (c Case) Input() string {
	if c.Query != "" {
		return c.Query
	}
	return c.Filter
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if err := validateCase(i, &c); err != nil {
			return err
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate name %q", i, c.Name)
		}
		seen[c.Name] = true
	}

	return nil
}

func validateCase(index int, c *Case) error {
	if c.Name == "" {
		return fmt.Errorf("cases[%d]: name is required", index)
	}

	switch {
	case c.Query == "" && c.Filter == "":
		return fmt.Errorf("cases[%d]: one of query or filter is required", index)
	case c.Query != "" && c.Filter != "":
		return fmt.Errorf("cases[%d]: query and filter are mutually exclusive", index)
	}

	switch {
	case c.Expect == nil && c.ExpectError == "":
		return fmt.Errorf("cases[%d]: one of expect or expect_error is required", index)
	case c.Expect != nil && c.ExpectError != "":
		return fmt.Errorf("cases[%d]: expect and expect_error are mutually exclusive", index)
	}

	switch c.ExpectError {
	case "", ErrorParse, ErrorUnsupportedMethod, ErrorTooComplex:
	default:
		return fmt.Errorf("cases[%d]: unknown expect_error %q", index, c.ExpectError)
	}

	return nil
}
