package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Scenario is one conformance scenario.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// MaxCallDepth overrides the engine's call depth bound when positive.
	MaxCallDepth int `yaml:"max_call_depth,omitempty"`

	// Steps run in order on one engine, one batch per step.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one batch. Exactly one of Tests, File and REPL is set.
type Step struct {
	Tests  []SourceFile `yaml:"tests,omitempty"`
	File   *SourceFile  `yaml:"file,omitempty"`
	REPL   *string      `yaml:"repl,omitempty"`
	Expect *Expect      `yaml:"expect,omitempty"`
}

// SourceFile is a file submitted by a step.
type SourceFile struct {
	Path    string `yaml:"path"`
	Content string `yaml:"content"`
}

// Expect constrains the outcome of one step. Unset fields are not checked.
type Expect struct {
	// Output is the exact text the step writes.
	Output *string `yaml:"output,omitempty"`

	// Error is required when the step is expected to roll back. A step
	// without it must commit.
	Error *ExpectError `yaml:"error,omitempty"`

	// Executed and Reused are the exact sets of test ids the step ran and
	// carried forward. Only meaningful for tests steps.
	Executed []string `yaml:"executed,omitempty"`
	Reused   []string `yaml:"reused,omitempty"`
}

// ExpectError describes an expected rollback.
type ExpectError struct {
	Code    string `yaml:"code,omitempty"`
	Message string `yaml:"message,omitempty"`
	// Line and Column are 1-based; zero skips the check.
	Line   int `yaml:"line,omitempty"`
	Column int `yaml:"column,omitempty"`
}

// Assertion checks the state left after the last step.
type Assertion struct {
	// Type is one of census, journal_outcome, test_result.
	Type string `yaml:"type"`

	// Table and Expect are used by census. Expect keys are old_only,
	// new_only and new_and_old.
	Table  string         `yaml:"table,omitempty"`
	Expect map[string]int `yaml:"expect,omitempty"`

	// Step (1-based) and Outcome are used by journal_outcome.
	Step    int    `yaml:"step,omitempty"`
	Outcome string `yaml:"outcome,omitempty"`

	// Test and Passed are used by test_result.
	Test   string `yaml:"test,omitempty"`
	Passed *bool  `yaml:"passed,omitempty"`
}

// Assertion types.
const (
	AssertCensus         = "census"
	AssertJournalOutcome = "journal_outcome"
	AssertTestResult     = "test_result"
)

var censusKeys = []string{"old_only", "new_only", "new_and_old"}

// LoadScenario reads and validates one scenario file. Unknown YAML fields
// are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML %s: %w", path, err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file directly under dir,
// sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, len(s.Steps)); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step Step) error {
	set := 0
	if len(step.Tests) > 0 {
		set++
	}
	if step.File != nil {
		set++
	}
	if step.REPL != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of tests, file, repl is required", index)
	}

	files := step.Tests
	if step.File != nil {
		files = []SourceFile{*step.File}
	}
	for j, f := range files {
		if f.Path == "" {
			return fmt.Errorf("steps[%d]: file %d: path is required", index, j)
		}
	}

	if e := step.Expect; e != nil && len(step.Tests) == 0 && (e.Executed != nil || e.Reused != nil) {
		return fmt.Errorf("steps[%d]: executed and reused apply only to tests steps", index)
	}
	return nil
}

func validateAssertion(index int, a Assertion, steps int) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertCensus:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for census", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for census", index)
		}
		for k := range a.Expect {
			if !slices.Contains(censusKeys, k) {
				return fmt.Errorf("assertions[%d]: unknown census key %q", index, k)
			}
		}
	case AssertJournalOutcome:
		if a.Step < 1 || a.Step > steps {
			return fmt.Errorf("assertions[%d]: step must be between 1 and %d", index, steps)
		}
		if a.Outcome == "" {
			return fmt.Errorf("assertions[%d]: outcome is required for journal_outcome", index)
		}
	case AssertTestResult:
		if a.Test == "" {
			return fmt.Errorf("assertions[%d]: test is required for test_result", index)
		}
		if a.Passed == nil {
			return fmt.Errorf("assertions[%d]: passed is required for test_result", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
