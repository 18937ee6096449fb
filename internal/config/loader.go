// Package config loads and validates suite files describing a set of
// load-test scenarios.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/quantfold/surge/internal/loadtest"
)

// Suite is the decoded form of a suite file.
type Suite struct {
	Name      string     `yaml:"name" json:"name"`
	Scenarios []Scenario `yaml:"scenarios" json:"scenarios"`
}

// Scenario mirrors loadtest.ScenarioConfig with file-facing field names.
type Scenario struct {
	Name                   string   `yaml:"name" json:"name"`
	Kind                   string   `yaml:"kind" json:"kind"`
	DurationSeconds        int      `yaml:"durationSeconds" json:"durationSeconds"`
	Concurrency            int      `yaml:"concurrency" json:"concurrency"`
	TargetRatePerSecond    int      `yaml:"targetRatePerSecond" json:"targetRatePerSecond"`
	RampUpSeconds          int      `yaml:"rampUpSeconds" json:"rampUpSeconds"`
	TargetLatencyMillis    float64  `yaml:"targetLatencyMillis" json:"targetLatencyMillis"`
	MaxErrorRateFraction   float64  `yaml:"maxErrorRateFraction" json:"maxErrorRateFraction"`
	WorkloadSize           int      `yaml:"workloadSize" json:"workloadSize"`
	Subjects               []string `yaml:"subjects" json:"subjects"`
	Pacing                 string   `yaml:"pacing,omitempty" json:"pacing,omitempty"`
	OperationTimeoutMillis int      `yaml:"operationTimeoutMillis,omitempty" json:"operationTimeoutMillis,omitempty"`
}

// LoadSuite reads a YAML suite file, checks it against the embedded JSON
// Schema, and constructs validated scenario configs. All errors surface
// before any scenario could run.
func LoadSuite(path string) (*Suite, []loadtest.ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading suite file: %w", err)
	}
	return ParseSuite(data)
}

// ParseSuite parses and validates suite file contents.
func ParseSuite(data []byte) (*Suite, []loadtest.ScenarioConfig, error) {
	if err := validateAgainstSchema(data); err != nil {
		return nil, nil, err
	}

	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, nil, fmt.Errorf("parsing suite file: %w", err)
	}

	seen := make(map[string]bool, len(suite.Scenarios))
	scenarios := make([]loadtest.ScenarioConfig, 0, len(suite.Scenarios))
	for _, s := range suite.Scenarios {
		if seen[s.Name] {
			return nil, nil, fmt.Errorf("duplicate scenario name %q", s.Name)
		}
		seen[s.Name] = true

		sc, err := loadtest.NewScenarioConfig(loadtest.ScenarioConfig{
			Name:                   s.Name,
			Kind:                   loadtest.Kind(s.Kind),
			DurationSeconds:        s.DurationSeconds,
			Concurrency:            s.Concurrency,
			TargetRatePerSecond:    s.TargetRatePerSecond,
			RampUpSeconds:          s.RampUpSeconds,
			TargetLatencyMillis:    s.TargetLatencyMillis,
			MaxErrorRateFraction:   s.MaxErrorRateFraction,
			WorkloadSize:           s.WorkloadSize,
			Subjects:               s.Subjects,
			Pacing:                 loadtest.PacingPolicy(s.Pacing),
			OperationTimeoutMillis: s.OperationTimeoutMillis,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		scenarios = append(scenarios, sc)
	}

	return &suite, scenarios, nil
}

// validateAgainstSchema routes the YAML document through JSON so the
// schema validator sees canonical JSON types.
func validateAgainstSchema(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing suite file: %w", err)
	}

	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("normalizing suite file: %w", err)
	}
	var jsonDoc interface{}
	if err := json.Unmarshal(jsonBytes, &jsonDoc); err != nil {
		return fmt.Errorf("normalizing suite file: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("suite.json", bytes.NewReader([]byte(suiteSchema))); err != nil {
		return fmt.Errorf("loading suite schema: %w", err)
	}
	schema, err := compiler.Compile("suite.json")
	if err != nil {
		return fmt.Errorf("compiling suite schema: %w", err)
	}

	if err := schema.Validate(jsonDoc); err != nil {
		return fmt.Errorf("suite file is invalid: %w", err)
	}
	return nil
}
