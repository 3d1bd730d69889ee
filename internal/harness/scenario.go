package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines an end-to-end pipeline scenario: a config directory,
// a raw data directory, and the expectations evaluated against the run.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden
	// files and the fixed run ID.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config and Data are directories. Relative paths resolve against
	// the scenario file's location when loaded through LoadScenario.
	Config string `yaml:"config"`
	Data   string `yaml:"data"`

	// Catalog records the run into a throwaway catalog database inside
	// the scenario's output directory.
	Catalog bool `yaml:"catalog,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect holds the assertions evaluated against a completed run.
type Expect struct {
	Samples       int             `yaml:"samples"`
	LongRows      int             `yaml:"long_rows"`
	Excluded      int             `yaml:"excluded"`
	UnmappedCodes []UnmappedCode  `yaml:"unmapped_codes,omitempty"`
	Artifacts     []ArtifactCheck `yaml:"artifacts,omitempty"`
	Values        []ValueCheck    `yaml:"values,omitempty"`
}

// UnmappedCode is one expected pass-through code with its tally.
// The list must be given in (kind, code) order, matching the report.
type UnmappedCode struct {
	Kind        string `yaml:"kind"`
	Code        string `yaml:"code"`
	Occurrences int    `yaml:"occurrences"`
}

// ArtifactCheck pins an artifact's data row count.
type ArtifactCheck struct {
	Name string `yaml:"name"`
	Rows int    `yaml:"rows"`
}

// ValueCheck pins one (sample, taxon) rate in the long table. Rates are
// compared exactly; determinism is part of the contract under test.
type ValueCheck struct {
	Date       string  `yaml:"date"` // 2006-01-02
	Site       string  `yaml:"site"`
	SampleType string  `yaml:"sample_type"`
	Taxon      string  `yaml:"taxon"`
	OrganismsL float64 `yaml:"organisms_l"`
}

// LoadScenario reads and parses a scenario YAML file. Relative config
// and data paths are resolved against the scenario file's directory.
// Unknown YAML fields are rejected so key typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	base := filepath.Dir(path)
	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) {
		scenario.Config = filepath.Join(base, scenario.Config)
	}
	if scenario.Data != "" && !filepath.IsAbs(scenario.Data) {
		scenario.Data = filepath.Join(base, scenario.Data)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Config == "" {
		return fmt.Errorf("config directory is required")
	}
	if s.Data == "" {
		return fmt.Errorf("data directory is required")
	}

	for _, dir := range []string{s.Config, s.Data} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory not found: %s", dir)
		}
	}

	for i, c := range s.Expect.Values {
		if c.Date == "" || c.Site == "" || c.SampleType == "" || c.Taxon == "" {
			return fmt.Errorf("values[%d]: date, site, sample_type, and taxon are all required", i)
		}
	}
	for i, a := range s.Expect.Artifacts {
		if a.Name == "" {
			return fmt.Errorf("artifacts[%d]: name is required", i)
		}
	}
	for i, u := range s.Expect.UnmappedCodes {
		if u.Kind == "" || u.Code == "" {
			return fmt.Errorf("unmapped_codes[%d]: kind and code are required", i)
		}
	}
	return nil
}
