package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/stratalab/strata/internal/pipeline"
	"github.com/stratalab/strata/internal/split"
)

// Scenario describes one end-to-end preparation case: a dataset fixture,
// the run configuration, and the expectations to check against the outcome.
type Scenario struct {
	// Name identifies the scenario and doubles as the default golden
	// snapshot name.
	Name string `yaml:"name"`

	// Description states what the scenario exercises.
	Description string `yaml:"description"`

	// Dataset selects the input fixture.
	Dataset DatasetFixture `yaml:"dataset"`

	// Schema is the path of a CUE schema file. Empty selects the built-in
	// heart failure schema for csv fixtures; cohort fixtures stage their
	// own trial schema.
	Schema string `yaml:"schema,omitempty"`

	// Config overrides the pipeline defaults. Absent fields keep them.
	Config RunConfig `yaml:"config,omitempty"`

	// Expect holds the checks evaluated after the run.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Golden overrides the golden snapshot name. Empty defaults to Name.
	Golden string `yaml:"golden,omitempty"`

	// RunID pins the run identifier for byte-stable reports.
	// Empty selects "test-run-default".
	RunID string `yaml:"run_id,omitempty"`
}

// DatasetFixture selects the scenario input: a CSV file on disk or a
// synthetic cohort staged at run time. Exactly one must be set.
type DatasetFixture struct {
	// CSV is the path of a CSV fixture, resolved against the scenario's
	// base path.
	CSV string `yaml:"csv,omitempty"`

	// Cohort generates a deterministic synthetic dataset with exact
	// class counts.
	Cohort *CohortFixture `yaml:"cohort,omitempty"`
}

// CohortFixture holds the synthetic cohort's class counts.
type CohortFixture struct {
	Negatives int `yaml:"negatives"`
	Positives int `yaml:"positives"`
}

// RunConfig is the subset of the pipeline configuration a scenario may
// override.
type RunConfig struct {
	Proportions    split.Proportions `yaml:"proportions,omitempty"`
	Seed           int64             `yaml:"seed,omitempty"`
	Shuffle        bool              `yaml:"shuffle,omitempty"`
	OnZeroVariance string            `yaml:"on_zero_variance,omitempty"`
}

// defaultRunConfig mirrors pipeline.DefaultConfig so scenarios only state
// what they change.
func defaultRunConfig() RunConfig {
	return RunConfig{
		Proportions:    split.DefaultProportions,
		Seed:           split.DefaultSeed,
		Shuffle:        true,
		OnZeroVariance: pipeline.ZeroVarianceFail,
	}
}

// ExpectClause holds the checks evaluated against a completed run, or the
// error expected to abort it.
type ExpectClause struct {
	// Error expects the run to fail with a message containing this
	// substring. Error codes such as EMPTY_STRATUM or ZERO_VARIANCE work
	// well here. Excludes all other checks.
	Error string `yaml:"error,omitempty"`

	// Partitions expects exact partition sizes.
	Partitions *PartitionSizes `yaml:"partitions,omitempty"`

	// Balance bounds per-partition class-fraction drift.
	Balance *BalanceExpectation `yaml:"balance,omitempty"`

	// Transform bounds the standardized training columns' moments.
	Transform *TransformExpectation `yaml:"transform,omitempty"`
}

// PartitionSizes is the expected row count of each partition.
type PartitionSizes struct {
	Train      int `yaml:"train"`
	Validation int `yaml:"validation"`
	Test       int `yaml:"test"`
}

// BalanceExpectation bounds how far any partition's class fractions may
// drift from the whole dataset's.
type BalanceExpectation struct {
	Tolerance float64 `yaml:"tolerance"`
}

// TransformExpectation bounds the training partition's standardized
// moments: mean within MeanTolerance of 0, standard deviation within
// StdTolerance of 1.
type TransformExpectation struct {
	MeanTolerance float64 `yaml:"mean_tolerance"`
	StdTolerance  float64 `yaml:"std_tolerance"`
}

// LoadScenario reads and parses a scenario YAML file. Relative fixture and
// schema paths resolve against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads a scenario file and resolves relative
// fixture and schema paths against basePath instead of the file's own
// directory.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario := Scenario{Config: defaultRunConfig()}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Dataset.CSV != "" && !filepath.IsAbs(scenario.Dataset.CSV) {
		scenario.Dataset.CSV = filepath.Join(basePath, scenario.Dataset.CSV)
	}
	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) {
		scenario.Schema = filepath.Join(basePath, scenario.Schema)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// GoldenName returns the golden snapshot name: the explicit override when
// set, the scenario name otherwise.
func (s *Scenario) GoldenName() string {
	if s.Golden != "" {
		return s.Golden
	}
	return s.Name
}

// validateScenario checks required fields and referenced files.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	hasCSV := s.Dataset.CSV != ""
	hasCohort := s.Dataset.Cohort != nil
	if hasCSV == hasCohort {
		return fmt.Errorf("dataset requires exactly one of csv or cohort")
	}
	if hasCSV {
		if _, err := os.Stat(s.Dataset.CSV); err != nil {
			return fmt.Errorf("dataset file not found: %s", s.Dataset.CSV)
		}
	}
	if hasCohort {
		c := s.Dataset.Cohort
		if c.Negatives < 1 || c.Positives < 1 {
			return fmt.Errorf("cohort needs at least one row per class")
		}
	}

	if s.Schema != "" {
		if _, err := os.Stat(s.Schema); err != nil {
			return fmt.Errorf("schema file not found: %s", s.Schema)
		}
	}

	if s.Expect == nil {
		return fmt.Errorf("expect is required")
	}
	return validateExpect(s.Expect)
}

func validateExpect(e *ExpectClause) error {
	if e.Error != "" {
		if e.Partitions != nil || e.Balance != nil || e.Transform != nil {
			return fmt.Errorf("an expected error cannot be combined with result checks")
		}
		return nil
	}

	if e.Partitions == nil && e.Balance == nil && e.Transform == nil {
		return fmt.Errorf("expect needs an error or at least one result check")
	}
	if p := e.Partitions; p != nil {
		if p.Train < 1 || p.Validation < 1 || p.Test < 1 {
			return fmt.Errorf("partition sizes must be positive")
		}
	}
	if b := e.Balance; b != nil && b.Tolerance <= 0 {
		return fmt.Errorf("balance tolerance must be positive")
	}
	if tr := e.Transform; tr != nil && (tr.MeanTolerance <= 0 || tr.StdTolerance <= 0) {
		return fmt.Errorf("transform tolerances must be positive")
	}
	return nil
}
