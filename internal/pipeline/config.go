package pipeline

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stratalab/strata/internal/preprocess"
	"github.com/stratalab/strata/internal/split"
)

// Zero-variance policy names accepted in configuration files.
const (
	// ZeroVarianceFail aborts the run when a continuous column is constant
	// across the training partition. Default.
	ZeroVarianceFail = "fail"

	// ZeroVariancePass leaves constant columns unstandardized.
	ZeroVariancePass = "pass_through"
)

// Config describes a preparation run.
//
// Configs are loaded from YAML with strict field validation, so typos in
// field names surface as errors instead of silently falling back to
// defaults. Fields absent from the file keep their DefaultConfig values.
type Config struct {
	// Input is the path of the CSV file to prepare. Required.
	Input string `yaml:"input"`

	// Schema is the path of a CUE schema file. Empty selects the built-in
	// heart failure schema.
	Schema string `yaml:"schema,omitempty"`

	// Proportions is the target train/validation/test ratio.
	Proportions split.Proportions `yaml:"proportions,omitempty"`

	// Seed feeds the shuffle source. Ignored when Shuffle is false.
	Seed int64 `yaml:"seed,omitempty"`

	// Shuffle randomizes row order within each class before apportioning.
	Shuffle bool `yaml:"shuffle,omitempty"`

	// OnZeroVariance selects the policy for constant training columns:
	// "fail" (default) or "pass_through".
	OnZeroVariance string `yaml:"on_zero_variance,omitempty"`

	// OutputDir is where exports (partition CSVs, report, plots) are
	// written. The pipeline itself writes nothing; callers that export
	// read this. Empty means the current directory.
	OutputDir string `yaml:"output_dir,omitempty"`
}

// DefaultConfig returns a Config with conventional settings: 60/20/20
// proportions, seeded shuffling, and hard failure on zero variance.
// Input is left empty and must be set by the caller.
func DefaultConfig() Config {
	return Config{
		Proportions:    split.DefaultProportions,
		Seed:           split.DefaultSeed,
		Shuffle:        true,
		OnZeroVariance: ZeroVarianceFail,
	}
}

// ReadConfig reads and strictly decodes a configuration file without
// validating it. Callers that overlay values from another source, like the
// CLI merging flags over the file, validate the merged result instead.
//
// Decoding starts from DefaultConfig, so only fields present in the file
// are overridden. Unknown fields (typos like "porportions:") are rejected
// rather than ignored.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &cfg, nil
}

// LoadConfig reads, parses, and validates a pipeline configuration file.
func LoadConfig(path string) (*Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is complete and coherent.
// Proportion errors come back as ConfigurationError (BAD_PROPORTIONS).
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input is required")
	}

	if err := c.Proportions.Validate(); err != nil {
		return err
	}

	switch c.OnZeroVariance {
	case "", ZeroVarianceFail, ZeroVariancePass:
	default:
		return fmt.Errorf("on_zero_variance must be %q or %q, got %q",
			ZeroVarianceFail, ZeroVariancePass, c.OnZeroVariance)
	}

	return nil
}

// splitConfig maps the configuration onto the split package's Config.
func (c *Config) splitConfig() split.Config {
	return split.Config{
		Proportions: c.Proportions,
		Seed:        c.Seed,
		Shuffle:     c.Shuffle,
	}
}

// zeroVariancePolicy maps the configured policy name onto the preprocess
// package's enum. Empty selects the default fail-fast policy.
func (c *Config) zeroVariancePolicy() preprocess.ZeroVariancePolicy {
	if c.OnZeroVariance == ZeroVariancePass {
		return preprocess.PassThroughZeroVariance
	}
	return preprocess.FailOnZeroVariance
}
