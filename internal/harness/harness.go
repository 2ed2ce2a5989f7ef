package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/stratalab/strata/internal/pipeline"
	"github.com/stratalab/strata/internal/report"
	"github.com/stratalab/strata/internal/testutil"
)

// Run executes a scenario against the real pipeline.
//
// CSV fixtures run in place; cohort fixtures are staged into a temporary
// directory first and removed afterwards. The run pins its run ID and
// discards log output, so the result depends only on the scenario.
//
// Run returns an error only when the scenario cannot be executed at all
// (fixture staging failed). Pipeline failures and violated expectations
// are recorded on the Result.
func Run(scenario *Scenario) (*Result, error) {
	if scenario.Expect == nil {
		return nil, fmt.Errorf("invalid scenario: expect is required")
	}

	result := NewResult()

	cfg, cleanup, err := buildConfig(scenario)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	runner := &pipeline.Runner{
		IDs:    testutil.NewFixedRunIDGenerator(scenario.RunID),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	res, err := runner.Run(context.Background(), cfg)
	if err != nil {
		if want := scenario.Expect.Error; want != "" {
			if !strings.Contains(err.Error(), want) {
				result.AddError(fmt.Sprintf("run failed with %q, want an error containing %q", err, want))
			}
			return result, nil
		}
		result.AddError(fmt.Sprintf("run failed: %v", err))
		return result, nil
	}

	if want := scenario.Expect.Error; want != "" {
		result.AddError(fmt.Sprintf("run succeeded, want an error containing %q", want))
		return result, nil
	}

	result.RunID = res.RunID
	result.Report = report.Build(res)
	for _, msg := range EvaluateExpectations(res, scenario.Expect) {
		result.AddError(msg)
	}
	return result, nil
}

// buildConfig maps the scenario onto a pipeline configuration, staging
// synthetic fixtures on disk. The returned cleanup removes staged files
// and is safe to call unconditionally.
func buildConfig(scenario *Scenario) (*pipeline.Config, func(), error) {
	cfg := pipeline.DefaultConfig()
	cfg.Proportions = scenario.Config.Proportions
	cfg.Seed = scenario.Config.Seed
	cfg.Shuffle = scenario.Config.Shuffle
	cfg.OnZeroVariance = scenario.Config.OnZeroVariance
	cfg.Schema = scenario.Schema

	if scenario.Dataset.CSV != "" {
		cfg.Input = scenario.Dataset.CSV
		return &cfg, func() {}, nil
	}

	dir, err := os.MkdirTemp("", "strata-harness-")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stage fixture: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	cohort := testutil.NewCohort(scenario.Dataset.Cohort.Negatives, scenario.Dataset.Cohort.Positives)
	cfg.Input = filepath.Join(dir, "cohort.csv")
	if err := os.WriteFile(cfg.Input, []byte(cohort.CSV()), 0644); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to stage fixture: %w", err)
	}

	// The cohort's columns do not match the built-in schema, so an
	// unset schema stages the cohort's own.
	if cfg.Schema == "" {
		cfg.Schema = filepath.Join(dir, "trial.cue")
		if err := os.WriteFile(cfg.Schema, []byte(cohort.CUE()), 0644); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to stage fixture: %w", err)
		}
	}
	return &cfg, cleanup, nil
}
