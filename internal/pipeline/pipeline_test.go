package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/stratalab/strata/internal/dataset"
	"github.com/stratalab/strata/internal/preprocess"
	"github.com/stratalab/strata/internal/split"
	"github.com/stratalab/strata/internal/testutil"
)

// writeCohort materializes a cohort as CSV and CUE schema files in a temp
// directory and returns a config pointing at them.
func writeCohort(t *testing.T, c *testutil.Cohort) *Config {
	t.Helper()
	dir := t.TempDir()

	input := filepath.Join(dir, "trial.csv")
	require.NoError(t, os.WriteFile(input, []byte(c.CSV()), 0644))

	schema := filepath.Join(dir, "trial.cue")
	require.NoError(t, os.WriteFile(schema, []byte(c.CUE()), 0644))

	cfg := DefaultConfig()
	cfg.Input = input
	cfg.Schema = schema
	return &cfg
}

// testRunner returns a Runner with a fixed run ID and a silenced logger.
func testRunner(id string) *Runner {
	return &Runner{
		IDs:    testutil.NewFixedRunIDGenerator(id),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRun_ProducesResult(t *testing.T) {
	cohort := testutil.NewCohort(60, 40)
	cfg := writeCohort(t, cohort)
	cfg.Shuffle = false

	res, err := testRunner("run-001").Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "run-001", res.RunID)
	assert.Equal(t, "trial", res.Schema.Name)
	assert.Equal(t, 100, res.Table.Rows())
	assert.Equal(t, 100, res.Summary.Rows)
	assert.Equal(t, 0, res.Ingest.TotalMissing())

	// 60/20/20 of each class: 36/12/12 negatives plus 24/8/8 positives.
	assert.Len(t, res.Partition.Train, 60)
	assert.Len(t, res.Partition.Validation, 20)
	assert.Len(t, res.Partition.Test, 20)

	assert.InDelta(t, 0.4, res.Balance.Train.Fraction(1), 1e-12)
	assert.InDelta(t, 0.4, res.Balance.Validation.Fraction(1), 1e-12)
	assert.InDelta(t, 0.4, res.Balance.Test.Fraction(1), 1e-12)

	// Model columns: age, serum_sodium, smoking. The excluded follow-up
	// column and the label never reach the matrix.
	rows, cols := res.Sets.Train.X.Dims()
	assert.Equal(t, 60, rows)
	assert.Equal(t, 3, cols)
	assert.Len(t, res.Sets.Train.Y, 60)

	ones := 0
	for _, y := range res.Sets.Train.Y {
		if y == 1 {
			ones++
		}
	}
	assert.Equal(t, 24, ones)

	assert.Equal(t, dataset.Fingerprint(res.Table), res.Manifest.Fingerprint)
	assert.Positive(t, res.Elapsed)
}

func TestRun_Deterministic(t *testing.T) {
	cohort := testutil.NewCohort(35, 25)
	cfg := writeCohort(t, cohort)
	cfg.Seed = 11

	a, err := testRunner("run-a").Run(context.Background(), cfg)
	require.NoError(t, err)
	b, err := testRunner("run-b").Run(context.Background(), cfg)
	require.NoError(t, err)

	// Everything except the run ID is identical across runs.
	assert.Equal(t, a.Manifest, b.Manifest)
	assert.Equal(t, a.Partition.Train, b.Partition.Train)
	assert.Equal(t, a.Transform.Columns(), b.Transform.Columns())
	assert.True(t, mat.Equal(a.Sets.Validation.X, b.Sets.Validation.X))
	assert.Equal(t, a.Sets.Test.Y, b.Sets.Test.Y)
}

func TestRun_BuiltinSchema(t *testing.T) {
	// Five rows per class is enough for every partition to receive at
	// least one row of each class under 60/20/20.
	dir := t.TempDir()
	input := filepath.Join(dir, "heart.csv")
	require.NoError(t, os.WriteFile(input, []byte(testutil.HeartCSV(5, 5)), 0644))

	cfg := DefaultConfig()
	cfg.Input = input

	res, err := testRunner("run-builtin").Run(context.Background(), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "heart_failure", res.Schema.Name)
	assert.Equal(t, 10, res.Table.Rows())

	// Twelve features minus the excluded follow-up column.
	_, cols := res.Sets.Train.X.Dims()
	assert.Equal(t, 11, cols)
}

func TestRun_IntegrityErrorSurfaces(t *testing.T) {
	cohort := testutil.NewCohort(6, 4)
	cfg := writeCohort(t, cohort)

	// Corrupt one age cell so it no longer parses as a number.
	data, err := os.ReadFile(cfg.Input)
	require.NoError(t, err)
	corrupted := strings.Replace(string(data), "40,", "forty,", 1)
	require.NoError(t, os.WriteFile(cfg.Input, []byte(corrupted), 0644))

	_, err = testRunner("run-bad").Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, dataset.IsIntegrityError(err, dataset.ErrCodeMissingValue))
	assert.Contains(t, err.Error(), "failed to ingest")
}

func TestRun_ZeroVariancePolicy(t *testing.T) {
	// Constant age across every row trips the zero-variance guard.
	rows := []string{"age,serum_sodium,smoking,followup_days,DEATH_EVENT"}
	for i := 0; i < 12; i++ {
		label := 0
		if i >= 8 {
			label = 1
		}
		rows = append(rows, fmt.Sprintf("50,%d,%d,%d,%d", 130+i%15, i%2, 4+2*i, label))
	}

	dir := t.TempDir()
	input := filepath.Join(dir, "flat.csv")
	require.NoError(t, os.WriteFile(input, []byte(strings.Join(rows, "\n")+"\n"), 0644))
	schema := filepath.Join(dir, "trial.cue")
	require.NoError(t, os.WriteFile(schema, []byte(testutil.NewCohort(0, 0).CUE()), 0644))

	cfg := DefaultConfig()
	cfg.Input = input
	cfg.Schema = schema

	_, err := testRunner("run-flat").Run(context.Background(), &cfg)
	require.Error(t, err)
	assert.True(t, preprocess.IsDivideByZeroError(err))

	cfg.OnZeroVariance = ZeroVariancePass
	res, err := testRunner("run-flat").Run(context.Background(), &cfg)
	require.NoError(t, err)

	byName := map[string]preprocess.ColumnTransform{}
	for _, ct := range res.Transform.Columns() {
		byName[ct.Name] = ct
	}
	age, ok := byName["age"]
	require.True(t, ok)
	assert.False(t, age.Standardize)
	assert.True(t, byName["serum_sodium"].Standardize)
}

func TestRun_EmptyStratum(t *testing.T) {
	cohort := testutil.NewCohort(5, 2)
	cfg := writeCohort(t, cohort)
	cfg.Shuffle = false

	_, err := testRunner("run-thin").Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, split.IsConfigurationError(err, split.ErrCodeEmptyStratum))
	assert.Contains(t, err.Error(), "EMPTY_STRATUM")
}

func TestRun_ContextCancelled(t *testing.T) {
	cohort := testutil.NewCohort(6, 4)
	cfg := writeCohort(t, cohort)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testRunner("run-cancelled").Run(ctx, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_InvalidConfigRejected(t *testing.T) {
	_, err := Run(context.Background(), &Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input is required")
}
