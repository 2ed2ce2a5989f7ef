package harness

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratalab/strata/internal/pipeline"
	"github.com/stratalab/strata/internal/testutil"
)

// runCohortPipeline executes a real preparation run over a staged cohort
// so assertions are checked against genuine pipeline output.
func runCohortPipeline(t *testing.T, negatives, positives int, shuffle bool) *pipeline.Result {
	t.Helper()

	dir := t.TempDir()
	cohort := testutil.NewCohort(negatives, positives)
	csvPath := filepath.Join(dir, "cohort.csv")
	cuePath := filepath.Join(dir, "trial.cue")
	require.NoError(t, os.WriteFile(csvPath, []byte(cohort.CSV()), 0644))
	require.NoError(t, os.WriteFile(cuePath, []byte(cohort.CUE()), 0644))

	cfg := pipeline.DefaultConfig()
	cfg.Input = csvPath
	cfg.Schema = cuePath
	cfg.Shuffle = shuffle

	runner := &pipeline.Runner{
		IDs:    testutil.NewFixedRunIDGenerator(""),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	res, err := runner.Run(context.Background(), &cfg)
	require.NoError(t, err)
	return res
}

func TestAssertPartitions_Pass(t *testing.T) {
	res := runCohortPipeline(t, 16, 16, false)

	failures := assertPartitions(res, &PartitionSizes{Train: 20, Validation: 6, Test: 6})
	assert.Empty(t, failures)
}

func TestAssertPartitions_SizeMismatch(t *testing.T) {
	res := runCohortPipeline(t, 16, 16, false)

	failures := assertPartitions(res, &PartitionSizes{Train: 19, Validation: 7, Test: 6})
	require.Len(t, failures, 2)
	assert.Contains(t, failures[0], "train partition size")
	assert.Contains(t, failures[0], "Expected: 19 rows")
	assert.Contains(t, failures[0], "Actual: 20 rows")
	assert.Contains(t, failures[1], "validation partition size")
}

func TestAssertPartitions_Structural(t *testing.T) {
	res := runCohortPipeline(t, 16, 16, false)

	// Point a test row at a train row: one duplicate, one row uncovered.
	res.Partition.Test[0] = res.Partition.Train[0]

	failures := assertPartitions(res, &PartitionSizes{Train: 20, Validation: 6, Test: 6})
	require.Len(t, failures, 2)
	assert.Contains(t, failures[0], "partition disjointness")
	assert.Contains(t, failures[1], "partition coverage")
}

func TestAssertBalance_Pass(t *testing.T) {
	res := runCohortPipeline(t, 16, 16, false)

	failures := assertBalance(res, &BalanceExpectation{Tolerance: 0.001})
	assert.Empty(t, failures)
}

func TestAssertBalance_Drift(t *testing.T) {
	// 15/17 rows apportion to 19/7/6; the 3:4 validation split drifts
	// about 0.04 from the dataset's 0.469/0.531.
	res := runCohortPipeline(t, 15, 17, false)

	failures := assertBalance(res, &BalanceExpectation{Tolerance: 0.01})
	require.Len(t, failures, 4)
	assert.Contains(t, failures[0], "validation balance for label 0")
	assert.Contains(t, failures[2], "test balance for label 0")

	assert.Empty(t, assertBalance(res, &BalanceExpectation{Tolerance: 0.05}))
}

func TestAssertTransform_Pass(t *testing.T) {
	res := runCohortPipeline(t, 16, 16, false)

	// Binary columns stay pass-through; only age and serum_sodium are
	// checked, and both standardize to exact moments here.
	failures := assertTransform(res, &TransformExpectation{MeanTolerance: 1e-9, StdTolerance: 1e-9})
	assert.Empty(t, failures)
}

func TestAssertTransform_Mismatch(t *testing.T) {
	res := runCohortPipeline(t, 16, 16, false)

	// Corrupt one cell of the transformed training matrix.
	res.Sets.Train.X.Set(0, 0, 1000)

	failures := assertTransform(res, &TransformExpectation{MeanTolerance: 1e-9, StdTolerance: 1e-9})
	require.Len(t, failures, 2)
	assert.Contains(t, failures[0], "standardized mean of age")
	assert.Contains(t, failures[1], "standardized stddev of age")
}

func TestAssertionError_Message(t *testing.T) {
	err := &AssertionError{
		Check:    "train partition size",
		Expected: "19 rows",
		Actual:   "20 rows",
	}

	msg := err.Error()
	assert.Contains(t, msg, "assertion failed: train partition size")
	assert.Contains(t, msg, "Expected: 19 rows")
	assert.Contains(t, msg, "Actual: 20 rows")
}

func TestEvaluateExpectations(t *testing.T) {
	res := runCohortPipeline(t, 16, 16, false)

	failures := EvaluateExpectations(res, &ExpectClause{
		Partitions: &PartitionSizes{Train: 20, Validation: 6, Test: 6},
		Balance:    &BalanceExpectation{Tolerance: 0.001},
		Transform:  &TransformExpectation{MeanTolerance: 1e-9, StdTolerance: 1e-9},
	})
	assert.Empty(t, failures)

	failures = EvaluateExpectations(res, &ExpectClause{
		Partitions: &PartitionSizes{Train: 10, Validation: 10, Test: 12},
		Balance:    &BalanceExpectation{Tolerance: 0.001},
	})
	require.Len(t, failures, 3)
	for _, failure := range failures {
		assert.Contains(t, failure, "partition size")
	}
}
