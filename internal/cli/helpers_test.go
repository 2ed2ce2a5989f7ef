package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stratalab/strata/internal/testutil"
)

// writeHeartCSV writes a dataset matching the built-in schema to a temp dir.
func writeHeartCSV(t *testing.T, negatives, positives int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "heart.csv")
	require.NoError(t, os.WriteFile(path, []byte(testutil.HeartCSV(negatives, positives)), 0644))
	return path
}

// writeCohortFiles writes a cohort CSV and its CUE schema to a temp dir.
func writeCohortFiles(t *testing.T, c *testutil.Cohort) (csvPath, cuePath string) {
	t.Helper()
	dir := t.TempDir()
	csvPath = filepath.Join(dir, "trial.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(c.CSV()), 0644))
	cuePath = filepath.Join(dir, "trial.cue")
	require.NoError(t, os.WriteFile(cuePath, []byte(c.CUE()), 0644))
	return csvPath, cuePath
}
