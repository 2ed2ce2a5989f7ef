package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratalab/strata/internal/testutil"
)

func TestStatsText(t *testing.T) {
	csvPath, cuePath := writeCohortFiles(t, testutil.NewCohort(6, 4))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Schema: cuePath}
	cmd := NewStatsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{csvPath})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Dataset:     trial")
	assert.Contains(t, output, "Rows:        10")
	assert.Contains(t, output, "=== Class Balance ===")
	assert.Contains(t, output, "label 0:     6  ( 60.00%)")
	assert.Contains(t, output, "label 1:     4  ( 40.00%)")
	assert.Contains(t, output, "=== Columns ===")
	assert.Contains(t, output, "age")
	assert.Contains(t, output, "serum_sodium")
	assert.Contains(t, output, "followup_days")
}

func TestStatsJSON(t *testing.T) {
	csvPath, cuePath := writeCohortFiles(t, testutil.NewCohort(6, 4))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json", Schema: cuePath}
	cmd := NewStatsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{csvPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "trial", data["dataset"])
	assert.Equal(t, float64(10), data["rows"])
	assert.NotEmpty(t, data["fingerprint"])

	cols, ok := data["columns"].([]interface{})
	require.True(t, ok)
	assert.Len(t, cols, 5)
}

func TestStatsDeterministicFingerprint(t *testing.T) {
	cohort := testutil.NewCohort(6, 4)
	csvA, cueA := writeCohortFiles(t, cohort)
	csvB, cueB := writeCohortFiles(t, cohort)

	run := func(csvPath, cuePath string) string {
		buf := &bytes.Buffer{}
		rootOpts := &RootOptions{Format: "json", Schema: cuePath}
		cmd := NewStatsCommand(rootOpts)
		cmd.SetOut(buf)
		cmd.SetArgs([]string{csvPath})
		require.NoError(t, cmd.Execute())

		var resp CLIResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		return data["fingerprint"].(string)
	}

	assert.Equal(t, run(csvA, cueA), run(csvB, cueB),
		"same content must fingerprint identically regardless of path")
}

func TestStatsMissingFile(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewStatsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "nope.csv")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), ErrCodeNotFound)
}

func TestStatsHeaderMismatch(t *testing.T) {
	// Trial CSV against the builtin schema: header mismatch.
	csvTrial, _ := writeCohortFiles(t, testutil.NewCohort(3, 2))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewStatsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{csvTrial})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "MISSING_COLUMN")
}
