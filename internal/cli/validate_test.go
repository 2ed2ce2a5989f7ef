package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratalab/strata/internal/testutil"
)

func TestValidateBuiltinSchema(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ Schema valid (heart_failure)")
}

func TestValidateCustomSchema(t *testing.T) {
	_, cuePath := writeCohortFiles(t, testutil.NewCohort(3, 2))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Schema: cuePath}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ Schema valid (trial)")
}

func TestValidateSchemaAndData(t *testing.T) {
	csvPath, cuePath := writeCohortFiles(t, testutil.NewCohort(6, 4))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Schema: cuePath}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{csvPath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ Schema valid (trial)")
	assert.Contains(t, buf.String(), "✓ Data valid (10 rows)")
}

func TestValidateDataAgainstBuiltinSchema(t *testing.T) {
	csvPath := writeHeartCSV(t, 5, 5)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{csvPath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ Data valid (10 rows)")
}

func TestValidateCollectsAllSchemaErrors(t *testing.T) {
	// Two independent violations: unknown label and unknown exclude.
	src := `
		dataset: bad: {
			label: "missing"
			exclude: ["ghost"]
			columns: [{name: "x", kind: "continuous"}]
		}
	`
	cuePath := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(cuePath, []byte(src), 0644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Schema: cuePath}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 2 error(s)")

	output := buf.String()
	assert.Contains(t, output, "✗ Validation failed")
	assert.Contains(t, output, "E104")
	assert.Contains(t, output, "E108")
}

func TestValidateStructuralSchemaError(t *testing.T) {
	cuePath := filepath.Join(t.TempDir(), "broken.cue")
	require.NoError(t, os.WriteFile(cuePath, []byte("dataset: { label: }"), 0644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Schema: cuePath}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ Validation failed")
}

func TestValidateDataIntegrityFailure(t *testing.T) {
	cohort := testutil.NewCohort(6, 4)
	csvPath, cuePath := writeCohortFiles(t, cohort)

	// Corrupt one cell: a non-numeric age parses to NaN.
	data, readErr := os.ReadFile(csvPath)
	require.NoError(t, readErr)
	corrupted := strings.Replace(string(data), "40,", "forty,", 1)
	require.NoError(t, os.WriteFile(csvPath, []byte(corrupted), 0644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Schema: cuePath}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{csvPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "MISSING_VALUE")
}

func TestValidateHeaderMismatch(t *testing.T) {
	cohort := testutil.NewCohort(3, 2)
	_, cuePath := writeCohortFiles(t, cohort)

	// A heart failure CSV does not match the trial schema's header.
	csvPath := writeHeartCSV(t, 3, 2)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Schema: cuePath}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{csvPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ Validation failed")
}

func TestValidateMissingDataFile(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "nope.csv")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), ErrCodeNotFound)
}

func TestValidateMissingSchemaFile(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Schema: filepath.Join(t.TempDir(), "nope.cue")}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateJSONSuccess(t *testing.T) {
	csvPath, cuePath := writeCohortFiles(t, testutil.NewCohort(6, 4))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json", Schema: cuePath}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{csvPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, "trial", data["dataset"])
	assert.Equal(t, float64(10), data["rows"])
}

func TestValidateJSONFailure(t *testing.T) {
	src := `
		dataset: bad: {
			label: "missing"
			exclude: ["ghost"]
			columns: [{name: "x", kind: "continuous"}]
		}
	`
	cuePath := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(cuePath, []byte(src), 0644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json", Schema: cuePath}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	errs, ok := data["errors"].([]interface{})
	require.True(t, ok)
	assert.Len(t, errs, 2)
}
