package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratalab/strata/internal/dataset"
	"github.com/stratalab/strata/internal/testutil"
)

func TestReadValidCSV(t *testing.T) {
	cohort := testutil.NewCohort(3, 2)

	tbl, report, err := Read(strings.NewReader(cohort.CSV()), cohort.Schema())
	require.NoError(t, err)

	assert.Equal(t, 5, tbl.Rows())
	assert.Equal(t, 5, report.Rows)
	assert.Equal(t, 5, report.Columns)
	assert.Empty(t, report.Missing)

	// The renamed label is reachable under its canonical name.
	assert.Equal(t, []float64{0, 0, 0, 1, 1}, tbl.Col("death_event"))
}

func TestReadMatchesDirectTableBuild(t *testing.T) {
	cohort := testutil.NewCohort(4, 3)

	viaCSV, _, err := Read(strings.NewReader(cohort.CSV()), cohort.Schema())
	require.NoError(t, err)
	direct := cohort.MustTable()

	assert.Equal(t, dataset.Fingerprint(direct), dataset.Fingerprint(viaCSV),
		"CSV round trip must preserve content identity")
}

func TestReadReordersColumnsToSchemaOrder(t *testing.T) {
	// Same data, CSV column order scrambled.
	csv := "DEATH_EVENT,age,smoking,serum_sodium,followup_days\n" +
		"0,40,0,130,4\n" +
		"1,41,1,137,6\n"
	cohort := testutil.NewCohort(1, 1)

	tbl, _, err := Read(strings.NewReader(csv), cohort.Schema())
	require.NoError(t, err)

	assert.Equal(t, []float64{40, 41}, tbl.Col("age"))
	assert.Equal(t, []float64{0, 1}, tbl.Col("death_event"))
}

func TestReadMissingColumn(t *testing.T) {
	csv := "age,serum_sodium,smoking,followup_days\n40,130,0,4\n"
	cohort := testutil.NewCohort(1, 0)

	_, _, err := Read(strings.NewReader(csv), cohort.Schema())
	require.Error(t, err)
	assert.True(t, IsSchemaError(err, ErrCodeMissingColumn))
	assert.Contains(t, err.Error(), "DEATH_EVENT")
}

func TestReadUnexpectedColumn(t *testing.T) {
	csv := "age,serum_sodium,smoking,followup_days,DEATH_EVENT,extra\n" +
		"40,130,0,4,0,99\n"
	cohort := testutil.NewCohort(1, 0)

	_, _, err := Read(strings.NewReader(csv), cohort.Schema())
	require.Error(t, err)
	assert.True(t, IsSchemaError(err, ErrCodeUnexpectedColumn))
	assert.Contains(t, err.Error(), "extra")
}

func TestReadCanonicalHeaderRejectedWhenRenameDeclared(t *testing.T) {
	// The schema says the label arrives as DEATH_EVENT; a file already using
	// the canonical name is a different shape and must be rejected.
	csv := "age,serum_sodium,smoking,followup_days,death_event\n40,130,0,4,0\n"
	cohort := testutil.NewCohort(1, 0)

	_, _, err := Read(strings.NewReader(csv), cohort.Schema())
	require.Error(t, err)
	assert.True(t, IsSchemaError(err, ErrCodeMissingColumn))
}

func TestReadEmptyInput(t *testing.T) {
	cohort := testutil.NewCohort(1, 0)

	_, _, err := Read(strings.NewReader(""), cohort.Schema())
	assert.True(t, IsSchemaError(err, ErrCodeEmptyInput))

	_, _, err = Read(strings.NewReader("   \n  "), cohort.Schema())
	assert.True(t, IsSchemaError(err, ErrCodeEmptyInput))
}

func TestReadHeaderOnly(t *testing.T) {
	csv := "age,serum_sodium,smoking,followup_days,DEATH_EVENT\n"
	cohort := testutil.NewCohort(1, 0)

	_, _, err := Read(strings.NewReader(csv), cohort.Schema())
	require.Error(t, err)
	assert.True(t, IsSchemaError(err, ErrCodeEmptyInput))
	assert.Contains(t, err.Error(), "no data rows")
}

func TestReadRaggedRows(t *testing.T) {
	csv := "age,serum_sodium,smoking,followup_days,DEATH_EVENT\n" +
		"40,130,0,4,0\n" +
		"41,137,1\n" // short row
	cohort := testutil.NewCohort(1, 0)

	_, _, err := Read(strings.NewReader(csv), cohort.Schema())
	require.Error(t, err)
	assert.True(t, IsSchemaError(err, ErrCodeMalformedInput))
}

func TestReadMissingValuesCounted(t *testing.T) {
	csv := "age,serum_sodium,smoking,followup_days,DEATH_EVENT\n" +
		"40,,0,4,0\n" +
		",137,1,6,1\n" +
		"42,,0,8,0\n"
	cohort := testutil.NewCohort(2, 1)

	tbl, report, err := Read(strings.NewReader(csv), cohort.Schema())
	require.Error(t, err)
	assert.Nil(t, tbl)
	assert.True(t, dataset.IsIntegrityError(err, dataset.ErrCodeMissingValue))

	// The report still carries the counts so callers can surface them.
	require.NotNil(t, report)
	assert.Equal(t, map[string]int{"age": 1, "serum_sodium": 2}, report.Missing)
	assert.Equal(t, 3, report.TotalMissing())
}

func TestReadUnparseableCellIsMissing(t *testing.T) {
	csv := "age,serum_sodium,smoking,followup_days,DEATH_EVENT\n" +
		"forty,130,0,4,0\n"
	cohort := testutil.NewCohort(1, 0)

	_, report, err := Read(strings.NewReader(csv), cohort.Schema())
	require.Error(t, err)
	assert.True(t, dataset.IsIntegrityError(err, dataset.ErrCodeMissingValue))
	assert.Equal(t, map[string]int{"age": 1}, report.Missing)
}

func TestReadBinaryDomainViolation(t *testing.T) {
	csv := "age,serum_sodium,smoking,followup_days,DEATH_EVENT\n" +
		"40,130,2,4,0\n" // smoking=2
	cohort := testutil.NewCohort(1, 0)

	_, _, err := Read(strings.NewReader(csv), cohort.Schema())
	require.Error(t, err)
	assert.True(t, dataset.IsIntegrityError(err, dataset.ErrCodeBinaryDomain))
}

func TestReadBoundViolation(t *testing.T) {
	csv := "age,serum_sodium,smoking,followup_days,DEATH_EVENT\n" +
		"-40,130,0,4,0\n" // age below its 0 minimum
	cohort := testutil.NewCohort(1, 0)

	_, _, err := Read(strings.NewReader(csv), cohort.Schema())
	require.Error(t, err)
	assert.True(t, dataset.IsIntegrityError(err, dataset.ErrCodeBoundViolation))
}

func TestReadFile(t *testing.T) {
	cohort := testutil.NewCohort(2, 2)
	path := filepath.Join(t.TempDir(), "trial.csv")
	require.NoError(t, os.WriteFile(path, []byte(cohort.CSV()), 0o644))

	tbl, report, err := ReadFile(path, cohort.Schema())
	require.NoError(t, err)
	assert.Equal(t, 4, tbl.Rows())
	assert.Equal(t, path, report.Source)
}

func TestReadFileNotFound(t *testing.T) {
	cohort := testutil.NewCohort(1, 0)

	_, _, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), cohort.Schema())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening dataset")
}

func TestSchemaErrorFormatting(t *testing.T) {
	withColumn := &SchemaError{Code: ErrCodeMissingColumn, Message: "not found", Column: "age"}
	assert.Equal(t, "MISSING_COLUMN: not found (column=age)", withColumn.Error())

	bare := &SchemaError{Code: ErrCodeEmptyInput, Message: "input is empty"}
	assert.Equal(t, "EMPTY_INPUT: input is empty", bare.Error())
}
