// Package ingest reads schema-described CSV data into dataset tables.
//
// The reader is strict: the CSV header must carry exactly the schema's
// source columns (extras and absences are errors), every cell must parse as
// a number, and all dataset invariants are enforced before a table is
// returned. Cells that fail to parse surface as NaN and are reported as
// missing values with per-column counts.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/stratalab/strata/internal/dataset"
)

// Report describes what was read, independent of whether a table could be
// built. Missing holds per-column NaN counts keyed by canonical name; it is
// populated even when Read fails so callers can surface the counts.
type Report struct {
	Source  string         `json:"source,omitempty"`
	Rows    int            `json:"rows"`
	Columns int            `json:"columns"`
	Missing map[string]int `json:"missing,omitempty"`
}

// TotalMissing returns the number of missing cells across all columns.
func (r *Report) TotalMissing() int {
	n := 0
	for _, c := range r.Missing {
		n += c
	}
	return n
}

// Read parses CSV from r against the schema and builds a validated table.
//
// Column order in the CSV is irrelevant: columns are matched by header name
// and the resulting table is in schema order with canonical names. On
// integrity failures Read returns a nil table, the report (with missing
// counts when applicable), and the error.
func Read(r io.Reader, s *dataset.Schema) (*dataset.Table, *Report, error) {
	report := &Report{Columns: len(s.Columns)}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, report, &SchemaError{
			Code:    ErrCodeMalformedInput,
			Message: fmt.Sprintf("reading input: %v", err),
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, report, &SchemaError{
			Code:    ErrCodeEmptyInput,
			Message: "input is empty",
		}
	}

	// Records are parsed before the dataframe is built: gota folds the
	// header-only case into a generic load error, but a present header with
	// zero data rows is an emptiness problem, not a malformed file.
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, report, &SchemaError{
			Code:    ErrCodeMalformedInput,
			Message: fmt.Sprintf("parsing CSV: %v", err),
		}
	}
	if len(records) <= 1 {
		return nil, report, &SchemaError{
			Code:    ErrCodeEmptyInput,
			Message: "input has a header but no data rows",
		}
	}

	// Force every schema column to float so unparseable cells surface as
	// NaN instead of flipping the whole column to strings.
	types := make(map[string]series.Type, len(s.Columns))
	for _, col := range s.Columns {
		types[col.SourceName()] = series.Float
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.WithTypes(types),
	)
	if df.Error() != nil {
		return nil, report, &SchemaError{
			Code:    ErrCodeMalformedInput,
			Message: fmt.Sprintf("building dataframe: %v", df.Error()),
		}
	}
	report.Rows = df.Nrow()

	if err := checkHeader(df.Names(), s); err != nil {
		return nil, report, err
	}

	// Extract in schema order; renames happen here (source header in,
	// canonical name out).
	cols := make([][]float64, len(s.Columns))
	for i, col := range s.Columns {
		cols[i] = df.Col(col.SourceName()).Float()
	}

	t, err := dataset.NewTable(s, cols)
	if err != nil {
		var ie *dataset.IntegrityError
		if errors.As(err, &ie) && ie.Missing != nil {
			report.Missing = ie.Missing
		}
		return nil, report, err
	}

	return t, report, nil
}

// ReadFile opens and reads a CSV file against the schema.
func ReadFile(path string, s *dataset.Schema) (*dataset.Table, *Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	t, report, readErr := Read(f, s)
	if report != nil {
		report.Source = path
	}
	return t, report, readErr
}

// checkHeader enforces set equality between the CSV header and the schema's
// source columns. Missing columns are reported in schema order, unexpected
// ones in CSV order, so failures are deterministic.
func checkHeader(names []string, s *dataset.Schema) error {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	for _, want := range s.SourceHeader() {
		if !present[want] {
			return &SchemaError{
				Code:    ErrCodeMissingColumn,
				Message: fmt.Sprintf("schema column %q not found in CSV header", want),
				Column:  want,
			}
		}
	}

	expected := make(map[string]bool, len(s.Columns))
	for _, want := range s.SourceHeader() {
		expected[want] = true
	}
	for _, n := range names {
		if !expected[n] {
			return &SchemaError{
				Code:    ErrCodeUnexpectedColumn,
				Message: fmt.Sprintf("CSV header carries column %q not declared in the schema", n),
				Column:  n,
			}
		}
	}

	return nil
}
