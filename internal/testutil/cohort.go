// Package testutil provides deterministic fixtures for strata tests:
// a synthetic cohort builder with exact class counts and a fixed run-ID
// generator for golden snapshots.
package testutil

import (
	"strconv"
	"strings"

	"github.com/stratalab/strata/internal/dataset"
)

// Cohort builds small deterministic datasets with exact class counts.
//
// Rows are laid out negatives first (label 0), then positives (label 1).
// Cell values are pure functions of the row index, so the same counts always
// produce byte-identical tables, CSVs, and fingerprints.
type Cohort struct {
	// Negatives is the number of label-0 rows (rows 0..Negatives-1).
	Negatives int

	// Positives is the number of label-1 rows (the remaining rows).
	Positives int
}

// NewCohort creates a cohort with the given class counts.
func NewCohort(negatives, positives int) *Cohort {
	return &Cohort{Negatives: negatives, Positives: positives}
}

// Rows returns the total row count.
func (c *Cohort) Rows() int {
	return c.Negatives + c.Positives
}

// Schema returns a fresh copy of the trial schema: two continuous features
// (age bounded at 0, serum_sodium unbounded), one binary feature, an
// excluded follow-up column, and a renamed binary label.
func (c *Cohort) Schema() *dataset.Schema {
	zero := 0.0
	return &dataset.Schema{
		Name: "trial",
		Columns: []dataset.Column{
			{Name: "age", Kind: dataset.KindContinuous, Min: &zero},
			{Name: "serum_sodium", Kind: dataset.KindContinuous},
			{Name: "smoking", Kind: dataset.KindBinary},
			{Name: "followup_days", Kind: dataset.KindContinuous, Min: &zero},
			{Name: "death_event", CSVName: "DEATH_EVENT", Kind: dataset.KindBinary},
		},
		Label:   "death_event",
		Exclude: []string{"followup_days"},
	}
}

// CUE renders the trial schema as CUE source for tests that exercise the
// file-based schema path. Compiling the result yields exactly Schema().
func (c *Cohort) CUE() string {
	return `dataset: trial: {
	label: "death_event"
	exclude: ["followup_days"]
	columns: [
		{name: "age", kind: "continuous", min: 0},
		{name: "serum_sodium", kind: "continuous"},
		{name: "smoking", kind: "binary"},
		{name: "followup_days", kind: "continuous", min: 0},
		{name: "death_event", csv: "DEATH_EVENT", kind: "binary"},
	]
}
`
}

// Columns returns the cohort's column-major data in schema order.
func (c *Cohort) Columns() [][]float64 {
	n := c.Rows()
	age := make([]float64, n)
	sodium := make([]float64, n)
	smoking := make([]float64, n)
	followup := make([]float64, n)
	label := make([]float64, n)

	for i := 0; i < n; i++ {
		age[i] = float64(40 + i%40)
		sodium[i] = float64(130 + (i*7)%15)
		smoking[i] = float64(i % 2)
		followup[i] = float64(4 + 2*i)
		if i >= c.Negatives {
			label[i] = 1
		}
	}

	return [][]float64{age, sodium, smoking, followup, label}
}

// Table builds the validated table.
func (c *Cohort) Table() (*dataset.Table, error) {
	return dataset.NewTable(c.Schema(), c.Columns())
}

// MustTable is like Table but panics on error.
// Use only in tests where the cohort is known to be valid.
func (c *Cohort) MustTable() *dataset.Table {
	t, err := c.Table()
	if err != nil {
		panic(err)
	}
	return t
}

// CSV renders the cohort in source form: source headers (DEATH_EVENT, not
// death_event) in schema order, one row per line.
func (c *Cohort) CSV() string {
	var b strings.Builder
	s := c.Schema()
	b.WriteString(strings.Join(s.SourceHeader(), ","))
	b.WriteByte('\n')

	cols := c.Columns()
	for row := 0; row < c.Rows(); row++ {
		for j := range cols {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.FormatFloat(cols[j][row], 'g', -1, 64))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
