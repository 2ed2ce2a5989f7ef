package harness

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/stratalab/strata/internal/dataset"
	"github.com/stratalab/strata/internal/pipeline"
)

// AssertionError describes one failed expectation with expected and actual
// values for debugging.
type AssertionError struct {
	Check    string
	Expected string
	Actual   string
}

// Error implements the error interface with a multi-line message.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s\n  Expected: %s\n  Actual: %s",
		e.Check, e.Expected, e.Actual)
}

// EvaluateExpectations checks a pipeline result against the scenario's
// expect clause and returns one message per violated check.
func EvaluateExpectations(res *pipeline.Result, expect *ExpectClause) []string {
	var failures []string
	if expect.Partitions != nil {
		failures = append(failures, assertPartitions(res, expect.Partitions)...)
	}
	if expect.Balance != nil {
		failures = append(failures, assertBalance(res, expect.Balance)...)
	}
	if expect.Transform != nil {
		failures = append(failures, assertTransform(res, expect.Transform)...)
	}
	return failures
}

// assertPartitions checks exact sizes plus the structural invariants: the
// three index sets are disjoint and together cover every row.
func assertPartitions(res *pipeline.Result, want *PartitionSizes) []string {
	var failures []string

	p := res.Partition
	sizes := []struct {
		name string
		got  int
		want int
	}{
		{"train", len(p.Train), want.Train},
		{"validation", len(p.Validation), want.Validation},
		{"test", len(p.Test), want.Test},
	}
	for _, s := range sizes {
		if s.got != s.want {
			failures = append(failures, (&AssertionError{
				Check:    fmt.Sprintf("%s partition size", s.name),
				Expected: fmt.Sprintf("%d rows", s.want),
				Actual:   fmt.Sprintf("%d rows", s.got),
			}).Error())
		}
	}

	seen := make(map[int]string, res.Table.Rows())
	parts := []struct {
		name string
		rows []int
	}{
		{"train", p.Train},
		{"validation", p.Validation},
		{"test", p.Test},
	}
	for _, part := range parts {
		for _, row := range part.rows {
			if prev, dup := seen[row]; dup {
				failures = append(failures, (&AssertionError{
					Check:    "partition disjointness",
					Expected: fmt.Sprintf("row %d in one partition", row),
					Actual:   fmt.Sprintf("row %d in %s and %s", row, prev, part.name),
				}).Error())
				continue
			}
			seen[row] = part.name
		}
	}
	if len(seen) != res.Table.Rows() {
		failures = append(failures, (&AssertionError{
			Check:    "partition coverage",
			Expected: fmt.Sprintf("%d rows partitioned", res.Table.Rows()),
			Actual:   fmt.Sprintf("%d rows partitioned", len(seen)),
		}).Error())
	}
	return failures
}

// assertBalance checks that each partition's class fractions stay within
// tolerance of the whole dataset's.
func assertBalance(res *pipeline.Result, want *BalanceExpectation) []string {
	var failures []string

	overall := res.Summary.Balance
	parts := []struct {
		name string
		b    dataset.Balance
	}{
		{"train", res.Balance.Train},
		{"validation", res.Balance.Validation},
		{"test", res.Balance.Test},
	}
	for _, part := range parts {
		for _, class := range overall {
			got := part.b.Fraction(class.Label)
			drift := math.Abs(got - class.Fraction)
			if drift > want.Tolerance {
				failures = append(failures, (&AssertionError{
					Check:    fmt.Sprintf("%s balance for label %g", part.name, class.Label),
					Expected: fmt.Sprintf("fraction within %g of %.4f", want.Tolerance, class.Fraction),
					Actual:   fmt.Sprintf("fraction %.4f (drift %.4f)", got, drift),
				}).Error())
			}
		}
	}
	return failures
}

// assertTransform checks that every standardized column of the transformed
// training matrix has mean 0 and population standard deviation 1 within
// tolerance. Pass-through columns are skipped.
func assertTransform(res *pipeline.Result, want *TransformExpectation) []string {
	var failures []string

	train := res.Sets.Train
	rows, _ := train.X.Dims()
	col := make([]float64, rows)
	for j, ct := range res.Transform.Columns() {
		if !ct.Standardize {
			continue
		}
		mat.Col(col, j, train.X)

		if mean := stat.Mean(col, nil); math.Abs(mean) > want.MeanTolerance {
			failures = append(failures, (&AssertionError{
				Check:    fmt.Sprintf("standardized mean of %s", ct.Name),
				Expected: fmt.Sprintf("|mean| <= %g", want.MeanTolerance),
				Actual:   fmt.Sprintf("mean %g", mean),
			}).Error())
		}
		if std := stat.PopStdDev(col, nil); math.Abs(std-1) > want.StdTolerance {
			failures = append(failures, (&AssertionError{
				Check:    fmt.Sprintf("standardized stddev of %s", ct.Name),
				Expected: fmt.Sprintf("within %g of 1", want.StdTolerance),
				Actual:   fmt.Sprintf("stddev %g", std),
			}).Error())
		}
	}
	return failures
}
