package dataset

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnSummary holds descriptive statistics for one column. StdDev is the
// population standard deviation (divisor N, matching the normalization used
// by standardization), not the sample estimate.
type ColumnSummary struct {
	Name   string     `json:"name"`
	Kind   ColumnKind `json:"kind"`
	Count  int        `json:"count"`
	Mean   float64    `json:"mean"`
	StdDev float64    `json:"std_dev"`
	Min    float64    `json:"min"`
	Max    float64    `json:"max"`
	Median float64    `json:"median"`
}

// Summary holds per-column statistics in schema column order.
type Summary struct {
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
	Balance Balance         `json:"class_balance"`
}

// Summarize computes statistics over every column of the table.
func (t *Table) Summarize() *Summary {
	idx := make([]int, t.rows)
	for i := range idx {
		idx[i] = i
	}
	s, _ := t.SummarizeRows(idx)
	return s
}

// SummarizeRows computes statistics over the given row indices. Columns
// appear in schema order so repeated runs produce identical output.
func (t *Table) SummarizeRows(rows []int) (*Summary, error) {
	cols := make([]ColumnSummary, 0, len(t.schema.Columns))
	for _, col := range t.schema.Columns {
		values, err := t.ColRows(col.Name, rows)
		if err != nil {
			return nil, fmt.Errorf("summarize %q: %w", col.Name, err)
		}
		cols = append(cols, summarizeColumn(col, values))
	}

	balance, err := t.BalanceOf(rows)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Rows:    len(rows),
		Columns: cols,
		Balance: balance,
	}, nil
}

func summarizeColumn(col Column, values []float64) ColumnSummary {
	return ColumnSummary{
		Name:   col.Name,
		Kind:   col.Kind,
		Count:  len(values),
		Mean:   stat.Mean(values, nil),
		StdDev: stat.PopStdDev(values, nil),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Median: median(values),
	}
}

// median uses the sorted-midpoint rule: the middle element for odd counts,
// the mean of the two middle elements for even counts.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Column returns the summary for the named column, or false if absent.
func (s *Summary) Column(name string) (ColumnSummary, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSummary{}, false
}
