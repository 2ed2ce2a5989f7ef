package dataset

import (
	"fmt"
	"sort"
)

// ClassCount is the count and fraction of one label value within a row set.
type ClassCount struct {
	Label    float64 `json:"label"`
	Count    int     `json:"count"`
	Fraction float64 `json:"fraction"`
}

// Balance is the class distribution of a row set, sorted by ascending label
// value so output and fingerprints are deterministic.
type Balance []ClassCount

// Fraction returns the fraction of the given label value, or 0 if the label
// does not occur.
func (b Balance) Fraction(label float64) float64 {
	for _, c := range b {
		if c.Label == label {
			return c.Fraction
		}
	}
	return 0
}

// Count returns the count of the given label value, or 0 if absent.
func (b Balance) Count(label float64) int {
	for _, c := range b {
		if c.Label == label {
			return c.Count
		}
	}
	return 0
}

// Total returns the number of rows the balance was computed over.
func (b Balance) Total() int {
	n := 0
	for _, c := range b {
		n += c.Count
	}
	return n
}

// Balance computes the class distribution of the whole table.
func (t *Table) Balance() Balance {
	idx := make([]int, t.rows)
	for i := range idx {
		idx[i] = i
	}
	b, _ := t.BalanceOf(idx)
	return b
}

// BalanceOf computes the class distribution over the given row indices.
func (t *Table) BalanceOf(rows []int) (Balance, error) {
	labels, err := t.ColRows(t.schema.Label, rows)
	if err != nil {
		return nil, fmt.Errorf("class balance: %w", err)
	}

	counts := make(map[float64]int)
	for _, v := range labels {
		counts[v]++
	}

	values := make([]float64, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Float64s(values)

	b := make(Balance, 0, len(values))
	for _, v := range values {
		b = append(b, ClassCount{
			Label:    v,
			Count:    counts[v],
			Fraction: float64(counts[v]) / float64(len(labels)),
		})
	}
	return b, nil
}

// ClassIndices groups the table's row indices by label value, keyed and
// ordered by ascending label. The per-class index slices preserve dataset
// row order, which keeps unshuffled splits fully order-deterministic.
func (t *Table) ClassIndices() ([]float64, [][]int) {
	labels := t.Col(t.schema.Label)

	byClass := make(map[float64][]int)
	for i, v := range labels {
		byClass[v] = append(byClass[v], i)
	}

	values := make([]float64, 0, len(byClass))
	for v := range byClass {
		values = append(values, v)
	}
	sort.Float64s(values)

	groups := make([][]int, len(values))
	for i, v := range values {
		groups[i] = byClass[v]
	}
	return values, groups
}
